package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

const nobodyUID = 65534

type Account struct {
	Name  string
	UID   int
	GID   int
	Gecos string
	Home  string
	Shell string
}

type AccountFilter struct {
	MinUID  int
	Exclude map[string]struct{}
}

func newAccountFilter(cfg Config) AccountFilter {
	exclude := map[string]struct{}{}
	for _, name := range cfg.Exclude {
		name = strings.TrimSpace(name)
		if name != "" {
			exclude[name] = struct{}{}
		}
	}
	return AccountFilter{MinUID: cfg.MinUIDValue(), Exclude: exclude}
}

func (f AccountFilter) allows(acc Account) bool {
	if acc.UID < f.MinUID || acc.UID == nobodyUID {
		return false
	}
	_, skip := f.Exclude[acc.Name]
	return !skip
}

func loadAccounts(path string, filter AccountFilter) ([]Account, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open passwd %s: %w", path, err)
	}
	defer file.Close()

	accounts, err := parsePasswd(file, filter)
	if err != nil {
		return nil, fmt.Errorf("read passwd %s: %w", path, err)
	}
	return accounts, nil
}

// parsePasswd reads passwd(5) records. Comments and malformed lines are
// skipped rather than failing the whole list.
func parsePasswd(r io.Reader, filter AccountFilter) ([]Account, error) {
	accounts := []Account{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != 7 || fields[0] == "" {
			continue
		}
		uid, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		gid, err := strconv.Atoi(fields[3])
		if err != nil {
			continue
		}
		acc := Account{
			Name:  fields[0],
			UID:   uid,
			GID:   gid,
			Gecos: fields[4],
			Home:  fields[5],
			Shell: fields[6],
		}
		if filter.allows(acc) {
			accounts = append(accounts, acc)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

type sortMode int

const (
	sortByName sortMode = iota
	sortByUID
)

func (m sortMode) String() string {
	if m == sortByUID {
		return "uid"
	}
	return "name"
}

func nextSortMode(current sortMode) sortMode {
	if current == sortByName {
		return sortByUID
	}
	return sortByName
}

func sortAccounts(accounts []Account, mode sortMode) {
	sort.SliceStable(accounts, func(i, j int) bool {
		left, right := accounts[i], accounts[j]
		if mode == sortByUID && left.UID != right.UID {
			return left.UID < right.UID
		}
		return strings.ToLower(left.Name) < strings.ToLower(right.Name)
	})
}
