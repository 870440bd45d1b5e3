package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type stringFlag struct {
	value string
	set   bool
}

func (s *stringFlag) String() string { return s.value }
func (s *stringFlag) Set(val string) error {
	s.value = val
	s.set = true
	return nil
}

type intFlag struct {
	value int
	set   bool
}

func (i *intFlag) String() string { return fmt.Sprintf("%d", i.value) }
func (i *intFlag) Set(val string) error {
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return err
	}
	i.value = parsed
	i.set = true
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var configPath stringFlag
	var passwdFile stringFlag
	var minUID intFlag
	var logFile stringFlag
	var deleteName stringFlag
	var deleteFiles bool
	var listAccounts bool

	flag.Var(&configPath, "config", "Path to a YAML or JSON config file")
	flag.Var(&passwdFile, "passwd", "Path to the passwd database")
	flag.Var(&minUID, "min-uid", "Lowest UID listed as a deletable account")
	flag.Var(&logFile, "log-file", "Write JSON logs to this file")
	flag.Var(&deleteName, "delete", "Delete this account without the UI")
	flag.BoolVar(&deleteFiles, "delete-files", false, "With -delete, also remove the account's files")
	flag.BoolVar(&listAccounts, "list-accounts", false, "Print deletable accounts and exit")
	flag.Parse()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error resolving working directory:", err)
		os.Exit(1)
	}

	config := Config{}
	if path, ok, err := resolveConfigPath(cwd, configPath.value); err != nil {
		fmt.Fprintln(os.Stderr, "Error resolving config:", err)
		os.Exit(1)
	} else if ok {
		cfg, err := loadConfig(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
		config = cfg
	}

	if passwdFile.set {
		config.PasswdFile = passwdFile.value
	}
	if minUID.set {
		value := minUID.value
		config.MinUID = &value
	}
	if logFile.set {
		config.LogFile = logFile.value
	}

	config, err = normalizeConfig(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error in config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(config.LogFile, config.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error opening log:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if listAccounts {
		if err := printAccounts(os.Stdout, config); err != nil {
			fmt.Fprintln(os.Stderr, "Error listing accounts:", err)
			os.Exit(1)
		}
		return
	}

	deleter := newAccountDeleter(config, newExecRunner(config.Elevate, config.Timeout()), logger)

	if deleteName.set {
		if err := deleteNow(ctx, os.Stdout, deleter, deleteName.value, deleteFiles); err != nil {
			fmt.Fprintln(os.Stderr, "Error deleting account:", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("starting", zap.String("passwd_file", config.PasswdFile), zap.Int("min_uid", config.MinUIDValue()))
	m := NewModel(ctx, config, deleter, newRouter())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		os.Exit(1)
	}
}

func printAccounts(w io.Writer, cfg Config) error {
	accounts, err := loadAccounts(cfg.PasswdFile, newAccountFilter(cfg))
	if err != nil {
		return err
	}
	sortAccounts(accounts, sortByName)
	for _, acc := range accounts {
		fmt.Fprintln(w, acc.Name)
	}
	return nil
}

func deleteNow(ctx context.Context, w io.Writer, deleter accountDeleter, name string, deleteFiles bool) error {
	if name == "" {
		return errors.New("delete: empty account name")
	}
	result := deleter.deleteAccount(ctx, name, deleteFiles)
	if result.Err != nil {
		return result.Err
	}
	if result.UnmountErr != nil {
		fmt.Fprintf(w, "warning: unmount failed for %s: %v\n", name, result.UnmountErr)
	}
	fmt.Fprintf(w, "deleted %s\n", name)
	return nil
}
