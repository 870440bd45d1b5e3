package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPasswdFile     = "/etc/passwd"
	defaultMinUID         = 1000
	defaultUnmountCommand = "/usr/local/bin/unmount-user-sftp-path.sh"
	defaultUserdelCommand = "/usr/sbin/userdel"
	defaultCommandTimeout = 60 * time.Second
)

type Config struct {
	PasswdFile     string   `json:"passwd_file" yaml:"passwd_file"`
	MinUID         *int     `json:"min_uid" yaml:"min_uid"`
	Exclude        []string `json:"exclude" yaml:"exclude"`
	UnmountCommand string   `json:"unmount_command" yaml:"unmount_command"`
	UserdelCommand string   `json:"userdel_command" yaml:"userdel_command"`
	Elevate        []string `json:"elevate" yaml:"elevate"`
	CommandTimeout string   `json:"command_timeout" yaml:"command_timeout"`
	LogFile        string   `json:"log_file" yaml:"log_file"`
	LogLevel       string   `json:"log_level" yaml:"log_level"`

	timeout time.Duration
}

func (c Config) Timeout() time.Duration { return c.timeout }

func (c Config) MinUIDValue() int {
	if c.MinUID == nil {
		return defaultMinUID
	}
	return *c.MinUID
}

func resolveConfigPath(dir, explicit string) (string, bool, error) {
	if explicit != "" {
		return explicit, true, nil
	}
	for _, candidate := range defaultConfigPaths(dir) {
		if fileExists(candidate) {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

func loadConfig(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &cfg)
	default:
		err = json.Unmarshal(content, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaultConfigPaths(dir string) []string {
	paths := []string{}
	if dir != "" {
		paths = append(paths, filepath.Join(dir, ".acctdrop.yaml"), filepath.Join(dir, ".acctdrop.json"))
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "acctdrop", "config.yaml"), filepath.Join(xdg, "acctdrop", "config.json"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "acctdrop", "config.yaml"), filepath.Join(home, ".config", "acctdrop", "config.json"))
	}
	return paths
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func normalizeConfig(cfg Config) (Config, error) {
	if cfg.MinUID != nil && *cfg.MinUID < 0 {
		return Config{}, errors.New("config: min_uid must be >= 0")
	}
	if cfg.PasswdFile == "" {
		cfg.PasswdFile = defaultPasswdFile
	}
	if cfg.UnmountCommand == "" {
		cfg.UnmountCommand = defaultUnmountCommand
	}
	if cfg.UserdelCommand == "" {
		cfg.UserdelCommand = defaultUserdelCommand
	}
	if !filepath.IsAbs(cfg.UnmountCommand) {
		return Config{}, fmt.Errorf("config: unmount_command must be an absolute path: %q", cfg.UnmountCommand)
	}
	if !filepath.IsAbs(cfg.UserdelCommand) {
		return Config{}, fmt.Errorf("config: userdel_command must be an absolute path: %q", cfg.UserdelCommand)
	}
	if cfg.Elevate == nil {
		cfg.Elevate = []string{"sudo", "-n"}
	}

	cfg.timeout = defaultCommandTimeout
	if cfg.CommandTimeout != "" {
		timeout, err := time.ParseDuration(cfg.CommandTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("config: command_timeout: %w", err)
		}
		if timeout < 0 {
			return Config{}, errors.New("config: command_timeout must be >= 0")
		}
		cfg.timeout = timeout
	}
	return cfg, nil
}
