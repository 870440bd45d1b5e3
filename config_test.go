package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfigFormats(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	writeFile(t, yamlPath, `passwd_file: /srv/passwd
min_uid: 2000
exclude: [sftpadmin]
elevate: [pkexec]
command_timeout: 5s
`)
	jsonPath := filepath.Join(dir, "config.json")
	writeFile(t, jsonPath, `{"passwd_file": "/srv/passwd", "min_uid": 2000, "exclude": ["sftpadmin"], "elevate": ["pkexec"], "command_timeout": "5s"}`)

	for _, path := range []string{yamlPath, jsonPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			raw, err := loadConfig(path)
			if err != nil {
				t.Fatalf("loadConfig: %v", err)
			}
			cfg, err := normalizeConfig(raw)
			if err != nil {
				t.Fatalf("normalizeConfig: %v", err)
			}
			if cfg.PasswdFile != "/srv/passwd" || cfg.MinUIDValue() != 2000 {
				t.Errorf("cfg = %+v", cfg)
			}
			if !reflect.DeepEqual(cfg.Exclude, []string{"sftpadmin"}) || !reflect.DeepEqual(cfg.Elevate, []string{"pkexec"}) {
				t.Errorf("lists = %v %v", cfg.Exclude, cfg.Elevate)
			}
			if cfg.Timeout() != 5*time.Second {
				t.Errorf("Timeout = %v", cfg.Timeout())
			}
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"min_uid": "many"}`)

	if _, err := loadConfig(bad); err == nil {
		t.Error("expected parse error")
	}
	if _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestNormalizeConfigDefaults(t *testing.T) {
	cfg, err := normalizeConfig(Config{})
	if err != nil {
		t.Fatalf("normalizeConfig: %v", err)
	}
	if cfg.PasswdFile != defaultPasswdFile ||
		cfg.UnmountCommand != defaultUnmountCommand ||
		cfg.UserdelCommand != defaultUserdelCommand ||
		cfg.MinUIDValue() != defaultMinUID ||
		cfg.Timeout() != defaultCommandTimeout {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Elevate, []string{"sudo", "-n"}) {
		t.Errorf("Elevate = %v", cfg.Elevate)
	}
}

func TestNormalizeConfigKeepsEmptyElevate(t *testing.T) {
	cfg, err := normalizeConfig(Config{Elevate: []string{}})
	if err != nil {
		t.Fatalf("normalizeConfig: %v", err)
	}
	if len(cfg.Elevate) != 0 {
		t.Errorf("Elevate = %v, want none", cfg.Elevate)
	}
}

func TestNormalizeConfigRejects(t *testing.T) {
	negative := -1
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative min uid", Config{MinUID: &negative}},
		{"relative unmount", Config{UnmountCommand: "unmount.sh"}},
		{"relative userdel", Config{UserdelCommand: "userdel"}},
		{"bad timeout", Config{CommandTimeout: "soon"}},
		{"negative timeout", Config{CommandTimeout: "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := normalizeConfig(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", filepath.Join(dir, "home"))

	if _, ok, _ := resolveConfigPath(dir, ""); ok {
		t.Fatal("found a config in an empty directory")
	}

	local := filepath.Join(dir, ".acctdrop.json")
	writeFile(t, local, `{}`)
	path, ok, err := resolveConfigPath(dir, "")
	if err != nil || !ok || path != local {
		t.Errorf("resolveConfigPath = %q %v %v", path, ok, err)
	}

	path, ok, _ = resolveConfigPath(dir, "/etc/acctdrop.yaml")
	if !ok || path != "/etc/acctdrop.yaml" {
		t.Errorf("explicit path not used: %q", path)
	}
}
