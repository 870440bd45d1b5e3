package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDeleteNow(t *testing.T) {
	runner := newFakeRunner()
	runner.on("/usr/local/bin/unmount-user-sftp-path.sh", "", &ExitError{Status: 1, Stderr: "not mounted"})
	var out bytes.Buffer

	if err := deleteNow(context.Background(), &out, testDeleter(t, runner), "alice", true); err != nil {
		t.Fatalf("deleteNow: %v", err)
	}
	if !strings.Contains(out.String(), "warning: unmount failed for alice") || !strings.Contains(out.String(), "deleted alice") {
		t.Errorf("output = %q", out.String())
	}
	if lines := runner.commandLines(); len(lines) != 2 || lines[1] != "/usr/sbin/userdel -r alice" {
		t.Errorf("commands = %v", lines)
	}
}

func TestDeleteNowErrors(t *testing.T) {
	runner := newFakeRunner()
	runner.on("/usr/sbin/userdel", "", &ExitError{Status: 6, Stderr: "userdel: user 'ghost' does not exist\n"})
	var out bytes.Buffer

	err := deleteNow(context.Background(), &out, testDeleter(t, runner), "ghost", false)
	if err == nil || err.Error() != "userdel: user 'ghost' does not exist" {
		t.Errorf("err = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}

	if err := deleteNow(context.Background(), &out, testDeleter(t, runner), "", false); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestPrintAccounts(t *testing.T) {
	dir := t.TempDir()
	passwd := filepath.Join(dir, "passwd")
	writeFile(t, passwd, samplePasswd)

	cfg := testConfig(t)
	cfg.PasswdFile = passwd
	var out bytes.Buffer
	if err := printAccounts(&out, cfg); err != nil {
		t.Fatalf("printAccounts: %v", err)
	}
	if out.String() != "alice\nbackup-sftp\nbob\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestNewLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "acctdrop.log")
	logger, err := newLogger(path, "debug")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}

	runner := newFakeRunner()
	runner.on("/usr/local/bin/unmount-user-sftp-path.sh", "", &ExitError{Status: 1, Stderr: "target is busy\n"})
	d := newAccountDeleter(testConfig(t), runner, logger)
	d.deleteAccount(context.Background(), "alice", false)
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var warned bool
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		if entry["level"] == "warn" {
			warned = true
			if entry["stderr"] != "target is busy" || entry["account"] != "alice" {
				t.Errorf("warn entry = %v", entry)
			}
		}
	}
	if !warned {
		t.Errorf("no warning logged:\n%s", content)
	}
}

func TestNewLoggerOptions(t *testing.T) {
	logger, err := newLogger("", "")
	if err != nil || logger == nil {
		t.Fatalf("newLogger without path = %v, %v", logger, err)
	}
	if _, err := newLogger(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
