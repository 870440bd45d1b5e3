package main

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type fakeResult struct {
	stdout string
	err    error
}

// fakeRunner records every argv it is asked to run and answers by program
// path.
type fakeRunner struct {
	calls   [][]string
	opts    []RunOptions
	results map[string]fakeResult
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: map[string]fakeResult{}}
}

func (f *fakeRunner) on(program string, stdout string, err error) {
	f.results[program] = fakeResult{stdout: stdout, err: err}
}

func (f *fakeRunner) Run(_ context.Context, argv []string, opts RunOptions) (string, error) {
	f.calls = append(f.calls, append([]string{}, argv...))
	f.opts = append(f.opts, opts)
	res := f.results[argv[0]]
	return res.stdout, res.err
}

func (f *fakeRunner) commandLines() []string {
	lines := make([]string, 0, len(f.calls))
	for _, argv := range f.calls {
		lines = append(lines, strings.Join(argv, " "))
	}
	return lines
}

type fakeNavigator struct {
	paths []string
}

func (f *fakeNavigator) Go(path string) {
	f.paths = append(f.paths, path)
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := normalizeConfig(Config{})
	if err != nil {
		t.Fatalf("normalizeConfig: %v", err)
	}
	return cfg
}

func testDeleter(t *testing.T, runner Runner) accountDeleter {
	t.Helper()
	return newAccountDeleter(testConfig(t), runner, zap.NewNop())
}

// collectMsgs runs cmd and flattens batches into the messages they produce.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, inner := range batch {
			msgs = append(msgs, collectMsgs(inner)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if typed, ok := msg.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}
