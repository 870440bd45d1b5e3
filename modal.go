package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type actionStyle int

const (
	actionDefault actionStyle = iota
	actionDanger
)

// modalBody is the content area of a modal. Key presses the modal does not
// consume itself are forwarded to it.
type modalBody interface {
	View() string
	HandleKey(msg tea.KeyMsg) tea.Cmd
}

type modalProps struct {
	ID    string
	Title string
	Body  modalBody
}

// modalAction runs off the UI loop. A nil error closes the modal and
// delivers the returned message; a non-nil error stays on screen.
type modalAction struct {
	Caption string
	Style   actionStyle
	Clicked func(ctx context.Context) (tea.Msg, error)
}

type modalFooter struct {
	Actions []modalAction
}

type modalActionDoneMsg struct {
	ID  string
	Msg tea.Msg
	Err error
}

type modalClosedMsg struct {
	ID string
}

type modalKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Press  key.Binding
	Cancel key.Binding
}

func newModalKeyMap() modalKeyMap {
	return modalKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next button"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab", "previous button"),
		),
		Press: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "press"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k modalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Press, k.Cancel}
}

func (k modalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Press, k.Cancel}}
}

type modal struct {
	ctx     context.Context
	props   modalProps
	footer  modalFooter
	keys    modalKeyMap
	help    help.Model
	spinner spinner.Model
	focus   int
	busy    bool
	err     error
	closed  bool
	width   int
	height  int
}

// showModal creates the modal instance that later SetProps and
// SetFooterProps calls update in place.
func showModal(ctx context.Context, props modalProps, footer modalFooter) *modal {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = ui.accent

	m := &modal{
		ctx:     ctx,
		keys:    newModalKeyMap(),
		help:    help.New(),
		spinner: sp,
	}
	m.SetProps(props)
	m.SetFooterProps(footer)
	m.focus = m.cancelIndex()
	return m
}

func (m *modal) SetProps(props modalProps) {
	m.props = props
}

func (m *modal) SetFooterProps(footer modalFooter) {
	m.footer = footer
	if m.focus > m.cancelIndex() {
		m.focus = m.cancelIndex()
	}
}

func (m *modal) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *modal) ID() string { return m.props.ID }

func (m *modal) Busy() bool { return m.busy }

func (m *modal) Err() error { return m.err }

func (m *modal) Closed() bool { return m.closed }

// cancelIndex is the position of the implicit Cancel button after the
// footer actions.
func (m *modal) cancelIndex() int { return len(m.footer.Actions) }

func (m *modal) Update(msg tea.Msg) tea.Cmd {
	if m.closed {
		return nil
	}

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	case modalActionDoneMsg:
		if msg.ID != m.props.ID || !m.busy {
			return nil
		}
		m.busy = false
		if msg.Err != nil {
			m.err = msg.Err
			return nil
		}
		m.closed = true
		next := msg.Msg
		return func() tea.Msg { return next }
	case tea.KeyMsg:
		if m.busy {
			return nil
		}
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return m.close()
		case key.Matches(msg, m.keys.Next):
			m.focus = (m.focus + 1) % (m.cancelIndex() + 1)
			return nil
		case key.Matches(msg, m.keys.Prev):
			m.focus = (m.focus + m.cancelIndex()) % (m.cancelIndex() + 1)
			return nil
		case key.Matches(msg, m.keys.Press):
			return m.press(m.focus)
		}
		if m.props.Body != nil {
			return m.props.Body.HandleKey(msg)
		}
	}
	return nil
}

func (m *modal) close() tea.Cmd {
	m.closed = true
	id := m.props.ID
	return func() tea.Msg { return modalClosedMsg{ID: id} }
}

func (m *modal) press(idx int) tea.Cmd {
	if idx >= len(m.footer.Actions) {
		return m.close()
	}
	action := m.footer.Actions[idx]
	if action.Clicked == nil {
		return nil
	}
	m.busy = true
	m.err = nil
	id := m.props.ID
	ctx := m.ctx
	run := func() tea.Msg {
		next, err := action.Clicked(ctx)
		return modalActionDoneMsg{ID: id, Msg: next, Err: err}
	}
	return tea.Batch(m.spinner.Tick, run)
}

func (m *modal) View() string {
	title := ui.title.Render(m.props.Title)
	sections := []string{title, ""}
	if m.props.Body != nil {
		sections = append(sections, m.props.Body.View(), "")
	}
	if m.err != nil {
		sections = append(sections, ui.danger.Render(m.err.Error()), "")
	}
	if m.busy {
		sections = append(sections, ui.status.Render(m.spinner.View()+" Working…"))
	} else {
		sections = append(sections, m.buttonsView(), "", m.help.View(m.keys))
	}

	box := ui.modal.Width(m.boxWidth()).Render(strings.Join(sections, "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *modal) buttonsView() string {
	buttons := make([]string, 0, len(m.footer.Actions)+1)
	for idx, action := range m.footer.Actions {
		buttons = append(buttons, renderButton(action.Caption, action.Style, idx == m.focus))
	}
	buttons = append(buttons, renderButton("Cancel", actionDefault, m.focus == m.cancelIndex()))
	return lipgloss.JoinHorizontal(lipgloss.Left, buttons...)
}

func (m *modal) boxWidth() int {
	width := 56
	if m.width > 0 && m.width-4 < width {
		width = m.width - 4
	}
	return max(width, 24)
}

func renderButton(caption string, style actionStyle, focused bool) string {
	switch {
	case focused && style == actionDanger:
		return ui.confirm.Render(caption) + " "
	case focused:
		return ui.chip.Render(caption) + " "
	case style == actionDanger:
		return ui.danger.Padding(0, 1).Render(caption) + " "
	default:
		return ui.muted.Padding(0, 1).Render(caption) + " "
	}
}
