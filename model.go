package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type accountsLoadedMsg struct {
	ID       int
	Accounts []Account
	Err      error
}

type keyMap struct {
	Delete key.Binding
	Reload key.Binding
	Sort   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Delete: key.NewBinding(
			key.WithKeys("enter", "d"),
			key.WithHelp("enter/d", "delete account"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Delete, k.Sort, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Delete}, {k.Sort, k.Reload, k.Help, k.Quit}}
}

type model struct {
	table      table.Model
	spinner    spinner.Model
	help       help.Model
	keys       keyMap
	accounts   []Account
	loading    bool
	err        error
	lastEvent  string
	sortMode   sortMode
	width      int
	height     int
	cfg        Config
	filter     AccountFilter
	deleter    accountDeleter
	nav        navigator
	loadID     int
	dialog     *deleteAccountDialog
	baseCtx    context.Context
	baseCancel context.CancelFunc
}

type styles struct {
	base      lipgloss.Style
	header    lipgloss.Style
	title     lipgloss.Style
	subtitle  lipgloss.Style
	status    lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	danger    lipgloss.Style
	warning   lipgloss.Style
	confirm   lipgloss.Style
	chip      lipgloss.Style
	modal     lipgloss.Style
	container lipgloss.Style
}

var ui = styles{
	base: lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")),
	container: lipgloss.NewStyle().Padding(0, 1),
	header:    lipgloss.NewStyle().Padding(0, 1),
	title:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	status:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	danger:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	confirm:   lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("203")).Bold(true).Padding(0, 1),
	chip:      lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62")).Padding(0, 1),
	modal: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("203")).
		Padding(1, 2),
}

func NewModel(ctx context.Context, cfg Config, deleter accountDeleter, nav navigator) model {
	baseCtx, baseCancel := context.WithCancel(ctx)

	columns := []table.Column{
		{Title: "Account", Width: 20},
		{Title: "UID", Width: 8},
		{Title: "Home", Width: 30},
		{Title: "Shell", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("238")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)
	t.SetStyles(styles)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return model{
		table:      t,
		spinner:    sp,
		help:       help.New(),
		keys:       newKeyMap(),
		loading:    true,
		sortMode:   sortByName,
		cfg:        cfg,
		filter:     newAccountFilter(cfg),
		deleter:    deleter,
		nav:        nav,
		loadID:     1,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadAccountsCmd(m.cfg.PasswdFile, m.filter, m.loadID))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.dialog != nil {
		if cmd := m.dialog.Modal().Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.dialog.Modal().Closed() {
			m.dialog = nil
		}
		if _, isKey := msg.(tea.KeyMsg); isKey {
			return m, tea.Batch(cmds...)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.updateLayout(msg.Width, msg.Height)
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	case accountsLoadedMsg:
		if msg.ID != m.loadID {
			break
		}
		m.loading = false
		m.err = msg.Err
		m.accounts = msg.Accounts
		sortAccounts(m.accounts, m.sortMode)
		m.setTableRows()
	case modalClosedMsg:
		m.lastEvent = "Deletion cancelled"
	case accountDeletedMsg:
		m.lastEvent = deletedEvent(msg.Result)
		var loadCmds []tea.Cmd
		m, loadCmds = m.navigate(rootPath)
		cmds = append(cmds, loadCmds...)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.baseCancel != nil {
				m.baseCancel()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Reload):
			m.lastEvent = "Reloading…"
			var loadCmds []tea.Cmd
			m, loadCmds = m.startLoad()
			cmds = append(cmds, loadCmds...)
		case key.Matches(msg, m.keys.Sort):
			m.sortMode = nextSortMode(m.sortMode)
			sortAccounts(m.accounts, m.sortMode)
			m.setTableRows()
			m.lastEvent = fmt.Sprintf("Sorted by %s", m.sortMode.String())
		case key.Matches(msg, m.keys.Delete):
			m.requestDeleteSelected()
			return m, tea.Batch(cmds...)
		}
	}

	if m.dialog == nil {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.dialog != nil {
		return m.dialog.Modal().View()
	}
	if m.width == 0 {
		return "Loading…"
	}

	content := ui.base.Render(m.table.View())
	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		content,
		m.statusView(),
		m.footerView(),
	)
	return ui.container.Render(view)
}

func (m *model) updateLayout(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	width = max(width, 60)
	height = max(height, 12)
	m.width = width
	m.height = height
	if m.dialog != nil {
		m.dialog.Modal().SetSize(width, height)
	}

	nameWidth := 20
	uidWidth := 8
	shellWidth := 20
	homeWidth := max(width-nameWidth-uidWidth-shellWidth-10, 16)

	m.table.SetColumns([]table.Column{
		{Title: "Account", Width: nameWidth},
		{Title: "UID", Width: uidWidth},
		{Title: "Home", Width: homeWidth},
		{Title: "Shell", Width: shellWidth},
	})

	headerHeight := lipgloss.Height(m.headerView())
	statusHeight := lipgloss.Height(m.statusView())
	footerHeight := lipgloss.Height(m.footerView())
	available := max(height-headerHeight-statusHeight-footerHeight-4, 5)
	m.table.SetHeight(available)
	m.table.SetWidth(width - 4)
}

func (m model) startLoad() (model, []tea.Cmd) {
	m.loadID++
	m.loading = true
	m.err = nil
	return m, []tea.Cmd{m.spinner.Tick, loadAccountsCmd(m.cfg.PasswdFile, m.filter, m.loadID)}
}

// navigate moves the application to path. Only the root view exists, so
// arriving there closes any dialog and reloads the account list.
func (m model) navigate(path string) (model, []tea.Cmd) {
	if m.nav != nil {
		m.nav.Go(path)
	}
	m.dialog = nil
	if path != rootPath {
		return m, nil
	}
	return m.startLoad()
}

func (m *model) requestDeleteSelected() {
	if m.loading || m.dialog != nil || len(m.accounts) == 0 {
		return
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.accounts) {
		return
	}
	m.dialog = openDeleteAccountDialog(m.baseCtx, m.accounts[idx], m.deleter)
	m.dialog.Modal().SetSize(m.width, m.height)
}

func (m model) headerView() string {
	title := ui.title.Render("acctdrop")
	subtitle := ui.subtitle.Render("Remove SFTP user accounts")
	source := ui.muted.Render(fmt.Sprintf("Source: %s", m.cfg.PasswdFile))
	line := lipgloss.JoinHorizontal(lipgloss.Left, title, " ", ui.chip.Render(fmt.Sprintf("uid ≥ %d", m.filter.MinUID)))
	return ui.header.Render(lipgloss.JoinVertical(lipgloss.Left, line, lipgloss.JoinHorizontal(lipgloss.Left, subtitle, " · ", source)))
}

func (m model) statusView() string {
	if m.loading {
		return ui.status.Render(fmt.Sprintf("%s Loading accounts…", m.spinner.View()))
	}
	if m.err != nil {
		return ui.danger.Render(fmt.Sprintf("Error: %v", m.err))
	}
	parts := []string{
		fmt.Sprintf("Accounts: %d", len(m.accounts)),
		fmt.Sprintf("Sort: %s", m.sortMode.String()),
	}
	return ui.status.Render(strings.Join(parts, " · "))
}

func (m model) footerView() string {
	if m.lastEvent != "" {
		return lipgloss.JoinVertical(lipgloss.Left, ui.muted.Render(m.lastEvent), m.help.View(m.keys))
	}
	return m.help.View(m.keys)
}

func (m *model) setTableRows() {
	rows := make([]table.Row, 0, len(m.accounts))
	for _, acc := range m.accounts {
		rows = append(rows, table.Row{
			acc.Name,
			strconv.Itoa(acc.UID),
			acc.Home,
			acc.Shell,
		})
	}
	m.table.SetRows(rows)
}

func deletedEvent(result accountDeleteResult) string {
	if result.UnmountErr != nil {
		return fmt.Sprintf("Deleted %s (unmount failed: %v)", result.Name, result.UnmountErr)
	}
	return fmt.Sprintf("Deleted %s", result.Name)
}

func loadAccountsCmd(path string, filter AccountFilter, id int) tea.Cmd {
	return func() tea.Msg {
		accounts, err := loadAccounts(path, filter)
		return accountsLoadedMsg{ID: id, Accounts: accounts, Err: err}
	}
}
