package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const deleteAccountDialogID = "account-confirm-delete-dialog"

type dialogState struct {
	DeleteFiles bool
}

type accountDeletedMsg struct {
	Result accountDeleteResult
}

var toggleFilesKey = key.NewBinding(
	key.WithKeys(" ", "space", "x"),
	key.WithHelp("space", "toggle"),
)

type deleteAccountBody struct {
	state  dialogState
	change func(field string, value bool)
}

func (b deleteAccountBody) View() string {
	box := "[ ]"
	if b.state.DeleteFiles {
		box = ui.accent.Render("[x]")
	}
	return fmt.Sprintf("%s Delete files", box)
}

func (b deleteAccountBody) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, toggleFilesKey) {
		b.change("delete_files", !b.state.DeleteFiles)
	}
	return nil
}

// deleteAccountDialog owns the confirmation modal for one account. Every
// state change rebuilds props and footer and pushes them into the same
// modal.
type deleteAccountDialog struct {
	ctx     context.Context
	account Account
	deleter accountDeleter
	state   dialogState
	dlg     *modal
}

func openDeleteAccountDialog(ctx context.Context, account Account, deleter accountDeleter) *deleteAccountDialog {
	d := &deleteAccountDialog{
		ctx:     ctx,
		account: account,
		deleter: deleter,
		state:   dialogState{DeleteFiles: false},
	}
	d.update()
	return d
}

func (d *deleteAccountDialog) Modal() *modal { return d.dlg }

func (d *deleteAccountDialog) State() dialogState { return d.state }

func (d *deleteAccountDialog) change(field string, value bool) {
	switch field {
	case "delete_files":
		d.state.DeleteFiles = value
	default:
		return
	}
	d.update()
}

func (d *deleteAccountDialog) update() {
	props := modalProps{
		ID:    deleteAccountDialogID,
		Title: fmt.Sprintf("Delete %s", d.account.Name),
		Body:  deleteAccountBody{state: d.state, change: d.change},
	}

	name := d.account.Name
	deleteFiles := d.state.DeleteFiles
	deleter := d.deleter
	footer := modalFooter{
		Actions: []modalAction{
			{
				Caption: "Delete",
				Style:   actionDanger,
				Clicked: func(ctx context.Context) (tea.Msg, error) {
					result := deleter.deleteAccount(ctx, name, deleteFiles)
					if result.Err != nil {
						return nil, result.Err
					}
					return accountDeletedMsg{Result: result}, nil
				},
			},
		},
	}

	if d.dlg == nil {
		d.dlg = showModal(d.ctx, props, footer)
		return
	}
	d.dlg.SetProps(props)
	d.dlg.SetFooterProps(footer)
}
