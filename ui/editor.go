package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/editor"
)

func openEditor(path string, lineno int) tea.Cmd {
	cb := func(err error) tea.Msg {
		return editorFinishedMsg{err}
	}
	var opts []editor.Option
	if lineno > 0 {
		opts = append(opts, editor.LineNumber(uint(lineno))) //nolint:gosec
	}
	cmd, err := editor.Cmd("readaloud", path, opts...)
	if err != nil {
		return func() tea.Msg { return cb(err) }
	}
	return tea.ExecProcess(cmd, cb)
}
