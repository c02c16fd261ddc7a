package tui

import (
	"errors"

	"termwidget/internal/terminal"

	tea "github.com/charmbracelet/bubbletea"
)

// Result 返回 TUI 运行后的必要信息。
type Result struct {
	SessionID string
	State     terminal.State
}

// Run 封装 Bubble Tea 入口，返回最终的会话状态。
func Run(opts Options) (Result, error) {
	if opts.Session == nil {
		return Result{}, errors.New("tui: session is required")
	}
	programOptions := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if opts.AltScreen {
		programOptions = append(programOptions, tea.WithAltScreen())
	}
	program := tea.NewProgram(New(opts), programOptions...)
	m, err := program.Run()
	if err != nil {
		return Result{}, err
	}
	tuiModel, ok := m.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	return Result{
		SessionID: opts.Session.ID(),
		State:     tuiModel.session.Snapshot(),
	}, nil
}
