package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/life-assistant/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type replyDoneMsg struct {
	resp domain.Response
	err  error
}

type waitSpinnerModel struct {
	spinner spinner.Model
	label   string
	wait    tea.Cmd
	resp    domain.Response
	err     error
	done    bool
}

func newWaitSpinnerModel(label string, wait tea.Cmd) waitSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return waitSpinnerModel{
		spinner: s,
		label:   label,
		wait:    wait,
	}
}

func (m waitSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m waitSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case replyDoneMsg:
		m.done = true
		m.resp = msg.resp
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m waitSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

func awaitWithSpinner(ctx context.Context, output io.Writer, label string, ask func(context.Context) (domain.Response, error)) (domain.Response, error) {
	waitCmd := func() tea.Msg {
		resp, err := ask(ctx)
		return replyDoneMsg{resp: resp, err: err}
	}

	p := tea.NewProgram(
		newWaitSpinnerModel(label, waitCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return domain.Response{}, err
	}

	result, ok := finalModel.(waitSpinnerModel)
	if !ok {
		return domain.Response{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.resp, result.err
}
