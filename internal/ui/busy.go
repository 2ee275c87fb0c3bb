package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// busyDoneMsg is sent when the wrapped operation finishes.
type busyDoneMsg struct {
	err error
}

type busyModel struct {
	spinner spinner.Model
	label   string
	fn      func() error
	err     error
}

func newBusyModel(label string, fn func() error) busyModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return busyModel{spinner: s, label: label, fn: fn}
}

func (m busyModel) Init() tea.Cmd {
	run := func() tea.Msg {
		return busyDoneMsg{err: m.fn()}
	}
	return tea.Batch(m.spinner.Tick, run)
}

func (m busyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case busyDoneMsg:
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m busyModel) View() string {
	return fmt.Sprintf("%s %s", m.spinner.View(), labelStyle.Render(m.label))
}

// Busy runs fn while showing a spinner with the given label. Used for
// long external operations whose progress is not observable (image
// builds), where a busy indicator is the honest display.
func Busy(label string, fn func() error) error {
	p := tea.NewProgram(newBusyModel(label, fn))
	result, err := p.Run()
	if err != nil {
		// No usable terminal; run the operation plainly.
		fmt.Println(label)
		return fn()
	}
	return result.(busyModel).err
}
