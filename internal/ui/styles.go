package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5599FF"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4444")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	barFilledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#333333"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))
)

// Infof prints an informational line.
func Infof(format string, a ...any) {
	fmt.Println(infoStyle.Render(fmt.Sprintf(format, a...)))
}

// Successf prints a success line.
func Successf(format string, a ...any) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, a...)))
}

// Warnf prints a warning line.
func Warnf(format string, a ...any) {
	fmt.Println(warnStyle.Render(fmt.Sprintf(format, a...)))
}

// Errorf prints an error line.
func Errorf(format string, a ...any) {
	fmt.Println(errorStyle.Render(fmt.Sprintf(format, a...)))
}
