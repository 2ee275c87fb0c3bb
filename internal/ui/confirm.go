package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ConfirmFunc is a yes/no decision capability. The lifecycle manager takes
// one of these so destructive-path tests can script answers instead of
// reading a terminal.
type ConfirmFunc func(prompt string) bool

// Confirm asks on the terminal and defaults to no.
func Confirm(prompt string) bool {
	fmt.Print(promptStyle.Render(prompt) + " [y/N] ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
