package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/taxsim/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: taxsim-tui <config-file>")
		os.Exit(2)
	}
	configPath := os.Args[1]

	if _, err := os.Stat(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "taxsim-tui: %v\n", err)
		os.Exit(1)
	}

	// Mouse reporting stays off; every scene is keyboard driven.
	p := tea.NewProgram(tui.NewModel(configPath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "taxsim-tui: %v\n", err)
		os.Exit(1)
	}
}
