package shared

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Package-level color variables
var (
	ColorInfo    = color.New(color.FgCyan)
	ColorSuccess = color.New(color.FgGreen)
	ColorWarning = color.New(color.FgYellow)
	ColorError   = color.New(color.FgRed)
	ColorMuted   = color.New(color.FgHiBlack) // skip/miss lines
)

// InitializeColors initializes color output based on TTY detection
func InitializeColors() {
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd())
}

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
