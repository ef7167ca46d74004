package main

import (
	"os"

	"coverfetch/cmd/coverfetch/commands"
	"coverfetch/internal/shared"
)

func main() {
	shared.InitializeColors()
	if err := commands.Execute(); err != nil {
		shared.ColorError.Fprintf(os.Stderr, "[!] %v\n", err)
		os.Exit(1)
	}
}
