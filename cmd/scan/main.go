package main

import (
	"os"

	"github.com/strikelab/optionscan/cmd/scan/commands"
)

// main is the entry point for the optionscan CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
