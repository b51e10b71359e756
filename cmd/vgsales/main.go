// Package main is the entry point for the vgsales CLI.
package main

import (
	"os"

	"github.com/YuminosukeSato/vgsales/cmd/vgsales/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
