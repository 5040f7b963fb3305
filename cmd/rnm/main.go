// Package main is the entry point for the rnm CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/rnm/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
