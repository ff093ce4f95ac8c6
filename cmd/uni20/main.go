// Package main is the entry point for the uni20 CLI.
package main

import (
	"fmt"
	"os"

	"github.com/uni20/uni20-go/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmd.ExitCode(err))
	}
}
