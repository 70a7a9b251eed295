// ABOUTME: CLI entrypoint for mdpreview: a markdown conversion service plus terminal and file-following editors.
// ABOUTME: Loads .env overrides, builds the cobra command tree and maps errors to exit codes.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if _, err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
