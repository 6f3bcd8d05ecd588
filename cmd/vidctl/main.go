// Package main provides the vidctl operator CLI.
package main

import (
	"fmt"
	"os"

	"vidfetch-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
