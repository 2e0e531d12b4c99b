// Package main provides the entry point for the opskb CLI.
package main

import (
	"os"

	"github.com/opskb/opskb/cmd/opskb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
