// Package main provides the entry point for the knowledgeforge operator CLI.
package main

import (
	"os"

	"github.com/kestrel-labs/knowledgeforge/cmd/knowledgeforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
