package main

import (
	"os"

	"github.com/wonny/swing/cmd/swing/commands"
)

// main is the entry point for the swing CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/swing [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
