package main

import (
	"fmt"
	"os"

	"github.com/Adda-Baaj/tranco-watch/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tranco: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return newRootCommand(cfg).Execute()
}
