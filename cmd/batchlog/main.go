package main

import (
	"os"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
