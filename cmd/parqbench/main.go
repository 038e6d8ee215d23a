// Package main provides the ParqBench command-line entry point.
package main

import (
	"os"

	"github.com/parqbench/parqbench/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
