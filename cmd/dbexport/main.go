// Package main provides the dbexport command.
package main

import (
	"os"

	"github.com/leapstack-labs/dbexport/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
