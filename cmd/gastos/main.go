package main

import (
	"errors"
	"fmt"
	"os"

	"gastos/internal/cli"
	"gastos/internal/mcpserver"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	mcpserver.Version = version

	rootCmd := cli.NewRootCmd(version)
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitFailure)
	}
}
