// Package main provides the nqls CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	err := newApp().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "nqls",
		Version: version,
		Usage:   "Native query completion tool",
		Flags:   sourceFlags(),
		Commands: []*cli.Command{
			completeCommand(),
			snippetsCommand(),
			checkCommand(),
			editCommand(),
		},
	}
}
