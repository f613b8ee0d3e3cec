package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rlch/nqls/completion"
	"github.com/rlch/nqls/editor"
)

func snippetsCommand() *cli.Command {
	return &cli.Command{
		Name:      "snippets",
		Usage:     "List snippets, optionally filtered by a name substring",
		ArgsUsage: "[filter]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "content",
				Usage: "print each snippet's content",
			},
		},
		Action: runSnippets,
	}
}

func runSnippets(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSetup(ctx, cmd)
	if err != nil {
		return err
	}

	snippets := s.backend.Snippets.Snippets()
	matches := completion.CompleteSnippets(cmd.Args().First(), snippets)

	byName := make(map[string]string, len(snippets))
	descriptions := make(map[string]string, len(snippets))

	for _, snippet := range snippets {
		byName[snippet.Name] = snippet.Content
		descriptions[snippet.Name] = snippet.Description
	}

	out := cmd.Root().Writer
	styles := editor.DefaultStyles()
	color := isTerminal(out)

	for _, c := range completion.Dedupe(matches) {
		name := c.Name
		if color {
			name = styles.Snippet.Render(name)
		}

		line := name
		if d := descriptions[c.Name]; d != "" {
			line += "  " + d
		}

		fmt.Fprintln(out, line)

		if cmd.Bool("content") {
			for _, l := range strings.Split(byName[c.Name], "\n") {
				fmt.Fprintln(out, "    "+l)
			}
		}
	}

	return nil
}
