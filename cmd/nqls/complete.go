package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/completion"
	"github.com/rlch/nqls/editor"
)

var errInvalidPosition = errors.New("invalid position (want LINE:COL, both 1-based)")

func completeCommand() *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Usage:     "Print completions for a cursor position in a query",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "pos",
				Aliases: []string{"p"},
				Usage:   "cursor position as LINE:COL (default: end of input)",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "identifier being typed (default: the word before the cursor)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "give up on slow sources after this long",
				Value: 10 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output candidates as JSON",
			},
		},
		Action: runComplete,
	}
}

func runComplete(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSetup(ctx, cmd)
	if err != nil {
		return err
	}

	text, err := readInput(cmd.Args().First())
	if err != nil {
		return err
	}

	buf := editor.NewBuffer(text)

	if pos := cmd.String("pos"); pos != "" {
		line, col, err := parsePosition(pos)
		if err != nil {
			return err
		}

		buf.SetCursor(line-1, col-1)
	}

	row, col := buf.Cursor()

	req := completion.Request{
		Text:   text,
		Line:   row,
		Column: col,
		Prefix: buf.WordBeforeCursor(),
	}

	if cmd.IsSet("prefix") {
		req.Prefix = cmd.String("prefix")
	}

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	var candidates []nqls.Candidate

	select {
	case candidates = <-s.engine().Go(ctx, req):
	case <-ctx.Done():
		return ctx.Err()
	}

	candidates = completion.Dedupe(s.filter.Apply(candidates))

	out := cmd.Root().Writer

	if cmd.Bool("json") {
		return writeJSON(out, candidates)
	}

	return writeCandidates(out, candidates, isTerminal(out))
}

// parsePosition parses "LINE:COL".
func parsePosition(s string) (line, col int, err error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", errInvalidPosition, s)
	}

	line, err = strconv.Atoi(l)
	if err != nil || line < 1 {
		return 0, 0, fmt.Errorf("%w: %q", errInvalidPosition, s)
	}

	col, err = strconv.Atoi(c)
	if err != nil || col < 1 {
		return 0, 0, fmt.Errorf("%w: %q", errInvalidPosition, s)
	}

	return line, col, nil
}

// isTerminal reports whether w is a terminal, deciding color output.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && editor.IsTerminal(f)
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)

		return string(data), err
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path is the point
	if err != nil {
		return "", err
	}

	return string(data), nil
}

type jsonCandidate struct {
	Name    string `json:"name"`
	Display string `json:"display,omitempty"`
	Meta    string `json:"meta,omitempty"`
}

func writeJSON(w io.Writer, candidates []nqls.Candidate) error {
	out := make([]jsonCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, jsonCandidate{Name: c.Name, Display: c.DisplayValue, Meta: c.Meta})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

// writeCandidates prints one candidate per line, name then meta, with the
// meta column dimmed on a terminal.
func writeCandidates(w io.Writer, candidates []nqls.Candidate, color bool) error {
	styles := editor.DefaultStyles()

	width := 0
	for _, c := range candidates {
		width = max(width, lipgloss.Width(c.Name))
	}

	for _, c := range candidates {
		name := c.Name + strings.Repeat(" ", width-lipgloss.Width(c.Name))
		meta := c.Meta

		if color {
			name = styles.Selected.Render(name)
			meta = styles.Meta.Render(meta)
		}

		line := strings.TrimRight(name+"  "+meta, " ")
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
