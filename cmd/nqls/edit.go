package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/nqls/completion"
	"github.com/rlch/nqls/editor"
)

var errNotTerminal = errors.New("edit needs an interactive terminal")

const filePermissions = 0o600

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit a query with interactive completion",
		ArgsUsage: "<file>",
		Action:    runEdit,
	}
}

func runEdit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("edit: missing file argument", 2)
	}

	if !editor.IsTerminal(os.Stdin) || !editor.IsTerminal(os.Stdout) {
		return errNotTerminal
	}

	s, err := loadSetup(ctx, cmd)
	if err != nil {
		return err
	}

	text := ""

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path is the point
	switch {
	case err == nil:
		text = string(data)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Keep workspace and snippet edits flowing into the open session.
	if err := s.backend.Watch(ctx, nil); err != nil {
		s.logger.Debug("Source watch disabled", zap.Error(err))
	}

	model := editor.New(s.engine(), text,
		editor.WithFilter(s.filter),
		editor.WithLogger(s.logger.Named("editor")),
		editor.WithContext(ctx),
		editor.WithDebounce(s.config.DebounceInterval(), completion.CursorDebounce))

	final, err := editor.Run(ctx, model, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	if !final.Saved() {
		return nil
	}

	return os.WriteFile(path, []byte(final.Text()), filePermissions)
}
