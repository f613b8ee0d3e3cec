package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/rlch/nqls/analysis"
	"github.com/rlch/nqls/editor"
)

var errCheckFailed = errors.New("query check failed")

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Report template tag problems in query files",
		ArgsUsage: "[files...]",
		Action:    runCheck,
	}
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSetup(ctx, cmd)
	if err != nil {
		return err
	}

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	analyzer := analysis.NewAnalyzer(s.backend.Snippets)
	out := cmd.Root().Writer
	color := isTerminal(out)
	failed := false

	for _, path := range paths {
		text, err := readInput(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		name := path
		if name == "-" {
			name = "<stdin>"
		}

		result := analyzer.Analyze(name, text)

		for _, d := range result.Diagnostics {
			if d.Severity == analysis.SeverityError {
				failed = true
			}
		}

		writeDiagnostics(out, name, result.Diagnostics, color)
	}

	if failed {
		return errCheckFailed
	}

	return nil
}

func writeDiagnostics(w io.Writer, path string, diags []analysis.Diagnostic, color bool) {
	styles := editor.DefaultStyles()

	for _, d := range diags {
		severity := severityName(d.Severity)
		if color {
			severity = styles.Error.Render(severity)
		}

		fmt.Fprintf(w, "%s:%d:%d: %s: %s [%s]\n",
			path, d.Span.Start.Line, d.Span.Start.Column, severity, d.Message, d.Code)
	}
}

func severityName(s analysis.DiagnosticSeverity) string {
	switch s {
	case analysis.SeverityError:
		return "error"
	case analysis.SeverityWarning:
		return "warning"
	case analysis.SeverityInformation:
		return "info"
	default:
		return "hint"
	}
}
