package editor

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run edits the model's text interactively on in/out until the user saves
// or quits. It returns the final model.
func Run(ctx context.Context, m *Model, in io.Reader, out io.Writer) (*Model, error) {
	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return nil, err
	}

	return final.(*Model), nil //nolint:forcetypeassert // the program only ever holds *Model
}
