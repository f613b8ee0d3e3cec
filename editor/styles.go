package editor

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#3b82f6") // blue-500
	colorDim    = lipgloss.Color("#6b7280") // gray-500
	colorMuted  = lipgloss.Color("#9ca3af") // gray-400
	colorBorder = lipgloss.Color("#374151") // gray-700
	colorSnip   = lipgloss.Color("#d946ef") // fuchsia-500
	colorError  = lipgloss.Color("#ef4444") // red-500
)

// Styles holds the lipgloss styles for the editor.
type Styles struct {
	Cursor   lipgloss.Style
	Gutter   lipgloss.Style
	Popup    lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Meta     lipgloss.Style
	Status   lipgloss.Style
	Snippet  lipgloss.Style
	Spinner  lipgloss.Style
	Error    lipgloss.Style

	SymbolPointer string
}

// DefaultStyles returns the default editor styles.
func DefaultStyles() *Styles {
	return &Styles{
		Cursor:   lipgloss.NewStyle().Reverse(true),
		Gutter:   lipgloss.NewStyle().Foreground(colorDim),
		Popup:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder),
		Selected: lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		Item:     lipgloss.NewStyle(),
		Meta:     lipgloss.NewStyle().Foreground(colorMuted),
		Status:   lipgloss.NewStyle().Foreground(colorDim),
		Snippet:  lipgloss.NewStyle().Foreground(colorSnip).Bold(true),
		Spinner:  lipgloss.NewStyle().Foreground(colorAccent),
		Error:    lipgloss.NewStyle().Foreground(colorError).Bold(true),

		SymbolPointer: "❯",
	}
}

// SpinnerFrames returns the braille spinner animation frames.
func SpinnerFrames() []string {
	return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
}
