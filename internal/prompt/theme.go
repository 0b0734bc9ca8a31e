package prompt

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"logomatch/internal/matcher"
)

// Theme holds the colors used by the terminal presenter.
type Theme struct {
	Message lipgloss.Color
	Hint    lipgloss.Color
	Error   lipgloss.Color
}

var defaultTheme = Theme{
	Message: lipgloss.Color("#5FAFD7"), // light blue
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Error:   lipgloss.Color("#FF005F"), // red
}

// Painter renders text in color when enabled and leaves it untouched otherwise.
type Painter struct {
	enabled bool
	theme   Theme
}

// NewPainter returns a Painter. Pass ShouldColorize(w) for enabled.
func NewPainter(enabled bool) Painter {
	return Painter{enabled: enabled, theme: defaultTheme}
}

// Enabled reports whether output is colored.
func (p Painter) Enabled() bool { return p.enabled }

// Severity colors s by the severity's display color.
func (p Painter) Severity(sev matcher.Severity, s string) string {
	return p.paint(lipgloss.Color(sev.Color()), false, s)
}

// Message renders a prompt heading.
func (p Painter) Message(s string) string { return p.paint(p.theme.Message, true, s) }

// Hint renders secondary text.
func (p Painter) Hint(s string) string { return p.paint(p.theme.Hint, false, s) }

// Error renders an input error.
func (p Painter) Error(s string) string { return p.paint(p.theme.Error, true, s) }

func (p Painter) paint(color lipgloss.Color, bold bool, s string) string {
	if !p.enabled {
		return s
	}
	return lipgloss.NewStyle().Foreground(color).Bold(bold).Render(s)
}

// ShouldColorize reports whether w is a terminal and NO_COLOR is unset.
func ShouldColorize(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
