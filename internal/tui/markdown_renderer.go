package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minDescriptionWrap keeps glamour from wrapping into unreadable slivers
// when the peek panel is squeezed.
const minDescriptionWrap = 24

// markdownRenderer styles task descriptions for the peek panel. The glamour
// renderer is built lazily and rebuilt only when the wrap width changes,
// since construction is the expensive part.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render returns the ANSI-styled form of a task description, or the raw
// text when styling fails.
func (r *markdownRenderer) render(description string, width int) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	if width < minDescriptionWrap {
		width = minDescriptionWrap
	}
	if err := r.ensure(width); err != nil {
		return description
	}
	styled, err := r.renderer.Render(description)
	if err != nil {
		return description
	}
	return strings.TrimRight(styled, "\n")
}

// ensure rebuilds the glamour renderer when needed.
func (r *markdownRenderer) ensure(width int) error {
	if r.renderer != nil && r.width == width {
		return nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}
	r.renderer = renderer
	r.width = width
	return nil
}
