package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-smf/theme"
)

// Binding is one key (or key list) and the viewer action it triggers.
type Binding struct {
	Keys   string
	Action string
}

// HelpGroup is a titled column of bindings.
type HelpGroup struct {
	Title    string
	Bindings []Binding
}

// RenderHelp lays the groups out side by side, keys in the theme accent and
// actions dimmed, with the key column sized to its longest entry.
func RenderHelp(th *theme.Theme, groups []HelpGroup) string {
	keyStyle := lipgloss.NewStyle().Foreground(th.Accent())
	columns := make([]string, 0, len(groups))
	for _, g := range groups {
		width := 0
		for _, b := range g.Bindings {
			width = max(width, lipgloss.Width(b.Keys))
		}
		lines := []string{th.HeaderStyle().Render(g.Title)}
		for _, b := range g.Bindings {
			key := keyStyle.Width(width + 2).Render(b.Keys)
			lines = append(lines, key+th.DimStyle().Render(b.Action))
		}
		columns = append(columns, lipgloss.NewStyle().PaddingRight(4).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}
