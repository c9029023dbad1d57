// Package widgets renders small lipgloss building blocks shared by the
// viewer and the command line tool.
package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-smf/midi"
	"go-smf/theme"
)

// RenderCell renders a single colored block
func RenderCell(color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render("■")
}

// RenderStrip renders a row of blocks, one per value, colored by palette
// position (0-1)
func RenderStrip(th *theme.Theme, values []float64) string {
	var out strings.Builder
	for _, v := range values {
		out.WriteString(RenderCell(th.Color(v)))
	}
	return out.String()
}

// Activity splits a track into n equal spans of ticks and returns the number
// of sounding note-ons in each, scaled so the busiest span is 1.
func Activity(track []midi.Message, n int) []float64 {
	if n <= 0 {
		return nil
	}
	values := make([]float64, n)

	var tick uint64
	var hits []uint64
	for _, m := range track {
		tick += uint64(m.Delta())
		if ev, ok := m.(midi.MidiEvent); ok {
			if on, ok := ev.Event.(midi.NoteOn); ok && on.Velocity > 0 {
				hits = append(hits, tick)
			}
		}
	}
	length := tick + 1

	var peak float64
	for _, h := range hits {
		i := int(h * uint64(n) / length)
		values[i]++
		peak = max(peak, values[i])
	}
	if peak > 0 {
		for i := range values {
			values[i] /= peak
		}
	}
	return values
}

// RenderActivity renders the Activity of a track as a strip
func RenderActivity(th *theme.Theme, track []midi.Message, n int) string {
	return RenderStrip(th, Activity(track, n))
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color lipgloss.Color, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderCell(color), name, desc)
}

// Legend lists the colors the theme uses for each kind of message
func Legend(th *theme.Theme) string {
	items := []struct {
		role       float64
		name, desc string
	}{
		{theme.RoleVoice, "voice", "channel voice events"},
		{theme.RoleMeta, "meta", "tempo, text and other meta events"},
		{theme.RoleSysEx, "sysex", "system exclusive"},
		{theme.RoleMarker, "marker", "track boundaries"},
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, RenderLegendItem(th.Color(it.role), it.name, it.desc))
	}
	return strings.Join(lines, "\n")
}
