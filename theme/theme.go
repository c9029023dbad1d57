package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"go-smf/midi"
)

type Theme struct {
	Palette *Palette
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Theme{Palette: palette}
}

// Load returns a theme for the palette file at path, or the built-in palette
// when path is empty
func Load(path string) (*Theme, error) {
	if path == "" {
		return New(nil), nil
	}
	p, err := LoadGPL(path)
	if err != nil {
		return nil, err
	}
	return New(p), nil
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted  = 0.25 // delta times, offsets
	RoleFG     = 0.4  // plain text
	RoleHeader = 0.5  // file header, track titles
	RoleVoice  = 0.6  // channel voice events
	RoleMeta   = 0.75 // meta events
	RoleSysEx  = 0.85 // system exclusive
	RoleMarker = 1.0  // track boundaries, cursor
)

func (t *Theme) FG() lipgloss.Color     { return t.Color(RoleFG) }
func (t *Theme) Muted() lipgloss.Color  { return t.Color(RoleMuted) }
func (t *Theme) Accent() lipgloss.Color { return t.Color(RoleHeader) }
func (t *Theme) Cursor() lipgloss.Color { return t.Color(RoleMarker) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// MessageRole returns the palette role for a decoded message
func MessageRole(m midi.Message) float64 {
	switch m.(type) {
	case midi.MidiEvent:
		return RoleVoice
	case midi.MetaEvent:
		return RoleMeta
	case midi.SysExEvent:
		return RoleSysEx
	case midi.TrackChange:
		return RoleMarker
	}
	return RoleFG
}

// MessageStyle colours a message line by its kind
func (t *Theme) MessageStyle(m midi.Message) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Color(MessageRole(m)))
}

func (t *Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent()).Bold(true)
}

func (t *Theme) DimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted())
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
