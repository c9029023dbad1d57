package theme

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
)

type RGB [3]uint8

// Palette is an ordered colour ramp. Message roles pick a position on it.
type Palette struct {
	Name   string
	Colors []RGB
}

// DefaultPalette is a dark-to-warm ramp used when no .gpl file is configured
func DefaultPalette() *Palette {
	return &Palette{
		Name: "smf",
		Colors: []RGB{
			{24, 20, 37},
			{58, 48, 92},
			{104, 86, 148},
			{170, 160, 200},
			{214, 108, 190},
			{240, 120, 130},
			{250, 160, 90},
			{252, 210, 90},
			{250, 245, 170},
		},
	}
}

// LoadGPL reads a GIMP palette file
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ParseGPL(f)
	return p, errors.Wrapf(err, "palette %s", path)
}

const gplMagic = "GIMP Palette"

// ParseGPL reads GIMP palette text. The first line must be the GIMP magic;
// colour lines start with three decimal channels and may carry a name.
func ParseGPL(r io.Reader) (*Palette, error) {
	lines := bufio.NewScanner(r)
	if !lines.Scan() || strings.TrimSpace(lines.Text()) != gplMagic {
		if err := lines.Err(); err != nil {
			return nil, err
		}
		return nil, errors.Errorf("missing %q header", gplMagic)
	}

	p := &Palette{}
	for n := 2; lines.Scan(); n++ {
		line := strings.TrimSpace(lines.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		// "Name: ...", "Columns: ..." and other keyed headers
		if line[0] < '0' || line[0] > '9' {
			if name, ok := strings.CutPrefix(line, "Name:"); ok {
				p.Name = strings.TrimSpace(name)
			}
			continue
		}
		var c [3]int
		if _, err := fmt.Sscan(line, &c[0], &c[1], &c[2]); err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
		for _, v := range c {
			if v < 0 || v > 255 {
				return nil, errors.Errorf("line %d: channel %d out of range", n, v)
			}
		}
		p.Colors = append(p.Colors, RGB{uint8(c[0]), uint8(c[1]), uint8(c[2])})
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, errors.New("no colors found")
	}
	return p, nil
}

// Lookup returns the colour at position norm (0-1) along the ramp, blending
// the two nearest entries.
func (p *Palette) Lookup(norm float64) RGB {
	last := len(p.Colors) - 1
	pos := math.Max(0, math.Min(1, norm)) * float64(last)
	i := int(pos)
	if i >= last {
		return p.Colors[last]
	}
	t := pos - float64(i)
	var out RGB
	for ch := range out {
		a, b := float64(p.Colors[i][ch]), float64(p.Colors[i+1][ch])
		out[ch] = uint8(a + (b-a)*t)
	}
	return out
}
