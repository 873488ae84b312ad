package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

var ErrNoData = errors.New("export: nothing to draw")

// Palette cycles through series that carry no colour of their own.
var Palette = []string{"#00ff87", "#5fafff", "#ff5f87", "#ffd75f", "#af87ff", "#5fd7d7"}

// Series is one polyline. X and Y must have equal length.
type Series struct {
	Label string
	X, Y  []float64
	Color string
}

type Chart struct {
	Title         string
	Width, Height int
	Series        []Series
}

type bounds struct{ minX, maxX, minY, maxY float64 }

func (b *bounds) pad() {
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	b.minX -= rx * 0.05
	b.maxX += rx * 0.05
	b.minY -= ry * 0.1
	b.maxY += ry * 0.1
}

func (c *Chart) bounds() (bounds, error) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	points := 0
	for _, s := range c.Series {
		if len(s.X) != len(s.Y) {
			return b, fmt.Errorf("export: series %q has %d x and %d y values", s.Label, len(s.X), len(s.Y))
		}
		for i := range s.X {
			x, y := s.X[i], s.Y[i]
			if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
				continue
			}
			b.minX, b.maxX = min(b.minX, x), max(b.maxX, x)
			b.minY, b.maxY = min(b.minY, y), max(b.maxY, y)
			points++
		}
	}
	if points < 2 {
		return b, ErrNoData
	}
	b.pad()
	return b, nil
}

// Render writes the chart as a standalone SVG document. Non-finite points
// break the line instead of being drawn.
func (c *Chart) Render(w io.Writer) error {
	width, height := c.Width, c.Height
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 400
	}
	b, err := c.bounds()
	if err != nil {
		return err
	}

	sx := func(x float64) float64 { return (x - b.minX) / (b.maxX - b.minX) * float64(width) }
	sy := func(y float64) float64 { return float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if b.minY < 0 && b.maxY > 0 {
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333333" stroke-width="1"/>
`, sy(0), width, sy(0))
	}

	for i, s := range c.Series {
		color := s.Color
		if color == "" {
			color = Palette[i%len(Palette)]
		}
		var d strings.Builder
		pen := false
		for j := range s.X {
			x, y := s.X[j], s.Y[j]
			if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
				pen = false
				continue
			}
			cmd := "L"
			if !pen {
				cmd = "M"
				pen = true
			}
			fmt.Fprintf(&d, "%s%.1f,%.1f ", cmd, sx(x), sy(y))
		}
		if d.Len() == 0 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, color, strings.TrimSpace(d.String()))
		if s.Label != "" {
			fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 36+14*i, color, escape(s.Label))
		}
	}

	if c.Title != "" {
		fmt.Fprintf(&sb, `<text x="8" y="18" fill="#dddddd" font-family="monospace" font-size="14">%s</text>
`, escape(c.Title))
	}
	sb.WriteString("</svg>\n")

	_, err = io.WriteString(w, sb.String())
	return err
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}
