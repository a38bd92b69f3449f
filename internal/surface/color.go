package surface

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor understands the CSS color forms used by styles: #rgb, #rgba,
// #rrggbb, #rrggbbaa, rgb(), rgba(), "transparent" and SVG color keywords.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return color.NRGBA{}, fmt.Errorf("empty color")
	case s == "transparent" || s == "none":
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		return parseFunc(s)
	}

	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
}

func parseHex(h string) (color.NRGBA, error) {
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, ch := range h {
			b.WriteRune(ch)
			b.WriteRune(ch)
		}
		h = b.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("bad hex color #%s", h)
	}
	if len(h) == 6 {
		h += "ff"
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad hex color #%s: %w", h, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseFunc(s string) (color.NRGBA, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, fmt.Errorf("bad color %q", s)
	}

	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("bad color %q: want 3 or 4 components", s)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad color %q: %w", s, err)
		}
		ch[i] = uint8(math.Round(clamp(v, 0, 255)))
	}

	alpha := 1.0
	if len(parts) == 4 {
		a := strings.TrimSpace(parts[3])
		pct := strings.HasSuffix(a, "%")
		v, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad color %q: %w", s, err)
		}
		if pct {
			v /= 100
		}
		alpha = clamp(v, 0, 1)
	}

	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(math.Round(alpha * 255))}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// colorOf parses s, falling back to transparent.
func colorOf(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return color.NRGBA{}
	}
	return c
}
