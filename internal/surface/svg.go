package surface

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/planfind/planfind/backend-go/internal/engine"
)

// SVG is an engine.Surface that writes an SVG document. Every Clear starts a
// new document; Bytes returns the finished markup.
type SVG struct {
	buf bytes.Buffer
}

func NewSVG() *SVG {
	return &SVG{}
}

func (s *SVG) wf(format string, args ...any) {
	fmt.Fprintf(&s.buf, format, args...)
}

func (s *SVG) Clear(width, height float64) {
	s.buf.Reset()
	s.wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	s.wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height))
}

func (s *SVG) DrawPolygon(id string, points []engine.ScreenPoint, style engine.PolygonStyle) {
	if len(points) < 3 {
		return
	}

	var d strings.Builder
	for i, p := range points {
		if i == 0 {
			d.WriteString("M ")
		} else {
			d.WriteString(" L ")
		}
		d.WriteString(formatFloat(p.X))
		d.WriteByte(' ')
		d.WriteString(formatFloat(p.Y))
	}
	d.WriteString(" Z")

	fill, fillOpacity := svgPaint(style.Fill)
	stroke, strokeOpacity := svgPaint(style.Stroke)
	s.wf("  <path data-room-id=\"%s\" d=\"%s\" fill=\"%s\" fill-opacity=\"%s\" stroke=\"%s\" stroke-opacity=\"%s\" stroke-width=\"%s\" stroke-linejoin=\"miter\"/>\n",
		html.EscapeString(id), d.String(), fill, fillOpacity, stroke, strokeOpacity, formatFloat(style.StrokeWidth))
}

func (s *SVG) DrawLabel(text string, x, y float64, style engine.LabelStyle) {
	fill, opacity := svgPaint(style.Color)
	s.wf("  <text x=\"%s\" y=\"%s\" text-anchor=\"middle\" dominant-baseline=\"middle\" font-size=\"%s\" font-weight=\"600\" fill=\"%s\" fill-opacity=\"%s\">%s</text>\n",
		formatFloat(x), formatFloat(y), formatFloat(style.Size), fill, opacity, html.EscapeString(text))
}

// Bytes returns the document drawn since the last Clear, closed.
func (s *SVG) Bytes() []byte {
	out := make([]byte, 0, s.buf.Len()+8)
	out = append(out, s.buf.Bytes()...)
	return append(out, "</svg>\n"...)
}

// WriteTo writes the finished document.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Bytes())
	return int64(n), err
}

// svgPaint splits a CSS color into an SVG 1.1 paint and its opacity.
func svgPaint(css string) (string, string) {
	c, err := ParseColor(css)
	if err != nil || c.A == 0 {
		return "none", "0"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), formatFloat(math.Round(float64(c.A)/255*1000) / 1000)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
