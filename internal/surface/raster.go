package surface

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/planfind/planfind/backend-go/internal/engine"
)

// Raster is an engine.Surface backed by an RGBA image. Logical coordinates
// are multiplied by the device pixel ratio, like a canvas whose backing store
// is dpr times its CSS size.
type Raster struct {
	dpr  float64
	face font.Face
	img  *image.RGBA
	ras  *vector.Rasterizer
}

// NewRaster creates a raster surface. A nil face falls back to the built-in
// 7x13 bitmap font, which only covers ASCII.
func NewRaster(dpr float64, face font.Face) *Raster {
	if dpr <= 0 {
		dpr = 1
	}
	if face == nil {
		face = basicfont.Face7x13
	}
	return &Raster{
		dpr:  dpr,
		face: face,
		img:  image.NewRGBA(image.Rect(0, 0, 1, 1)),
		ras:  vector.NewRasterizer(1, 1),
	}
}

// LoadFontFace loads a TrueType/OpenType font at the given pixel size. An
// empty path returns the built-in bitmap face.
func LoadFontFace(path string, size float64) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %s: %w", path, err)
	}
	return face, nil
}

// Image returns the backing image of the last frame.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// EncodePNG writes the last frame as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Raster) Clear(width, height float64) {
	pw := max(1, int(math.Round(width*r.dpr)))
	ph := max(1, int(math.Round(height*r.dpr)))

	if b := r.img.Bounds(); b.Dx() != pw || b.Dy() != ph {
		r.img = image.NewRGBA(image.Rect(0, 0, pw, ph))
		return
	}
	draw.Draw(r.img, r.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (r *Raster) DrawPolygon(_ string, points []engine.ScreenPoint, style engine.PolygonStyle) {
	if len(points) < 3 {
		return
	}

	r.reset()
	for i, p := range points {
		x, y := r.px(p.X), r.px(p.Y)
		if i == 0 {
			r.ras.MoveTo(x, y)
		} else {
			r.ras.LineTo(x, y)
		}
	}
	r.ras.ClosePath()
	r.paint(style.Fill)

	if style.StrokeWidth <= 0 {
		return
	}

	// Each edge becomes a quad with square ends so corners are covered. All
	// quads share one winding, so overlaps are painted once.
	r.reset()
	half := float32(style.StrokeWidth * r.dpr / 2)
	for i := range points {
		a, b := points[i], points[(i+1)%len(points)]
		r.strokeEdge(r.px(a.X), r.px(a.Y), r.px(b.X), r.px(b.Y), half)
	}
	r.paint(style.Stroke)
}

func (r *Raster) DrawLabel(text string, x, y float64, style engine.LabelStyle) {
	if text == "" {
		return
	}

	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(colorOf(style.Color)),
		Face: r.face,
	}
	m := r.face.Metrics()
	width := d.MeasureString(text)

	cx := fixed.Int26_6(math.Round(x * r.dpr * 64))
	cy := fixed.Int26_6(math.Round(y * r.dpr * 64))
	d.Dot = fixed.Point26_6{
		X: cx - width/2,
		Y: cy + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(text)
}

func (r *Raster) reset() {
	b := r.img.Bounds()
	r.ras.Reset(b.Dx(), b.Dy())
}

func (r *Raster) paint(css string) {
	c := colorOf(css)
	if c.A == 0 {
		return
	}
	r.ras.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{})
}

func (r *Raster) strokeEdge(x0, y0, x1, y1, half float32) {
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	// unit direction scaled to half the stroke width
	ux, uy := dx/length*half, dy/length*half
	nx, ny := -uy, ux

	sx, sy := x0-ux, y0-uy
	ex, ey := x1+ux, y1+uy

	r.ras.MoveTo(sx+nx, sy+ny)
	r.ras.LineTo(ex+nx, ey+ny)
	r.ras.LineTo(ex-nx, ey-ny)
	r.ras.LineTo(sx-nx, sy-ny)
	r.ras.ClosePath()
}

func (r *Raster) px(v float64) float32 {
	return float32(v * r.dpr)
}
