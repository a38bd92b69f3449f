package engine

// ScreenPoint is a position in viewport pixels.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PolygonStyle struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
}

type LabelStyle struct {
	Color string
	Font  string
	Size  float64
}

// Surface is a canvas-like drawing target. Coordinates are logical pixels;
// implementations apply their own device pixel ratio.
type Surface interface {
	// Clear resets the whole surface to a width x height transparent frame.
	Clear(width, height float64)
	// DrawPolygon fills then strokes a closed polygon.
	DrawPolygon(id string, points []ScreenPoint, style PolygonStyle)
	// DrawLabel draws text centered on (x, y).
	DrawLabel(text string, x, y float64, style LabelStyle)
}

// Frame is everything a redraw depends on. Rendering the same Frame twice
// produces the same surface contents.
type Frame struct {
	Width      float64
	Height     float64
	Geometry   *Geometry
	View       ViewTransform
	HoveredID  string
	SelectedID string
}

// WorldToScreen returns the matrix that maps world (x, z) to viewport pixels.
// ok is false when the frame has no fitted floor.
func (f Frame) WorldToScreen() (m Matrix2D, ok bool) {
	if f.Geometry == nil || !f.View.Valid() {
		return Identity(), false
	}
	return f.View.Matrix(f.Geometry.World), true
}

// RenderFrame clears the surface and draws the floor in three tiers: neutral
// rooms, then the selected room, then the hovered room, with every label on
// top. An empty geometry or an unusable transform leaves the surface clear.
func RenderFrame(s Surface, f Frame, style Style) {
	s.Clear(f.Width, f.Height)

	g := f.Geometry
	if g == nil || !f.View.Valid() {
		return
	}

	for i := range g.Rooms {
		id := g.Rooms[i].Room.ID
		if id != "" && (id == f.HoveredID || id == f.SelectedID) {
			continue
		}
		drawRoom(s, &g.Rooms[i], f, style.polygonStyle(false, false))
	}

	if selected := g.Room(f.SelectedID); selected != nil {
		drawRoom(s, selected, f, style.polygonStyle(f.HoveredID == f.SelectedID, true))
	}

	if f.HoveredID != f.SelectedID {
		if hovered := g.Room(f.HoveredID); hovered != nil {
			drawRoom(s, hovered, f, style.polygonStyle(true, false))
		}
	}

	ls := style.labelStyle()
	for i := range g.Rooms {
		label, ok := RoomLabel(g.Rooms[i].Room)
		if !ok {
			continue
		}
		x, y := f.View.ToScreen(g.Rooms[i].Center, g.World)
		s.DrawLabel(label, x, y, ls)
	}
}

func drawRoom(s Surface, rg *RoomGeometry, f Frame, ps PolygonStyle) {
	if len(rg.Points) < 3 {
		return
	}
	pts := make([]ScreenPoint, len(rg.Points))
	for i, p := range rg.Points {
		pts[i].X, pts[i].Y = f.View.ToScreen(p, f.Geometry.World)
	}
	s.DrawPolygon(rg.Room.ID, pts, ps)
}
