package engine

import (
	"github.com/planfind/planfind/backend-go/internal/floorplan"
)

// Callbacks notify the host of interaction results. Any of them may be nil.
type Callbacks struct {
	// OnRoomHoverChange fires when the hovered room changes; "" means none.
	OnRoomHoverChange func(roomID string)
	// OnRoomActivate reports a click. room is nil when the click missed.
	// The controller does not select the room itself.
	OnRoomActivate func(room *floorplan.Room)
	// OnFloorActivate reports that the host asked to confirm the whole floor.
	OnFloorActivate func(floor *floorplan.Floor)
	// OnFrame fires after every redraw.
	OnFrame func(frame Frame)
}

// Controller owns the interaction state of one floor view. Hover is owned
// here; selection is driven by the host. Every state change redraws the
// surface exactly once. A Controller is not safe for concurrent use.
type Controller struct {
	surface Surface
	style   Style
	cb      Callbacks

	floor    *floorplan.Floor
	geometry *Geometry

	width, height float64
	view          ViewTransform

	hoveredID  string
	selectedID string

	redraws int
}

// NewController creates a controller drawing onto surface.
func NewController(surface Surface, style Style) *Controller {
	return &Controller{
		surface: surface,
		style:   style,
	}
}

// SetCallbacks replaces the host callbacks.
func (c *Controller) SetCallbacks(cb Callbacks) {
	c.cb = cb
}

// --- Commands (host → controller) ---

// LoadFloor replaces the floor and rebuilds all derived state. Switching to a
// floor with a different id clears both hover and selection; reloading the
// same floor keeps them only while the rooms still exist.
func (c *Controller) LoadFloor(floor *floorplan.Floor) {
	prevID := c.FloorID()

	c.floor = floor
	c.geometry = BuildGeometry(floor)
	c.refit()

	hovered := c.hoveredID
	if c.FloorID() != prevID {
		hovered = ""
		c.selectedID = ""
	} else if c.geometry.Room(hovered) == nil {
		hovered = ""
	}

	hoverChanged := hovered != c.hoveredID
	c.hoveredID = hovered

	c.redraw()
	if hoverChanged {
		c.notifyHover()
	}
}

// SetSelectedRoom sets the host-driven selected room; "" clears it.
func (c *Controller) SetSelectedRoom(roomID string) {
	if roomID == c.selectedID {
		return
	}
	c.selectedID = roomID
	c.redraw()
}

// Resize sets the viewport size in logical pixels. A non-positive size leaves
// the controller unsized: nothing is drawn and nothing can be hit.
func (c *Controller) Resize(width, height float64) {
	c.width = width
	c.height = height
	c.refit()
	c.redraw()
}

// PointerMove updates hover from a viewport position.
func (c *Controller) PointerMove(x, y float64) {
	id := ""
	if rg := c.HitTest(x, y); rg != nil {
		id = rg.Room.ID
	}
	c.setHover(id)
}

// PointerLeave clears hover.
func (c *Controller) PointerLeave() {
	c.setHover("")
}

// Click hit tests a viewport position and reports the room through
// OnRoomActivate. It returns the same room.
func (c *Controller) Click(x, y float64) *floorplan.Room {
	var room *floorplan.Room
	if rg := c.HitTest(x, y); rg != nil {
		r := rg.Room
		room = &r
	}
	if c.cb.OnRoomActivate != nil {
		c.cb.OnRoomActivate(room)
	}
	return room
}

// ActivateFloor reports the current floor through OnFloorActivate.
func (c *Controller) ActivateFloor() {
	if c.cb.OnFloorActivate != nil {
		c.cb.OnFloorActivate(c.floor)
	}
}

// SetStyle replaces the style and redraws.
func (c *Controller) SetStyle(style Style) {
	c.style = style
	c.redraw()
}

// Redraw renders the current frame again without changing state.
func (c *Controller) Redraw() {
	c.redraw()
}

// --- Queries (host ← controller) ---

// HitTest resolves a viewport position against the current floor.
func (c *Controller) HitTest(x, y float64) *RoomGeometry {
	if c.geometry == nil || !c.sized() {
		return nil
	}
	return HitTest(x, y, c.view, c.geometry.World, c.geometry.Rooms)
}

// Frame returns the inputs of the next redraw.
func (c *Controller) Frame() Frame {
	return Frame{
		Width:      c.width,
		Height:     c.height,
		Geometry:   c.geometry,
		View:       c.view,
		HoveredID:  c.hoveredID,
		SelectedID: c.selectedID,
	}
}

// ScreenToWorld maps a viewport position back onto the floor. ok is false
// while the controller is unsized or has nothing to show.
func (c *Controller) ScreenToWorld(x, y float64) (Point, bool) {
	m, ok := c.Frame().WorldToScreen()
	if !ok || m.Determinant() == 0 {
		return Point{}, false
	}
	wx, wz := m.Invert().TransformPoint(x, y)
	return Point{X: wx, Z: wz}, true
}

func (c *Controller) Floor() *floorplan.Floor { return c.floor }
func (c *Controller) Geometry() *Geometry     { return c.geometry }
func (c *Controller) View() ViewTransform     { return c.view }
func (c *Controller) HoveredRoomID() string   { return c.hoveredID }
func (c *Controller) SelectedRoomID() string  { return c.selectedID }
func (c *Controller) Style() Style            { return c.style }

// Redraws counts frames rendered since creation.
func (c *Controller) Redraws() int { return c.redraws }

// FloorID returns the loaded floor's id, or "".
func (c *Controller) FloorID() string {
	if c.floor == nil {
		return ""
	}
	return c.floor.ID
}

// HasRooms reports whether the floor produced any drawable room. Hosts show a
// "no data" placeholder otherwise.
func (c *Controller) HasRooms() bool {
	return c.geometry != nil && len(c.geometry.Rooms) > 0
}

// Cursor returns the CSS cursor for the current hover state.
func (c *Controller) Cursor() string {
	if c.hoveredID != "" {
		return "pointer"
	}
	return "default"
}

// --- internals ---

func (c *Controller) sized() bool {
	return c.width > 0 && c.height > 0
}

func (c *Controller) refit() {
	if c.geometry == nil || !c.sized() {
		c.view = ViewTransform{}
		return
	}
	c.view = FitView(c.width, c.height, c.geometry.World)
}

func (c *Controller) setHover(id string) {
	if id == c.hoveredID {
		return
	}
	c.hoveredID = id
	c.redraw()
	c.notifyHover()
}

func (c *Controller) notifyHover() {
	if c.cb.OnRoomHoverChange != nil {
		c.cb.OnRoomHoverChange(c.hoveredID)
	}
}

func (c *Controller) redraw() {
	frame := c.Frame()
	if c.surface != nil {
		RenderFrame(c.surface, frame, c.style)
	}
	c.redraws++
	if c.cb.OnFrame != nil {
		c.cb.OnFrame(frame)
	}
}
