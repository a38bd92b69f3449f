package engine

import (
	"reflect"
	"testing"

	"github.com/planfind/planfind/backend-go/internal/floorplan"
)

type recorder struct {
	hovers    []string
	activated []*floorplan.Room
	floors    []*floorplan.Floor
	frames    int
}

func newTestController(t *testing.T) (*Controller, *CommandBuffer, *recorder) {
	t.Helper()
	buf := NewCommandBuffer(1)
	c := NewController(buf, DefaultStyle())
	rec := &recorder{}
	c.SetCallbacks(Callbacks{
		OnRoomHoverChange: func(id string) { rec.hovers = append(rec.hovers, id) },
		OnRoomActivate:    func(r *floorplan.Room) { rec.activated = append(rec.activated, r) },
		OnFloorActivate:   func(f *floorplan.Floor) { rec.floors = append(rec.floors, f) },
		OnFrame:           func(Frame) { rec.frames++ },
	})
	return c, buf, rec
}

// center returns the screen position of a room's centroid.
func center(t *testing.T, c *Controller, roomID string) (float64, float64) {
	t.Helper()
	rg := c.Geometry().Room(roomID)
	if rg == nil {
		t.Fatalf("room %s not in geometry", roomID)
	}
	return c.View().ToScreen(rg.Center, c.Geometry().World)
}

func TestControllerHoverRedrawsOncePerChange(t *testing.T) {
	c, _, rec := newTestController(t)
	c.LoadFloor(threeRoomFloor())
	c.Resize(300, 100)
	base := c.Redraws()

	ax, ay := center(t, c, "A")
	c.PointerMove(ax, ay)
	c.PointerMove(ax+1, ay)
	if got := c.Redraws() - base; got != 1 {
		t.Errorf("two moves inside A caused %d redraws, want 1", got)
	}
	if c.HoveredRoomID() != "A" || c.Cursor() != "pointer" {
		t.Errorf("hover = %q cursor = %q", c.HoveredRoomID(), c.Cursor())
	}

	bx, by := center(t, c, "B")
	c.PointerMove(bx, by)
	c.PointerMove(-10, -10)
	c.PointerLeave()

	if got := c.Redraws() - base; got != 3 {
		t.Errorf("redraws = %d, want 3", got)
	}
	if want := []string{"A", "B", ""}; !reflect.DeepEqual(rec.hovers, want) {
		t.Errorf("hover callbacks = %v, want %v", rec.hovers, want)
	}
	if c.Cursor() != "default" {
		t.Errorf("cursor = %q, want default", c.Cursor())
	}
	if rec.frames != c.Redraws() {
		t.Errorf("OnFrame fired %d times for %d redraws", rec.frames, c.Redraws())
	}
}

func TestControllerFloorSwitchResetsHover(t *testing.T) {
	c, _, rec := newTestController(t)
	c.Resize(300, 100)
	c.LoadFloor(threeRoomFloor())

	x, y := center(t, c, "A")
	c.PointerMove(x, y)
	c.SetSelectedRoom("B")
	if c.HoveredRoomID() != "A" {
		t.Fatalf("hover = %q, want A", c.HoveredRoomID())
	}

	before := c.Redraws()
	c.LoadFloor(squareFloor())

	if c.HoveredRoomID() != "" {
		t.Errorf("hover leaked across floors: %q", c.HoveredRoomID())
	}
	if c.SelectedRoomID() != "" {
		t.Errorf("selection leaked across floors: %q", c.SelectedRoomID())
	}
	if got := c.Redraws() - before; got != 1 {
		t.Errorf("floor switch caused %d redraws, want 1", got)
	}
	if last := rec.hovers[len(rec.hovers)-1]; last != "" {
		t.Errorf("last hover callback = %q, want \"\"", last)
	}
	if c.FloorID() != "f1" {
		t.Errorf("floor id = %q", c.FloorID())
	}
}

func TestControllerReloadSameFloorKeepsHover(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Resize(300, 100)
	c.LoadFloor(threeRoomFloor())
	x, y := center(t, c, "B")
	c.PointerMove(x, y)
	c.SetSelectedRoom("C")

	c.LoadFloor(threeRoomFloor())
	if c.HoveredRoomID() != "B" || c.SelectedRoomID() != "C" {
		t.Errorf("reload changed state: hover %q selected %q", c.HoveredRoomID(), c.SelectedRoomID())
	}

	// B disappears from the data
	f := threeRoomFloor()
	f.Rooms = f.Rooms[:1]
	c.LoadFloor(f)
	if c.HoveredRoomID() != "" {
		t.Errorf("hover on removed room kept: %q", c.HoveredRoomID())
	}
}

func TestControllerSelectionIsHostDriven(t *testing.T) {
	c, buf, rec := newTestController(t)
	c.Resize(300, 100)
	c.LoadFloor(threeRoomFloor())

	before := c.Redraws()
	c.SetSelectedRoom("B")
	c.SetSelectedRoom("B")
	if got := c.Redraws() - before; got != 1 {
		t.Errorf("selecting twice caused %d redraws, want 1", got)
	}

	ps := paths(buf.Commands())
	if ps[len(ps)-1].ObjectID != "B" || ps[len(ps)-1].StrokeWidth != DefaultStyle().StrokeWidth.Selected {
		t.Errorf("selected room not drawn on top: %+v", ps[len(ps)-1])
	}

	x, y := center(t, c, "A")
	before = c.Redraws()
	got := c.Click(x, y)
	if got == nil || got.ID != "A" {
		t.Fatalf("Click returned %v, want A", got)
	}
	if len(rec.activated) != 1 || rec.activated[0].ID != "A" {
		t.Errorf("OnRoomActivate = %v", rec.activated)
	}
	if c.SelectedRoomID() != "B" {
		t.Errorf("click changed selection to %q", c.SelectedRoomID())
	}
	if c.Redraws() != before {
		t.Error("click redrew the surface")
	}

	if miss := c.Click(-5, -5); miss != nil {
		t.Errorf("click outside returned %v", miss)
	}
	if len(rec.activated) != 2 || rec.activated[1] != nil {
		t.Errorf("miss not reported as nil: %v", rec.activated)
	}
}

func TestControllerResizeAlwaysRedraws(t *testing.T) {
	c, _, _ := newTestController(t)
	c.LoadFloor(threeRoomFloor())
	before := c.Redraws()

	c.Resize(300, 100)
	c.Resize(300, 100)
	if got := c.Redraws() - before; got != 2 {
		t.Errorf("two resizes caused %d redraws, want 2", got)
	}
	if c.View().Scale != 10 {
		t.Errorf("scale = %v, want 10", c.View().Scale)
	}

	c.Resize(600, 200)
	if c.View().Scale != 20 {
		t.Errorf("scale after resize = %v, want 20", c.View().Scale)
	}
}

func TestControllerUnsized(t *testing.T) {
	c, buf, rec := newTestController(t)
	c.LoadFloor(threeRoomFloor())

	if c.HitTest(1, 1) != nil {
		t.Error("unsized controller hit a room")
	}
	c.PointerMove(1, 1)
	if c.HoveredRoomID() != "" {
		t.Errorf("unsized hover = %q", c.HoveredRoomID())
	}
	if c.Click(1, 1) != nil || rec.activated[0] != nil {
		t.Error("unsized click resolved a room")
	}
	if n := len(buf.Commands()); n != 1 {
		t.Errorf("unsized frame has %d commands, want only clear", n)
	}

	c.Resize(-1, 100)
	if c.View().Valid() {
		t.Error("negative width produced a usable view")
	}
}

func TestControllerEmptyFloor(t *testing.T) {
	c, buf, _ := newTestController(t)
	c.Resize(300, 100)
	c.LoadFloor(&floorplan.Floor{ID: "empty"})

	if c.Geometry() != nil || c.HasRooms() {
		t.Error("empty floor should have no geometry")
	}
	if c.HitTest(10, 10) != nil {
		t.Error("empty floor hit a room")
	}
	if n := len(buf.Commands()); n != 1 {
		t.Errorf("empty floor drew %d commands", n)
	}

	c.LoadFloor(nil)
	if c.FloorID() != "" {
		t.Errorf("nil floor id = %q", c.FloorID())
	}
}

func TestControllerActivateFloor(t *testing.T) {
	c, _, rec := newTestController(t)
	f := threeRoomFloor()
	c.LoadFloor(f)
	c.ActivateFloor()

	if len(rec.floors) != 1 || rec.floors[0] != f {
		t.Errorf("OnFloorActivate = %v", rec.floors)
	}
}

func TestControllerWithoutCallbacksOrSurface(t *testing.T) {
	c := NewController(nil, DefaultStyle())
	c.LoadFloor(threeRoomFloor())
	c.Resize(300, 100)
	c.PointerMove(50, 50)
	c.Click(50, 50)
	c.ActivateFloor()
	c.PointerLeave()

	if c.Redraws() != 4 {
		t.Errorf("redraws = %d, want 4", c.Redraws())
	}
}

func TestControllerSetStyle(t *testing.T) {
	c, buf, _ := newTestController(t)
	c.LoadFloor(threeRoomFloor())
	c.Resize(300, 100)
	before := c.Redraws()

	style := DefaultStyle()
	style.NeutralFill = "#123456"
	c.SetStyle(style)

	if got := c.Redraws() - before; got != 1 {
		t.Errorf("SetStyle caused %d redraws, want 1", got)
	}
	if c.Style().NeutralFill != "#123456" {
		t.Errorf("style not replaced: %+v", c.Style())
	}
	cmds := buf.Commands()
	if len(cmds) < 2 || cmds[1].Fill != "#123456" {
		t.Errorf("frame after SetStyle = %+v", cmds)
	}
}

func TestControllerScreenToWorld(t *testing.T) {
	c, _, _ := newTestController(t)
	c.LoadFloor(threeRoomFloor())
	if _, ok := c.ScreenToWorld(10, 10); ok {
		t.Error("unsized controller mapped a point")
	}
	if _, ok := c.Frame().WorldToScreen(); ok {
		t.Error("unsized frame has a matrix")
	}

	c.Resize(300, 100)
	for _, pt := range [][2]float64{{150, 50}, {0, 0}, {299, 99}, {-40, 120}} {
		got, ok := c.ScreenToWorld(pt[0], pt[1])
		if !ok {
			t.Fatalf("ScreenToWorld(%v) not ok", pt)
		}
		want := c.View().ToWorld(pt[0], pt[1], c.Geometry().World)
		if !almostEqual(got.X, want.X) || !almostEqual(got.Z, want.Z) {
			t.Errorf("ScreenToWorld(%v) = %v, want %v", pt, got, want)
		}
	}
	if p, _ := c.ScreenToWorld(150, 50); !almostEqual(p.X, 15) || !almostEqual(p.Z, 5) {
		t.Errorf("viewport centre maps to %v, want (15, 5)", p)
	}

	m, ok := c.Frame().WorldToScreen()
	if !ok || m != (Matrix2D{10, 0, 0, 10, 0, 0}) {
		t.Errorf("WorldToScreen = %v/%v", m, ok)
	}

	c.LoadFloor(nil)
	if _, ok := c.ScreenToWorld(150, 50); ok {
		t.Error("empty controller mapped a point")
	}
}
