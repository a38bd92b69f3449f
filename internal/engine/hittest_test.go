package engine

import (
	"testing"

	"github.com/planfind/planfind/backend-go/internal/floorplan"
)

func TestPointInPolygon(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	// L shape with the top-right quadrant cut out
	ell := []Point{{0, 0}, {10, 0}, {10, 5}, {5, 5}, {5, 10}, {0, 10}}

	tests := []struct {
		name    string
		polygon []Point
		x, z    float64
		want    bool
	}{
		{"square interior", square, 5, 5, true},
		{"square near corner", square, 0.001, 9.999, true},
		{"square outside right", square, 11, 5, false},
		{"square outside above", square, 5, -1, false},
		{"ell arm", ell, 2, 8, true},
		{"ell notch", ell, 8, 8, false},
		{"ell base", ell, 8, 2, true},
		{"empty polygon", nil, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(tt.x, tt.z, tt.polygon); got != tt.want {
				t.Errorf("PointInPolygon(%v, %v) = %v, want %v", tt.x, tt.z, got, tt.want)
			}
		})
	}
}

func TestPickRoomLastBuiltWins(t *testing.T) {
	rooms := []RoomGeometry{
		{Room: floorplan.Room{ID: "A"}, Points: []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
		{Room: floorplan.Room{ID: "B"}, Points: []Point{{5, 5}, {15, 5}, {15, 15}, {5, 15}}},
	}

	if got := PickRoom(Point{7, 7}, rooms); got == nil || got.Room.ID != "B" {
		t.Errorf("overlap picked %v, want B", got)
	}
	if got := PickRoom(Point{2, 2}, rooms); got == nil || got.Room.ID != "A" {
		t.Errorf("A-only point picked %v, want A", got)
	}
	if got := PickRoom(Point{20, 20}, rooms); got != nil {
		t.Errorf("outside point picked %v, want nil", got.Room.ID)
	}
}

func TestHitTestRoomCenters(t *testing.T) {
	floor := floorplan.NewSampleFloorplan()[0]
	g := BuildGeometry(&floor)
	view := FitView(800, 600, g.World)

	for _, rg := range g.Rooms {
		sx, sy := view.ToScreen(rg.Center, g.World)
		hit := HitTest(sx, sy, view, g.World, g.Rooms)
		if hit == nil || hit.Room.ID != rg.Room.ID {
			t.Errorf("center of %s hit %v", rg.Room.Title, hit)
		}
		// same pixel, same answer
		if again := HitTest(sx, sy, view, g.World, g.Rooms); again != hit {
			t.Errorf("hit test not deterministic for %s", rg.Room.Title)
		}
	}

	if hit := HitTest(-50, -50, view, g.World, g.Rooms); hit != nil {
		t.Errorf("pixel outside the plan hit %s", hit.Room.Title)
	}
}

func TestHitTestInvalidView(t *testing.T) {
	g := BuildGeometry(squareFloor())
	if hit := HitTest(5, 5, ViewTransform{}, g.World, g.Rooms); hit != nil {
		t.Errorf("zero-scale view hit %s", hit.Room.ID)
	}
}

func TestNewHitResult(t *testing.T) {
	if got := NewHitResult(nil); got != (HitResult{}) {
		t.Errorf("nil result = %+v", got)
	}

	g := BuildGeometry(squareFloor())
	got := NewHitResult(&g.Rooms[0])
	want := HitResult{RoomID: "r1", Title: "r1", Label: "침실"}
	if got != want {
		t.Errorf("NewHitResult = %+v, want %+v", got, want)
	}
}
