package engine

import (
	"github.com/planfind/planfind/backend-go/internal/floorplan"
)

// Point is a position on the horizontal survey plane. Survey y (height) is
// never used by the 2D engine.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// WorldBounds is the axis-aligned box around every valid point of a floor.
type WorldBounds struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinZ float64 `json:"minZ"`
	MaxZ float64 `json:"maxZ"`
}

// Contains reports whether p lies inside the bounds, edges included.
func (b WorldBounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Z >= b.MinZ && p.Z <= b.MaxZ
}

// Center returns the midpoint of the bounds.
func (b WorldBounds) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Z: (b.MinZ + b.MaxZ) / 2}
}

// RoomGeometry is a room's cleaned polygon. Points is an open ring of at
// least three points; Center is their arithmetic mean.
type RoomGeometry struct {
	Room   floorplan.Room `json:"room"`
	Points []Point        `json:"points"`
	Center Point          `json:"center"`
}

// Geometry is the derived, immutable view of one floor.
type Geometry struct {
	World WorldBounds    `json:"world"`
	Rooms []RoomGeometry `json:"rooms"`
}

// Room returns the room geometry with the given id, or nil.
func (g *Geometry) Room(id string) *RoomGeometry {
	if g == nil || id == "" {
		return nil
	}
	for i := range g.Rooms {
		if g.Rooms[i].Room.ID == id {
			return &g.Rooms[i]
		}
	}
	return nil
}

// BuildGeometry resolves every room of the floor into a polygon and computes
// the world bounds. It returns nil when the floor has no valid point at all.
//
// Inline corners that carry an id are added to the corner table while rooms
// are walked, so a later room may reference a corner that only an earlier
// room defined.
func BuildGeometry(floor *floorplan.Floor) *Geometry {
	if floor == nil {
		return nil
	}

	var acc boundsAccumulator
	table := make(map[string]Point, len(floor.Corners))

	for _, c := range floor.Corners {
		if !c.Valid() {
			continue
		}
		p := Point{X: c.Position.X, Z: c.Position.Z}
		if c.ID != "" {
			table[c.ID] = p
		}
		acc.add(p)
	}

	rooms := make([]RoomGeometry, 0, len(floor.Rooms))
	for _, room := range floor.Rooms {
		raw := make([]Point, 0, len(room.Corners))
		for _, ref := range room.Corners {
			if p, ok := resolveCorner(ref, table); ok {
				raw = append(raw, p)
			}
		}

		points := CleanRing(raw)
		if len(points) < 3 {
			continue
		}

		for _, p := range points {
			acc.add(p)
		}
		rooms = append(rooms, RoomGeometry{
			Room:   room,
			Points: points,
			Center: Centroid(points),
		})
	}

	if acc.n == 0 {
		return nil
	}
	return &Geometry{World: acc.bounds, Rooms: rooms}
}

// resolveCorner turns a reference into a point. Dangling ids and invalid
// inline corners resolve to nothing.
func resolveCorner(ref floorplan.CornerRef, table map[string]Point) (Point, bool) {
	if id, ok := ref.RefID(); ok {
		p, found := table[id]
		return p, found
	}

	c, ok := ref.Inline()
	if !ok || !c.Valid() {
		return Point{}, false
	}
	p := Point{X: c.Position.X, Z: c.Position.Z}
	if c.ID != "" {
		table[c.ID] = p
	}
	return p, true
}

// CleanRing collapses consecutive duplicate points and drops an explicit
// closing point. Equality is exact.
func CleanRing(points []Point) []Point {
	cleaned := make([]Point, 0, len(points))
	for _, p := range points {
		if n := len(cleaned); n > 0 && cleaned[n-1] == p {
			continue
		}
		cleaned = append(cleaned, p)
	}

	if n := len(cleaned); n > 2 && cleaned[0] == cleaned[n-1] {
		cleaned = cleaned[:n-1]
	}
	return cleaned
}

// Centroid returns the arithmetic mean of the points (not the area centroid).
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sx, sz float64
	for _, p := range points {
		sx += p.X
		sz += p.Z
	}
	n := float64(len(points))
	return Point{X: sx / n, Z: sz / n}
}

type boundsAccumulator struct {
	bounds WorldBounds
	n      int
}

func (a *boundsAccumulator) add(p Point) {
	if a.n == 0 {
		a.bounds = WorldBounds{MinX: p.X, MaxX: p.X, MinZ: p.Z, MaxZ: p.Z}
	} else {
		a.bounds.MinX = min(a.bounds.MinX, p.X)
		a.bounds.MaxX = max(a.bounds.MaxX, p.X)
		a.bounds.MinZ = min(a.bounds.MinZ, p.Z)
		a.bounds.MaxZ = max(a.bounds.MaxZ, p.Z)
	}
	a.n++
}
