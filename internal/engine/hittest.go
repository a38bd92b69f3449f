package engine

// edgeEpsilon replaces a zero edge height in the crossing test.
const edgeEpsilon = 1e-12

// PointInPolygon reports whether (px, pz) is inside the polygon using the
// even-odd ray casting rule.
func PointInPolygon(px, pz float64, polygon []Point) bool {
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		xi, zi := polygon[i].X, polygon[i].Z
		xj, zj := polygon[j].X, polygon[j].Z

		dz := zj - zi
		if dz == 0 {
			dz = edgeEpsilon
		}
		if (zi > pz) != (zj > pz) && px < (xj-xi)*(pz-zi)/dz+xi {
			inside = !inside
		}
	}
	return inside
}

// PickRoom returns the topmost room containing p. Rooms are tested in
// reverse order, so the last-built room wins where polygons overlap.
func PickRoom(p Point, rooms []RoomGeometry) *RoomGeometry {
	for i := len(rooms) - 1; i >= 0; i-- {
		if PointInPolygon(p.X, p.Z, rooms[i].Points) {
			return &rooms[i]
		}
	}
	return nil
}

// HitTest resolves a viewport pixel to the topmost room under it, or nil.
func HitTest(px, py float64, view ViewTransform, world WorldBounds, rooms []RoomGeometry) *RoomGeometry {
	if !view.Valid() {
		return nil
	}
	return PickRoom(view.ToWorld(px, py, world), rooms)
}

// HitResult is the JSON shape of a hit test answer. An empty RoomID means
// nothing was hit.
type HitResult struct {
	RoomID string `json:"roomId"`
	Title  string `json:"title,omitempty"`
	Label  string `json:"label,omitempty"`
}

// NewHitResult describes rg, which may be nil.
func NewHitResult(rg *RoomGeometry) HitResult {
	if rg == nil {
		return HitResult{}
	}
	label, _ := RoomLabel(rg.Room)
	return HitResult{RoomID: rg.Room.ID, Title: rg.Room.Title, Label: label}
}
