package floorplan

import (
	"github.com/planfind/planfind/backend-go/internal/typeid"
)

// SampleProjectID is the project served without a remote catalog.
const SampleProjectID = "playground"

// NewSampleFloorplan returns a small two-storey plan used by the playground
// project and the WASM demo. Corner ids are fresh typeids on every call.
func NewSampleFloorplan() Floorplan {
	return Floorplan{groundFloor(), upperFloor()}
}

func groundFloor() Floor {
	c := make([]Corner, 9)
	coords := [][2]float64{
		{0, 0}, {6, 0}, {12, 0},
		{0, 5}, {6, 5}, {12, 5},
		{0, 8}, {6, 8}, {12, 8},
	}
	for i, xz := range coords {
		c[i] = newCorner(xz[0], xz[1])
	}

	return Floor{
		ID:      typeid.NewFloorID(),
		ArchiID: "1F",
		Title:   "1층",
		Area:    96,
		Corners: c,
		Rooms: []Room{
			{
				ID:      typeid.NewRoomID(),
				Title:   "거실",
				Area:    30,
				Type:    "1",
				Corners: refs(c[0], c[1], c[4], c[3]),
			},
			{
				ID:    typeid.NewRoomID(),
				Title: "주방",
				Area:  30,
				Type:  "3",
				// explicitly closed ring
				Corners: refs(c[1], c[2], c[5], c[4], c[1]),
			},
			{
				ID:      typeid.NewRoomID(),
				Title:   "침실",
				Area:    18,
				Type:    "4",
				Corners: refs(c[3], c[4], c[7], c[6]),
			},
			{
				ID:    typeid.NewRoomID(),
				Title: "욕실",
				Area:  18,
				Type:  "5",
				Corners: []CornerRef{
					Inline(newCorner(6, 5)),
					Inline(newCorner(12, 5)),
					Inline(newCorner(12, 8)),
					Inline(newCorner(6, 8)),
				},
			},
		},
	}
}

func upperFloor() Floor {
	c := make([]Corner, 8)
	coords := [][2]float64{
		{0, 0}, {6, 0}, {10, 0},
		{0, 8}, {6, 8}, {10, 8},
		{0, 10}, {10, 10},
	}
	for i, xz := range coords {
		c[i] = newCorner(xz[0], xz[1])
	}

	return Floor{
		ID:      typeid.NewFloorID(),
		ArchiID: "2F",
		Title:   "2층",
		Area:    100,
		Corners: c,
		Rooms: []Room{
			{
				ID:      typeid.NewRoomID(),
				Title:   "아이방",
				Area:    48,
				Type:    "28",
				Corners: refs(c[0], c[1], c[4], c[3]),
			},
			{
				ID:      typeid.NewRoomID(),
				Title:   "드레스룸",
				Area:    32,
				Type:    "23",
				Corners: refs(c[1], c[2], c[5], c[4]),
			},
			{
				ID:      typeid.NewRoomID(),
				Title:   "발코니",
				Area:    20,
				Type:    "14",
				Corners: refs(c[3], c[5], c[7], c[6]),
			},
		},
	}
}

func newCorner(x, z float64) Corner {
	return Corner{
		ID:       typeid.NewCornerID(),
		Position: &Position{X: x, Y: 0, Z: z},
	}
}

func refs(corners ...Corner) []CornerRef {
	out := make([]CornerRef, len(corners))
	for i, c := range corners {
		out[i] = ByID(c.ID)
	}
	return out
}
