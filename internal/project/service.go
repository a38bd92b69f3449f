package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"golang.org/x/image/font"

	"github.com/planfind/planfind/backend-go/internal/engine"
	"github.com/planfind/planfind/backend-go/internal/floorplan"
	"github.com/planfind/planfind/backend-go/internal/surface"
)

var (
	ErrNotFound        = errors.New("floor not found")
	ErrInvalidViewport = errors.New("invalid viewport")
)

const (
	maxViewport = 4096
	maxDPR      = 4
)

// Source loads the floorplan of a project.
type Source interface {
	LoadFloorplan(ctx context.Context, projectID string) (floorplan.Floorplan, error)
}

type Service struct {
	source Source
	style  engine.Style

	// font faces are not safe for concurrent use
	rasterMu sync.Mutex
	face     font.Face
}

func NewService(source Source, style engine.Style, face font.Face) *Service {
	return &Service{source: source, style: style, face: face}
}

func (s *Service) Style() engine.Style {
	return s.style
}

type FloorSummary struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Area       float64 `json:"area"`
	RoomCount  int     `json:"roomCount"`
	Renderable bool    `json:"renderable"`
	// PlanArea is the summed polygon area of the renderable rooms, in
	// survey units squared.
	PlanArea float64 `json:"planArea"`
}

type RoomShape struct {
	RoomID string         `json:"roomId"`
	Title  string         `json:"title"`
	Label  string         `json:"label,omitempty"`
	Points []engine.Point `json:"points"`
	Center engine.Point   `json:"center"`
	Area   float64        `json:"area"`
}

type FloorGeometry struct {
	FloorID string             `json:"floorId"`
	World   engine.WorldBounds `json:"world"`
	Rooms   []RoomShape        `json:"rooms"`
}

// Viewport describes a render or hit request. Width and Height are logical
// pixels.
type Viewport struct {
	Width  float64
	Height float64
	DPR    float64
}

func (v Viewport) Validate() error {
	if !(v.Width > 0 && v.Width <= maxViewport) || !(v.Height > 0 && v.Height <= maxViewport) {
		return fmt.Errorf("%w: size must be within 1..%d", ErrInvalidViewport, maxViewport)
	}
	if v.DPR < 0 || v.DPR > maxDPR {
		return fmt.Errorf("%w: dpr must be within 0..%d", ErrInvalidViewport, maxDPR)
	}
	return nil
}

type RenderOptions struct {
	Viewport
	HoveredID  string
	SelectedID string
}

func (s *Service) Floorplan(ctx context.Context, projectID string) (floorplan.Floorplan, error) {
	plan, err := s.source.LoadFloorplan(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load floorplan %s: %w", projectID, err)
	}
	return plan, nil
}

func (s *Service) Floor(ctx context.Context, projectID, floorID string) (*floorplan.Floor, error) {
	plan, err := s.Floorplan(ctx, projectID)
	if err != nil {
		return nil, err
	}
	floor, ok := plan.Floor(floorID)
	if !ok {
		return nil, ErrNotFound
	}
	return floor, nil
}

func (s *Service) Floors(ctx context.Context, projectID string) ([]FloorSummary, error) {
	plan, err := s.Floorplan(ctx, projectID)
	if err != nil {
		return nil, err
	}

	summaries := make([]FloorSummary, len(plan))
	for i := range plan {
		f := &plan[i]
		g := engine.BuildGeometry(f)

		sum := FloorSummary{
			ID:         f.ID,
			Title:      f.Title,
			Area:       f.Area,
			RoomCount:  len(f.Rooms),
			Renderable: g != nil && len(g.Rooms) > 0,
		}
		if g != nil {
			for _, rg := range g.Rooms {
				sum.PlanArea += polygonArea(rg.Points)
			}
		}
		summaries[i] = sum
	}
	return summaries, nil
}

func (s *Service) Geometry(ctx context.Context, projectID, floorID string) (*FloorGeometry, error) {
	floor, err := s.Floor(ctx, projectID, floorID)
	if err != nil {
		return nil, err
	}

	out := &FloorGeometry{FloorID: floor.ID, Rooms: []RoomShape{}}
	g := engine.BuildGeometry(floor)
	if g == nil {
		return out, nil
	}

	out.World = g.World
	for _, rg := range g.Rooms {
		label, _ := engine.RoomLabel(rg.Room)
		out.Rooms = append(out.Rooms, RoomShape{
			RoomID: rg.Room.ID,
			Title:  rg.Room.Title,
			Label:  label,
			Points: rg.Points,
			Center: rg.Center,
			Area:   polygonArea(rg.Points),
		})
	}
	return out, nil
}

func (s *Service) RenderPNG(ctx context.Context, projectID, floorID string, opts RenderOptions) ([]byte, error) {
	frame, err := s.frame(ctx, projectID, floorID, opts)
	if err != nil {
		return nil, err
	}

	s.rasterMu.Lock()
	defer s.rasterMu.Unlock()

	r := surface.NewRaster(opts.DPR, s.face)
	engine.RenderFrame(r, frame, s.style)

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) RenderSVG(ctx context.Context, projectID, floorID string, opts RenderOptions) ([]byte, error) {
	frame, err := s.frame(ctx, projectID, floorID, opts)
	if err != nil {
		return nil, err
	}

	svg := surface.NewSVG()
	engine.RenderFrame(svg, frame, s.style)
	return svg.Bytes(), nil
}

// HitTest resolves a viewport pixel to a room. A miss is a HitResult with an
// empty RoomID.
func (s *Service) HitTest(ctx context.Context, projectID, floorID string, vp Viewport, x, y float64) (engine.HitResult, error) {
	frame, err := s.frame(ctx, projectID, floorID, RenderOptions{Viewport: vp})
	if err != nil {
		return engine.HitResult{}, err
	}
	if frame.Geometry == nil {
		return engine.HitResult{}, nil
	}
	rg := engine.HitTest(x, y, frame.View, frame.Geometry.World, frame.Geometry.Rooms)
	return engine.NewHitResult(rg), nil
}

// GeoJSON exports the room polygons of a floor. Coordinates are survey x and
// z; every ring is closed.
func (s *Service) GeoJSON(ctx context.Context, projectID, floorID string) (*geojson.FeatureCollection, error) {
	floor, err := s.Floor(ctx, projectID, floorID)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	g := engine.BuildGeometry(floor)
	if g == nil {
		return fc, nil
	}

	for _, rg := range g.Rooms {
		poly := toPolygon(rg.Points)
		f := geojson.NewFeature(poly)
		f.ID = rg.Room.ID
		f.Properties["floorId"] = floor.ID
		f.Properties["title"] = rg.Room.Title
		f.Properties["area"] = math.Abs(planar.Area(poly))
		f.Properties["center"] = []float64{rg.Center.X, rg.Center.Z}
		if label, ok := engine.RoomLabel(rg.Room); ok {
			f.Properties["label"] = label
		}
		fc.Append(f)
	}
	fc.BBox = geojson.NewBBox(orb.Bound{
		Min: orb.Point{g.World.MinX, g.World.MinZ},
		Max: orb.Point{g.World.MaxX, g.World.MaxZ},
	})
	return fc, nil
}

func (s *Service) frame(ctx context.Context, projectID, floorID string, opts RenderOptions) (engine.Frame, error) {
	if err := opts.Validate(); err != nil {
		return engine.Frame{}, err
	}

	floor, err := s.Floor(ctx, projectID, floorID)
	if err != nil {
		return engine.Frame{}, err
	}

	frame := engine.Frame{
		Width:      opts.Width,
		Height:     opts.Height,
		Geometry:   engine.BuildGeometry(floor),
		HoveredID:  opts.HoveredID,
		SelectedID: opts.SelectedID,
	}
	if frame.Geometry != nil {
		frame.View = engine.FitView(opts.Width, opts.Height, frame.Geometry.World)
	}
	return frame, nil
}

func toPolygon(points []engine.Point) orb.Polygon {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, orb.Point{p.X, p.Z})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

func polygonArea(points []engine.Point) float64 {
	return math.Abs(planar.Area(toPolygon(points)))
}
