package engine

import (
	"encoding/json"
)

// DrawCommand is a single Canvas2D operation. JS hosts replay a list of these
// in order on a 2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "clear", "path", "text"
	ObjectID    string        `json:"objectId,omitempty"`    // room id, for hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f], set on "clear"
	Width       float64       `json:"width,omitempty"`       // logical surface size for "clear"
	Height      float64       `json:"height,omitempty"`      //
	Path        []PathCommand `json:"path,omitempty"`        // polygon outline for "path"
	Fill        string        `json:"fill,omitempty"`        // fill color
	Stroke      string        `json:"stroke,omitempty"`      // stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // stroke width
	Text        string        `json:"text,omitempty"`        // label text for "text"
	X           float64       `json:"x,omitempty"`
	Y           float64       `json:"y,omitempty"`
	Font        string        `json:"font,omitempty"`
	Align       string        `json:"textAlign,omitempty"`
	Baseline    string        `json:"textBaseline,omitempty"`
}

// PathCommand is one path segment: ["M", x, y], ["L", x, y] or ["Z"].
type PathCommand []interface{}

// CommandBuffer is a Surface that records draw commands instead of
// rasterizing. Each Clear starts a new frame.
type CommandBuffer struct {
	dpr      float64
	commands []DrawCommand
}

// NewCommandBuffer returns a buffer for a device with the given pixel ratio.
// Ratios <= 0 are treated as 1.
func NewCommandBuffer(dpr float64) *CommandBuffer {
	if dpr <= 0 {
		dpr = 1
	}
	return &CommandBuffer{dpr: dpr}
}

// SetDPR changes the pixel ratio used by the next Clear.
func (b *CommandBuffer) SetDPR(dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	b.dpr = dpr
}

func (b *CommandBuffer) DPR() float64 {
	return b.dpr
}

func (b *CommandBuffer) Clear(width, height float64) {
	b.commands = append(b.commands[:0], DrawCommand{
		Op:        "clear",
		Transform: Scale(b.dpr, b.dpr).ToSlice(),
		Width:     width,
		Height:    height,
	})
}

func (b *CommandBuffer) DrawPolygon(id string, points []ScreenPoint, style PolygonStyle) {
	path := make([]PathCommand, 0, len(points)+1)
	for i, p := range points {
		op := "L"
		if i == 0 {
			op = "M"
		}
		path = append(path, PathCommand{op, p.X, p.Y})
	}
	path = append(path, PathCommand{"Z"})

	b.commands = append(b.commands, DrawCommand{
		Op:          "path",
		ObjectID:    id,
		Path:        path,
		Fill:        style.Fill,
		Stroke:      style.Stroke,
		StrokeWidth: style.StrokeWidth,
	})
}

func (b *CommandBuffer) DrawLabel(text string, x, y float64, style LabelStyle) {
	b.commands = append(b.commands, DrawCommand{
		Op:       "text",
		Text:     text,
		X:        x,
		Y:        y,
		Fill:     style.Color,
		Font:     style.Font,
		Align:    "center",
		Baseline: "middle",
	})
}

// Commands returns a copy of the current frame's commands.
func (b *CommandBuffer) Commands() []DrawCommand {
	out := make([]DrawCommand, len(b.commands))
	copy(out, b.commands)
	return out
}

// JSON serializes the current frame.
func (b *CommandBuffer) JSON() string {
	s, _ := DrawCommandsToJSON(b.commands)
	return s
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
