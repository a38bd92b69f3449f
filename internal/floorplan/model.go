package floorplan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// Floorplan is the document served for a project: one entry per storey.
type Floorplan []Floor

type Floor struct {
	ID             string      `json:"id"`
	ArchiID        string      `json:"archiId,omitempty"`
	Title          string      `json:"title"`
	Area           float64     `json:"area"`
	Rooms          []Room      `json:"rooms"`
	FloorplanImage *string     `json:"floorplanImage"`
	Dimensions     *Dimensions `json:"dimensions,omitempty"`
	Corners        []Corner    `json:"corners"`
}

type Dimensions struct {
	Min Position `json:"min"`
	Max Position `json:"max"`
}

type Room struct {
	ID      string      `json:"archiId"`
	Title   string      `json:"title"`
	Area    float64     `json:"area"`
	Type    RoomType    `json:"type"`
	Corners []CornerRef `json:"corners"`
}

type Corner struct {
	ID       string    `json:"archiId,omitempty"`
	Position *Position `json:"position,omitempty"`
}

// Position is a survey-space point. Absent or null coordinates decode to NaN
// so that callers only have to check for finiteness.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Valid reports whether the horizontal-plane coordinates are usable.
func (p Position) Valid() bool {
	return isFinite(p.X) && isFinite(p.Z)
}

// UnmarshalJSON never fails: a coordinate that is not a JSON number, or a
// position that is not an object, decodes to NaN and the point is dropped
// later like any other invalid one.
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw struct {
		X json.RawMessage `json:"x"`
		Y json.RawMessage `json:"y"`
		Z json.RawMessage `json:"z"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		raw.X, raw.Y, raw.Z = nil, nil, nil
	}
	p.X = numberOrNaN(raw.X)
	p.Y = numberOrNaN(raw.Y)
	p.Z = numberOrNaN(raw.Z)
	return nil
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
		Z *float64 `json:"z"`
	}{finiteOrNil(p.X), finiteOrNil(p.Y), finiteOrNil(p.Z)})
}

// Valid reports whether the corner carries a usable position.
func (c Corner) Valid() bool {
	return c.Position != nil && c.Position.Valid()
}

// CornerRef is either a reference to a floor corner by id or a fully inline
// corner. On the wire a string is a reference and an object is inline.
type CornerRef struct {
	id     string
	inline *Corner
}

func ByID(id string) CornerRef {
	return CornerRef{id: id}
}

func Inline(c Corner) CornerRef {
	return CornerRef{inline: &c}
}

// Inline returns the embedded corner, if the reference is inline.
func (r CornerRef) Inline() (Corner, bool) {
	if r.inline == nil {
		return Corner{}, false
	}
	return *r.inline, true
}

// RefID returns the referenced corner id, if the reference is by id.
func (r CornerRef) RefID() (string, bool) {
	if r.inline != nil || r.id == "" {
		return "", false
	}
	return r.id, true
}

func (r *CornerRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = CornerRef{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &r.id)
	case '{':
		var c Corner
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		r.inline = &c
		return nil
	default:
		// numbers, booleans and arrays reference nothing
		return nil
	}
}

func (r CornerRef) MarshalJSON() ([]byte, error) {
	if r.inline != nil {
		return json.Marshal(r.inline)
	}
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

// RoomType is the room's type code. Sources send it either as a string or as
// a bare number; both are kept in their textual form.
type RoomType string

func (t *RoomType) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = RoomType(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("room type must be a string or number: %w", err)
	}
	*t = RoomType(n.String())
	return nil
}

// Code parses the leading base-10 integer of the type, ignoring any trailing
// text ("4", " 4 ", "4.5" and "4abc" all yield 4).
func (t RoomType) Code() (int, bool) {
	s := strings.TrimLeft(string(t), " \t\n\r\f\v")
	if s == "" {
		return 0, false
	}

	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}

	n, digits := 0, 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		if n > math.MaxInt32 {
			return 0, false
		}
		n = n*10 + int(ch-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// --- Lookups ---

// Floor returns the floor with the given id.
func (fp Floorplan) Floor(id string) (*Floor, bool) {
	for i := range fp {
		if fp[i].ID == id {
			return &fp[i], true
		}
	}
	return nil, false
}

// Room returns the room with the given id.
func (f *Floor) Room(id string) (*Room, bool) {
	if f == nil || id == "" {
		return nil, false
	}
	for i := range f.Rooms {
		if f.Rooms[i].ID == id {
			return &f.Rooms[i], true
		}
	}
	return nil, false
}

// Parse decodes a floorplan document.
func Parse(data []byte) (Floorplan, error) {
	var fp Floorplan
	if err := json.Unmarshal(data, &fp); err != nil {
		return nil, fmt.Errorf("decode floorplan: %w", err)
	}
	return fp, nil
}

// LoadFile reads and decodes a floorplan document from disk.
func LoadFile(path string) (Floorplan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read floorplan %s: %w", path, err)
	}
	return Parse(data)
}

func numberOrNaN(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || bytes.Equal(raw, []byte("null")) {
		return math.NaN()
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return math.NaN()
	}
	return v
}

func finiteOrNil(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
