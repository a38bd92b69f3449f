package viewer

import (
	"encoding/json"

	"github.com/planfind/planfind/backend-go/internal/catalog"
	"github.com/planfind/planfind/backend-go/internal/engine"
	"github.com/planfind/planfind/backend-go/internal/selection"
)

type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

const (
	// client -> server
	TypeFloorSelect      = "floor.select"
	TypeViewportResize   = "viewport.resize"
	TypePointerMove      = "pointer.move"
	TypePointerLeave     = "pointer.leave"
	TypePointerClick     = "pointer.click"
	TypeSelectionConfirm = "selection.confirm"

	// server -> client
	TypeWelcome         = "welcome"
	TypeFrame           = "frame"
	TypeRoomHover       = "room.hover"
	TypeRoomActivate    = "room.activate"
	TypeSelectionResult = "selection.result"
	TypePresenceUpdate  = "presence.update"
	TypePresenceState   = "presence.state"
	TypePresenceJoin    = "presence.join"
	TypePresenceLeave   = "presence.leave"
	TypeError           = "error"
)

type FloorSelectPayload struct {
	FloorID string `json:"floorId"`
}

type ViewportPayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPR    float64 `json:"dpr,omitempty"`
}

type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type FloorInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	RoomCount int    `json:"roomCount"`
}

type WelcomePayload struct {
	ClientID       string       `json:"clientId"`
	ProjectID      string       `json:"projectId"`
	Floors         []FloorInfo  `json:"floors"`
	CurrentFloorID string       `json:"currentFloorId,omitempty"`
	Style          engine.Style `json:"style"`
}

type FramePayload struct {
	FloorID        string               `json:"floorId,omitempty"`
	Width          float64              `json:"width"`
	Height         float64              `json:"height"`
	Cursor         string               `json:"cursor"`
	HasRooms       bool                 `json:"hasRooms"`
	HoveredRoomID  string               `json:"hoveredRoomId,omitempty"`
	SelectedRoomID string               `json:"selectedRoomId,omitempty"`
	Commands       []engine.DrawCommand `json:"commands"`
	// WorldToScreen and ScreenToWorld are [a, b, c, d, e, f] affine matrices
	// over logical pixels, omitted while nothing is fitted.
	WorldToScreen []float64 `json:"worldToScreen,omitempty"`
	ScreenToWorld []float64 `json:"screenToWorld,omitempty"`
}

type RoomHoverPayload struct {
	RoomID string `json:"roomId"`
}

// RoomActivatePayload reports a click. An empty RoomID means the click missed.
type RoomActivatePayload struct {
	FloorID string `json:"floorId"`
	engine.HitResult
}

type SelectionResultPayload struct {
	Selection selection.Selection `json:"selection"`
	Projects  []catalog.Project   `json:"projects"`
	Error     string              `json:"error,omitempty"`
}

type PresencePayload struct {
	ClientID       string `json:"clientId"`
	DisplayName    string `json:"displayName,omitempty"`
	FloorID        string `json:"floorId,omitempty"`
	HoveredRoomID  string `json:"hoveredRoomId,omitempty"`
	SelectedRoomID string `json:"selectedRoomId,omitempty"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMessage marshals payload into a message of the given type.
func NewMessage(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
