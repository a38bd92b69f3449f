package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/planfind/planfind/backend-go/internal/catalog"
	"github.com/planfind/planfind/backend-go/internal/engine"
	"github.com/planfind/planfind/backend-go/internal/floorplan"
	"github.com/planfind/planfind/backend-go/internal/search"
	"github.com/planfind/planfind/backend-go/internal/selection"
)

// Searcher runs a confirmed selection against the catalog.
type Searcher interface {
	Search(ctx context.Context, userID string, req search.Request) ([]catalog.Project, error)
}

// Session is one viewer's interaction state: a floor controller drawing into
// a command buffer plus the floor/room selection. Messages are handled one at
// a time; a Session is not safe for concurrent use.
type Session struct {
	projectID string
	clientID  string
	userID    string

	ctrl     *engine.Controller
	buf      *engine.CommandBuffer
	sel      *selection.Session
	searcher Searcher

	emit       func(*Message)
	onPresence func(PresencePayload)
}

type SessionConfig struct {
	ProjectID string
	ClientID  string
	UserID    string
	Floors    floorplan.Floorplan
	Style     engine.Style
	Searcher  Searcher
	// Emit receives every message for this viewer, in order.
	Emit func(*Message)
	// OnPresence fires when the floor, hovered room or selected room changes.
	OnPresence func(PresencePayload)
}

func NewSession(cfg SessionConfig) *Session {
	buf := engine.NewCommandBuffer(1)
	s := &Session{
		projectID:  cfg.ProjectID,
		clientID:   cfg.ClientID,
		userID:     cfg.UserID,
		ctrl:       engine.NewController(buf, cfg.Style),
		buf:        buf,
		sel:        selection.NewSession(cfg.Floors),
		searcher:   cfg.Searcher,
		emit:       cfg.Emit,
		onPresence: cfg.OnPresence,
	}
	s.ctrl.SetCallbacks(engine.Callbacks{
		OnRoomHoverChange: s.roomHovered,
		OnRoomActivate:    s.roomActivated,
		OnFrame:           s.frameDrawn,
	})
	return s
}

// Start greets the viewer and shows the first floor.
func (s *Session) Start() {
	floors := s.sel.Floors()
	info := make([]FloorInfo, len(floors))
	for i, f := range floors {
		info[i] = FloorInfo{ID: f.ID, Title: f.Title, RoomCount: len(f.Rooms)}
	}

	welcome := WelcomePayload{
		ClientID:  s.clientID,
		ProjectID: s.projectID,
		Floors:    info,
		Style:     s.ctrl.Style(),
	}
	if cur := s.sel.CurrentFloor(); cur != nil {
		welcome.CurrentFloorID = cur.ID
	}
	s.send(TypeWelcome, welcome)

	s.ctrl.LoadFloor(s.sel.CurrentFloor())
	s.presenceChanged()
}

// Handle applies one client message.
func (s *Session) Handle(ctx context.Context, msg *Message) {
	switch msg.Type {
	case TypeFloorSelect:
		var p FloorSelectPayload
		if !s.decode(msg, &p) {
			return
		}
		s.selectFloor(p.FloorID)

	case TypeViewportResize:
		var p ViewportPayload
		if !s.decode(msg, &p) {
			return
		}
		s.buf.SetDPR(p.DPR)
		s.ctrl.Resize(p.Width, p.Height)

	case TypePointerMove:
		var p PointerPayload
		if !s.decode(msg, &p) {
			return
		}
		s.ctrl.PointerMove(p.X, p.Y)

	case TypePointerLeave:
		s.ctrl.PointerLeave()

	case TypePointerClick:
		var p PointerPayload
		if !s.decode(msg, &p) {
			return
		}
		s.ctrl.Click(p.X, p.Y)

	case TypeSelectionConfirm:
		s.confirm(ctx)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", s.clientID)
		s.sendError(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

// Presence describes what this viewer is looking at.
func (s *Session) Presence() PresencePayload {
	return PresencePayload{
		ClientID:       s.clientID,
		FloorID:        s.ctrl.FloorID(),
		HoveredRoomID:  s.ctrl.HoveredRoomID(),
		SelectedRoomID: s.ctrl.SelectedRoomID(),
	}
}

func (s *Session) Controller() *engine.Controller {
	return s.ctrl
}

func (s *Session) selectFloor(id string) {
	if _, ok := s.sel.Floors().Floor(id); !ok {
		s.sendError(fmt.Sprintf("unknown floor %q", id))
		return
	}
	s.sel.SelectFloor(id)
	s.ctrl.LoadFloor(s.sel.CurrentFloor())
	s.ctrl.SetSelectedRoom(s.sel.SelectedRoomID())
	s.presenceChanged()
}

func (s *Session) confirm(ctx context.Context) {
	sel, err := s.sel.Confirm()
	if err != nil {
		s.sendError(err.Error())
		return
	}

	result := SelectionResultPayload{Selection: sel, Projects: []catalog.Project{}}
	if s.searcher != nil {
		projects, err := s.searcher.Search(ctx, s.userID, search.Request{ProjectID: s.projectID, Selection: sel})
		if err != nil {
			slog.Info("similar search failed", "client", s.clientID, "selection", sel.ID, "error", err)
			result.Error = err.Error()
		} else {
			result.Projects = projects
		}
	}
	s.send(TypeSelectionResult, result)
}

func (s *Session) roomHovered(roomID string) {
	s.send(TypeRoomHover, RoomHoverPayload{RoomID: roomID})
	s.presenceChanged()
}

// roomActivated makes a clicked room the selection. A miss clears it, so the
// next confirm covers the whole floor.
func (s *Session) roomActivated(room *floorplan.Room) {
	payload := RoomActivatePayload{FloorID: s.ctrl.FloorID()}
	if room != nil {
		if rg := s.ctrl.Geometry().Room(room.ID); rg != nil {
			payload.HitResult = engine.NewHitResult(rg)
		}
	}
	s.send(TypeRoomActivate, payload)

	prev := s.sel.SelectedRoomID()
	s.sel.PickRoom(room)
	if s.sel.SelectedRoomID() == prev {
		return
	}
	s.ctrl.SetSelectedRoom(s.sel.SelectedRoomID())
	s.presenceChanged()
}

func (s *Session) frameDrawn(f engine.Frame) {
	payload := FramePayload{
		FloorID:        s.ctrl.FloorID(),
		Width:          f.Width,
		Height:         f.Height,
		Cursor:         s.ctrl.Cursor(),
		HasRooms:       s.ctrl.HasRooms(),
		HoveredRoomID:  f.HoveredID,
		SelectedRoomID: f.SelectedID,
		Commands:       s.buf.Commands(),
	}
	if m, ok := f.WorldToScreen(); ok {
		payload.WorldToScreen = m.ToSlice()
		payload.ScreenToWorld = m.Invert().ToSlice()
	}
	s.send(TypeFrame, payload)
}

func (s *Session) presenceChanged() {
	if s.onPresence != nil {
		s.onPresence(s.Presence())
	}
}

func (s *Session) decode(msg *Message, v any) bool {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		slog.Warn("invalid payload", "type", msg.Type, "error", err, "client", s.clientID)
		s.sendError(fmt.Sprintf("invalid %s payload", msg.Type))
		return false
	}
	return true
}

func (s *Session) sendError(message string) {
	s.send(TypeError, ErrorPayload{Message: message})
}

func (s *Session) send(typ string, payload any) {
	if s.emit == nil {
		return
	}
	msg, err := NewMessage(typ, payload)
	if err != nil {
		slog.Error("marshal message", "type", typ, "error", err)
		return
	}
	msg.ProjectID = s.projectID
	msg.ClientID = s.clientID
	s.emit(msg)
}
