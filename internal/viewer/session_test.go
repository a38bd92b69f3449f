package viewer

import (
	"context"
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/planfind/planfind/backend-go/internal/catalog"
	"github.com/planfind/planfind/backend-go/internal/engine"
	"github.com/planfind/planfind/backend-go/internal/floorplan"
	"github.com/planfind/planfind/backend-go/internal/search"
	"github.com/planfind/planfind/backend-go/internal/selection"
)

type fakeSearcher struct {
	requests []search.Request
	users    []string
}

func (f *fakeSearcher) Search(_ context.Context, userID string, req search.Request) ([]catalog.Project, error) {
	f.requests = append(f.requests, req)
	f.users = append(f.users, userID)
	if req.Type == selection.KindFloor {
		return nil, catalog.ErrNoSimilarFloor
	}
	return []catalog.Project{{MongoID: "similar-1"}}, nil
}

type harness struct {
	t         *testing.T
	session   *Session
	plan      floorplan.Floorplan
	searcher  *fakeSearcher
	messages  []*Message
	presences []PresencePayload
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, plan: floorplan.NewSampleFloorplan(), searcher: &fakeSearcher{}}
	h.session = NewSession(SessionConfig{
		ProjectID:  "p1",
		ClientID:   "viewer_1",
		UserID:     "user_1",
		Floors:     h.plan,
		Style:      engine.DefaultStyle(),
		Searcher:   h.searcher,
		Emit:       func(m *Message) { h.messages = append(h.messages, m) },
		OnPresence: func(p PresencePayload) { h.presences = append(h.presences, p) },
	})
	return h
}

// send handles one client message and returns what the session emitted.
func (h *harness) send(typ string, payload any) []*Message {
	h.t.Helper()
	h.messages = nil
	msg := &Message{Type: typ}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			h.t.Fatal(err)
		}
		msg.Payload = data
	}
	h.session.Handle(context.Background(), msg)
	return h.messages
}

func types(msgs []*Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func decodeAs[T any](t *testing.T, m *Message) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(m.Payload, &v); err != nil {
		t.Fatalf("decode %s: %v", m.Type, err)
	}
	return v
}

func expectTypes(t *testing.T, msgs []*Message, want ...string) {
	t.Helper()
	got := types(msgs)
	if len(got) != len(want) {
		t.Fatalf("messages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("messages = %v, want %v", got, want)
		}
	}
}

func TestSessionStart(t *testing.T) {
	h := newHarness(t)
	h.session.Start()

	expectTypes(t, h.messages, TypeWelcome, TypeFrame)
	welcome := decodeAs[WelcomePayload](t, h.messages[0])
	if welcome.ClientID != "viewer_1" || len(welcome.Floors) != 2 || welcome.CurrentFloorID != h.plan[0].ID {
		t.Errorf("unexpected welcome %+v", welcome)
	}
	if welcome.Floors[0].RoomCount != 4 {
		t.Errorf("room count = %d", welcome.Floors[0].RoomCount)
	}

	// unsized: the frame only clears
	frame := decodeAs[FramePayload](t, h.messages[1])
	if len(frame.Commands) != 1 || frame.Commands[0].Op != "clear" || !frame.HasRooms || frame.WorldToScreen != nil {
		t.Errorf("unexpected first frame %+v", frame)
	}
	if h.messages[1].ClientID != "viewer_1" || h.messages[1].ProjectID != "p1" {
		t.Errorf("envelope not stamped: %+v", h.messages[1])
	}

	if len(h.presences) != 1 || h.presences[0].FloorID != h.plan[0].ID {
		t.Errorf("presence = %+v", h.presences)
	}
}

func TestSessionInteraction(t *testing.T) {
	h := newHarness(t)
	h.session.Start()
	floor := h.plan[0]

	msgs := h.send(TypeViewportResize, ViewportPayload{Width: 600, Height: 400, DPR: 2})
	expectTypes(t, msgs, TypeFrame)
	frame := decodeAs[FramePayload](t, msgs[0])
	// clear + four rooms + four labels
	if len(frame.Commands) != 9 {
		t.Fatalf("got %d commands", len(frame.Commands))
	}
	if tr := frame.Commands[0].Transform; tr[0] != 2 || tr[3] != 2 {
		t.Errorf("clear transform = %v, want dpr 2", tr)
	}
	// the 12 x 8 plan fills 600 x 400 at 50 px per unit
	if !slices.Equal(frame.WorldToScreen, []float64{50, 0, 0, 50, 0, 0}) {
		t.Errorf("worldToScreen = %v", frame.WorldToScreen)
	}
	inv := []float64{0.02, 0, 0, 0.02, 0, 0}
	if !slices.EqualFunc(frame.ScreenToWorld, inv, func(a, b float64) bool { return math.Abs(a-b) < 1e-12 }) {
		t.Errorf("screenToWorld = %v", frame.ScreenToWorld)
	}

	msgs = h.send(TypePointerMove, PointerPayload{X: 150, Y: 125})
	expectTypes(t, msgs, TypeFrame, TypeRoomHover)
	if hover := decodeAs[RoomHoverPayload](t, msgs[1]); hover.RoomID != floor.Rooms[0].ID {
		t.Errorf("hover = %q, want living room", hover.RoomID)
	}
	if frame := decodeAs[FramePayload](t, msgs[0]); frame.Cursor != "pointer" {
		t.Errorf("cursor = %q", frame.Cursor)
	}

	// same room again: no redraw
	if msgs := h.send(TypePointerMove, PointerPayload{X: 160, Y: 130}); len(msgs) != 0 {
		t.Errorf("moving within a room emitted %v", types(msgs))
	}

	msgs = h.send(TypePointerClick, PointerPayload{X: 450, Y: 125})
	expectTypes(t, msgs, TypeRoomActivate, TypeFrame)
	act := decodeAs[RoomActivatePayload](t, msgs[0])
	if act.RoomID != floor.Rooms[1].ID || act.Title != "주방" || act.Label != "주방" || act.FloorID != floor.ID {
		t.Errorf("activate = %+v", act)
	}
	if frame := decodeAs[FramePayload](t, msgs[1]); frame.SelectedRoomID != floor.Rooms[1].ID {
		t.Errorf("selected = %q", frame.SelectedRoomID)
	}
	last := h.presences[len(h.presences)-1]
	if last.SelectedRoomID != floor.Rooms[1].ID || last.HoveredRoomID != floor.Rooms[0].ID {
		t.Errorf("presence = %+v", last)
	}

	msgs = h.send(TypeSelectionConfirm, nil)
	expectTypes(t, msgs, TypeSelectionResult)
	res := decodeAs[SelectionResultPayload](t, msgs[0])
	want := selection.Selection{Type: selection.KindRoom, ID: floor.Rooms[1].ID, Title: "1층 - 주방"}
	if res.Selection != want || len(res.Projects) != 1 || res.Error != "" {
		t.Errorf("result = %+v", res)
	}
	if h.searcher.requests[0].ProjectID != "p1" || h.searcher.users[0] != "user_1" {
		t.Errorf("search request = %+v by %v", h.searcher.requests, h.searcher.users)
	}

	// a miss reports an empty activation and clears the selection
	msgs = h.send(TypePointerClick, PointerPayload{X: -500, Y: -500})
	expectTypes(t, msgs, TypeRoomActivate, TypeFrame)
	if act := decodeAs[RoomActivatePayload](t, msgs[0]); act.RoomID != "" {
		t.Errorf("miss activate = %+v", act)
	}
	if frame := decodeAs[FramePayload](t, msgs[1]); frame.SelectedRoomID != "" {
		t.Errorf("selected after miss = %q", frame.SelectedRoomID)
	}
	if last := h.presences[len(h.presences)-1]; last.SelectedRoomID != "" {
		t.Errorf("presence after miss = %+v", last)
	}

	// a second miss changes nothing
	msgs = h.send(TypePointerClick, PointerPayload{X: -500, Y: -500})
	expectTypes(t, msgs, TypeRoomActivate)

	msgs = h.send(TypeSelectionConfirm, nil)
	res = decodeAs[SelectionResultPayload](t, msgs[0])
	if res.Selection.Type != selection.KindFloor || res.Selection.ID != floor.ID || res.Selection.Title != "1층" {
		t.Errorf("confirm after miss = %+v", res.Selection)
	}

	msgs = h.send(TypePointerLeave, nil)
	expectTypes(t, msgs, TypeFrame, TypeRoomHover)
	if hover := decodeAs[RoomHoverPayload](t, msgs[1]); hover.RoomID != "" {
		t.Errorf("leave hover = %q", hover.RoomID)
	}
}

func TestSessionFloorSwitch(t *testing.T) {
	h := newHarness(t)
	h.session.Start()
	h.send(TypeViewportResize, ViewportPayload{Width: 600, Height: 400})
	h.send(TypePointerClick, PointerPayload{X: 150, Y: 125})

	upper := h.plan[1]
	msgs := h.send(TypeFloorSelect, FloorSelectPayload{FloorID: upper.ID})
	expectTypes(t, msgs, TypeFrame)
	frame := decodeAs[FramePayload](t, msgs[0])
	if frame.FloorID != upper.ID || frame.SelectedRoomID != "" {
		t.Errorf("frame after floor switch = %+v", frame)
	}
	// clear + three rooms + three labels
	if len(frame.Commands) != 7 {
		t.Errorf("got %d commands", len(frame.Commands))
	}

	msgs = h.send(TypeSelectionConfirm, nil)
	res := decodeAs[SelectionResultPayload](t, msgs[0])
	if res.Selection.Type != selection.KindFloor || res.Selection.ID != upper.ID {
		t.Errorf("selection = %+v", res.Selection)
	}
	if res.Error == "" || len(res.Projects) != 0 {
		t.Errorf("failed search should report an error: %+v", res)
	}
}

func TestSessionErrors(t *testing.T) {
	h := newHarness(t)
	h.session.Start()

	tests := []struct {
		typ     string
		payload any
	}{
		{TypeFloorSelect, FloorSelectPayload{FloorID: "floor_missing"}},
		{"room.delete", nil},
		{TypePointerMove, "not an object"},
	}
	for _, tt := range tests {
		msgs := h.send(tt.typ, tt.payload)
		expectTypes(t, msgs, TypeError)
		if e := decodeAs[ErrorPayload](t, msgs[0]); e.Message == "" {
			t.Errorf("%s: empty error message", tt.typ)
		}
	}

	empty := NewSession(SessionConfig{Style: engine.DefaultStyle(), Emit: func(m *Message) { h.messages = append(h.messages, m) }})
	h.messages = nil
	empty.Handle(context.Background(), &Message{Type: TypeSelectionConfirm})
	expectTypes(t, h.messages, TypeError)
}
