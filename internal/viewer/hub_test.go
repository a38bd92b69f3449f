package viewer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/planfind/planfind/backend-go/internal/catalog"
	"github.com/planfind/planfind/backend-go/internal/engine"
	"github.com/planfind/planfind/backend-go/internal/floorplan"
)

type fakeLoader struct {
	plan floorplan.Floorplan
}

func (f *fakeLoader) Floorplan(_ context.Context, projectID string) (floorplan.Floorplan, error) {
	if projectID != "p1" {
		return nil, catalog.ErrProjectNotFound
	}
	return f.plan, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub, floorplan.Floorplan) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)

	plan := floorplan.NewSampleFloorplan()
	h := NewHandler(HandlerConfig{
		Hub:    hub,
		Loader: &fakeLoader{plan: plan},
		Style:  engine.DefaultStyle(),
	})

	r := mux.NewRouter()
	r.Handle("/ws/project/{projectId}", h)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub, plan
}

func dial(t *testing.T, srv *httptest.Server, projectID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/project/" + projectID
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

// readUntil reads messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) *Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type == typ {
			return &msg
		}
	}
}

func write(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg, err := NewMessage(typ, payload)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(msg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestViewerOverWebsocket(t *testing.T) {
	srv, hub, plan := newTestServer(t)

	conn := dial(t, srv, "p1")
	readUntil(t, conn, TypePresenceState)
	welcome := decodeAs[WelcomePayload](t, readUntil(t, conn, TypeWelcome))
	if welcome.ProjectID != "p1" || !strings.HasPrefix(welcome.ClientID, "viewer_") {
		t.Errorf("welcome = %+v", welcome)
	}
	readUntil(t, conn, TypeFrame)

	write(t, conn, TypeViewportResize, ViewportPayload{Width: 600, Height: 400})
	frame := decodeAs[FramePayload](t, readUntil(t, conn, TypeFrame))
	if len(frame.Commands) != 9 {
		t.Errorf("resized frame has %d commands", len(frame.Commands))
	}

	write(t, conn, TypePointerMove, PointerPayload{X: 450, Y: 325})
	hover := decodeAs[RoomHoverPayload](t, readUntil(t, conn, TypeRoomHover))
	if hover.RoomID != plan[0].Rooms[3].ID {
		t.Errorf("hover = %q, want bathroom", hover.RoomID)
	}

	if n := hub.ClientCount("p1"); n != 1 {
		t.Errorf("ClientCount = %d", n)
	}
}

func TestViewerPresence(t *testing.T) {
	srv, hub, plan := newTestServer(t)

	first := dial(t, srv, "p1")
	readUntil(t, first, TypeFrame)
	waitFor(t, func() bool { return presenceCount(hub, "p1") == 1 })

	second := dial(t, srv, "p1")
	state := decodeAs[PresenceStatePayload](t, readUntil(t, second, TypePresenceState))
	if len(state.Presences) != 1 {
		t.Errorf("second viewer sees %d presences, want 1", len(state.Presences))
	}
	for _, p := range state.Presences {
		if p.FloorID != plan[0].ID || p.DisplayName != "Anonymous" {
			t.Errorf("presence = %+v", p)
		}
	}

	join := decodeAs[PresenceJoinPayload](t, readUntil(t, first, TypePresenceJoin))
	if join.ClientID == "" {
		t.Error("join without client id")
	}

	readUntil(t, second, TypeFrame)
	write(t, second, TypeFloorSelect, FloorSelectPayload{FloorID: plan[1].ID})

	var update PresencePayload
	for update.FloorID != plan[1].ID {
		update = decodeAs[PresencePayload](t, readUntil(t, first, TypePresenceUpdate))
	}
	if update.ClientID != join.ClientID {
		t.Errorf("update from %q, want %q", update.ClientID, join.ClientID)
	}

	second.Close(websocket.StatusNormalClosure, "")
	leave := decodeAs[PresenceLeavePayload](t, readUntil(t, first, TypePresenceLeave))
	if leave.ClientID != join.ClientID {
		t.Errorf("leave from %q, want %q", leave.ClientID, join.ClientID)
	}

	waitFor(t, func() bool { return hub.ClientCount("p1") == 1 && presenceCount(hub, "p1") == 1 })
}

func presenceCount(h *Hub, projectID string) int {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	return len(room.presence.GetAll())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestViewerUnknownProject(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws/project/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
