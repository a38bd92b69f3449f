package viewer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/planfind/planfind/backend-go/internal/auth"
	"github.com/planfind/planfind/backend-go/internal/catalog"
	"github.com/planfind/planfind/backend-go/internal/engine"
	"github.com/planfind/planfind/backend-go/internal/floorplan"
	"github.com/planfind/planfind/backend-go/internal/typeid"
)

// FloorplanLoader resolves a project to its floors.
type FloorplanLoader interface {
	Floorplan(ctx context.Context, projectID string) (floorplan.Floorplan, error)
}

// Identity resolves viewer tokens. *auth.Service satisfies it.
type Identity interface {
	ValidateToken(token string) (string, error)
	GetUser(ctx context.Context, userID string) (*auth.User, error)
}

type Handler struct {
	hub            *Hub
	loader         FloorplanLoader
	identity       Identity
	searcher       Searcher
	style          engine.Style
	originPatterns []string
}

type HandlerConfig struct {
	Hub            *Hub
	Loader         FloorplanLoader
	Identity       Identity
	Searcher       Searcher
	Style          engine.Style
	OriginPatterns []string
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		hub:            cfg.Hub,
		loader:         cfg.Loader,
		identity:       cfg.Identity,
		searcher:       cfg.Searcher,
		style:          cfg.Style,
		originPatterns: cfg.OriginPatterns,
	}
}

// ServeHTTP upgrades /ws/project/{projectId}. Viewers are anonymous unless
// they pass a valid token query parameter.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	userID, displayName, ok := h.identify(w, r)
	if !ok {
		return
	}

	floors, err := h.loader.Floorplan(r.Context(), projectID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrProjectNotFound), errors.Is(err, catalog.ErrNoFloorplan):
			http.Error(w, "project not found", http.StatusNotFound)
		default:
			slog.Error("load floorplan for viewer", "project", projectID, "error", err)
			http.Error(w, "floorplan unavailable", http.StatusBadGateway)
		}
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	cfg := ClientConfig{
		UserID:      userID,
		DisplayName: displayName,
		ProjectID:   projectID,
		ClientID:    typeid.NewViewerID(),
	}
	client := NewClient(h.hub, conn, cfg, func(emit func(*Message), onPresence func(PresencePayload)) *Session {
		return NewSession(SessionConfig{
			ProjectID:  projectID,
			ClientID:   cfg.ClientID,
			UserID:     userID,
			Floors:     floors,
			Style:      h.style,
			Searcher:   h.searcher,
			Emit:       emit,
			OnPresence: onPresence,
		})
	})

	if !h.hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.Session().Start()
	client.ReadPump(ctx)
}

func (h *Handler) identify(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	token := r.URL.Query().Get("token")
	if token == "" || h.identity == nil {
		return "anon-" + uuid.New().String()[:8], "Anonymous", true
	}

	userID, err := h.identity.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return "", "", false
	}

	user, err := h.identity.GetUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return "", "", false
	}
	return userID, user.DisplayName, true
}
