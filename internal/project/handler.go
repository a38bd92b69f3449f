package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/planfind/planfind/backend-go/internal/catalog"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListFloors(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	floors, err := h.service.Floors(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, floors)
}

func (h *Handler) Geometry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	geom, err := h.service.Geometry(r.Context(), vars["projectId"], vars["floorId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, geom)
}

func (h *Handler) RenderPNG(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	opts, err := renderOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	data, err := h.service.RenderPNG(r.Context(), vars["projectId"], vars["floorId"], opts)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) RenderSVG(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	opts, err := renderOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	data, err := h.service.RenderSVG(r.Context(), vars["projectId"], vars["floorId"], opts)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) HitTest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	q := r.URL.Query()

	x, errX := requiredFloat(q.Get("x"), "x")
	y, errY := requiredFloat(q.Get("y"), "y")
	vp, errVP := viewport(r)
	if err := errors.Join(errX, errY, errVP); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	hit, err := h.service.HitTest(r.Context(), vars["projectId"], vars["floorId"], vp, x, y)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hit)
}

func (h *Handler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	fc, err := h.service.GeoJSON(r.Context(), vars["projectId"], vars["floorId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func renderOptions(r *http.Request) (RenderOptions, error) {
	vp, err := viewport(r)
	if err != nil {
		return RenderOptions{}, err
	}
	q := r.URL.Query()
	return RenderOptions{
		Viewport:   vp,
		HoveredID:  q.Get("hover"),
		SelectedID: q.Get("selected"),
	}, nil
}

func viewport(r *http.Request) (Viewport, error) {
	q := r.URL.Query()
	width, errW := optionalFloat(q.Get("width"), "width", defaultWidth)
	height, errH := optionalFloat(q.Get("height"), "height", defaultHeight)
	dpr, errD := optionalFloat(q.Get("dpr"), "dpr", 1)
	if err := errors.Join(errW, errH, errD); err != nil {
		return Viewport{}, err
	}
	return Viewport{Width: width, Height: height, DPR: dpr}, nil
}

func optionalFloat(raw, name string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return requiredFloat(raw, name)
}

func requiredFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "floor not found"})
	case errors.Is(err, catalog.ErrProjectNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "project not found"})
	case errors.Is(err, catalog.ErrNoFloorplan):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "project has no floorplan"})
	case errors.Is(err, ErrInvalidViewport):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrFloorplanUnavailable):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "floorplan unavailable"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
