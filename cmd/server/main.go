package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/planfind/planfind/backend-go/internal/auth"
	"github.com/planfind/planfind/backend-go/internal/catalog"
	"github.com/planfind/planfind/backend-go/internal/config"
	"github.com/planfind/planfind/backend-go/internal/db"
	"github.com/planfind/planfind/backend-go/internal/db/dbgen"
	"github.com/planfind/planfind/backend-go/internal/engine"
	mw "github.com/planfind/planfind/backend-go/internal/middleware"
	"github.com/planfind/planfind/backend-go/internal/project"
	"github.com/planfind/planfind/backend-go/internal/search"
	"github.com/planfind/planfind/backend-go/internal/surface"
	"github.com/planfind/planfind/backend-go/internal/viewer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		logFile := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	queries := dbgen.New(pool)

	style, err := engine.LoadStyle(cfg.StylePath)
	if err != nil {
		slog.Error("load style", "error", err)
		os.Exit(1)
	}
	face, err := surface.LoadFontFace(cfg.FontPath, style.LabelSize)
	if err != nil {
		slog.Error("load font", "error", err)
		os.Exit(1)
	}
	if cfg.FontPath == "" {
		slog.Warn("FONT_PATH not set, PNG labels are limited to ASCII")
	}

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	catalogClient := catalog.NewClient(catalog.Config{
		BaseURL:           cfg.CatalogURL,
		Timeout:           cfg.CatalogTimeout,
		MockFloorplanPath: cfg.MockFloorplanPath,
	})

	projectService := project.NewService(catalogClient, style, face)
	projectHandler := project.NewHandler(projectService)

	searchService := search.NewService(catalogClient, queries)
	searchHandler := search.NewHandler(searchService)

	hub := viewer.NewHub()
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	viewerHandler := viewer.NewHandler(viewer.HandlerConfig{
		Hub:            hub,
		Loader:         projectService,
		Identity:       authService,
		Searcher:       searchService,
		Style:          style,
		OriginPatterns: cfg.OriginHosts(),
	})

	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Floor views are public so the playground works without an account.
	r.HandleFunc("/api/projects/{projectId}/floors", projectHandler.ListFloors).Methods("GET")
	r.HandleFunc("/api/projects/{projectId}/floors/{floorId}/geometry", projectHandler.Geometry).Methods("GET")
	r.HandleFunc("/api/projects/{projectId}/floors/{floorId}/render.png", projectHandler.RenderPNG).Methods("GET")
	r.HandleFunc("/api/projects/{projectId}/floors/{floorId}/render.svg", projectHandler.RenderSVG).Methods("GET")
	r.HandleFunc("/api/projects/{projectId}/floors/{floorId}/hit", projectHandler.HitTest).Methods("GET")
	r.HandleFunc("/api/projects/{projectId}/floors/{floorId}/geojson", projectHandler.GeoJSON).Methods("GET")

	r.Handle("/api/search", authService.OptionalAuth(http.HandlerFunc(searchHandler.Search))).Methods("POST", "OPTIONS")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET", "OPTIONS")
	api.HandleFunc("/history", searchHandler.History).Methods("GET", "OPTIONS")

	r.Handle("/ws/project/{projectId}", viewerHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Close viewer sockets first; Shutdown does not wait for hijacked connections.
		cancel()
		<-hubDone

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "catalog", cfg.CatalogURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
