package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/planfind/planfind/backend-go/internal/catalog"
	"github.com/planfind/planfind/backend-go/internal/db/dbgen"
	"github.com/planfind/planfind/backend-go/internal/selection"
	"github.com/planfind/planfind/backend-go/internal/typeid"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

var ErrInvalidSelection = errors.New("invalid selection")

// Finder runs similarity searches against the project catalog.
type Finder interface {
	Similar(ctx context.Context, sel selection.Selection) ([]catalog.Project, error)
}

// Store persists search history. *dbgen.Queries satisfies it.
type Store interface {
	CreateSearchHistory(ctx context.Context, arg dbgen.CreateSearchHistoryParams) (dbgen.SearchHistory, error)
	ListSearchHistory(ctx context.Context, arg dbgen.ListSearchHistoryParams) ([]dbgen.SearchHistory, error)
}

type Service struct {
	finder Finder
	store  Store
}

func NewService(finder Finder, store Store) *Service {
	return &Service{finder: finder, store: store}
}

type Request struct {
	ProjectID string `json:"projectId"`
	selection.Selection
}

type Entry struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"projectId"`
	Type        selection.Kind `json:"type"`
	SelectionID string         `json:"selectionId"`
	Title       string         `json:"title"`
	ResultCount int            `json:"resultCount"`
	CreatedAt   string         `json:"createdAt"`
}

// Search finds projects similar to the selection. Searches by registered
// users are recorded; anonymous viewer ids are not. A failure to record is
// logged, not returned.
func (s *Service) Search(ctx context.Context, userID string, req Request) ([]catalog.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}

	projects, err := s.finder.Similar(ctx, req.Selection)
	if err != nil {
		return nil, err
	}

	if s.store != nil && typeid.Validate(userID, typeid.PrefixUser) == nil {
		_, err := s.store.CreateSearchHistory(ctx, dbgen.CreateSearchHistoryParams{
			ID:            typeid.NewSearchID(),
			UserID:        userID,
			ProjectID:     req.ProjectID,
			SelectionType: string(req.Type),
			SelectionID:   req.ID,
			Title:         req.Title,
			ResultCount:   int32(len(projects)),
		})
		if err != nil {
			slog.Warn("record search history failed", "user", userID, "error", err)
		}
	}

	return projects, nil
}

func (s *Service) History(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	rows, err := s.store.ListSearchHistory(ctx, dbgen.ListSearchHistoryParams{
		UserID: userID,
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}

	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = Entry{
			ID:          row.ID,
			ProjectID:   row.ProjectID,
			Type:        selection.Kind(row.SelectionType),
			SelectionID: row.SelectionID,
			Title:       row.Title,
			ResultCount: int(row.ResultCount),
			CreatedAt:   row.CreatedAt.Time.Format(time.RFC3339),
		}
	}
	return entries, nil
}
