package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/planfind/planfind/backend-go/internal/floorplan"
	"github.com/planfind/planfind/backend-go/internal/selection"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrNoFloorplan          = errors.New("project has no floorplan")
	ErrFloorplanUnavailable = errors.New("floorplan could not be loaded")
	ErrNoSimilarFloor       = errors.New("no similar projects found")
	ErrNoSimilarRoom        = errors.New("no similar rooms found")
)

const (
	tunnelHeader = "ngrok-skip-browser-warning"
	maxBodyBytes = 32 << 20
)

// Project is the remote project record. The two remote endpoints fill
// different subsets of it.
type Project struct {
	MongoID           string   `json:"_id,omitempty"`
	ID                string   `json:"id,omitempty"`
	UserID            string   `json:"userId"`
	Name              string   `json:"name,omitempty"`
	ProjectName       string   `json:"projectName,omitempty"`
	EnterpriseID      string   `json:"enterpriseId,omitempty"`
	DirectoryIDs      []string `json:"directoryIds,omitempty"`
	TeamDirectoryIDs  []string `json:"teamDirectoryIds,omitempty"`
	CoverImage        string   `json:"coverImage"`
	DefaultCoverImage string   `json:"defaultCoverImage"`
	FloorplanPath     string   `json:"floorplanPath,omitempty"`
	State             int      `json:"state"`
	Bookmark          bool     `json:"bookmark,omitempty"`
	CreatedAt         string   `json:"createdAt"`
	UpdatedAt         string   `json:"updatedAt"`
	ProjectID         string   `json:"projectId,omitempty"`
}

func (p Project) DisplayName() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.ProjectName != "":
		return p.ProjectName
	default:
		return "Untitled"
	}
}

// LookupID is the id to fetch project details with.
func (p Project) LookupID() string {
	if p.ProjectID != "" {
		return p.ProjectID
	}
	if p.MongoID != "" {
		return p.MongoID
	}
	return p.ID
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// MockFloorplanPath is served when the remote API cannot be reached.
	MockFloorplanPath string
}

type Client struct {
	baseURL  string
	mockPath string
	http     *http.Client

	// built once so playground ids stay stable across requests
	sample floorplan.Floorplan
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		mockPath: cfg.MockFloorplanPath,
		http:     &http.Client{Timeout: timeout},
		sample:   floorplan.NewSampleFloorplan(),
	}
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	resp, err := c.get(ctx, c.baseURL+"/projects/"+url.PathEscape(projectID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrProjectNotFound, resp.StatusCode)
	}

	var p Project
	if err := decodeBody(resp.Body, &p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return &p, nil
}

func (c *Client) GetFloorplan(ctx context.Context, p *Project) (floorplan.Floorplan, error) {
	if p == nil || p.FloorplanPath == "" {
		return nil, ErrNoFloorplan
	}

	resp, err := c.get(ctx, p.FloorplanPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrFloorplanUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFloorplanUnavailable, err)
	}
	plan, err := floorplan.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFloorplanUnavailable, err)
	}
	return plan, nil
}

// LoadFloorplan resolves a project and fetches its floorplan. When the remote
// API cannot be reached at all and a mock file is configured, the mock is
// returned instead.
func (c *Client) LoadFloorplan(ctx context.Context, projectID string) (floorplan.Floorplan, error) {
	if projectID == floorplan.SampleProjectID {
		return c.sample, nil
	}

	plan, err := c.loadRemote(ctx, projectID)
	if err == nil {
		return plan, nil
	}

	var uerr *url.Error
	if c.mockPath == "" || !errors.As(err, &uerr) {
		return nil, err
	}

	slog.Warn("catalog unreachable, using mock floorplan", "project", projectID, "error", err)
	mock, mockErr := floorplan.LoadFile(c.mockPath)
	if mockErr != nil {
		return nil, errors.Join(err, mockErr)
	}
	return mock, nil
}

func (c *Client) loadRemote(ctx context.Context, projectID string) (floorplan.Floorplan, error) {
	p, err := c.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return c.GetFloorplan(ctx, p)
}

// Similar searches for projects resembling the selected floor or room.
func (c *Client) Similar(ctx context.Context, sel selection.Selection) ([]Project, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	suffix, notFound := "/similar-floor", ErrNoSimilarFloor
	if sel.Type == selection.KindRoom {
		suffix, notFound = "/similar-room", ErrNoSimilarRoom
	}

	resp, err := c.get(ctx, c.baseURL+"/projects/"+url.PathEscape(sel.ID)+suffix)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", notFound, resp.StatusCode)
	}

	var projects []Project
	if err := decodeBody(resp.Body, &projects); err != nil {
		return nil, fmt.Errorf("decode similar projects: %w", err)
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(tunnelHeader, "1")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func decodeBody(r io.Reader, v any) error {
	return json.NewDecoder(io.LimitReader(r, maxBodyBytes)).Decode(v)
}
