// Package apiclient talks to a running fincast daemon over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/fincast/internal/daemon"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/service"
)

const (
	requestTimeout = 10 * time.Second
	uploadTimeout  = 2 * time.Minute
	maxBodySize    = 4 << 20
)

var (
	// ErrBadRequest indicates the daemon rejected the request input.
	ErrBadRequest = errors.New("apiclient: bad request")
	// ErrNotTrained indicates the daemon has no trained model yet.
	ErrNotTrained = errors.New("apiclient: model not trained")
)

// APIError is a non-2xx response. It unwraps to ErrBadRequest or
// ErrNotTrained for 400 and 409.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("apiclient: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("apiclient: %s (HTTP %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusConflict:
		return ErrNotTrained
	}
	return nil
}

// UploadResult is returned by the ledger upload endpoints.
type UploadResult struct {
	Message     string                            `json:"message"`
	Processed   int                               `json:"processed"`
	Saved       int                               `json:"saved"`
	Trained     bool                              `json:"trained"`
	Accuracy    map[model.FlowType]model.Accuracy `json:"accuracy"`
	Predictions *model.Forecast                   `json:"predictions,omitempty"`
}

// Client calls the daemon API rooted at a base URL.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for addr, given either as host:port or as a full
// http(s) URL.
func New(addr string) (*Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("apiclient: empty daemon address")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parsing address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: unsupported scheme %q", u.Scheme)
	}
	return &Client{
		base: strings.TrimRight(u.String(), "/"),
		http: &http.Client{},
	}, nil
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (daemon.Status, error) {
	var st daemon.Status
	err := c.getJSON(ctx, "/v1/status", &st)
	return st, err
}

// Predictions fetches a forecast from the latest stored period.
func (c *Client) Predictions(ctx context.Context) (model.Forecast, error) {
	var f model.Forecast
	err := c.getJSON(ctx, "/api/predictions", &f)
	return f, err
}

// Health fetches /api/health.
func (c *Client) Health(ctx context.Context) (service.Health, error) {
	var h service.Health
	err := c.getJSON(ctx, "/api/health", &h)
	return h, err
}

// ModelStats fetches /api/model-stats.
func (c *Client) ModelStats(ctx context.Context) (service.Stats, error) {
	var s service.Stats
	err := c.getJSON(ctx, "/api/model-stats", &s)
	return s, err
}

// History fetches up to limit stored predictions, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	var h []model.HistoryEntry
	err := c.getJSON(ctx, "/api/history?limit="+strconv.Itoa(limit), &h)
	return h, err
}

// UploadHistorical sends a ledger file to /api/historical-data.
func (c *Client) UploadHistorical(ctx context.Context, path string) (UploadResult, error) {
	return c.upload(ctx, "/api/historical-data", path)
}

// UploadMonthly sends a ledger file to /api/monthly-update.
func (c *Client) UploadMonthly(ctx context.Context, path string) (UploadResult, error) {
	return c.upload(ctx, "/api/monthly-update", path)
}

func (c *Client) upload(ctx context.Context, endpoint, path string) (UploadResult, error) {
	//nolint:gosec // path is chosen by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return UploadResult{}, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return UploadResult{}, fmt.Errorf("apiclient: building upload: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return UploadResult{}, fmt.Errorf("apiclient: building upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("apiclient: building upload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, &buf)
	if err != nil {
		return UploadResult{}, fmt.Errorf("apiclient: creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var res UploadResult
	err = c.do(req, &res)
	return res, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("apiclient: creating request: %w", err)
	}
	return c.do(req, out)
}

// do sends req and decodes a 2xx JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fincast/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("apiclient: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("apiclient: parsing %s: %w", req.URL.Path, err)
	}
	return nil
}
