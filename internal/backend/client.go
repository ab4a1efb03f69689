// Package backend is the HTTP client for the potluck entry backend.
//
// The backend owns persistence, admin authentication and spreadsheet
// generation. Every call is a single round trip with no retry.
package backend

import (
	"bytes"
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

	"github.com/google/go-querystring/query"

	"github.com/Lixing-Zhang/potluck/internal/auth"
	"github.com/Lixing-Zhang/potluck/internal/metrics"
	"github.com/Lixing-Zhang/potluck/internal/models"
)

// Endpoint paths
const (
	PathEntries  = "/entries"
	PathSubmit   = "/submit"
	PathLogin    = "/admin/login"
	PathDownload = "/admin/download"
	PathDelete   = "/admin/delete"
	PathEdit     = "/admin/edit"
)

// ErrNetwork wraps every transport-level failure (DNS, refused connection,
// reset, unreadable body). Callers do not distinguish between them.
var ErrNetwork = errors.New("network error")

// StatusError is returned when the backend answers with a non-200 status.
type StatusError struct {
	StatusCode int
	// Detail is the backend's "detail" message, empty when absent.
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Detail extracts the backend detail message from err, if any.
func Detail(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Detail
	}
	return ""
}

// Client talks to the entry backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout. Zero means no timeout. The
// http.Client is copied so one passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Entries fetches the full ordered entry list.
func (c *Client) Entries(ctx context.Context) ([]models.Entry, error) {
	body, err := c.do(ctx, "entries", http.MethodGet, PathEntries, nil, "")
	if err != nil {
		return nil, err
	}

	var entries []models.Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

// Submit registers a new entry.
func (c *Client) Submit(ctx context.Context, e models.Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	_, err = c.do(ctx, "submit", http.MethodPost, PathSubmit, bytes.NewReader(payload), "application/json")
	return err
}

// Login checks the admin credential. It returns nil only when the backend
// accepted it.
func (c *Client) Login(ctx context.Context, cred auth.Credential) error {
	form := url.Values{}
	form.Set("password", cred.Secret())
	_, err := c.do(ctx, "login", http.MethodPost, PathLogin,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	return err
}

type downloadParams struct {
	Password string `url:"password"`
}

// Download fetches the spreadsheet export. The body is returned as-is.
func (c *Client) Download(ctx context.Context, cred auth.Credential) ([]byte, error) {
	v, err := query.Values(downloadParams{Password: cred.Secret()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode download query: %w", err)
	}
	return c.do(ctx, "download", http.MethodGet, PathDownload+"?"+v.Encode(), nil, "")
}

// Delete removes the entry at index (server order).
func (c *Client) Delete(ctx context.Context, cred auth.Credential, index int) error {
	payload, err := json.Marshal(models.DeleteRequest{Password: cred.Secret(), Index: index})
	if err != nil {
		return fmt.Errorf("failed to encode delete request: %w", err)
	}
	_, err = c.do(ctx, "delete", http.MethodPost, PathDelete, bytes.NewReader(payload), "application/json")
	return err
}

// Edit replaces the entry at index (server order).
func (c *Client) Edit(ctx context.Context, cred auth.Credential, index int, e models.Entry) error {
	payload, err := json.Marshal(models.NewEditRequest(cred.Secret(), index, e))
	if err != nil {
		return fmt.Errorf("failed to encode edit request: %w", err)
	}
	_, err = c.do(ctx, "edit", http.MethodPost, PathEdit, bytes.NewReader(payload), "application/json")
	return err
}

// do performs one request and returns the body of a 200 response.
func (c *Client) do(ctx context.Context, endpoint, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, metrics.OutcomeNetwork).Inc()
		c.logger.Warn("backend request failed", "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, metrics.OutcomeNetwork).Inc()
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, metrics.OutcomeRejected).Inc()
		c.logger.Info("backend rejected request", "endpoint", endpoint, "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Detail: parseDetail(data)}
	}

	metrics.BackendRequestsTotal.WithLabelValues(endpoint, metrics.OutcomeOK).Inc()
	c.logger.Debug("backend request ok", "endpoint", endpoint, "bytes", len(data))
	return data, nil
}

// parseDetail pulls a string "detail" out of an error body. Validation
// errors that carry a list in "detail" yield "".
func parseDetail(body []byte) string {
	var resp struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(resp.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
