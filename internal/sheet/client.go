package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Backend defines the sheet operations the tracker consumes. It is implemented
// by *Client and by test doubles.
type Backend interface {
	FetchTopic(ctx context.Context, topicID string) (Topic, error)
	FetchAllTopics(ctx context.Context) ([]Topic, error)
	FetchProgress(ctx context.Context) ([]ProgressRecord, error)
	FetchProgressStats(ctx context.Context) (*Stats, error)
	PostProgress(ctx context.Context, problemID string, completed bool) error
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

// Client talks to the sheet HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultAPIURL    = "127.0.0.1:8740"
	defaultUserAgent = "ladder/0.1"
	requestTimeout   = 5 * time.Second
	maxErrorBody     = 4 << 10
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the given host:port or URL.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchTopic retrieves a single topic. Unknown ids fail with ErrNotFound.
func (c *Client) FetchTopic(ctx context.Context, topicID string) (Topic, error) {
	if c == nil {
		return Topic{}, fmt.Errorf("client is nil")
	}
	topicID = strings.TrimSpace(topicID)
	if topicID == "" {
		return Topic{}, fmt.Errorf("topic id required")
	}
	var payload Topic
	rel := &url.URL{
		Path:    "/api/topics/" + topicID,
		RawPath: "/api/topics/" + url.PathEscape(topicID),
	}
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return Topic{}, err
	}
	return payload, nil
}

// FetchAllTopics retrieves every topic in sheet order.
func (c *Client) FetchAllTopics(ctx context.Context) ([]Topic, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload TopicListResponse
	if err := c.do(ctx, http.MethodGet, "/api/topics", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Topics, nil
}

// FetchProgress retrieves the current user's progress records.
func (c *Client) FetchProgress(ctx context.Context) ([]ProgressRecord, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload ProgressListResponse
	if err := c.do(ctx, http.MethodGet, "/api/progress", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Progress, nil
}

// FetchProgressStats retrieves the backend's precomputed figures. A 404 means
// the backend does not offer them and yields (nil, nil).
func (c *Client) FetchProgressStats(ctx context.Context) (*Stats, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Stats
	if err := c.do(ctx, http.MethodGet, "/api/progress/stats", nil, &payload); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payload, nil
}

// PostProgress sets the completed flag for a problem.
func (c *Client) PostProgress(ctx context.Context, problemID string, completed bool) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(problemID) == "" {
		return fmt.Errorf("problem id required")
	}
	body := ProgressUpdate{ProblemID: problemID, Completed: completed}
	return c.do(ctx, http.MethodPost, "/api/progress", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Path:       rel.Path,
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w: %w", ErrServer, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope ErrorResponse
	if json.Unmarshal(raw, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = DefaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
