// Package sources provides lazily produced file content for tree definitions.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/util"
)

type HTTPMethod = string

const (
	HTTPMethodGet  HTTPMethod = "GET"
	HTTPMethodPost HTTPMethod = "POST"
)

// DefaultHTTPTimeout bounds a single fetch when HTTPSource.Timeout is zero
const DefaultHTTPTimeout = 30 * time.Second

// ErrInvalidURL is returned by NewHTTPSource for anything but a plain
// http(s) URL with a host
var ErrInvalidURL = errors.New("invalid url")

// HTTPClient is the subset of *http.Client used to fetch content
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// HTTPSource fetches file content over HTTP when the entry is walked
type HTTPSource struct {
	URL     string            `json:"url" yaml:"url"`
	Method  *HTTPMethod       `json:"method,omitempty" yaml:"method,omitempty"` // Default is GET
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Timeout time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	Client HTTPClient `json:"-" yaml:"-"` // Default is http.DefaultClient
}

// NewHTTPSource validates rawURL and returns a GET source for it
func NewHTTPSource(rawURL string) (*HTTPSource, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}
	return &HTTPSource{URL: u}, nil
}

func validateURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if u.User != nil {
		return "", fmt.Errorf("%w: user info not allowed", ErrInvalidURL)
	}
	return u.String(), nil
}

// Bytes performs the request and returns the full response body
func (h *HTTPSource) Bytes() ([]byte, error) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return h.Fetch(ctx)
}

// Fetch is Bytes with a caller supplied context
func (h *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	logger := util.GetLogger("HTTPSource.Fetch")

	req, err := h.newRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: req.Method, URL: h.URL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logger.Trace().Str("url", h.URL).Int("size", len(data)).Msg("Fetched")
	return data, nil
}

func (h *HTTPSource) newRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, h.method(), h.URL, nil)
	if err != nil {
		return nil, err
	}

	// Add custom headers
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func (h *HTTPSource) method() HTTPMethod {
	return util.ValueOrDefault(h.Method, HTTPMethodGet)
}

func (h *HTTPSource) client() HTTPClient {
	if h.Client != nil {
		return h.Client
	}
	return http.DefaultClient
}

var _ treefs.Source = (*HTTPSource)(nil)
