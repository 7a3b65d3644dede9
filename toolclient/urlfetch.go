package toolclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// URLFetch is a tool that retrieves a URL's text content, grounded on
// tool/brave.go's functional-options construction shape.
type URLFetch struct {
	Client    *http.Client
	MaxBytes  int64
	UserAgent string
}

// URLFetchOption configures a URLFetch.
type URLFetchOption func(*URLFetch)

// WithURLFetchMaxBytes caps how much of the response body is read.
func WithURLFetchMaxBytes(n int64) URLFetchOption {
	return func(u *URLFetch) { u.MaxBytes = n }
}

// WithURLFetchUserAgent sets the outbound User-Agent header.
func WithURLFetchUserAgent(ua string) URLFetchOption {
	return func(u *URLFetch) { u.UserAgent = ua }
}

// WithURLFetchHTTPClient overrides the http.Client used for requests.
func WithURLFetchHTTPClient(client *http.Client) URLFetchOption {
	return func(u *URLFetch) { u.Client = client }
}

// NewURLFetch creates a URLFetch tool with sensible defaults.
func NewURLFetch(opts ...URLFetchOption) *URLFetch {
	u := &URLFetch{
		Client:    &http.Client{},
		MaxBytes:  1 << 20, // 1MiB
		UserAgent: "quillforge-core-toolclient/1.0",
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *URLFetch) Name() string { return "URL_Fetch" }

func (u *URLFetch) Description() string {
	return "Fetches the text content of a URL. Input should be a fully qualified http(s) URL."
}

func (u *URLFetch) Call(ctx context.Context, input string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(input), nil)
	if err != nil {
		return "", fmt.Errorf("toolclient: build request: %w", err)
	}
	req.Header.Set("User-Agent", u.UserAgent)

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("toolclient: fetch %s: %w", input, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", httpError(resp.StatusCode, input)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, u.MaxBytes))
	if err != nil {
		return "", fmt.Errorf("toolclient: read body: %w", err)
	}
	return string(body), nil
}
