package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultBaseURL is the GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the number of retries for failed requests.
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "presto-registry/1.0"
)

// ErrNotFound is returned for HTTP 404 responses.
var ErrNotFound = fmt.Errorf("not found")

// Client talks to the GitHub API with bounded timeouts and retries.
// The token is held by the client only; it is never exported into any
// environment a child process could inherit.
type Client struct {
	http      *http.Client
	baseURL   string
	token     string
	userAgent string
	retries   int
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token for authenticated requests.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// NewClient creates a GitHub API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs an authenticated GET with retry and exponential backoff.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/vnd.github+json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, ErrNotFound
		case resp.StatusCode >= 500:
			// Server errors are worth a retry.
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		default:
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.retries, lastErr)
}

// getJSON fetches a URL and decodes the response body into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, v interface{}) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SearchTopic returns repositories carrying the given topic,
// most recently updated first.
func (c *Client) SearchTopic(ctx context.Context, topic string) ([]Repo, error) {
	q := url.Values{}
	q.Set("q", "topic:"+topic)
	q.Set("sort", "updated")
	q.Set("per_page", "100")

	var result struct {
		Items []Repo `json:"items"`
	}
	searchURL := fmt.Sprintf("%s/search/repositories?%s", c.baseURL, q.Encode())
	if err := c.getJSON(ctx, searchURL, &result); err != nil {
		return nil, fmt.Errorf("search topic %s: %w", topic, err)
	}
	return result.Items, nil
}

// LatestRelease returns the latest release of owner/repo.
func (c *Client) LatestRelease(ctx context.Context, ownerRepo string) (*Release, error) {
	var release Release
	releaseURL := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, ownerRepo)
	if err := c.getJSON(ctx, releaseURL, &release); err != nil {
		return nil, fmt.Errorf("latest release of %s: %w", ownerRepo, err)
	}
	return &release, nil
}

// Readme fetches a repository readme as decoded markdown. When dir is
// non-empty the readme is looked up in that subdirectory first, falling
// back to the repository root (official templates live in a monorepo).
func (c *Client) Readme(ctx context.Context, ownerRepo, dir string) (string, error) {
	if dir != "" {
		contentURL := fmt.Sprintf("%s/repos/%s/contents/%s/README.md", c.baseURL, ownerRepo, dir)
		content, err := c.readmeContent(ctx, contentURL)
		if err == nil {
			return content, nil
		}
	}

	rootURL := fmt.Sprintf("%s/repos/%s/readme", c.baseURL, ownerRepo)
	content, err := c.readmeContent(ctx, rootURL)
	if err != nil {
		return "", fmt.Errorf("readme of %s: %w", ownerRepo, err)
	}
	return content, nil
}

// readmeContent fetches one contents-API document and decodes its body.
func (c *Client) readmeContent(ctx context.Context, rawURL string) (string, error) {
	var doc struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := c.getJSON(ctx, rawURL, &doc); err != nil {
		return "", err
	}
	if doc.Encoding != "base64" {
		return "", fmt.Errorf("unexpected content encoding: %s", doc.Encoding)
	}
	decoded, err := base64.StdEncoding.DecodeString(doc.Content)
	if err != nil {
		return "", fmt.Errorf("decode readme: %w", err)
	}
	return string(decoded), nil
}

// DownloadAsset downloads a release asset to destPath, writing through a
// temporary file and renaming so a partial download never looks complete.
func (c *Client) DownloadAsset(ctx context.Context, downloadURL, destPath string) error {
	resp, err := c.get(ctx, downloadURL)
	if err != nil {
		return fmt.Errorf("download asset: %w", err)
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}
