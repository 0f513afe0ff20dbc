// Package github implements the remote document gateway over the GitHub
// REST contents and workflow-dispatch APIs. Content bodies travel base64
// encoded per the API contract; callers of this package always work with
// plain UTF-8 text. File SHAs act as optimistic lock tokens: every read
// returns one, every write requires the current one and rotates it.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/drewsiph/sitekeeper/internal/common"
)

const DefaultBaseURL = "https://api.github.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
	token      string
}

type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient builds a gateway bound to one repository and one bearer token.
// Clients are cheap; the API layer constructs one per request from the
// session's access token.
func NewClient(owner, repo, token string, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		owner:      owner,
		repo:       repo,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends a request with the standard headers and returns the status code
// and raw response body.
func (c *Client) do(ctx context.Context, method, url string, reqBody any) (int, []byte, error) {
	var payload io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *Client) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, c.owner, c.repo, path)
}

// writeError maps a rejected write/delete to the sentinel taxonomy. The
// remote signals a stale lock token with 409; 422 covers the sha-required
// variant of the same race (the file appeared since the caller's read).
func writeError(op, path string, status int, body []byte) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", op, path, common.ErrorNotFound)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s %s: %w", op, path, common.ErrorConflict)
	default:
		return fmt.Errorf("%s %s: unexpected status %d: %s", op, path, status, body)
	}
}
