package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/drewsiph/sitekeeper/internal/common"
)

// File is a decoded remote file plus its current lock token.
type File struct {
	Body string
	SHA  string
}

// Entry is one item of a directory listing.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Type string `json:"type"`
}

type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type writeResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// ReadFile fetches a file and decodes its body. Returns common.ErrorNotFound
// when the path does not exist.
func (c *Client) ReadFile(ctx context.Context, path string) (*File, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.contentsURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("read %s: %w", path, common.ErrorNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("read %s: unexpected status %d: %s", path, status, body)
	}

	var resp contentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("read %s: decoding response: %w", path, err)
	}

	// the API wraps base64 content across lines
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("read %s: decoding content: %w", path, err)
	}

	return &File{Body: string(decoded), SHA: resp.SHA}, nil
}

// WriteFile writes body to path and returns the rotated lock token. An empty
// sha creates the file; a stale sha fails with common.ErrorConflict and
// leaves the remote file unchanged.
func (c *Client) WriteFile(ctx context.Context, path, body, sha, message string) (string, error) {
	req := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(body)),
	}
	if sha != "" {
		req["sha"] = sha
	}

	status, respBody, err := c.do(ctx, http.MethodPut, c.contentsURL(path), req)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", writeError("write", path, status, respBody)
	}

	var resp writeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("write %s: decoding response: %w", path, err)
	}
	return resp.Content.SHA, nil
}

// DeleteFile removes path. The sha must be current; a stale one fails with
// common.ErrorConflict, a missing file with common.ErrorNotFound.
func (c *Client) DeleteFile(ctx context.Context, path, sha, message string) error {
	req := map[string]string{"message": message, "sha": sha}

	status, respBody, err := c.do(ctx, http.MethodDelete, c.contentsURL(path), req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	if status != http.StatusOK {
		return writeError("delete", path, status, respBody)
	}
	return nil
}

// ReadCollection reads a JSON-array document into items and returns the lock
// token. Collections are lazily created: a missing document yields an empty
// sha and leaves items untouched, not an error.
func (c *Client) ReadCollection(ctx context.Context, path string, items any) (string, error) {
	f, err := c.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil
		}
		return "", err
	}

	if err := json.Unmarshal([]byte(f.Body), items); err != nil {
		return "", fmt.Errorf("read collection %s: decoding array: %w", path, err)
	}
	return f.SHA, nil
}

// WriteCollection writes items back as an indented JSON array. The sha rules
// match WriteFile: the token guards the whole array.
func (c *Client) WriteCollection(ctx context.Context, path string, items any, sha, message string) (string, error) {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("write collection %s: encoding array: %w", path, err)
	}
	return c.WriteFile(ctx, path, string(data), sha, message)
}

// ListDirectory returns the entries under path, or an empty slice when the
// directory does not exist yet.
func (c *Client) ListDirectory(ctx context.Context, path string) ([]Entry, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.contentsURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	if status == http.StatusNotFound {
		return []Entry{}, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list %s: unexpected status %d: %s", path, status, body)
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("list %s: decoding response: %w", path, err)
	}
	return entries, nil
}
