// Package cloudflare implements the media upload client against the
// Cloudflare Images and Stream APIs. Each upload is a single multipart call;
// retries, if any, belong to the caller.
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/drewsiph/sitekeeper/internal/common"
)

const (
	DefaultBaseURL = "https://api.cloudflare.com/client/v4"
	DefaultCDNHost = "imagedelivery.net"
)

type Client struct {
	httpClient   *http.Client
	baseURL      string
	cdnHost      string
	accountID    string
	apiToken     string
	deliveryHash string
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithCDNHost(h string) Option {
	return func(c *Client) { c.cdnHost = h }
}

func NewClient(accountID, apiToken, deliveryHash string, opts ...Option) *Client {
	c := &Client{
		httpClient:   http.DefaultClient,
		baseURL:      DefaultBaseURL,
		cdnHost:      DefaultCDNHost,
		accountID:    accountID,
		apiToken:     apiToken,
		deliveryHash: deliveryHash,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadResult describes a stored asset and its stable delivery URLs.
// For videos PublicURL is the HLS playback URL.
type UploadResult struct {
	ID           string
	Uploaded     time.Time
	Filename     string
	PublicURL    string
	ThumbnailURL string
}

type apiError struct {
	Message string `json:"message"`
}

func joinErrors(errs []apiError) string {
	if len(errs) == 0 {
		return "Unknown error"
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, ", ")
}

// multipartBody builds a form with the file part and an optional metadata
// JSON part, matching what the Images API expects.
func multipartBody(filename string, data []byte, metadata any) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}

	if metadata != nil {
		metaJSON, err := json.Marshal(metadata)
		if err != nil {
			return nil, "", err
		}
		if err := w.WriteField("metadata", string(metaJSON)); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) post(ctx context.Context, url string, body *bytes.Buffer, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUpload, err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// deliveryURL builds the client-side delivery URL for an image variant.
func (c *Client) deliveryURL(id, variant string) string {
	return fmt.Sprintf("https://%s/%s/%s/%s", c.cdnHost, c.deliveryHash, id, variant)
}
