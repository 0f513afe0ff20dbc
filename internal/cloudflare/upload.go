package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/drewsiph/sitekeeper/internal/common"
)

type imageResponse struct {
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
	Result  struct {
		ID       string    `json:"id"`
		Uploaded time.Time `json:"uploaded"`
		Filename string    `json:"filename"`
	} `json:"result"`
}

type streamResponse struct {
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
	Result  struct {
		UID      string    `json:"uid"`
		Created  time.Time `json:"created"`
		Playback struct {
			HLS string `json:"hls"`
		} `json:"playback"`
		Thumbnail string `json:"thumbnail"`
	} `json:"result"`
}

// UploadImage pushes image bytes plus a metadata JSON part to the Images API
// and returns delivery URLs constructed from the account's delivery hash.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte, metadata any) (*UploadResult, error) {
	body, contentType, err := multipartBody(filename, data, metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", common.ErrorUpload, err)
	}

	url := fmt.Sprintf("%s/accounts/%s/images/v1", c.baseURL, c.accountID)
	respBody, err := c.post(ctx, url, body, contentType)
	if err != nil {
		return nil, err
	}

	var resp imageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", common.ErrorUpload, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrorUpload, joinErrors(resp.Errors))
	}

	return &UploadResult{
		ID:           resp.Result.ID,
		Uploaded:     resp.Result.Uploaded,
		Filename:     resp.Result.Filename,
		PublicURL:    c.deliveryURL(resp.Result.ID, "public"),
		ThumbnailURL: c.deliveryURL(resp.Result.ID, "thumbnail"),
	}, nil
}

// UploadVideo pushes video bytes to the Stream API. PublicURL on the result
// is the HLS playback URL; the thumbnail comes from the provider.
func (c *Client) UploadVideo(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	body, contentType, err := multipartBody(filename, data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", common.ErrorUpload, err)
	}

	url := fmt.Sprintf("%s/accounts/%s/stream", c.baseURL, c.accountID)
	respBody, err := c.post(ctx, url, body, contentType)
	if err != nil {
		return nil, err
	}

	var resp streamResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", common.ErrorUpload, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrorUpload, joinErrors(resp.Errors))
	}

	return &UploadResult{
		ID:           resp.Result.UID,
		Uploaded:     resp.Result.Created,
		Filename:     filename,
		PublicURL:    resp.Result.Playback.HLS,
		ThumbnailURL: resp.Result.Thumbnail,
	}, nil
}
