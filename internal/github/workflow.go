package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/drewsiph/sitekeeper/internal/common"
)

// DispatchWorkflow triggers an asynchronous workflow run on the main branch.
// The call is fire-and-forget: a success status means the run was accepted,
// not that the downstream job finished or even started.
func (c *Client) DispatchWorkflow(ctx context.Context, workflowID string, inputs map[string]string) error {
	url := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/dispatches", c.baseURL, c.owner, c.repo, workflowID)

	req := struct {
		Ref    string            `json:"ref"`
		Inputs map[string]string `json:"inputs"`
	}{Ref: "main", Inputs: inputs}

	status, body, err := c.do(ctx, http.MethodPost, url, req)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w: %v", workflowID, common.ErrorDispatch, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("dispatch %s: %w: status %d: %s", workflowID, common.ErrorDispatch, status, body)
	}
	return nil
}

// CurrentUser returns the login of the user owning the bearer token.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}
	if status == http.StatusUnauthorized {
		return "", fmt.Errorf("current user: %w", common.ErrorUnauthorized)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("current user: unexpected status %d: %s", status, body)
	}

	var resp struct {
		Login string `json:"login"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("current user: decoding response: %w", err)
	}
	return resp.Login, nil
}
