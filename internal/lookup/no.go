package lookup

import (
	"context"
	"strings"
)

type noResponse struct {
	Reason string `json:"reason"`
}

// No returns a random reason to say no.
func (c *Client) No(ctx context.Context) (string, error) {
	var resp noResponse
	if err := c.getJSON(ctx, c.noURL, &resp); err != nil {
		return "", err
	}
	reason := strings.TrimSpace(resp.Reason)
	if reason == "" {
		return "", ErrNotFound
	}
	return reason, nil
}
