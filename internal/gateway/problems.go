// ABOUTME: Problem catalogue operations
// ABOUTME: Listing and detail lookups for the CLI and submit flow

package gateway

import (
	"context"
	"net/http"

	"github.com/loco-dev/loco-client/internal/api"
)

// ListProblems returns the problem catalogue.
func (c *Client) ListProblems(ctx context.Context) ([]api.Problem, error) {
	resp, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: api.EndpointProblems})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []api.Problem `json:"data"`
	}
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// GetProblem fetches one problem by slug.
func (c *Client) GetProblem(ctx context.Context, slug string) (*api.Problem, error) {
	resp, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: api.EndpointProblem(slug)})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data api.Problem `json:"data"`
	}
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}
