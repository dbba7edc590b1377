// ABOUTME: Submission operations: submit a solution and read judging status
// ABOUTME: The poller drives GetSubmission until a terminal verdict appears

package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/loco-dev/loco-client/internal/api"
)

// SubmitSolution sends code for judging and returns the accepted submission,
// initially in a non-terminal status.
func (c *Client) SubmitSolution(ctx context.Context, problemID, languageID int, code string) (*api.Submission, error) {
	resp, err := c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   api.EndpointSubmit(problemID),
		Body:   api.SubmitRequest{LanguageID: languageID, Code: code},
	})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data api.Submission `json:"data"`
	}
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.Data.ID == 0 {
		return nil, fmt.Errorf("submit response missing submission id")
	}
	return &envelope.Data, nil
}

// GetSubmission fetches the current judging status of a submission.
func (c *Client) GetSubmission(ctx context.Context, id int) (*api.Submission, error) {
	resp, err := c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   api.EndpointSubmission(id),
	})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data api.Submission `json:"data"`
	}
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// ListSubmissions pages through the authenticated user's submission history.
func (c *Client) ListSubmissions(ctx context.Context, page, limit int) (*api.SubmissionPage, error) {
	resp, err := c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("%s?page=%d&limit=%d", api.EndpointSubmissions, page, limit),
	})
	if err != nil {
		return nil, err
	}

	var out api.SubmissionPage
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
