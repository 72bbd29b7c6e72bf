// ABOUTME: Assistant endpoint answering free-form operations questions

package client

import (
	"context"
	"fmt"
	"net/http"
)

// AskResponse is the assistant's reply.
type AskResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model,omitempty"`
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask calls POST /ai/ask. An empty body yields an empty answer.
func (c *Client) Ask(ctx context.Context, question string) (*AskResponse, error) {
	raw, err := c.Execute(ctx, "/ai/ask", &RequestOptions{
		Method: http.MethodPost,
		Body:   askRequest{Question: question},
	})
	if err != nil {
		return nil, err
	}

	var resp AskResponse
	if err := decodeInto(raw, &resp); err != nil {
		return nil, fmt.Errorf("invalid response from /ai/ask: %w", err)
	}
	return &resp, nil
}
