package extraction

import (
	"context"
	"fmt"

	"invoice-backend/internal/llm"
)

// Client runs the extraction contract against a Generator: build the
// request, make one model call, strip fences, parse and repair.
type Client struct {
	gen llm.Generator
}

func NewClient(gen llm.Generator) *Client {
	return &Client{gen: gen}
}

// Extract makes a single attempt. Transport failures are wrapped in
// ErrModelUnavailable; response problems surface as ErrEmptyResponse or
// ErrMalformedResponse.
func (c *Client) Extract(ctx context.Context, in Input) (Result, error) {
	req, err := BuildRequest(in)
	if err != nil {
		return nil, err
	}

	ctx = llm.WithOperation(llm.WithResponseFormat(ctx, "json"), "extraction")
	raw, err := c.gen.Generate(ctx, req.Prompt, req.Attachments...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	return ParseResponse(raw, in.Text)
}
