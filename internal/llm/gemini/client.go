package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"invoice-backend/internal/llm"
	"invoice-backend/internal/shared/metrics"
	"invoice-backend/internal/shared/telemetry"
)

const defaultModel = "gemini-2.5-flash"

// Client implements llm.Generator on Vertex AI Gemini models. Attachments are
// sent as inline blobs ahead of the prompt text.
type Client struct {
	base      *genai.Client
	modelName string
}

// NewClient connects to Vertex AI in the given project and region using
// application default credentials.
func NewClient(ctx context.Context, projectID, region, model string) (*Client, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("gemini: GCP_PROJECT_ID and VERTEX_REGION are required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	base, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &Client{base: base, modelName: model}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string, attachments ...llm.Attachment) (string, error) {
	model := c.base.GenerativeModel(c.modelName)
	model.GenerationConfig = generationConfig(ctx)

	parts := make([]genai.Part, 0, len(attachments)+1)
	for _, a := range attachments {
		parts = append(parts, genai.Blob{MIMEType: a.MimeType, Data: a.Data})
	}
	parts = append(parts, genai.Text(prompt))

	start := time.Now()
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	fields := map[string]any{
		"provider":    "gemini",
		"model":       c.modelName,
		"operation":   llm.OperationFromContext(ctx),
		"attachments": len(attachments),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		in, out := int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount)
		fields["prompt_tokens"] = in
		fields["completion_tokens"] = out
		metrics.ObserveModelTokens("gemini", c.modelName, in, out)
	}
	telemetry.Info("llm.response", fields)

	return responseText(resp), nil
}

func generationConfig(ctx context.Context) genai.GenerationConfig {
	cfg := genai.GenerationConfig{Temperature: genai.Ptr[float32](0)}
	if format, ok := llm.ResponseFormatFromContext(ctx); ok && format == "json" {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

func (c *Client) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

var _ llm.Generator = (*Client)(nil)
