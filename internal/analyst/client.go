package analyst

import (
	"context"
	"fmt"
	"strings"

	"invoice-backend/internal/llm"
)

// Client answers natural-language questions over invoice records.
type Client struct {
	gen llm.Generator
}

func NewClient(gen llm.Generator) *Client {
	return &Client{gen: gen}
}

// Ask makes a single model call. Empty records or a blank question fail
// before the model is contacted.
func (c *Client) Ask(ctx context.Context, question string, records []Record) (string, error) {
	if len(records) == 0 {
		return "", ErrNoData
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	prompt, err := BuildPrompt(question, records)
	if err != nil {
		return "", err
	}

	answer, err := c.gen.Generate(llm.WithOperation(ctx, "analyst"), prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

// SuggestedQuestions returns the starter questions offered to users.
func SuggestedQuestions() []string {
	return []string{
		"What is my total spending across all invoices?",
		"Who is my top vendor by total spending?",
		"What is the average amount of an invoice?",
		"How many invoices do I have from [Vendor Name]?",
	}
}
