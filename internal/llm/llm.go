package llm

import (
	"context"
	"errors"
)

// Generator sends one prompt, optionally with inline attachments, to a model
// and returns its raw text answer. Implementations never retry.
type Generator interface {
	Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error)
}

// Attachment is an inline file part (image or PDF).
type Attachment struct {
	Data     []byte
	MimeType string
}

// TextOnly is implemented by generators that may not accept attachments.
type TextOnly interface {
	TextOnly() bool
}

// AcceptsAttachments reports whether gen can take inline files.
func AcceptsAttachments(gen Generator) bool {
	if t, ok := gen.(TextOnly); ok {
		return !t.TextOnly()
	}
	return true
}

// ForceTextOnly marks gen as unable to take attachments, for models the
// operator knows are text-only.
func ForceTextOnly(gen Generator) Generator {
	return textOnlyGenerator{Generator: gen}
}

type textOnlyGenerator struct {
	Generator
}

func (textOnlyGenerator) TextOnly() bool { return true }

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

func (PlaceholderClient) Generate(context.Context, string, ...Attachment) (string, error) {
	return "", ErrNotImplemented
}

type responseFormatKey struct{}

// WithResponseFormat asks providers to constrain the answer format ("json" or "text").
func WithResponseFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, responseFormatKey{}, format)
}

// ResponseFormatFromContext returns the requested answer format, if any.
func ResponseFormatFromContext(ctx context.Context) (string, bool) {
	format, ok := ctx.Value(responseFormatKey{}).(string)
	return format, ok && format != ""
}

type operationKey struct{}

// WithOperation labels the call for logs ("extraction", "analyst").
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext returns the operation label or "unknown".
func OperationFromContext(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return "unknown"
}
