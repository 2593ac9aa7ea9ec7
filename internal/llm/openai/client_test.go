package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"invoice-backend/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestTextOnlyModels(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{model: "gpt-3.5-turbo", want: true},
		{model: " O3-mini ", want: true},
		{model: "gpt-4o", want: false},
		{model: "gpt-5-mini", want: false},
	}
	for _, tt := range tests {
		c, err := NewClient("key", tt.model)
		if err != nil {
			t.Fatalf("NewClient(%q): %v", tt.model, err)
		}
		if got := c.TextOnly(); got != tt.want {
			t.Fatalf("TextOnly(%q) = %v, want %v", tt.model, got, tt.want)
		}
		if got := llm.AcceptsAttachments(llm.NewGuarded(c, llm.GuardConfig{})); got == tt.want {
			t.Fatalf("guarded %q AcceptsAttachments = %v", tt.model, got)
		}
	}
}

func withServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	prev := apiURL
	apiURL = srv.URL
	t.Cleanup(func() { apiURL = prev })

	c, err := NewClient("sk-test", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestGenerateSendsAttachmentsAsParts(t *testing.T) {
	var got map[string]any
	c := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"vendor_name\":\"ACME\"}"}}],"usage":{"prompt_tokens":10,"completion_tokens":4}}`))
	})

	ctx := llm.WithResponseFormat(context.Background(), "json")
	out, err := c.Generate(ctx, "extract",
		llm.Attachment{Data: []byte("png"), MimeType: "image/png"},
		llm.Attachment{Data: []byte("%PDF"), MimeType: "application/pdf"},
	)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"vendor_name":"ACME"}` {
		t.Fatalf("unexpected output %q", out)
	}

	if rf, _ := got["response_format"].(map[string]any); rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", got["response_format"])
	}
	msgs := got["messages"].([]any)
	parts := msgs[0].(map[string]any)["content"].([]any)
	if len(parts) != 3 {
		t.Fatalf("expected text + 2 attachment parts, got %d", len(parts))
	}
	image := parts[1].(map[string]any)
	if image["type"] != "image_url" || !strings.HasPrefix(image["image_url"].(map[string]any)["url"].(string), "data:image/png;base64,") {
		t.Fatalf("unexpected image part %v", image)
	}
	file := parts[2].(map[string]any)
	if file["type"] != "file" || !strings.HasPrefix(file["file"].(map[string]any)["file_data"].(string), "data:application/pdf;base64,") {
		t.Fatalf("unexpected file part %v", file)
	}
}

func TestGenerateTextOnlyPromptIsPlainString(t *testing.T) {
	var got map[string]any
	c := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Your total is $5.00.  "}}]}`))
	})

	out, err := c.Generate(context.Background(), "question")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "  Your total is $5.00.  " {
		t.Fatalf("answer should be returned untrimmed, got %q", out)
	}
	if _, ok := got["response_format"]; ok {
		t.Fatalf("no response_format expected without a hint")
	}
	if content := got["messages"].([]any)[0].(map[string]any)["content"]; content != "question" {
		t.Fatalf("expected string content, got %v", content)
	}
}

func TestGenerateSurfacesHTTPErrorsAndEmptyChoices(t *testing.T) {
	c := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	})
	if _, err := c.Generate(context.Background(), "p"); err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}

	c = withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	out, err := c.Generate(context.Background(), "p")
	if err != nil || out != "" {
		t.Fatalf("expected empty answer without error, got %q %v", out, err)
	}
}

func TestNewClientValidates(t *testing.T) {
	if _, err := NewClient("", "gpt-4o"); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewClient("k", " "); err == nil {
		t.Fatalf("expected missing model error")
	}
}
