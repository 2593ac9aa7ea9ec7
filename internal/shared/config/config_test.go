package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesYAMLUnderEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
port: 9090
llm_provider: gemini
llm_max_rps: 0.5
cors_allow_origins:
  - http://a.test
  - http://b.test
llm_breaker_open_timeout: 10s
llm_text_only: true
review_session_ttl: 5m
review_max_sessions: 250
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	for _, key := range []string{"LLM_PROVIDER", "LLM_MAX_RPS", "CORS_ALLOW_ORIGINS", "LLM_BREAKER_OPEN_TIMEOUT", "LLM_TEXT_ONLY", "REVIEW_SESSION_TTL", "REVIEW_MAX_SESSIONS"} {
		unsetForTest(t, key)
	}

	cfg := Load()
	if cfg.Port != "7070" {
		t.Fatalf("expected env PORT to win, got %s", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected provider gemini, got %s", cfg.LLMProvider)
	}
	if cfg.LLMMaxRPS != 0.5 {
		t.Fatalf("expected max rps 0.5, got %v", cfg.LLMMaxRPS)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.test" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowOrigin)
	}
	if cfg.LLMBreakerTimeout != 10*time.Second {
		t.Fatalf("expected breaker timeout 10s, got %s", cfg.LLMBreakerTimeout)
	}
	if !cfg.LLMTextOnly {
		t.Fatalf("expected text-only model from config file")
	}
	if cfg.ReviewSessionTTL != 5*time.Minute || cfg.ReviewMaxSessions != 250 {
		t.Fatalf("unexpected review limits %s %d", cfg.ReviewSessionTTL, cfg.ReviewMaxSessions)
	}
}

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "openai"},
		{in: "OpenAI", want: "openai"},
		{in: "vertex", want: "gemini"},
		{in: " gemini ", want: "gemini"},
		{in: "none", want: "placeholder"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeProvider(tt.in); got != tt.want {
				t.Fatalf("normalizeProvider(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func unsetForTest(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}
