package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"invoice-backend/internal/shared/config"
)

func TestBuildDevFallsBackToMemoryAndPlaceholder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(config.Config{
		Env:           "dev",
		LLMProvider:   "openai",
		LocalStoreDir: t.TempDir(),
		LogLevel:      "error",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	if app.DB != nil {
		t.Fatalf("expected memory storage without DATABASE_URL")
	}
	if app.Store.Provider() != "local" {
		t.Fatalf("expected local store, got %s", app.Store.Provider())
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"storage":"memory"`) {
		t.Fatalf("unexpected health body %s", resp.Body.String())
	}
}

func TestBuildProductionRequiresDatabase(t *testing.T) {
	_, err := Build(config.Config{Env: "production", LLMProvider: "placeholder", LocalStoreDir: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestBuildS3RequiresBucket(t *testing.T) {
	_, err := Build(config.Config{Env: "dev", ObjectStoreType: "s3", LLMProvider: "placeholder"})
	if err == nil || !strings.Contains(err.Error(), "S3_BUCKET") {
		t.Fatalf("expected bucket error, got %v", err)
	}
}

func TestBuildTextOnlyModels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		cfg  config.Config
		want bool
	}{
		{name: "attachments by default", cfg: config.Config{LLMProvider: "openai", OpenAIAPIKey: "k", LLMModel: "gpt-4o"}, want: false},
		{name: "text-only model name", cfg: config.Config{LLMProvider: "openai", OpenAIAPIKey: "k", LLMModel: "gpt-3.5-turbo"}, want: true},
		{name: "configured text-only", cfg: config.Config{LLMProvider: "placeholder", LLMTextOnly: true}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.Env = "dev"
			cfg.LocalStoreDir = t.TempDir()
			app, err := Build(cfg)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			defer app.Close()
			if app.IntakeService.TextOnly != tc.want {
				t.Fatalf("TextOnly = %v, want %v", app.IntakeService.TextOnly, tc.want)
			}
		})
	}
}
