package respond

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestUnavailableRoundsRetryAfterUp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		Unavailable(c, "model_unavailable", "try later", 1500*time.Millisecond)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	if got := resp.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
	if !strings.Contains(resp.Body.String(), `"code":"model_unavailable"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestAttachmentSetsDisposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		Attachment(c, "invoices.csv", "text/csv; charset=utf-8", []byte("a\n"))
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))
	if got := resp.Header().Get("Content-Disposition"); got != "attachment; filename=invoices.csv" {
		t.Fatalf("unexpected disposition %q", got)
	}
	if resp.Body.String() != "a\n" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}
