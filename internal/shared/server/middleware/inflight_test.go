package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestOnePerUserRejectsConcurrentRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	guard := NewInFlight()
	entered := make(chan struct{})
	release := make(chan struct{})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(userIDKey, c.GetHeader("X-User"))
		c.Next()
	})
	router.POST("/work", OnePerUser(guard, "extraction"), func(c *gin.Context) {
		if c.Query("block") == "1" {
			close(entered)
			<-release
		}
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/work?block=1", nil)
		req.Header.Set("X-User", "u1")
		router.ServeHTTP(first, req)
		close(done)
	}()
	<-entered

	busy := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/work", nil)
	req.Header.Set("X-User", "u1")
	router.ServeHTTP(busy, req)
	if busy.Code != http.StatusConflict {
		t.Fatalf("expected 409 for concurrent request, got %d", busy.Code)
	}

	other := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/work", nil)
	req.Header.Set("X-User", "u2")
	router.ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Fatalf("other users must not be blocked, got %d", other.Code)
	}

	close(release)
	<-done
	if first.Code != http.StatusOK {
		t.Fatalf("first request should finish, got %d", first.Code)
	}

	again := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/work", nil)
	req.Header.Set("X-User", "u1")
	router.ServeHTTP(again, req)
	if again.Code != http.StatusOK {
		t.Fatalf("guard should be released, got %d", again.Code)
	}
}
