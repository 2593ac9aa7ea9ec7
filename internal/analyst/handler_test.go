package analyst

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type staticRecords []Record

func (s staticRecords) Records(context.Context, string) ([]Record, error) { return s, nil }

func newAnalystRouter(gen *stubGenerator, records staticRecords, guest bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "google:1")
		c.Set("isGuest", guest)
		c.Next()
	})
	NewHandler(NewClient(gen), records).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func ask(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyst/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAskHandler(t *testing.T) {
	cases := []struct {
		name     string
		records  staticRecords
		out      string
		body     string
		wantCode int
		wantBody string
	}{
		{name: "answered", records: sampleRecords, out: "  $200.50  ", body: `{"question":"total?"}`, wantCode: http.StatusOK, wantBody: `"answer":"$200.50"`},
		{name: "no data", records: nil, out: "x", body: `{"question":"total?"}`, wantCode: http.StatusNotFound, wantBody: "no_data"},
		{name: "blank question", records: sampleRecords, out: "x", body: `{"question":"  "}`, wantCode: http.StatusBadRequest, wantBody: "validation_error"},
		{name: "empty answer", records: sampleRecords, out: " \n", body: `{"question":"total?"}`, wantCode: http.StatusBadGateway, wantBody: "empty_answer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := ask(newAnalystRouter(&stubGenerator{out: tc.out}, tc.records, false), tc.body)
			if resp.Code != tc.wantCode || !strings.Contains(resp.Body.String(), tc.wantBody) {
				t.Fatalf("got %d %s, want %d containing %s", resp.Code, resp.Body.String(), tc.wantCode, tc.wantBody)
			}
		})
	}
}

func TestAskRequiresLogin(t *testing.T) {
	gen := &stubGenerator{out: "x"}
	resp := ask(newAnalystRouter(gen, sampleRecords, true), `{"question":"total?"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if gen.calls != 0 {
		t.Fatalf("model must not be called for guests")
	}
}

func TestSuggestions(t *testing.T) {
	router := newAnalystRouter(&stubGenerator{}, nil, false)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyst/suggestions", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "top vendor") {
		t.Fatalf("unexpected suggestions %d %s", resp.Code, resp.Body.String())
	}
}
