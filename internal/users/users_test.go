package users

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func TestUpsertKeepsChosenName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())
	if err := svc.UpsertFromAuth(ctx, User{ID: "google:1", Email: "a@example.com", Name: "Google Name"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.UpdateName(ctx, "google:1", "  Chosen  "); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if err := svc.UpsertFromAuth(ctx, User{ID: "google:1", Email: "a@example.com", Name: "Google Name"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	user, _ := svc.GetByID(ctx, "google:1")
	if user.Name != "Chosen" {
		t.Fatalf("expected chosen name to survive sign-in, got %q", user.Name)
	}
}

func TestUpdateNameValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	for _, name := range []string{"", "   ", strings.Repeat("x", maxNameLength+1)} {
		if _, err := svc.UpdateName(context.Background(), "google:1", name); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%q: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if _, err := svc.UpdateName(context.Background(), "google:missing", "Ok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectQuery("SELECT id, email, name, picture_url").
		WithArgs("google:1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "picture_url", "created_at", "updated_at"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "google:1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	now := time.Now().UTC()
	mock.ExpectQuery("UPDATE users SET name").
		WithArgs("google:1", "New").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "picture_url", "created_at", "updated_at"}).
			AddRow("google:1", "a@example.com", "New", "", now, now))

	repo := &PGRepo{DB: db}
	user, err := repo.UpdateName(context.Background(), "google:1", "New")
	if err != nil || user.Name != "New" {
		t.Fatalf("UpdateName = %+v, %v", user, err)
	}
}

func newRouter(svc *Service, userID string, guest bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", guest)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestMeAndProfile(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_ = svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: "a@example.com", Name: "A"})
	router := newRouter(svc, "google:1", false)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", strings.NewReader(`{"name":"Alex"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"name":"Alex"`) {
		t.Fatalf("unexpected /me %d %s", resp.Code, resp.Body.String())
	}
}

func TestMeForGuest(t *testing.T) {
	router := newRouter(NewService(NewMemoryRepo()), "guest:abc", true)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"isGuest":true`) {
		t.Fatalf("unexpected /me %d %s", resp.Code, resp.Body.String())
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", strings.NewReader(`{"name":"x"}`))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("guest profile update: expected 401, got %d", resp.Code)
	}
}
