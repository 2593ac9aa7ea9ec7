package server

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoice-backend/internal/account"
	"invoice-backend/internal/analyst"
	"invoice-backend/internal/analytics"
	googleauth "invoice-backend/internal/auth"
	"invoice-backend/internal/documents"
	"invoice-backend/internal/intake"
	"invoice-backend/internal/invoices"
	"invoice-backend/internal/shared/config"
	"invoice-backend/internal/shared/metrics"
	"invoice-backend/internal/shared/server/middleware"
	"invoice-backend/internal/shared/server/respond"
	"invoice-backend/internal/users"
)

// Rate-limit groups.
const (
	GroupExtract = "EXTRACT"
	GroupAnalyst = "ANALYST"
	GroupReview  = "REVIEW"
)

// RouterDeps carries the handlers the API exposes. Nil handlers are skipped.
type RouterDeps struct {
	Config           config.Config
	DB               *sql.DB
	ModelState       func() string
	IntakeHandler    *intake.Handler
	InvoiceHandler   *invoices.Handler
	AnalyticsHandler *analytics.Handler
	AnalystHandler   *analyst.Handler
	DocumentHandler  *documents.Handler
	AccountHandler   *account.Handler
	UserHandler      *users.Handler
	GoogleAuth       *googleauth.GoogleService
	RateLimits       map[string]middleware.RateLimitRule
}

// DefaultRateLimits applies per user and group.
func DefaultRateLimits() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		GroupExtract: {Rate: 0.2, Burst: 3},
		GroupAnalyst: {Rate: 0.5, Burst: 5},
		GroupReview:  {Rate: 5, Burst: 20},
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	limits := deps.RateLimits
	if limits == nil {
		limits = DefaultRateLimits()
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		metrics.Middleware(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    limits,
			GroupFor: rateLimitGroup,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", health(deps))

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.IntakeHandler != nil {
		deps.IntakeHandler.RegisterRoutes(api)
	}
	if deps.InvoiceHandler != nil {
		deps.InvoiceHandler.RegisterRoutes(api)
	}
	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.RegisterRoutes(api)
	}
	if deps.AnalystHandler != nil {
		deps.AnalystHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/v1/extractions":
		return GroupExtract
	case "/api/v1/analyst/ask":
		return GroupAnalyst
	case "/api/v1/review/edit", "/api/v1/review/draft", "/api/v1/review/cancel", "/api/v1/review/save":
		return GroupReview
	}
	return ""
}

func health(deps RouterDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{"ok": true, "storage": "memory"}
		if deps.DB != nil {
			resp["storage"] = "postgres"
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				resp["ok"] = false
				resp["storage"] = "unreachable"
			}
		}
		if deps.ModelState != nil {
			resp["model"] = deps.ModelState()
		}
		status := http.StatusOK
		if resp["ok"] == false {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, resp)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
