package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"invoice-backend/internal/account"
	"invoice-backend/internal/analyst"
	"invoice-backend/internal/analytics"
	googleauth "invoice-backend/internal/auth"
	"invoice-backend/internal/documents"
	"invoice-backend/internal/extraction"
	"invoice-backend/internal/intake"
	"invoice-backend/internal/invoices"
	"invoice-backend/internal/llm"
	"invoice-backend/internal/llm/gemini"
	"invoice-backend/internal/llm/openai"
	"invoice-backend/internal/review"
	"invoice-backend/internal/shared/config"
	"invoice-backend/internal/shared/server"
	"invoice-backend/internal/shared/storage/db"
	"invoice-backend/internal/shared/storage/object"
	localstore "invoice-backend/internal/shared/storage/object/local"
	s3store "invoice-backend/internal/shared/storage/object/s3"
	"invoice-backend/internal/shared/telemetry"
	"invoice-backend/internal/users"
)

// App holds shared dependencies and the configured router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	ExtractionModel  *llm.Guarded
	AnalystModel     *llm.Guarded
	InvoicesService  *invoices.Service
	DocumentsService *documents.Service
	UsersService     *users.Service
	AccountService   *account.Service
	AnalyticsService *analytics.Service
	IntakeService    *intake.Service
	Reviews          *review.Store
	IntakeHandler    *intake.Handler
	InvoicesHandler  *invoices.Handler
	AnalyticsHandler *analytics.Handler
	AnalystHandler   *analyst.Handler
	DocumentsHandler *documents.Handler
	AccountHandler   *account.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
	closers          []io.Closer
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.Configure(cfg.LogLevel)
	ctx := context.Background()

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	extractGen, err := app.buildGenerator(ctx, cfg.LLMModel)
	if err != nil {
		app.Close()
		return nil, err
	}
	analystGen, err := app.buildGenerator(ctx, cfg.AnalystModel)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.ExtractionModel = llm.NewGuarded(extractGen, guardConfig(cfg, "extraction"))
	app.AnalystModel = llm.NewGuarded(analystGen, guardConfig(cfg, "analyst"))

	if err := buildServices(app); err != nil {
		app.Close()
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		DB:               app.DB,
		ModelState:       app.ExtractionModel.State,
		IntakeHandler:    app.IntakeHandler,
		InvoiceHandler:   app.InvoicesHandler,
		AnalyticsHandler: app.AnalyticsHandler,
		AnalystHandler:   app.AnalystHandler,
		DocumentHandler:  app.DocumentsHandler,
		AccountHandler:   app.AccountHandler,
		UserHandler:      app.UsersHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

// Close releases the database pool and model clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_storage", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_storage", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildGenerator returns the provider client for model. Outside production a
// misconfigured provider degrades to the placeholder so the API still boots.
// LLM_TEXT_ONLY marks the model as unable to take attachments.
func (a *App) buildGenerator(ctx context.Context, model string) (llm.Generator, error) {
	gen, err := a.providerGenerator(ctx, model)
	if err != nil {
		return nil, err
	}
	if a.Config.LLMTextOnly {
		gen = llm.ForceTextOnly(gen)
	}
	return gen, nil
}

func (a *App) providerGenerator(ctx context.Context, model string) (llm.Generator, error) {
	var (
		gen llm.Generator
		err error
	)
	switch a.Config.LLMProvider {
	case "placeholder":
		return llm.PlaceholderClient{}, nil
	case "gemini":
		var client *gemini.Client
		client, err = gemini.NewClient(ctx, a.Config.GCPProjectID, a.Config.VertexRegion, model)
		if err == nil {
			a.closers = append(a.closers, client)
			gen = client
		}
	default:
		var client *openai.Client
		client, err = openai.NewClient(a.Config.OpenAIAPIKey, model)
		if err == nil {
			gen = client
		}
	}
	if err != nil {
		if isDevLike(a.Config.Env) {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{
				"provider": a.Config.LLMProvider,
				"error":    err.Error(),
			})
			return llm.PlaceholderClient{}, nil
		}
		return nil, err
	}
	return gen, nil
}

func guardConfig(cfg config.Config, name string) llm.GuardConfig {
	return llm.GuardConfig{
		Name:                name,
		MaxRPS:              cfg.LLMMaxRPS,
		BreakerMinRequests:  cfg.LLMBreakerRequests,
		BreakerFailureRatio: cfg.LLMBreakerRatio,
		BreakerOpenTimeout:  cfg.LLMBreakerTimeout,
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var (
		docRepo  documents.DocumentsRepo
		invRepo  invoices.Repo
		userRepo users.Repo
	)
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		invRepo = &invoices.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		invRepo = invoices.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	app.Reviews = review.NewStoreWithLimits(app.Config.ReviewSessionTTL, app.Config.ReviewMaxSessions)
	app.InvoicesService = invoices.NewService(invRepo)
	app.DocumentsService = documents.NewService(app.Store, docRepo)
	app.UsersService = users.NewService(userRepo)
	app.AnalyticsService = analytics.NewService(app.InvoicesService)
	app.AccountService = account.NewService(app.InvoicesService, app.DocumentsService, app.Reviews)
	app.IntakeService = intake.NewService(
		extraction.NewClient(app.ExtractionModel),
		app.ExtractionModel,
		app.DocumentsService,
		app.Reviews,
		app.InvoicesService,
	)

	app.IntakeHandler = intake.NewHandler(app.IntakeService)
	app.InvoicesHandler = invoices.NewHandler(app.InvoicesService)
	app.AnalyticsHandler = analytics.NewHandler(app.AnalyticsService)
	app.AnalystHandler = analyst.NewHandler(analyst.NewClient(app.AnalystModel), app.InvoicesService)
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.UsersHandler = users.NewHandler(app.UsersService)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.UsersService,
	)

	if app.IntakeHandler == nil || app.InvoicesHandler == nil || app.AnalystHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
