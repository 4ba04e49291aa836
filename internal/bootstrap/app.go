package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"business-navigator/internal/analytics"
	googleauth "business-navigator/internal/auth"
	"business-navigator/internal/intelligence"
	"business-navigator/internal/llm"
	"business-navigator/internal/llm/gemini"
	"business-navigator/internal/llm/openai"
	"business-navigator/internal/plans"
	"business-navigator/internal/seed"
	"business-navigator/internal/services/health"
	sharedauth "business-navigator/internal/shared/auth"
	"business-navigator/internal/shared/config"
	"business-navigator/internal/shared/server"
	"business-navigator/internal/shared/storage/db"
	"business-navigator/internal/shared/storage/object"
	localstore "business-navigator/internal/shared/storage/object/local"
	s3store "business-navigator/internal/shared/storage/object/s3"
	"business-navigator/internal/shared/telemetry"
	"business-navigator/internal/strategy"
	"business-navigator/internal/tasks"
	"business-navigator/internal/users"
)

const defaultOpenAIModel = "gpt-4o-mini"

// BackendMemory names the in-memory repositories used when no database is configured.
const BackendMemory = "memory"

// App holds shared dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Dialect db.Dialect
	Backend string
	Store   object.ObjectStore
	LLM     llm.Client

	UsersRepo users.Repo
	PlansRepo plans.Repo
	TasksRepo tasks.Repo

	UsersService    *users.Service
	PlansService    *plans.Service
	TasksService    *tasks.Service
	StrategyService *strategy.Service
	Reports         *intelligence.Builder
	Seeder          *seed.Seeder
	Health          *health.Service
	Tokens          *sharedauth.Tokens
	GoogleAuth      *googleauth.GoogleService
}

// Build prepares every dependency and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()
	app, err := BuildData(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := app.buildHTTP(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// BuildData connects storage and builds the repositories, services, report builder and seeder.
// It is enough for command-line tools that never talk to a model.
func BuildData(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	dialect, err := db.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := buildDB(ctx, cfg, dialect)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB, Dialect: dialect, Backend: BackendMemory}
	if sqlDB != nil {
		app.Backend = string(dialect)
	}
	app.buildData()
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, dialect db.Dialect) (*sql.DB, error) {
	dsn := cfg.DatabaseDSN()
	if dsn == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_fallback", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, dialect, dsn, db.DefaultLambdaOptions().Merge(db.Options(cfg.DBPool)))
	} else {
		sqlDB, err = db.Connect(ctx, dialect, dsn, db.DefaultServerOptions().Merge(db.Options(cfg.DBPool)))
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_fallback", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	// sqlite files are always migrated in place; postgres is migrated by cmd/migrate outside dev.
	if dialect == db.SQLite || cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
			if cfg.IsDevLike() {
				telemetry.Warn("bootstrap.memory_fallback", map[string]any{"reason": "migrations failed", "error": err.Error()})
				return nil, nil
			}
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func (app *App) buildData() {
	if app.DB != nil {
		app.UsersRepo = users.NewSQLRepo(app.DB, app.Dialect)
		app.PlansRepo = plans.NewSQLRepo(app.DB, app.Dialect)
		app.TasksRepo = tasks.NewSQLRepo(app.DB, app.Dialect)
	} else {
		userRepo := users.NewMemoryRepo()
		app.UsersRepo = userRepo
		app.PlansRepo = plans.NewMemoryRepo(func(ctx context.Context, userID string) (string, error) {
			u, err := userRepo.GetByID(ctx, userID)
			if err != nil {
				return "", err
			}
			return u.DisplayName(), nil
		})
		app.TasksRepo = tasks.NewMemoryRepo()
	}
	source := intelligence.RepoSource{Users: app.UsersRepo, Plans: app.PlansRepo, Tasks: app.TasksRepo}

	app.UsersService = users.NewService(app.UsersRepo)
	app.PlansService = plans.NewService(app.PlansRepo)
	app.TasksService = tasks.NewService(app.TasksRepo)
	app.TasksService.EnsureOwner = app.UsersService.EnsureOwner
	app.TasksService.Plans = app.PlansService
	app.Reports = intelligence.NewBuilder(source, intelligence.PlanActivity{Plans: app.PlansRepo}, thresholds(app.Config.Insights))
	app.Seeder = seed.New(app.UsersRepo, app.PlansRepo, app.TasksRepo)
	app.Health = health.NewService(app.DB, app.Dialect, app.Backend)
}

func thresholds(in config.Insights) intelligence.Thresholds {
	return intelligence.Thresholds{
		MomentumHigh:    in.MomentumHigh,
		MomentumMedium:  in.MomentumMedium,
		TasksPerPlanMin: in.TasksPerPlanMin,
		CompletionLow:   in.CompletionLow,
		HighPriorityLow: in.HighPriorityLow,
		CompletionScale: in.CompletionScale,
	}
}

func (app *App) buildHTTP(ctx context.Context) error {
	cfg := app.Config

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	app.Store = store

	client, provider, err := buildLLM(cfg)
	if err != nil {
		return err
	}
	app.LLM = llm.Instrument(llm.WithRetry(client), provider)

	tokens, err := sharedauth.NewTokens(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return err
	}
	app.Tokens = tokens

	app.StrategyService = strategy.NewService(app.LLM, app.PlansService, app.TasksService, object.NewArchiver(store))
	app.StrategyService.EnsureOwner = app.UsersService.EnsureOwner
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		app.UsersService,
		tokens,
	)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: tokens,
		Health:   app.Health,
		Handlers: []server.RouteRegistrar{
			users.NewHandler(app.UsersService),
			plans.NewHandler(app.PlansService),
			tasks.NewHandler(app.TasksService),
			intelligence.NewHandler(app.Reports),
			strategy.NewHandler(app.StrategyService),
			analytics.NewHandler(),
		},
		PublicHandlers:  []server.RouteRegistrar{app.GoogleAuth},
		DevHandlers:     []server.RouteRegistrar{seed.NewHandler(app.Seeder, app.Backend)},
		GenerationPaths: strategy.GenerationPaths,
	})
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.S3KMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildLLM picks the provider client. Missing keys degrade to the placeholder in dev-like envs.
func buildLLM(cfg config.Config) (llm.Client, string, error) {
	timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	var (
		client llm.Client
		err    error
	)
	switch cfg.LLMProvider {
	case "none":
		return llm.PlaceholderClient{}, "none", nil
	case "gemini":
		client, err = gemini.NewClient(cfg.GeminiAPIKey, cfg.LLMModel, timeout)
	default:
		model := cfg.LLMModel
		if strings.TrimSpace(model) == "" {
			model = defaultOpenAIModel
		}
		client, err = openai.NewClient(cfg.OpenAIAPIKey, model, timeout)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"provider": cfg.LLMProvider, "error": err.Error()})
			return llm.PlaceholderClient{}, cfg.LLMProvider, nil
		}
		return nil, "", err
	}
	return client, cfg.LLMProvider, nil
}
