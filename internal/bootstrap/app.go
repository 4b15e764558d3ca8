package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"legalaid-backend/internal/ai"
	"legalaid-backend/internal/documents"
	"legalaid-backend/internal/llm"
	"legalaid-backend/internal/search"
	"legalaid-backend/internal/shared/auth"
	"legalaid-backend/internal/shared/config"
	"legalaid-backend/internal/shared/server"
	"legalaid-backend/internal/shared/server/middleware"
	"legalaid-backend/internal/shared/storage/db"
	"legalaid-backend/internal/shared/storage/object"
	localstore "legalaid-backend/internal/shared/storage/object/local"
	s3store "legalaid-backend/internal/shared/storage/object/s3"
	"legalaid-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Index            *search.Index
	Tokens           *auth.TokenService
	UsersRepo        users.Repo
	DocumentsRepo    documents.Repo
	UsersService     *users.Service
	DocumentsService *documents.Service
	AIService        *ai.Service
	UsersHandler     *users.Handler
	DocumentsHandler *documents.Handler
	AIHandler        *ai.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(
		cfg.JWTSecret,
		time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLHours)*time.Hour,
	)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Index:  search.New(),
		Tokens: tokens,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Tokens:           app.Tokens,
		LoadIdentity:     identityLoader(app.UsersService),
		UsersHandler:     app.UsersHandler,
		DocumentsHandler: app.DocumentsHandler,
		AIHandler:        app.AIHandler,
		ReadyCheck:       readyCheck(app.DB),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
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

func buildServices(app *App) error {
	var userRepo users.Repo
	var docRepo documents.Repo

	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
	}

	userSvc := users.NewService(userRepo, app.Tokens)
	docSvc := documents.NewService(app.Store, docRepo, app.Index)
	aiSvc := ai.NewService(app.Index, llm.StubClient{})

	app.UsersRepo = userRepo
	app.DocumentsRepo = docRepo
	app.UsersService = userSvc
	app.DocumentsService = docSvc
	app.AIService = aiSvc
	app.UsersHandler = users.NewHandler(userSvc)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AIHandler = ai.NewHandler(aiSvc)

	if app.UsersHandler == nil || app.DocumentsHandler == nil || app.AIHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

// identityLoader adapts the users service to the auth middleware.
func identityLoader(svc *users.Service) middleware.IdentityLoader {
	return func(ctx context.Context, email string) (middleware.Identity, error) {
		user, err := svc.GetByEmail(ctx, email)
		if err != nil {
			return middleware.Identity{}, err
		}
		return middleware.Identity{
			ID:         user.ID,
			Email:      user.Email,
			Role:       user.Role,
			IsApproved: user.IsApproved,
			IsActive:   user.IsActive,
		}, nil
	}
}

func readyCheck(sqlDB *sql.DB) func(context.Context) error {
	if sqlDB == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return sqlDB.PingContext(ctx)
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
