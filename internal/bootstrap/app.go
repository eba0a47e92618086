package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-converter/internal/conversions"
	"resume-converter/internal/extract"
	"resume-converter/internal/llm"
	openai "resume-converter/internal/llm/openai"
	"resume-converter/internal/services/health"
	"resume-converter/internal/shared/config"
	"resume-converter/internal/shared/server"
	"resume-converter/internal/shared/storage/db"
	"resume-converter/internal/shared/storage/object"
	localstore "resume-converter/internal/shared/storage/object/local"
	s3store "resume-converter/internal/shared/storage/object/s3"
	"resume-converter/internal/structurer"
	"resume-converter/resume/compose"
)

// App holds the wired application dependencies.
type App struct {
	Config             config.Config
	Router             *gin.Engine
	DB                 *sql.DB
	Store              object.ObjectStore
	LLM                llm.Client
	ConversionsRepo    conversions.Repo
	ConversionsService *conversions.Service
	ConversionsHandler *conversions.Handler
	Health             *health.Service
}

// Build prepares dependencies and wires the router.
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

	aiClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	composer, err := buildComposer(cfg)
	if err != nil {
		return nil, err
	}

	var repo conversions.Repo
	if sqlDB != nil {
		repo = &conversions.PGRepo{DB: sqlDB}
	} else {
		repo = conversions.NewMemoryRepo()
	}

	// A TEMPLATE_KEY serves the template out of the object store; the
	// local path is the default.
	var templates conversions.TemplateSource = conversions.FileTemplateSource{Path: cfg.TemplatePath}
	if strings.TrimSpace(cfg.TemplateKey) != "" {
		templates = conversions.ObjectTemplateSource{Store: store, Key: cfg.TemplateKey}
	}
	svc := conversions.NewService(
		repo,
		store,
		&extract.Extractor{Vision: aiClient},
		&structurer.Structurer{LLM: aiClient},
		composer,
		templates,
		nil,
	)

	app := &App{
		Config:             cfg,
		DB:                 sqlDB,
		Store:              store,
		LLM:                aiClient,
		ConversionsRepo:    repo,
		ConversionsService: svc,
		ConversionsHandler: conversions.NewHandler(svc),
		Health:             health.NewService(sqlDB, templates),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		ConversionsHandler: app.ConversionsHandler,
		Health:             app.Health,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
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
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "", "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

func buildComposer(cfg config.Config) (*compose.Composer, error) {
	spec := compose.DefaultTemplateSpec()
	if strings.TrimSpace(cfg.TemplateSpecPath) != "" {
		loaded, err := compose.LoadTemplateSpec(cfg.TemplateSpecPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}
	return compose.NewComposer(spec)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
