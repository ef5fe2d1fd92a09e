package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"assetstore-backend/internal/config"
	infraCache "assetstore-backend/internal/infrastructure/cache"
	"assetstore-backend/internal/infrastructure/database"
	"assetstore-backend/internal/infrastructure/storage"
	"assetstore-backend/pkg/cache"
	"assetstore-backend/pkg/jwt"

	"assetstore-backend/internal/domains/asset/catalog"
	assetHandler "assetstore-backend/internal/domains/asset/handler"
	assetRepo "assetstore-backend/internal/domains/asset/repository"
	assetService "assetstore-backend/internal/domains/asset/service"

	"assetstore-backend/internal/domains/user"
	userHandler "assetstore-backend/internal/domains/user/handler"
	userRepo "assetstore-backend/internal/domains/user/repository"
	userService "assetstore-backend/internal/domains/user/service"

	"assetstore-backend/internal/domains/download"
	downloadHandler "assetstore-backend/internal/domains/download/handler"
	downloadRepo "assetstore-backend/internal/domains/download/repository"
	downloadService "assetstore-backend/internal/domains/download/service"
)

// Container holds every dependency of the API process. All entries
// are singletons built once at startup; if anything fails to
// initialize the application does not start.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Blobs       *storage.MinIOStorage
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client

	// Repositories
	AssetRepo    assetRepo.AssetRepository
	UserRepo     user.Repository
	DownloadRepo download.Repository

	// In-memory catalog, shared by every read path
	Catalog *catalog.Store

	// Services
	AssetService    assetService.AssetService
	UserService     user.Service
	DownloadService download.Service

	// Handlers
	AssetHandler    *assetHandler.Handler
	UserHandler     *userHandler.Handler
	DownloadHandler *downloadHandler.Handler
}

// NewContainer builds the dependency graph in layer order: config,
// infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// Step 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// Step 2: PostgreSQL
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("✅ Database connected")

	// Step 3: Redis
	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// Redis failure is non-critical: reports fall back to the
			// database on every request.
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	// Step 4: MinIO blob storage
	blobs, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init blob storage: %w", err)
	}
	c.Blobs = blobs
	log.Println("✅ Blob storage ready")

	// Step 5: JWT + task queue client
	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Step 6: repositories
	c.initRepositories()

	// Step 7: catalog store, loaded on first read or via explicit
	// refresh at startup
	c.Catalog = catalog.NewStore(c.AssetRepo)

	// Step 8: services
	c.initServices()

	// Step 9: handlers
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.AssetRepo = assetRepo.NewPostgresRepository(pool)
	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.DownloadRepo = downloadRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.AssetService = assetService.NewAssetService(
		c.AssetRepo,
		c.Catalog,
		c.Blobs,
		c.AsynqClient,
		c.Config.Upload.MaxFileSize,
	)

	c.UserService = userService.NewUserService(
		c.UserRepo,
		c.JWTManager,
		c.AsynqClient,
		c.Config.Email.FrontendURL,
	)

	c.DownloadService = downloadService.NewDownloadService(
		c.DownloadRepo,
		c.Catalog,
		c.Blobs,
		c.Cache,
	)
}

func (c *Container) initHandlers() {
	c.AssetHandler = assetHandler.NewHandler(c.AssetService)
	c.UserHandler = userHandler.NewHandler(c.UserService)
	c.DownloadHandler = downloadHandler.NewHandler(c.DownloadService)
}

// WarmCatalog performs the initial catalog load so the first request
// does not pay for it. A failure is surfaced but not fatal: the store
// retries on first read.
func (c *Container) WarmCatalog(ctx context.Context) error {
	return c.Catalog.Refresh(ctx)
}

// Cleanup releases resources during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Asynq client close failed: %v", err)
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Printf("⚠️  Redis close failed: %v", err)
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}
}
