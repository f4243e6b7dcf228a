package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"contrib.go.opencensus.io/integrations/ocsql"

	"github.com/greez/greez/config"
	"github.com/greez/greez/internal/database"
	"github.com/greez/greez/internal/domain"
	httpHandler "github.com/greez/greez/internal/http"
	"github.com/greez/greez/internal/http/middleware"
	"github.com/greez/greez/internal/repository"
	"github.com/greez/greez/internal/service"
	"github.com/greez/greez/pkg/cache"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/mailer"
	"github.com/greez/greez/pkg/ratelimiter"
	"github.com/greez/greez/pkg/tracing"
)

// AppInterface defines the interface for the App
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Getters for app components accessed in tests
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetDB() *sql.DB
	GetMailer() mailer.Mailer

	// Server status methods
	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	// Methods for initialization steps
	InitTracing() error
	InitDB() error
	InitCache() error
	InitMailer() error
	InitRepositories() error
	InitServices() error
	InitHandlers() error

	// Graceful shutdown methods
	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App encapsulates the application dependencies and configuration
type App struct {
	config      *config.Config
	logger      logger.Logger
	db          *sql.DB
	mailer      mailer.Mailer
	cache       cache.Cache
	rateLimiter *ratelimiter.RateLimiter
	stopDBStats func()

	// Repositories
	userRepo       domain.UserRepository
	invitationRepo domain.InvitationRepository
	submissionRepo domain.SubmissionRepository
	productRepo    domain.ProductRepository
	reviewRepo     domain.ReviewRepository

	// Services
	authService        *service.AuthService
	userService        *service.UserService
	invitationService  *service.InvitationService
	submissionService  *service.SubmissionService
	productService     *service.ProductService
	publicationService *service.PublicationService
	approvalService    *service.ApprovalService
	catalogService     *service.CatalogService
	reviewsService     *service.ReviewsService

	// HTTP handlers
	mux    *http.ServeMux
	server *http.Server

	// Server synchronization
	serverMu      sync.RWMutex
	serverStarted chan struct{}

	// Graceful shutdown management
	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64
	requestWg       sync.WaitGroup
	shutdownTimeout time.Duration
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockDB configures the app to use a mock database
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithMockMailer configures the app to use a mock mailer
func WithMockMailer(m mailer.Mailer) AppOption {
	return func(a *App) {
		a.mailer = m
	}
}

// WithCache configures the app to use the given cache instead of dialing Redis
func WithCache(c cache.Cache) AppOption {
	return func(a *App) {
		a.cache = c
	}
}

// WithLogger sets a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	app := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		mux:             http.NewServeMux(),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitTracing initializes OpenCensus tracing
func (a *App) InitTracing() error {
	tracingConfig := &a.config.Tracing

	if err := tracing.InitTracing(tracingConfig, a.logger); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if tracingConfig.Enabled {
		a.logger.WithField("trace_exporter", tracingConfig.TraceExporter).
			WithField("metrics_exporter", tracingConfig.MetricsExporter).
			WithField("sampling_rate", tracingConfig.SamplingProbability).
			Info("Tracing initialized successfully")
	}

	return nil
}

// InitDB connects to Postgres and creates the schema
func (a *App) InitDB() error {
	// Skip if the database was injected
	if a.db != nil {
		return nil
	}

	a.logger.WithField("host", a.config.Database.Host).
		WithField("port", a.config.Database.Port).
		WithField("dbname", a.config.Database.DBName).
		WithField("sslmode", a.config.Database.SSLMode).
		Info("Connecting to database")

	if err := database.EnsureSystemDatabaseExists(database.GetPostgresDSN(&a.config.Database), a.config.Database.DBName); err != nil {
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}

	driverName := "postgres"
	if a.config.Tracing.Enabled {
		var err error
		driverName, err = ocsql.Register(driverName, ocsql.WithAllTraceOptions())
		if err != nil {
			return fmt.Errorf("failed to register opencensus sql driver: %w", err)
		}
		a.logger.Info("Database driver wrapped with OpenCensus tracing")
	}

	db, err := sql.Open(driverName, database.GetSystemDSN(&a.config.Database))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := database.InitializeDatabase(db, a.config.RootEmail); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	maxOpen, maxIdle, maxLifetime := database.GetConnectionPoolSettings(&a.config.Database)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	if a.config.Tracing.Enabled {
		a.stopDBStats = ocsql.RecordStats(db, 5*time.Second)
	}

	a.db = db
	return nil
}

// InitCache dials Redis when configured and falls back to an in-process cache
func (a *App) InitCache() error {
	if a.cache != nil {
		return nil
	}

	if a.config.Cache.RedisAddr == "" {
		a.cache = cache.NewInMemoryCache(time.Minute)
		a.logger.Info("Using in-memory invitation cache")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisCache, err := cache.DialRedis(ctx, a.config.Cache.RedisAddr, a.config.Cache.RedisPassword, a.config.Cache.RedisDB, a.config.Cache.KeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.cache = redisCache
	a.logger.WithField("addr", a.config.Cache.RedisAddr).Info("Using Redis invitation cache")
	return nil
}

// InitMailer initializes the mailer service
func (a *App) InitMailer() error {
	// Skip if mailer already set (e.g., by mock)
	if a.mailer != nil {
		return nil
	}

	mailerConfig := &mailer.Config{
		SMTPHost:     a.config.SMTP.Host,
		SMTPPort:     a.config.SMTP.Port,
		SMTPUsername: a.config.SMTP.Username,
		SMTPPassword: a.config.SMTP.Password,
		FromEmail:    a.config.SMTP.FromEmail,
		FromName:     a.config.SMTP.FromName,
		PartnerURL:   a.config.PartnerURL,
	}

	if a.config.IsDevelopment() {
		a.mailer = mailer.NewConsoleMailer(mailerConfig, a.logger)
		a.logger.Info("Using console mailer for development")
	} else {
		a.mailer = mailer.NewSMTPMailer(mailerConfig, a.logger)
		a.logger.Info("Using SMTP mailer for production")
	}

	return nil
}

// InitRepositories initializes all repositories
func (a *App) InitRepositories() error {
	if a.db == nil {
		return fmt.Errorf("database must be initialized before repositories")
	}

	a.userRepo = repository.NewUserRepository(a.db)
	a.invitationRepo = repository.NewInvitationRepository(a.db)
	a.submissionRepo = repository.NewSubmissionRepository(a.db)
	a.productRepo = repository.NewProductRepository(a.db)
	a.reviewRepo = repository.NewReviewRepository(a.db)

	return nil
}

// InitServices initializes all application services
func (a *App) InitServices() error {
	a.rateLimiter = ratelimiter.NewRateLimiter()
	a.rateLimiter.SetPolicy(service.RateLimitSignIn, 5, 5*time.Minute)
	a.rateLimiter.SetPolicy(service.RateLimitVerifyCode, 5, 5*time.Minute)
	a.rateLimiter.SetPolicy(service.RateLimitAcceptInvitation, 20, time.Minute)

	a.authService = service.NewAuthService(service.AuthServiceConfig{
		Repository: a.userRepo,
		Logger:     a.logger,
		GetJWTSecret: func() ([]byte, error) {
			return a.config.Security.JWTSecret, nil
		},
	})

	a.userService = service.NewUserService(service.UserServiceConfig{
		Repository:    a.userRepo,
		AuthService:   a.authService,
		Mailer:        a.mailer,
		SessionExpiry: a.config.Security.SessionTTL,
		CodeCost:      a.config.Security.MagicCodeCost,
		Logger:        a.logger,
		IsDevelopment: a.config.IsDevelopment(),
		RateLimiter:   a.rateLimiter,
	})

	a.invitationService = service.NewInvitationService(service.InvitationServiceConfig{
		Repository:           a.invitationRepo,
		SubmissionRepository: a.submissionRepo,
		UserRepository:       a.userRepo,
		AuthService:          a.authService,
		Mailer:               a.mailer,
		Cache:                a.cache,
		CacheTTL:             a.config.Cache.InvitationTTL,
		SessionExpiry:        a.config.Security.SessionTTL,
		IsDevelopment:        a.config.IsDevelopment(),
		Logger:               a.logger,
	})

	a.submissionService = service.NewSubmissionService(a.submissionRepo, a.invitationRepo, a.authService, a.mailer, a.logger)

	a.productService = service.NewProductService(a.productRepo, a.submissionRepo, a.authService, a.config.Workflow.MaxProductsPerSubmission, a.logger)

	var storefront domain.Storefront
	if a.config.ShopifyEnabled() {
		storefront = service.NewShopifyService(service.ShopifyServiceConfig{
			ShopDomain:        a.config.Shopify.ShopDomain,
			AccessToken:       a.config.Shopify.AccessToken,
			APIVersion:        a.config.Shopify.APIVersion,
			RequestsPerSecond: a.config.Shopify.RequestsPerSecond,
			Burst:             a.config.Shopify.Burst,
			HTTPClient:        tracing.WrapHTTPClient(&http.Client{Timeout: a.config.Shopify.PublishTimeout}),
			Logger:            a.logger,
		})
		a.logger.WithField("shop", a.config.Shopify.ShopDomain).Info("Shopify storefront configured")
	} else {
		a.logger.Warn("Shopify is not configured, publication is disabled")
	}
	a.publicationService = service.NewPublicationService(a.productRepo, a.submissionRepo, storefront, a.config.Shopify.ClaimTTL, a.logger)

	a.approvalService = service.NewApprovalService(service.ApprovalServiceConfig{
		ProductRepository:    a.productRepo,
		SubmissionRepository: a.submissionRepo,
		PublicationService:   a.publicationService,
		AuthService:          a.authService,
		BulkConcurrency:      a.config.Shopify.BulkConcurrency,
		Logger:               a.logger,
	})

	var imageStore domain.ImageStore
	if a.config.Storage.Bucket != "" {
		s3Store, err := service.NewS3ImageStore(service.S3ImageStoreConfig{
			Endpoint:        a.config.Storage.Endpoint,
			Region:          a.config.Storage.Region,
			Bucket:          a.config.Storage.Bucket,
			AccessKeyID:     a.config.Storage.AccessKeyID,
			SecretAccessKey: a.config.Storage.SecretAccessKey,
			PublicBaseURL:   a.config.Storage.PublicBaseURL,
			ForcePathStyle:  a.config.Storage.ForcePathStyle,
			Logger:          a.logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize image storage: %w", err)
		}
		imageStore = s3Store
	}

	a.catalogService = service.NewCatalogService(service.CatalogServiceConfig{
		ProductRepository:    a.productRepo,
		SubmissionRepository: a.submissionRepo,
		ProductService:       a.productService,
		AuthService:          a.authService,
		ContentGenerator: service.NewAnthropicContentGenerator(service.ContentGeneratorConfig{
			APIKey:    a.config.AI.APIKey,
			Model:     a.config.AI.Model,
			MaxTokens: a.config.AI.MaxTokens,
			Logger:    a.logger,
		}),
		ImageStore:    imageStore,
		MaxImageBytes: a.config.Storage.MaxImageBytes,
		Logger:        a.logger,
	})

	reviewsService, err := service.NewReviewsService(service.ReviewsServiceConfig{
		Repository:        a.reviewRepo,
		ProductRepository: a.productRepo,
		AuthService:       a.authService,
		APIEndpoint:       a.config.Reviews.APIEndpoint,
		APIKey:            a.config.Reviews.APIKey,
		WebhookSecret:     a.config.Reviews.WebhookSecret,
		Logger:            a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize reviews service: %w", err)
	}
	a.reviewsService = reviewsService

	return nil
}

// InitHandlers registers every route on a fresh mux
func (a *App) InitHandlers() error {
	// Create a new ServeMux to avoid route conflicts on restart
	a.mux = http.NewServeMux()

	requireAuth := middleware.NewAuthMiddleware(a.authService).RequireAuth()
	rateLimitAccept := middleware.RateLimitByIP(a.rateLimiter, service.RateLimitAcceptInvitation)
	acceptGuard := func(next http.Handler) http.Handler {
		return rateLimitAccept(middleware.RejectAutomatedClients(next))
	}

	var pinger httpHandler.Pinger
	if a.db != nil {
		pinger = a.db
	}
	httpHandler.NewRootHandler(a.logger, a.config.APIEndpoint, a.config.Version, pinger).RegisterRoutes(a.mux)
	httpHandler.NewUserHandler(a.userService, requireAuth, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewInvitationHandler(a.invitationService, requireAuth, acceptGuard, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewSubmissionHandler(a.submissionService, a.approvalService, a.catalogService, requireAuth, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewProductHandler(httpHandler.ProductHandlerConfig{
		ProductService:  a.productService,
		ApprovalService: a.approvalService,
		CatalogService:  a.catalogService,
		RequireAuth:     requireAuth,
		PublishTimeout:  a.config.Shopify.PublishTimeout,
		MaxUploadBytes:  a.config.Storage.MaxImageBytes,
		Logger:          a.logger,
	}).RegisterRoutes(a.mux)
	httpHandler.NewReviewsHandler(a.reviewsService, requireAuth, a.logger).RegisterRoutes(a.mux)

	return nil
}

// Start starts the HTTP server
func (a *App) Start() error {
	var handler http.Handler = a.mux

	// Graceful shutdown tracking is the innermost wrapper
	handler = a.gracefulShutdownMiddleware(handler)

	if a.config.Tracing.Enabled {
		handler = middleware.TracingMiddleware(handler)
		a.logger.Info("OpenCensus tracing middleware enabled")
	}

	handler = middleware.CORSMiddleware(a.config.Server.CORSAllowOrigin)(handler)

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).
		WithField("api_endpoint", a.config.APIEndpoint).
		Info("Server starting")

	a.serverMu.Lock()
	if a.serverStarted != nil {
		close(a.serverStarted)
	}
	a.serverStarted = make(chan struct{})

	a.server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverStarted := a.serverStarted
	a.serverMu.Unlock()

	close(serverStarted)

	if a.config.Server.SSL.Enabled {
		a.logger.WithField("cert_file", a.config.Server.SSL.CertFile).Info("SSL enabled")
		return a.server.ListenAndServeTLS(a.config.Server.SSL.CertFile, a.config.Server.SSL.KeyFile)
	}

	return a.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones and releases resources
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	a.shutdownCancel()

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		a.logger.Info("No server to shutdown")
		return a.cleanupResources()
	}

	a.logger.WithField("active_requests", a.getActiveRequestCount()).Info("Active requests at shutdown start")

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = remaining - time.Second
			if shutdownTimeout < 0 {
				shutdownTimeout = 0
			}
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// server.Shutdown waits for handlers; requestWg covers hijacked or detached work
	shutdownErr := server.Shutdown(shutdownCtx)

	requestsDone := make(chan struct{})
	go func() {
		a.requestWg.Wait()
		close(requestsDone)
	}()

	select {
	case <-requestsDone:
		a.logger.Info("All requests completed")
	case <-shutdownCtx.Done():
		a.logger.WithField("active_requests", a.getActiveRequestCount()).Warn("Shutdown timeout reached, forcing shutdown")
		if shutdownErr == nil {
			shutdownErr = fmt.Errorf("shutdown timeout exceeded")
		}
	}

	if cleanupErr := a.cleanupResources(); cleanupErr != nil {
		a.logger.WithField("error", cleanupErr.Error()).Error("Error during resource cleanup")
		if shutdownErr == nil {
			shutdownErr = cleanupErr
		}
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Error("Graceful shutdown completed with errors")
	} else {
		a.logger.Info("Graceful shutdown completed successfully")
	}

	return shutdownErr
}

// cleanupResources closes the database, cache and rate limiter
func (a *App) cleanupResources() error {
	a.logger.Info("Cleaning up resources...")

	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Warn("Error closing cache")
		}
	}

	if a.stopDBStats != nil {
		a.stopDBStats()
	}

	if a.db != nil {
		a.logger.Info("Closing database connection")
		if err := a.db.Close(); err != nil {
			return err
		}
	}

	a.logger.Info("Resource cleanup completed")
	return nil
}

// IsServerCreated safely checks if the server has been created
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart waits for the server to be created.
// Returns false if ctx expires first.
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	if started == nil {
		<-ctx.Done()
		return false
	}

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

// Initialize sets up all components of the application
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("Starting Greez partner API")

	steps := []func() error{
		a.InitTracing,
		a.InitDB,
		a.InitCache,
		a.InitMailer,
		a.InitRepositories,
		a.InitServices,
		a.InitHandlers,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	a.logger.Info("Application successfully initialized")
	return nil
}

// GetConfig returns the app's configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetLogger returns the app's logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}

// GetMux returns the app's HTTP multiplexer
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetDB returns the app's database connection
func (a *App) GetDB() *sql.DB {
	return a.db
}

// GetMailer returns the app's mailer
func (a *App) GetMailer() mailer.Mailer {
	return a.mailer
}

func (a *App) incrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, 1)
	a.requestWg.Add(1)
}

func (a *App) decrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, -1)
	a.requestWg.Done()
}

func (a *App) getActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// GetActiveRequestCount returns the current number of active requests
func (a *App) GetActiveRequestCount() int64 {
	return a.getActiveRequestCount()
}

// SetShutdownTimeout sets the timeout for graceful shutdown
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
}

// GetShutdownContext returns the context cancelled when shutdown begins
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware rejects new requests once shutdown starts and
// tracks the in-flight ones
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			httpHandler.WriteJSONError(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}

		a.incrementActiveRequests()
		defer a.decrementActiveRequests()

		next.ServeHTTP(w, r)
	})
}

// Ensure App implements AppInterface
var _ AppInterface = (*App)(nil)
