package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/unilist-dev/unilist/internal/auth"
	"github.com/unilist-dev/unilist/internal/config"
	"github.com/unilist-dev/unilist/internal/content"
	"github.com/unilist-dev/unilist/internal/gateway"
	"github.com/unilist-dev/unilist/internal/models"
	"github.com/unilist-dev/unilist/internal/snapshots"
)

// Server is the content gateway: it serves the public listings API from the
// local snapshot cache, proxies authentication to the platform backend, and
// exposes admin operations behind the session gate.
type Server struct {
	router           *gin.Engine
	db               *gorm.DB
	config           *config.Config
	logger           zerolog.Logger
	validator        *validator.Validate
	asynqClient      *asynq.Client
	snapshotsService *snapshots.Service
	plan             *config.RefreshPlan
	version          string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Session secret lives in the settings singleton, generated on first start
	settings, err := loadOrCreateSettings(db)
	if err != nil {
		return nil, err
	}
	auth.InitializeSessionSecret(settings.SessionSecret)

	validate := validator.New()
	validate.RegisterValidation("contentkind", func(fl validator.FieldLevel) bool {
		_, err := content.ParseKind(fl.Field().String())
		return err == nil
	})

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	plan, err := config.LoadRefreshPlan(cfg.RefreshPlanPath)
	if err != nil {
		return nil, err
	}

	server := &Server{
		db:               db,
		config:           cfg,
		logger:           zlog,
		validator:        validate,
		asynqClient:      asynqClient,
		snapshotsService: snapshots.NewService(db, zlog),
		plan:             plan,
		version:          version,
	}

	server.setupRouter()

	return server, nil
}

// initDatabase initializes the snapshot cache with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8
		maxIdleConns    = 4
		connMaxLifetime = 300 * time.Second
		busyTimeout     = 5000
		cacheSize       = 10000
	)

	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				LogLevel:                  gormlogger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL first for concurrency, then the rest
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		fmt.Sprintf("PRAGMA cache_size=-%d", cacheSize),
		"PRAGMA foreign_keys=1",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// loadOrCreateSettings returns the settings singleton, creating it with a
// fresh session secret on first start
func loadOrCreateSettings(db *gorm.DB) (*models.Settings, error) {
	var settings models.Settings
	err := db.First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}

	settings = models.Settings{
		SessionSecret: hex.EncodeToString(secretBytes),
		MaxSnapshots:  3,
	}
	if err := db.Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}

	return &settings, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	{
		// Public auth endpoints
		api.POST("/auth/login", s.login)
		api.POST("/auth/logout", s.logout)
		api.GET("/auth/me", SessionMiddleware(s.logger), s.getCurrentUser)

		// Public listings, served from the snapshot cache
		for _, kind := range content.Kinds() {
			api.GET("/"+string(kind), s.listContentHandler(kind))
		}

		// Admin dashboard API (session gate)
		admin := api.Group("/admin")
		admin.Use(SessionMiddleware(s.logger))
		admin.Use(AdminGateMiddleware(s.logger))
		{
			admin.POST("/refresh", s.triggerRefresh)
			admin.GET("/snapshots", s.listSnapshots)
			admin.GET("/settings", s.getSettings)
			admin.PATCH("/settings", s.updateSettings)
		}
	}
}

// backendClient builds a request-scoped client for the platform backend.
// Each request gets its own cookie jar; backend sessions are never shared
// between callers.
func (s *Server) backendClient() *gateway.Client {
	return gateway.New(s.config.API.BaseURL, s.logger)
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "unilist-gateway",
		"version":   s.version,
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Router exposes the configured router for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.Server.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", s.config.Server.ListenAddr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	// Close the database to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
