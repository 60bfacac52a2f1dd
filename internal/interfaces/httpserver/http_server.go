package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	catalogdocs "github.com/janhq/media-catalog/docs/swagger"
	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/infrastructure/metrics"
	"github.com/janhq/media-catalog/internal/interfaces/httpserver/handlers"
	"github.com/janhq/media-catalog/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/media-catalog/internal/interfaces/httpserver/routes"
)

const readyTimeout = 3 * time.Second

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
}

// New constructs the HTTP server with default middleware and routes.
func New(cfg *config.Config, log zerolog.Logger, mediaService domain.Service) *HttpServer {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	catalogdocs.SwaggerInfo.BasePath = "/"

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.MaxMultipartMemory
	engine.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		middlewares.CORS(),
		middlewares.Tracing(cfg.ServiceName),
		middlewares.MetricsRecorder(),
		middlewares.RequestLoggerWithLogger(log),
	)

	handlerProvider := handlers.NewProvider(cfg, mediaService, log)
	registerCoreRoutes(engine, cfg, mediaService)
	routes.NewRoutes(handlerProvider).Register(engine)

	return &HttpServer{
		cfg:    cfg,
		engine: engine,
		log:    log,
	}
}

// Handler exposes the engine, mainly for tests.
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("media-catalog HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config, mediaService domain.Service) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": cfg.ServiceName, "status": "ok"})
	})
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	engine.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := mediaService.Ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.IsLocalRelay() {
		engine.Static("/files", cfg.LocalStoragePath)
	}
}
