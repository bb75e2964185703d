package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"homologation/internal/auth"
	"homologation/internal/config"
	"homologation/internal/downloads"
	"homologation/internal/events"
	"homologation/internal/logger"
	"homologation/internal/processing"
	"homologation/internal/scraper"
	"homologation/pkg/database"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New("error").Error("load config failed", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Level)
	log.Info("config loaded", "config", cfg.String())
	if cfg.UsesDevSecret() {
		log.Warn("using the development JWT secret; set HOMOLOG_JWT_SECRET in production")
	}

	db := database.MustOpen(database.Config{Path: cfg.Database.Path})
	defer db.Close()

	hub := events.NewHub(log)
	router := newRouter(cfg, db, hub, log)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API server listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		log.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func newRouter(cfg *config.Config, db *sql.DB, hub *events.Hub, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log), cors(cfg.Server.CORSOrigins))
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies", "error", err)
	}

	router.GET("/ws", events.WSHandler(hub, cfg.Server.CORSOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Database.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.WSClients,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.WSClients,
		})
	})

	api := router.Group("/api/v1")

	// Auth
	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration(),
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc, log.With("component", "auth"))
	authHandler.RegisterRoutes(api.Group("/auth"))
	authed := authHandler.Middleware()

	// Processing
	fetcher := scraper.NewFetcher(nil, cfg.Scraper.Timeout(), cfg.Scraper.UserAgent)
	scr := scraper.New(fetcher, scraper.Options{
		Timeout:       cfg.Scraper.Timeout(),
		UserAgent:     cfg.Scraper.UserAgent,
		MaxConcurrent: cfg.Scraper.MaxConcurrent,
	}, log.With("component", "scraper"))
	svc := processing.NewService(scr, hub, log.With("component", "processing"))
	processing.NewHandler(svc, log.With("component", "processing")).RegisterRoutes(api, authed)

	// Export and history
	dlRepo := downloads.NewRepo(db)
	downloads.NewHandler(dlRepo, authRepo, hub, cfg.Auth.TrialDownloadLimit, log.With("component", "downloads")).
		RegisterRoutes(api, authed)

	return router
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// cors answers preflight requests and echoes allowed origins. "*" allows any.
func cors(origins []string) gin.HandlerFunc {
	wildcard := slices.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (wildcard || slices.Contains(origins, origin)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Download-Id")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
