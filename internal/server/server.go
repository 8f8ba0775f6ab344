package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"partshop/storefront/internal/cart"
	"partshop/storefront/internal/catalog"
	"partshop/storefront/internal/config"
	"partshop/storefront/internal/state"
	"partshop/storefront/internal/suggest"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// HealthCheck probes one dependency for GET /health.
type HealthCheck func(ctx context.Context) error

type Dependencies struct {
	Catalog      *catalog.Service
	Composer     *suggest.Composer
	Cart         *cart.Service
	State        state.KeyValueStore
	HealthChecks map[string]HealthCheck
}

type Server struct {
	cfg    *config.Config
	deps   Dependencies
	router *gin.Engine
}

func New(cfg *config.Config, deps Dependencies) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: gin.New(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(gin.Recovery(), requestID())
	s.router.Use(cors.New(s.corsConfig()))
	s.router.Use(newIPRateLimiter(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst).middleware())

	s.router.GET("/health", s.health)

	api := s.router.Group("/api/v1")
	{
		api.GET("/products", s.listProducts)
		api.GET("/products/:id", s.getProduct)
		api.GET("/categories", s.listCategories)
		api.GET("/search/suggestions", s.suggestions)
	}

	private := api.Group("")
	private.Use(authenticate(s.cfg.Auth.JWTSecret, s.cfg.Auth.Issuer))
	{
		private.GET("/me/recent-searches", s.getRecentSearches)
		private.POST("/me/recent-searches", s.recordRecentSearch)
		private.DELETE("/me/recent-searches", s.clearRecentSearches)

		private.GET("/cart", s.getCart)
		private.POST("/cart/items", s.addCartItem)
		private.PATCH("/cart/items/:product_id", s.updateCartItem)
		private.DELETE("/cart/items/:product_id", s.removeCartItem)
		private.DELETE("/cart", s.clearCart)
		private.POST("/cart/promo", s.applyPromo)
		private.DELETE("/cart/promo", s.removePromo)
	}
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(s.cfg.Server.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = s.cfg.Server.AllowedOrigins
	cfg.AllowCredentials = true
	return cfg
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for name, check := range s.deps.HealthChecks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":  overall,
		"service": "storefront",
		"checks":  checks,
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🚀 Storefront listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("🛑 Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
