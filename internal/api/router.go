package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/lazyload/internal/app"
	"github.com/charlesng35/lazyload/internal/handlers"
	"github.com/charlesng35/lazyload/internal/middleware"
	"github.com/charlesng35/lazyload/internal/monitoring"
)

// NewRouter builds the Gin engine, wires middleware and registers the read and operator routes.
func NewRouter(users handlers.UserReader, mon *monitoring.Module, cfg *app.Config) (*gin.Engine, error) {
	if users == nil {
		return nil, fmt.Errorf("user loader must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	if mon != nil {
		r.Use(middleware.Metrics())
	}

	registerHealthRoutes(r, cfg, mon)

	userHandler, err := handlers.NewUserHandler(users)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	registerUserRoutes(api, userHandler)
	registerMonitoringRoutes(api, handlers.NewMonitoringHandler(mon, cfg))

	if cfg.Monitoring.Prometheus.Enabled && mon != nil {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(mon.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
