package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/lazyload/internal/app"
	"github.com/charlesng35/lazyload/internal/monitoring"
	appErrors "github.com/charlesng35/lazyload/pkg/errors"
	"github.com/charlesng35/lazyload/pkg/response"
)

var errHealthDisabled = appErrors.New("HEALTH_DISABLED", "Health checks are disabled", http.StatusNotFound)

type evaluator func(ctx context.Context) monitoring.HealthReport

// registerHealthRoutes mounts /health, /health/live and /health/ready at the root and
// under /api. /health reports the readiness verdict without per-probe detail.
func registerHealthRoutes(r *gin.Engine, cfg *app.Config, mon *monitoring.Module) {
	routers := []gin.IRouter{r, r.Group("/api")}

	if !cfg.Monitoring.Health.Enabled || mon.Health() == nil {
		for _, router := range routers {
			for _, path := range []string{"/health", "/health/live", "/health/ready"} {
				router.GET(path, func(c *gin.Context) { response.Error(c, errHealthDisabled) })
			}
		}
		return
	}

	manager := mon.Health()
	for _, router := range routers {
		router.GET("/health", healthHandler(manager.EvaluateReadiness, false))
		router.GET("/health/live", healthHandler(manager.EvaluateLiveness, true))
		router.GET("/health/ready", healthHandler(manager.EvaluateReadiness, true))
	}
}

func healthHandler(evaluate evaluator, detailed bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := evaluate(c.Request.Context())
		status := http.StatusOK
		if !report.Success {
			status = http.StatusServiceUnavailable
		}
		if !detailed {
			report.Checks = nil
		}
		c.JSON(status, report)
	}
}
