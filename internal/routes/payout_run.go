package routes

import (
	"rentpayout/internal/handlers"
	"rentpayout/internal/middleware"
	"rentpayout/internal/stream"
	"rentpayout/pkg/config"

	"github.com/gin-gonic/gin"
)

// SetupPayoutRoutes sets up payout run and ledger routes
func SetupPayoutRoutes(r *gin.Engine, cfg config.ServerConfig, h *handlers.PayoutHandler, hub *stream.Hub) {
	runs := r.Group("/payout-runs")
	{
		runs.POST("",
			middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimitRPS,
				Burst:             cfg.RateLimitBurst,
			}),
			middleware.RequireTriggerKey(cfg.TriggerKey),
			h.TriggerRun,
		)
		runs.GET("", h.ListRuns)
		runs.GET("/stream", gin.WrapF(hub.Serve))
		runs.GET("/:id", h.GetRun)
	}

	r.GET("/investments/:id/payouts", h.ListInvestmentPayouts)
}
