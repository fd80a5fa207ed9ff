package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/meminc/powsysmon/internal/apierr"
	"github.com/meminc/powsysmon/internal/config"
	"github.com/meminc/powsysmon/internal/domain"
	"github.com/meminc/powsysmon/internal/http/handler"
	httpmiddleware "github.com/meminc/powsysmon/internal/http/middleware"
	"github.com/meminc/powsysmon/internal/middleware"
)

// NewRouter wires Gin routes and middleware. The error dispatcher sits inside
// the chain so every downstream failure, from middleware or handler, leaves
// through one translator.
func NewRouter(
	cfg config.Config,
	logger *zap.Logger,
	authMiddleware *httpmiddleware.Auth,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	topologyHandler *handler.TopologyHandler,
	alarmHandler *handler.AlarmHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(apierr.Middleware(logger))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authMiddleware.Require(), authHandler.Logout)
			auth.GET("/me", authMiddleware.Require(), authHandler.Me)
		}

		topology := api.Group("/topology", authMiddleware.Require())
		{
			topology.GET("/connections", topologyHandler.ListConnections)
			topology.POST("/connections", authMiddleware.RequireRole(domain.RoleOperator), topologyHandler.CreateConnection)
			topology.DELETE("/connections/:id", authMiddleware.RequireRole(domain.RoleOperator), topologyHandler.DeleteConnection)
		}

		alarms := api.Group("/alarms", authMiddleware.Require())
		{
			alarms.POST("/:id/acknowledge", authMiddleware.RequireRole(domain.RoleOperator), alarmHandler.Acknowledge)
		}
	}

	return r
}
