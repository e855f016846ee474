package api

import (
	v1 "github.com/billforge/billforge/internal/api/v1"
	"github.com/billforge/billforge/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Subscription *v1.SubscriptionHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.Default()

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.RequestIDMiddleware, middleware.TenantMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Subscription lifecycle routes, keyed by the billed subject
	subjects := router.Group("/subjects/:id")
	{
		subjects.POST("/subscription/start", handlers.Subscription.Start)
		subjects.POST("/subscription/scheduled-start", handlers.Subscription.ScheduledStart)
		subjects.POST("/subscription/upgrade", handlers.Subscription.Upgrade)
		subjects.POST("/subscription/downgrade", handlers.Subscription.Downgrade)
		subjects.POST("/subscription/swap", handlers.Subscription.Swap)
		subjects.POST("/subscription/cancel", handlers.Subscription.Cancel)
		subjects.DELETE("/subscription/schedule", handlers.Subscription.CancelSchedule)
		subjects.POST("/subscription/pause", handlers.Subscription.Pause)
		subjects.POST("/subscription/resume", handlers.Subscription.Resume)
		subjects.GET("/subscription/next-billing-time", handlers.Subscription.NextBillingTime)
		subjects.POST("/subscription/proration", handlers.Subscription.Proration)
	}
}
