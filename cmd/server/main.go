package main

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/api"
	v1 "github.com/billforge/billforge/internal/api/v1"
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/proration"
	"github.com/billforge/billforge/internal/domain/subject"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/gateway"
	stripegateway "github.com/billforge/billforge/internal/gateway/stripe"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/publisher"
	pubsubmemory "github.com/billforge/billforge/internal/pubsub/memory"
	"github.com/billforge/billforge/internal/repository"
	"github.com/billforge/billforge/internal/service"
	"github.com/billforge/billforge/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			provideCache,

			// Postgres
			postgres.NewClient,

			// PubSub and event publisher
			pubsubmemory.NewPubSub,
			publisher.NewPublisher,

			// Repositories
			repository.NewSubjectRepository,
			repository.NewPlanRepository,
			repository.NewSubscriptionRepository,
			repository.NewScheduleRepository,

			// Payment gateways
			provideGatewayRegistry,

			// Proration fallback
			proration.NewCalculator,

			// Services
			provideServiceParams,
			service.NewSubscriptionService,

			// API
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func provideCache(cfg *config.Configuration) cache.Cache {
	return cache.NewInMemoryCache(true)
}

func provideGatewayRegistry(cfg *config.Configuration, log *logger.Logger) *gateway.Registry {
	registry := gateway.NewRegistry()
	registry.Register(types.PaymentGatewayTypeStripe, stripegateway.NewClient(cfg, log))
	return registry
}

func provideServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	subjectRepo subject.Repository,
	planRepo plan.Repository,
	subRepo subscription.Repository,
	scheduleRepo subscription.ScheduleRepository,
	gateways *gateway.Registry,
	prorationCalc proration.Calculator,
	events publisher.EventPublisher,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:         log,
		Config:         cfg,
		SubjectRepo:    subjectRepo,
		PlanRepo:       planRepo,
		SubRepo:        subRepo,
		ScheduleRepo:   scheduleRepo,
		Gateways:       gateways,
		ProrationCalc:  prorationCalc,
		EventPublisher: events,
	}
}

func provideHandlers(
	subscriptionService service.SubscriptionService,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, log),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	client postgres.IClient,
	events publisher.EventPublisher,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			if err := events.Close(); err != nil {
				log.Errorw("failed to close event publisher", "error", err)
			}
			return client.Close()
		},
	})
}
