package service

import (
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/proration"
	"github.com/billforge/billforge/internal/domain/subject"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	SubjectRepo  subject.Repository
	PlanRepo     plan.Repository
	SubRepo      subscription.Repository
	ScheduleRepo subscription.ScheduleRepository

	// Gateway access
	Gateways *gateway.Registry

	// Proration fallback
	ProrationCalc proration.Calculator

	// Event sink
	EventPublisher publisher.EventPublisher
}
