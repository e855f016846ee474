package repository

import (
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/subject"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/logger"
	pgclient "github.com/billforge/billforge/internal/postgres"
	pgrepo "github.com/billforge/billforge/internal/repository/postgres"
)

func NewSubjectRepository(client pgclient.IClient, logger *logger.Logger) subject.Repository {
	return pgrepo.NewSubjectRepository(client, logger)
}

func NewPlanRepository(client pgclient.IClient, logger *logger.Logger, cache cache.Cache) plan.Repository {
	return pgrepo.NewPlanRepository(client, logger, cache)
}

func NewSubscriptionRepository(client pgclient.IClient, logger *logger.Logger) subscription.Repository {
	return pgrepo.NewSubscriptionRepository(client, logger)
}

func NewScheduleRepository(client pgclient.IClient, logger *logger.Logger) subscription.ScheduleRepository {
	return pgrepo.NewScheduleRepository(client, logger)
}
