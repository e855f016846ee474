package testutil

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/subject"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	SubjectRepo  subject.Repository
	PlanRepo     plan.Repository
	SubRepo      subscription.Repository
	ScheduleRepo subscription.ScheduleRepository
}

// BaseServiceTestSuite provides common functionality for service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	gateway   *StubGateway
	gateways  *gateway.Registry
	publisher *InMemoryEventPublisher
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelError

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.stores = Stores{
		SubjectRepo:  NewInMemorySubjectStore(),
		PlanRepo:     NewInMemoryPlanStore(),
		SubRepo:      NewInMemorySubscriptionStore(),
		ScheduleRepo: NewInMemoryScheduleStore(),
	}
	s.gateway = NewStubGateway()
	s.gateways = gateway.NewRegistry()
	s.gateways.Register(types.PaymentGatewayTypeStripe, s.gateway)
	s.publisher = NewInMemoryEventPublisher()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.publisher.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the in-memory repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateway returns the scripted gateway stub
func (s *BaseServiceTestSuite) GetGateway() *StubGateway {
	return s.gateway
}

// GetGatewayRegistry returns the registry with the stub installed
func (s *BaseServiceTestSuite) GetGatewayRegistry() *gateway.Registry {
	return s.gateways
}

// GetPublisher returns the capturing event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the timestamp captured at test setup
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
