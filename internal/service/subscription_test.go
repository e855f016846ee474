package service

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/proration"
	"github.com/billforge/billforge/internal/domain/subject"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService

	subjectID   string
	proMonthly  *plan.Plan
	bizMonthly  *plan.Plan
	proAnnual   *plan.Plan
	basicPlanID string
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewSubscriptionService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		SubjectRepo:    stores.SubjectRepo,
		PlanRepo:       stores.PlanRepo,
		SubRepo:        stores.SubRepo,
		ScheduleRepo:   stores.ScheduleRepo,
		Gateways:       s.GetGatewayRegistry(),
		ProrationCalc:  proration.NewCalculator(),
		EventPublisher: s.GetPublisher(),
	})

	s.seedData()
}

func (s *SubscriptionServiceSuite) seedData() {
	s.subjectID = "subj_test_1"
	s.subjectStore().Add(&subject.Subject{
		ID:                     s.subjectID,
		Email:                  "jane@example.com",
		DefaultPaymentMethodID: "pm_card_visa",
		Balance:                decimal.Zero,
		BaseModel:              types.GetDefaultBaseModel(s.GetContext()),
	})

	s.proMonthly = &plan.Plan{
		ID:              "plan_pro_monthly",
		Tier:            "pro",
		Cycle:           types.BillingCycleMonthly,
		GatewayPriceRef: "price_pro_monthly",
		Amount:          decimal.NewFromInt(30),
		Currency:        "usd",
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.bizMonthly = &plan.Plan{
		ID:              "plan_biz_monthly",
		Tier:            "biz",
		Cycle:           types.BillingCycleMonthly,
		GatewayPriceRef: "price_biz_monthly",
		Amount:          decimal.NewFromInt(90),
		Currency:        "usd",
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.proAnnual = &plan.Plan{
		ID:              "plan_pro_annual",
		Tier:            "pro",
		Cycle:           types.BillingCycleAnnual,
		GatewayPriceRef: "price_pro_annual",
		Amount:          decimal.NewFromInt(300),
		Currency:        "usd",
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.basicPlanID = "plan_basic_monthly"
	basic := &plan.Plan{
		ID:              s.basicPlanID,
		Tier:            "basic",
		Cycle:           types.BillingCycleMonthly,
		GatewayPriceRef: "price_basic_monthly",
		Amount:          decimal.NewFromInt(10),
		Currency:        "usd",
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}

	for _, p := range []*plan.Plan{s.proMonthly, s.bizMonthly, s.proAnnual, basic} {
		s.planStore().Add(p)
	}
}

func (s *SubscriptionServiceSuite) subjectStore() *testutil.InMemorySubjectStore {
	return s.GetStores().SubjectRepo.(*testutil.InMemorySubjectStore)
}

func (s *SubscriptionServiceSuite) planStore() *testutil.InMemoryPlanStore {
	return s.GetStores().PlanRepo.(*testutil.InMemoryPlanStore)
}

func (s *SubscriptionServiceSuite) scheduleStore() *testutil.InMemoryScheduleStore {
	return s.GetStores().ScheduleRepo.(*testutil.InMemoryScheduleStore)
}

func (s *SubscriptionServiceSuite) start() *dto.SubscriptionResponse {
	resp, err := s.service.Start(s.GetContext(), s.subjectID, &dto.StartSubscriptionRequest{
		PlanID:   s.proMonthly.ID,
		Quantity: 1,
	})
	s.Require().NoError(err)
	return resp
}

func (s *SubscriptionServiceSuite) TestStartRequiresPaymentMethod() {
	s.subjectStore().Add(&subject.Subject{
		ID:        "subj_no_pm",
		Email:     "nopm@example.com",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	})

	_, err := s.service.Start(s.GetContext(), "subj_no_pm", &dto.StartSubscriptionRequest{
		PlanID:   s.proMonthly.ID,
		Quantity: 1,
	})

	s.Error(err)
	s.True(ierr.IsPaymentMethodMissing(err))
	// Validation failed before any remote call
	s.Zero(s.GetGateway().CallCount(testutil.OpCreateSubscription))
	s.Zero(s.GetGateway().CallCount(testutil.OpCreateCustomer))
}

func (s *SubscriptionServiceSuite) TestStartIsActiveWithoutTrial() {
	resp := s.start()

	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.NotEmpty(resp.GatewaySubscriptionRef)
	s.Equal(1, s.GetGateway().CallCount(testutil.OpCreateSubscription))
	s.Contains(s.GetPublisher().EventNames(), types.WebhookEventSubscriptionStarted)
}

func (s *SubscriptionServiceSuite) TestStartIsTrialingWithFutureTrial() {
	trialUntil := s.GetNow().Add(14 * 24 * time.Hour)

	resp, err := s.service.Start(s.GetContext(), s.subjectID, &dto.StartSubscriptionRequest{
		PlanID:     s.proMonthly.ID,
		Quantity:   1,
		TrialUntil: &trialUntil,
	})

	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusTrialing, resp.SubscriptionStatus)
	s.Require().NotNil(resp.TrialEndsAt)
	s.True(resp.TrialEndsAt.Equal(trialUntil))
	s.True(resp.StartsAt.Equal(trialUntil))
}

func (s *SubscriptionServiceSuite) TestStartHonorsRequestedGateway() {
	other := types.PaymentGatewayType("braintree")
	otherGateway := testutil.NewStubGateway()
	s.GetGatewayRegistry().Register(other, otherGateway)

	resp, err := s.service.Start(s.GetContext(), s.subjectID, &dto.StartSubscriptionRequest{
		PlanID:         s.proMonthly.ID,
		Quantity:       1,
		PaymentGateway: other,
	})

	s.Require().NoError(err)
	s.Equal(other, resp.PaymentGateway)
	s.Equal(1, otherGateway.CallCount(testutil.OpCreateSubscription))
	s.Zero(s.GetGateway().CallCount(testutil.OpCreateSubscription))

	current, err := s.GetStores().SubRepo.GetCurrentForSubject(s.GetContext(), s.subjectID)
	s.Require().NoError(err)
	s.Equal(other, current.PaymentGateway)
}

func (s *SubscriptionServiceSuite) TestStartRejectsUnregisteredGateway() {
	_, err := s.service.Start(s.GetContext(), s.subjectID, &dto.StartSubscriptionRequest{
		PlanID:         s.proMonthly.ID,
		Quantity:       1,
		PaymentGateway: types.PaymentGatewayType("unknown"),
	})

	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrValidation))
	s.Zero(s.GetGateway().CallCount(testutil.OpCreateSubscription))
}

func (s *SubscriptionServiceSuite) TestStartAppliesCreditBeforeSubscription() {
	resp, err := s.service.Start(s.GetContext(), s.subjectID, &dto.StartSubscriptionRequest{
		PlanID:       s.proMonthly.ID,
		Quantity:     1,
		CreditAmount: decimal.NewFromInt(15),
	})

	s.Require().NoError(err)
	s.NotNil(resp)

	txns := s.GetGateway().BalanceTransactions()
	s.Require().Len(txns, 1)
	s.True(txns[0].Amount.Equal(decimal.NewFromInt(-15)))

	// Customer was created on demand and its ref persisted
	subj, err := s.GetStores().SubjectRepo.Get(s.GetContext(), s.subjectID)
	s.Require().NoError(err)
	s.NotEmpty(subj.GatewayCustomerRef)
	s.True(subj.Balance.IsZero())
}

func (s *SubscriptionServiceSuite) TestUpgradeScenarioQuantityThree() {
	s.start()
	s.Zero(s.scheduleStore().Count())

	resp, err := s.service.Upgrade(s.GetContext(), s.subjectID, &dto.UpgradeRequest{
		PlanID:     s.bizMonthly.ID,
		Quantity:   3,
		ProrateNow: true,
		InvoiceNow: true,
	})

	s.Require().NoError(err)
	s.Equal(s.bizMonthly.ID, resp.PlanID)
	s.Equal(3, resp.Quantity)

	gw := s.GetGateway()
	s.Equal(1, gw.CallCount(testutil.OpUpdateSubscriptionItem))
	s.Equal(1, gw.CallCount(testutil.OpCreateInvoice))
	s.Equal(1, gw.CallCount(testutil.OpPayInvoice))
	s.Len(gw.PaidInvoices(), 1)

	current, err := s.GetStores().SubRepo.GetCurrentForSubject(s.GetContext(), s.subjectID)
	s.Require().NoError(err)
	s.Equal(s.bizMonthly.ID, current.PlanID)
	s.Equal(3, current.Quantity)

	s.Zero(s.scheduleStore().Count())
	s.Contains(s.GetPublisher().EventNames(), types.WebhookEventSubscriptionUpdated)
}

func (s *SubscriptionServiceSuite) TestUpgradeReleasesExistingSchedule() {
	s.start()

	_, err := s.service.Downgrade(s.GetContext(), s.subjectID, &dto.DowngradeRequest{
		PlanID:   s.basicPlanID,
		Quantity: 1,
	})
	s.Require().NoError(err)
	s.Equal(1, s.scheduleStore().Count())

	_, err = s.service.Upgrade(s.GetContext(), s.subjectID, &dto.UpgradeRequest{
		PlanID:   s.bizMonthly.ID,
		Quantity: 1,
	})
	s.Require().NoError(err)

	s.Equal(1, s.GetGateway().CallCount(testutil.OpReleaseSchedule))
	s.Zero(s.scheduleStore().Count())
}

func (s *SubscriptionServiceSuite) TestUpgradeSurfacesInvoicePaymentFailure() {
	s.start()

	s.GetGateway().FailOn(testutil.OpPayInvoice,
		testutil.GatewayFailure(gateway.ErrCodeInsufficientFunds, "card has insufficient funds"))

	_, err := s.service.Upgrade(s.GetContext(), s.subjectID, &dto.UpgradeRequest{
		PlanID:     s.bizMonthly.ID,
		Quantity:   1,
		InvoiceNow: true,
	})

	s.Error(err)
	s.True(ierr.IsInvoicePaymentFailed(err))
	s.Equal(gateway.ErrCodeInsufficientFunds, gateway.CodeOf(err))
}

func (s *SubscriptionServiceSuite) TestDowngradeCreatesScheduleOnly() {
	started := s.start()
	remote := s.GetGateway().Subscription(started.GatewaySubscriptionRef)
	s.Require().NotNil(remote)

	resp, err := s.service.Downgrade(s.GetContext(), s.subjectID, &dto.DowngradeRequest{
		PlanID:   s.basicPlanID,
		Quantity: 2,
	})

	s.Require().NoError(err)
	s.Equal(types.ScheduleRefKindSchedule, resp.GatewayRefKind)
	s.True(resp.StartsAt.Equal(remote.CurrentPeriodEnd))
	s.Equal(s.basicPlanID, resp.PlanID)
	s.Equal(2, resp.Quantity)
	s.Equal(1, s.GetGateway().CallCount(testutil.OpUpdateSchedulePhases))

	// The live subscription keeps its plan and quantity until the boundary
	current, err := s.GetStores().SubRepo.GetCurrentForSubject(s.GetContext(), s.subjectID)
	s.Require().NoError(err)
	s.Equal(s.proMonthly.ID, current.PlanID)
	s.Equal(1, current.Quantity)
	s.Equal(types.SubscriptionStatusActive, current.SubscriptionStatus)
	s.Nil(current.EndsAt)
}

func (s *SubscriptionServiceSuite) TestAtMostOneScheduleUnderInterleaving() {
	s.start()

	// Fixed seed keeps the run reproducible while still exercising
	// arbitrary operation orders
	rng := rand.New(rand.NewSource(42))

	ops := map[string]func() error{
		"downgrade": func() error {
			_, err := s.service.Downgrade(s.GetContext(), s.subjectID, &dto.DowngradeRequest{
				PlanID: s.basicPlanID, Quantity: 1 + rng.Intn(3),
			})
			return err
		},
		"scheduled_start": func() error {
			_, err := s.service.ScheduledStart(s.GetContext(), s.subjectID, &dto.ScheduledStartRequest{
				PlanID: s.bizMonthly.ID, Quantity: 1,
			})
			return err
		},
		"upgrade": func() error {
			_, err := s.service.Upgrade(s.GetContext(), s.subjectID, &dto.UpgradeRequest{
				PlanID: s.bizMonthly.ID, Quantity: 1 + rng.Intn(3),
			})
			return err
		},
		"cancel_schedule": func() error {
			return s.service.CancelSchedule(s.GetContext(), s.subjectID)
		},
	}
	names := lo.Keys(ops)
	sort.Strings(names)
	for i := 0; i < 60; i++ {
		name := names[rng.Intn(len(names))]
		s.Require().NoError(ops[name](), "op %s at step %d", name, i)
		s.LessOrEqual(s.scheduleStore().Count(), 1, "op %s at step %d", name, i)
	}

	s.Require().NoError(s.service.CancelSchedule(s.GetContext(), s.subjectID))
	s.Zero(s.scheduleStore().Count())
}

func (s *SubscriptionServiceSuite) TestScheduledStartBooksPendingSubscription() {
	started := s.start()
	remote := s.GetGateway().Subscription(started.GatewaySubscriptionRef)

	resp, err := s.service.ScheduledStart(s.GetContext(), s.subjectID, &dto.ScheduledStartRequest{
		PlanID:   s.bizMonthly.ID,
		Quantity: 1,
	})

	s.Require().NoError(err)
	s.Equal(types.ScheduleRefKindPendingSubscription, resp.GatewayRefKind)
	s.True(resp.StartsAt.Equal(remote.CurrentPeriodEnd))

	// One live subscription plus the pending one
	s.Equal(2, s.GetGateway().CallCount(testutil.OpCreateSubscription))

	pending := s.GetGateway().Subscription(resp.GatewayRef)
	s.Require().NotNil(pending)
	s.Require().NotNil(pending.TrialEnd)
	s.True(pending.TrialEnd.Equal(remote.CurrentPeriodEnd))
}

func (s *SubscriptionServiceSuite) TestCancelScheduleReleasesPendingSubscription() {
	s.start()

	_, err := s.service.ScheduledStart(s.GetContext(), s.subjectID, &dto.ScheduledStartRequest{
		PlanID: s.bizMonthly.ID, Quantity: 1,
	})
	s.Require().NoError(err)

	cancels := s.GetGateway().CallCount(testutil.OpCancelSubscription)
	err = s.service.CancelSchedule(s.GetContext(), s.subjectID)
	s.Require().NoError(err)

	// Pending-subscription schedules are released by cancelling the pending
	// subscription, not by a schedule release call
	s.Equal(cancels+1, s.GetGateway().CallCount(testutil.OpCancelSubscription))
	s.Zero(s.GetGateway().CallCount(testutil.OpReleaseSchedule))
	s.Zero(s.scheduleStore().Count())
}

func (s *SubscriptionServiceSuite) TestCancelNow() {
	started := s.start()

	resp, err := s.service.Cancel(s.GetContext(), s.subjectID, &dto.CancelRequest{Now: true})

	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCancelled.String(), resp.Status)
	s.Require().NotNil(resp.EndsAt)
	s.WithinDuration(s.GetNow(), *resp.EndsAt, time.Minute)

	remote := s.GetGateway().Subscription(started.GatewaySubscriptionRef)
	s.Equal("canceled", remote.Status)

	s.Contains(s.GetPublisher().EventNames(), types.WebhookEventSubscriptionCancelled)
}

func (s *SubscriptionServiceSuite) TestCancelAtPeriodEnd() {
	started := s.start()
	remote := s.GetGateway().Subscription(started.GatewaySubscriptionRef)
	nextPlan := s.basicPlanID

	resp, err := s.service.Cancel(s.GetContext(), s.subjectID, &dto.CancelRequest{
		Now:        false,
		NextPlanID: &nextPlan,
	})

	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusGracePeriod.String(), resp.Status)
	s.Require().NotNil(resp.EndsAt)
	s.True(resp.EndsAt.Equal(remote.CurrentPeriodEnd))

	// The remote subscription stays alive until the boundary
	after := s.GetGateway().Subscription(started.GatewaySubscriptionRef)
	s.Equal("active", after.Status)
	s.True(after.CancelAtPeriodEnd)

	current, err := s.GetStores().SubRepo.GetCurrentForSubject(s.GetContext(), s.subjectID)
	s.Require().NoError(err)
	s.Require().NotNil(current.NextPlanID)
	s.Equal(nextPlan, *current.NextPlanID)
}

func (s *SubscriptionServiceSuite) TestCancelNowRejectsNextPlan() {
	s.start()
	nextPlan := s.basicPlanID

	_, err := s.service.Cancel(s.GetContext(), s.subjectID, &dto.CancelRequest{
		Now:        true,
		NextPlanID: &nextPlan,
	})

	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestResumeWithinGracePeriod() {
	s.start()
	nextPlan := s.basicPlanID
	_, err := s.service.Cancel(s.GetContext(), s.subjectID, &dto.CancelRequest{
		NextPlanID: &nextPlan,
	})
	s.Require().NoError(err)

	resp, err := s.service.Resume(s.GetContext(), s.subjectID)

	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.Nil(resp.EndsAt)
	s.Nil(resp.NextPlanID)
	s.Equal(1, s.GetGateway().CallCount(testutil.OpResumeSubscription))
	s.Contains(s.GetPublisher().EventNames(), types.WebhookEventSubscriptionResumed)
}

func (s *SubscriptionServiceSuite) TestResumeOutsideGracePeriodFails() {
	s.start()

	_, err := s.service.Resume(s.GetContext(), s.subjectID)

	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrResumeFailed))
	s.Zero(s.GetGateway().CallCount(testutil.OpResumeSubscription))
}

func (s *SubscriptionServiceSuite) TestResumeWithoutSubscription() {
	_, err := s.service.Resume(s.GetContext(), s.subjectID)

	s.Error(err)
	s.True(ierr.IsNoActiveSubscription(err))
}

func (s *SubscriptionServiceSuite) TestResumeGatewayFailureLeavesRecordUntouched() {
	s.start()
	_, err := s.service.Cancel(s.GetContext(), s.subjectID, &dto.CancelRequest{})
	s.Require().NoError(err)

	s.GetGateway().FailOn(testutil.OpResumeSubscription,
		testutil.GatewayFailure(gateway.ErrCodeGeneric, "resume rejected"))

	_, err = s.service.Resume(s.GetContext(), s.subjectID)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrResumeFailed))

	current, err := s.GetStores().SubRepo.GetCurrentForSubject(s.GetContext(), s.subjectID)
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusGracePeriod, current.SubscriptionStatus)
	s.NotNil(current.EndsAt)
}

func (s *SubscriptionServiceSuite) TestStartCancelNowNextBillingTimeIsNull() {
	s.start()
	_, err := s.service.Cancel(s.GetContext(), s.subjectID, &dto.CancelRequest{Now: true})
	s.Require().NoError(err)

	resp, err := s.service.GetNextBillingTime(s.GetContext(), s.subjectID, nil)

	s.NoError(err)
	s.Nil(resp)
}

func (s *SubscriptionServiceSuite) TestNextBillingTimeResolution() {
	trialUntil := s.GetNow().Add(7 * 24 * time.Hour)
	_, err := s.service.Start(s.GetContext(), s.subjectID, &dto.StartSubscriptionRequest{
		PlanID:     s.proMonthly.ID,
		Quantity:   1,
		TrialUntil: &trialUntil,
	})
	s.Require().NoError(err)

	// Trial end wins over the gateway period end
	resp, err := s.service.GetNextBillingTime(s.GetContext(), s.subjectID, nil)
	s.Require().NoError(err)
	s.Require().NotNil(resp)
	s.Equal(trialUntil.Unix(), resp.Raw)
	s.Equal("will be billed on "+trialUntil.UTC().Format("January 2, 2006"), resp.WillBeBilledOn)

	// An explicit override wins over everything
	override := s.GetNow().Add(60 * 24 * time.Hour)
	resp, err = s.service.GetNextBillingTime(s.GetContext(), s.subjectID, &override)
	s.Require().NoError(err)
	s.Equal(override.Unix(), resp.Raw)
}

func (s *SubscriptionServiceSuite) TestGetProrationUsesGatewayPreview() {
	s.start()
	s.GetGateway().PreviewTotal = decimal.NewFromFloat(42.50)

	resp, err := s.service.GetProration(s.GetContext(), s.subjectID, &dto.ProrationRequest{
		Tier:     "biz",
		Cycle:    types.BillingCycleMonthly,
		Quantity: 1,
	})

	s.Require().NoError(err)
	s.Equal(dto.ProrationSourceGateway, resp.Source)
	s.True(resp.Amount.Equal(decimal.NewFromFloat(42.50)))
}

func (s *SubscriptionServiceSuite) TestGetProrationNeverFailsOnGatewayErrors() {
	s.start()
	s.GetGateway().FailAll(testutil.GatewayFailure(gateway.ErrCodeGeneric, "gateway is down"))

	resp, err := s.service.GetProration(s.GetContext(), s.subjectID, &dto.ProrationRequest{
		Tier:     "biz",
		Cycle:    types.BillingCycleMonthly,
		Quantity: 2,
	})

	s.Require().NoError(err)
	s.Equal(dto.ProrationSourceEstimate, resp.Source)
	// pro 30x1 -> biz 90x2 at period start: full-period delta of 150
	s.True(resp.Amount.Equal(decimal.NewFromInt(150)), "got %s", resp.Amount)
}

func (s *SubscriptionServiceSuite) TestSwapReplacesSubscription() {
	started := s.start()
	remote := s.GetGateway().Subscription(started.GatewaySubscriptionRef)

	resp, err := s.service.Swap(s.GetContext(), s.subjectID, &dto.SwapRequest{
		PlanID:   s.bizMonthly.ID,
		Quantity: 1,
	})

	s.Require().NoError(err)
	s.NotEmpty(resp.GatewaySubscriptionRef)
	s.NotEqual(started.GatewaySubscriptionRef, resp.GatewaySubscriptionRef)

	// The replacement trials until the old paid-through boundary
	s.Require().NotNil(resp.TrialEndsAt)
	s.True(resp.TrialEndsAt.Equal(remote.CurrentPeriodEnd))

	// The superseded local record is gone
	_, err = s.GetStores().SubRepo.GetCurrentForSubject(s.GetContext(), s.subjectID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	s.Contains(s.GetPublisher().EventNames(), types.WebhookEventSubscriptionSwapped)
}

func (s *SubscriptionServiceSuite) TestSwapFailureLeavesNoActiveSubscription() {
	s.start()
	s.GetGateway().FailOn(testutil.OpCreateSubscription,
		testutil.GatewayFailure(gateway.ErrCodeGeneric, "price not found"))

	_, err := s.service.Swap(s.GetContext(), s.subjectID, &dto.SwapRequest{
		PlanID:   s.bizMonthly.ID,
		Quantity: 1,
	})

	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrSwapFailed))

	// The old remote subscription was already cancelled; the local record
	// reflects that instead of pointing at a dead remote object
	_, err = s.GetStores().SubRepo.GetCurrentForSubject(s.GetContext(), s.subjectID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestPauseOnlyEmitsEvent() {
	s.start()
	before, err := s.GetStores().SubRepo.GetCurrentForSubject(s.GetContext(), s.subjectID)
	s.Require().NoError(err)

	err = s.service.Pause(s.GetContext(), s.subjectID)
	s.Require().NoError(err)

	after, err := s.GetStores().SubRepo.GetCurrentForSubject(s.GetContext(), s.subjectID)
	s.Require().NoError(err)
	s.Equal(before.SubscriptionStatus, after.SubscriptionStatus)
	s.Equal(before.PlanID, after.PlanID)

	names := s.GetPublisher().EventNames()
	s.True(lo.Contains(names, types.WebhookEventSubscriptionPaused))
}
