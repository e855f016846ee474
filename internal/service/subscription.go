package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/proration"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/types"
)

// SubscriptionService orchestrates the subscription lifecycle between the
// local records and the payment gateway. Every operation takes an explicit
// subject id; there is no ambient authenticated subject.
//
// Ordering discipline: validation runs before any remote call, remote
// mutations run before local writes, and events are emitted last. A gateway
// failure mid-operation is never rolled back automatically; errors carry
// enough detail for an operator to reconcile.
type SubscriptionService interface {
	Start(ctx context.Context, subjectID string, req *dto.StartSubscriptionRequest) (*dto.SubscriptionResponse, error)
	ScheduledStart(ctx context.Context, subjectID string, req *dto.ScheduledStartRequest) (*dto.ScheduleResponse, error)
	Upgrade(ctx context.Context, subjectID string, req *dto.UpgradeRequest) (*dto.SubscriptionResponse, error)
	Downgrade(ctx context.Context, subjectID string, req *dto.DowngradeRequest) (*dto.ScheduleResponse, error)
	Swap(ctx context.Context, subjectID string, req *dto.SwapRequest) (*dto.SwapResponse, error)
	Cancel(ctx context.Context, subjectID string, req *dto.CancelRequest) (*dto.CancelResponse, error)
	CancelSchedule(ctx context.Context, subjectID string) error
	Pause(ctx context.Context, subjectID string) error
	Resume(ctx context.Context, subjectID string) (*dto.SubscriptionResponse, error)

	// GetNextBillingTime resolves the next charge instant: an explicit
	// override wins, then the trial end, then the gateway-reported period
	// end. Returns nil without error when the subject has no subscription.
	GetNextBillingTime(ctx context.Context, subjectID string, override *time.Time) (*dto.NextBillingTimeResponse, error)

	GetProration(ctx context.Context, subjectID string, req *dto.ProrationRequest) (*dto.ProrationResponse, error)
}

type subscriptionService struct {
	ServiceParams
	ledger BalanceLedger
}

// NewSubscriptionService creates the lifecycle orchestrator
func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
		ledger:        NewBalanceLedger(params),
	}
}

func (s *subscriptionService) Start(ctx context.Context, subjectID string, req *dto.StartSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	subj, err := s.SubjectRepo.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	// Payment instrument check happens before any remote call so a failed
	// start leaves zero side effects.
	if req.PaymentMethodID == "" && !subj.HasPaymentMethod() {
		return nil, ierr.NewError("subject has no usable payment method").
			WithHint("Add a payment method or supply one with the request").
			WithReportableDetails(map[string]any{
				"subject_id": subjectID,
			}).
			Mark(ierr.ErrPaymentMethodMissing)
	}

	targetPlan, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	gatewayType := req.PaymentGateway
	if gatewayType == "" {
		gatewayType = s.Config.Gateway.Default
	}
	client, err := s.Gateways.Get(gatewayType)
	if err != nil {
		return nil, err
	}

	// Credit must land on the customer before the subscription exists so the
	// first invoice sees it.
	creditApplied := false
	if req.CreditAmount.IsPositive() {
		if err := s.ledger.ApplyCredit(ctx, subj, client, req.CreditAmount, targetPlan.Currency); err != nil {
			return nil, err
		}
		creditApplied = true
	}

	customerRef, err := s.ledger.EnsureGatewayCustomer(ctx, subj, client)
	if err != nil {
		return nil, err
	}

	remote, err := client.CreateSubscription(ctx, gateway.CreateSubscriptionParams{
		CustomerRef:      customerRef,
		PriceRef:         targetPlan.GatewayPriceRef,
		Quantity:         req.Quantity,
		TrialEnd:         req.TrialUntil,
		PaymentMethodRef: req.PaymentMethodID,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &subscription.Subscription{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		SubjectID:              subjectID,
		PlanID:                 targetPlan.ID,
		Quantity:               req.Quantity,
		PaymentGateway:         gatewayType,
		GatewaySubscriptionRef: remote.Ref,
		SubscriptionStatus:     types.SubscriptionStatusActive,
		StartsAt:               remote.CreatedAt,
		TrialEndsAt:            req.TrialUntil,
		BaseModel:              types.GetDefaultBaseModel(ctx),
	}
	if req.TrialUntil != nil && req.TrialUntil.After(now) {
		sub.SubscriptionStatus = types.SubscriptionStatusTrialing
		sub.StartsAt = *req.TrialUntil
	}

	if err := s.SubRepo.Create(ctx, sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Remote subscription was created but the local record could not be saved").
			WithReportableDetails(map[string]any{
				"subject_id":  subjectID,
				"gateway_ref": remote.Ref,
			}).
			Mark(ierr.ErrDatabase)
	}

	if creditApplied {
		if err := s.ledger.ClearLocal(ctx, subj); err != nil {
			s.Logger.Warnw("failed to zero local balance after start",
				"subject_id", subjectID,
				"error", err)
		}
	}

	if req.PaymentMethodID != "" {
		if err := client.UpdateDefaultPaymentMethod(ctx, customerRef, req.PaymentMethodID); err != nil {
			s.Logger.Warnw("failed to update default payment method",
				"subject_id", subjectID,
				"error", err)
		} else {
			subj.DefaultPaymentMethodID = req.PaymentMethodID
			if err := s.SubjectRepo.Update(ctx, subj); err != nil {
				s.Logger.Warnw("failed to persist default payment method",
					"subject_id", subjectID,
					"error", err)
			}
		}
	}

	response := dto.NewSubscriptionResponse(sub)
	s.publishEvent(ctx, types.WebhookEventSubscriptionStarted, subjectID, response)

	return response, nil
}

func (s *subscriptionService) ScheduledStart(ctx context.Context, subjectID string, req *dto.ScheduledStartRequest) (*dto.ScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	subj, err := s.SubjectRepo.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	current, err := s.currentSubscription(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	targetPlan, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	client, err := s.Gateways.Get(current.PaymentGateway)
	if err != nil {
		return nil, err
	}

	// The activation boundary belongs to the gateway. Read it off the live
	// subscription instead of creating a throwaway remote object to learn it.
	var startsAt time.Time
	if req.StartsAt != nil {
		startsAt = req.StartsAt.UTC()
	} else {
		remote, err := client.GetSubscription(ctx, current.GatewaySubscriptionRef)
		if err != nil {
			return nil, err
		}
		startsAt = remote.CurrentPeriodEnd
	}

	// A new booking supersedes whatever was pending.
	if _, err := s.releaseExistingSchedule(ctx, client, current.ID); err != nil {
		return nil, err
	}

	customerRef, err := s.ledger.EnsureGatewayCustomer(ctx, subj, client)
	if err != nil {
		return nil, err
	}

	// The future subscription is created up front, trialing until the
	// boundary so its first charge lands exactly when the current plan ends.
	pending, err := client.CreateSubscription(ctx, gateway.CreateSubscriptionParams{
		CustomerRef: customerRef,
		PriceRef:    targetPlan.GatewayPriceRef,
		Quantity:    req.Quantity,
		TrialEnd:    &startsAt,
	})
	if err != nil {
		return nil, err
	}

	schedule := &subscription.SubscriptionSchedule{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_SCHEDULE),
		SubjectID:      subjectID,
		SubscriptionID: current.ID,
		PaymentGateway: current.PaymentGateway,
		GatewayRef:     pending.Ref,
		GatewayRefKind: types.ScheduleRefKindPendingSubscription,
		StartsAt:       startsAt,
		PlanID:         targetPlan.ID,
		Quantity:       req.Quantity,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := s.ScheduleRepo.Create(ctx, schedule); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Pending subscription was created on the gateway but the schedule record could not be saved").
			WithReportableDetails(map[string]any{
				"subject_id":  subjectID,
				"gateway_ref": pending.Ref,
			}).
			Mark(ierr.ErrDatabase)
	}

	return dto.NewScheduleResponse(schedule), nil
}

func (s *subscriptionService) Upgrade(ctx context.Context, subjectID string, req *dto.UpgradeRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	subj, err := s.SubjectRepo.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	current, err := s.currentSubscription(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	targetPlan, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	client, err := s.Gateways.Get(current.PaymentGateway)
	if err != nil {
		return nil, err
	}

	// An upgrade supersedes any pending downgrade. When a schedule was
	// released the gateway default proration applies; otherwise the caller's
	// prorate flag decides.
	released, err := s.releaseExistingSchedule(ctx, client, current.ID)
	if err != nil {
		return nil, err
	}
	var behavior types.ProrationBehavior
	if !released {
		behavior = types.ProrationBehaviorFromBool(req.ProrateNow)
	}

	remote, err := client.GetSubscription(ctx, current.GatewaySubscriptionRef)
	if err != nil {
		return nil, err
	}

	if _, err := client.UpdateSubscriptionItem(ctx, current.GatewaySubscriptionRef, gateway.UpdateItemParams{
		ItemRef:           remote.ItemRef,
		PriceRef:          targetPlan.GatewayPriceRef,
		Quantity:          req.Quantity,
		ProrationBehavior: behavior,
	}); err != nil {
		return nil, err
	}

	if req.InvoiceNow {
		invoice, err := client.CreateInvoice(ctx, subj.GatewayCustomerRef, current.GatewaySubscriptionRef)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Plan was changed but the proration invoice could not be created").
				Mark(ierr.ErrInvoicePaymentFailed)
		}
		if err := client.PayInvoice(ctx, invoice.Ref); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Plan was changed but the proration invoice could not be collected").
				WithReportableDetails(map[string]any{
					"invoice_ref": invoice.Ref,
				}).
				Mark(ierr.ErrInvoicePaymentFailed)
		}
	}

	current.PlanID = targetPlan.ID
	current.Quantity = req.Quantity
	if err := s.SubRepo.Update(ctx, current); err != nil {
		return nil, err
	}

	if err := s.ledger.PullRemoteBalance(ctx, subj, client); err != nil {
		s.Logger.Warnw("failed to pull remote balance after upgrade",
			"subject_id", subjectID,
			"error", err)
	}

	response := dto.NewSubscriptionResponse(current)
	s.publishEvent(ctx, types.WebhookEventSubscriptionUpdated, subjectID, response)

	return response, nil
}

func (s *subscriptionService) Downgrade(ctx context.Context, subjectID string, req *dto.DowngradeRequest) (*dto.ScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.currentSubscription(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	targetPlan, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	client, err := s.Gateways.Get(current.PaymentGateway)
	if err != nil {
		return nil, err
	}

	if _, err := s.releaseExistingSchedule(ctx, client, current.ID); err != nil {
		return nil, err
	}

	remote, err := client.GetSubscription(ctx, current.GatewaySubscriptionRef)
	if err != nil {
		return nil, err
	}
	boundary := remote.CurrentPeriodEnd

	remoteSchedule, err := client.CreateScheduleFromSubscription(ctx, current.GatewaySubscriptionRef)
	if err != nil {
		return nil, err
	}

	// Phase 1 rides out the paid period unchanged; phase 2 applies the new
	// price for exactly one iteration, after which the gateway bills it as
	// the ordinary ongoing plan.
	if err := client.UpdateSchedulePhases(ctx, remoteSchedule.Ref, []gateway.SchedulePhase{
		{
			PriceRef:          remote.PriceRef,
			Quantity:          remote.Quantity,
			StartDate:         remote.CurrentPeriodStart,
			EndDate:           &boundary,
			ProrationBehavior: types.ProrationBehaviorNone,
		},
		{
			PriceRef:   targetPlan.GatewayPriceRef,
			Quantity:   req.Quantity,
			StartDate:  boundary,
			Iterations: 1,
		},
	}); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Schedule was created on the gateway but its phases could not be set").
			WithReportableDetails(map[string]any{
				"gateway_ref": remoteSchedule.Ref,
			}).
			Mark(ierr.ErrScheduleConflict)
	}

	schedule := &subscription.SubscriptionSchedule{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_SCHEDULE),
		SubjectID:      subjectID,
		SubscriptionID: current.ID,
		PaymentGateway: current.PaymentGateway,
		GatewayRef:     remoteSchedule.Ref,
		GatewayRefKind: types.ScheduleRefKindSchedule,
		StartsAt:       boundary,
		PlanID:         targetPlan.ID,
		Quantity:       req.Quantity,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := s.ScheduleRepo.Create(ctx, schedule); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Schedule exists on the gateway but the local record could not be saved").
			WithReportableDetails(map[string]any{
				"gateway_ref": remoteSchedule.Ref,
			}).
			Mark(ierr.ErrDatabase)
	}

	return dto.NewScheduleResponse(schedule), nil
}

func (s *subscriptionService) Swap(ctx context.Context, subjectID string, req *dto.SwapRequest) (*dto.SwapResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	subj, err := s.SubjectRepo.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if !subj.HasPaymentMethod() {
		return nil, ierr.NewError("subject has no usable payment method").
			WithHint("Add a payment method before swapping plans").
			Mark(ierr.ErrPaymentMethodMissing)
	}

	current, err := s.currentSubscription(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	targetPlan, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	client, err := s.Gateways.Get(current.PaymentGateway)
	if err != nil {
		return nil, err
	}

	// Paid-through boundary must be read before the cancellation destroys it.
	remote, err := client.GetSubscription(ctx, current.GatewaySubscriptionRef)
	if err != nil {
		return nil, err
	}
	paidThrough := remote.CurrentPeriodEnd

	if _, err := client.CancelSubscription(ctx, current.GatewaySubscriptionRef, true); err != nil {
		return nil, err
	}

	// The replacement trials until the old paid-through instant so the
	// subject is never double-billed for time already paid.
	var trialEnd *time.Time
	if paidThrough.After(time.Now().UTC()) {
		trialEnd = &paidThrough
	}

	replacement, err := client.CreateSubscription(ctx, gateway.CreateSubscriptionParams{
		CustomerRef: subj.GatewayCustomerRef,
		PriceRef:    targetPlan.GatewayPriceRef,
		Quantity:    req.Quantity,
		TrialEnd:    trialEnd,
	})
	if err != nil {
		// The old remote subscription is already gone. Record that locally
		// so the subject lands in a clean no-active-subscription state
		// instead of a record pointing at a dead remote object.
		now := time.Now().UTC()
		current.SubscriptionStatus = types.SubscriptionStatusCancelled
		current.EndsAt = &now
		current.Swapped = true
		if updateErr := s.SubRepo.Update(ctx, current); updateErr != nil {
			s.Logger.Errorw("failed to mark subscription cancelled after swap failure",
				"subscription_id", current.ID,
				"error", updateErr)
		}

		return nil, ierr.WithError(err).
			WithHint("The previous plan was cancelled but the new one could not be created").
			WithReportableDetails(map[string]any{
				"subject_id": subjectID,
				"plan_id":    targetPlan.ID,
			}).
			Mark(ierr.ErrSwapFailed)
	}

	// A swap produces a logically new subscription entity. The superseded
	// record is deleted; the caller registers the replacement.
	if err := s.SubRepo.Delete(ctx, current.ID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Swap completed on the gateway but the superseded local record could not be deleted").
			WithReportableDetails(map[string]any{
				"subscription_id": current.ID,
				"gateway_ref":     replacement.Ref,
			}).
			Mark(ierr.ErrDatabase)
	}

	response := &dto.SwapResponse{
		GatewaySubscriptionRef: replacement.Ref,
		PlanID:                 targetPlan.ID,
		Quantity:               req.Quantity,
		TrialEndsAt:            trialEnd,
	}
	s.publishEvent(ctx, types.WebhookEventSubscriptionSwapped, subjectID, response)

	return response, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, subjectID string, req *dto.CancelRequest) (*dto.CancelResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.currentSubscription(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	client, err := s.Gateways.Get(current.PaymentGateway)
	if err != nil {
		return nil, err
	}

	remote, err := client.CancelSubscription(ctx, current.GatewaySubscriptionRef, req.Now)
	if err != nil {
		return nil, err
	}

	var endsAt time.Time
	if req.Now {
		endsAt = time.Now().UTC()
		if remote.EndsAt != nil {
			endsAt = *remote.EndsAt
		}
		current.SubscriptionStatus = types.SubscriptionStatusCancelled
	} else {
		endsAt = remote.CurrentPeriodEnd
		if remote.EndsAt != nil {
			endsAt = *remote.EndsAt
		}
		current.SubscriptionStatus = types.SubscriptionStatusGracePeriod
	}

	current.EndsAt = &endsAt
	current.NextPlanID = req.NextPlanID
	current.Swapped = req.Swapped
	if err := s.SubRepo.Update(ctx, current); err != nil {
		return nil, err
	}

	response := &dto.CancelResponse{
		SubscriptionID: current.ID,
		Status:         current.SubscriptionStatus.String(),
		EndsAt:         current.EndsAt,
	}
	s.publishEvent(ctx, types.WebhookEventSubscriptionCancelled, subjectID, response)

	return response, nil
}

// Pause only emits the event; nothing changes locally or on the gateway.
// TODO: pause the remote subscription once a pause capability is added to
// gateway.Client.
func (s *subscriptionService) Pause(ctx context.Context, subjectID string) error {
	current, err := s.currentSubscription(ctx, subjectID)
	if err != nil {
		return err
	}

	s.publishEvent(ctx, types.WebhookEventSubscriptionPaused, subjectID, dto.NewSubscriptionResponse(current))
	return nil
}

func (s *subscriptionService) Resume(ctx context.Context, subjectID string) (*dto.SubscriptionResponse, error) {
	current, err := s.currentSubscription(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	if !current.OnGracePeriod(time.Now().UTC()) {
		return nil, ierr.NewError("subscription is not within its grace period").
			WithHint("Only a subscription cancelled at period end can be resumed before that period lapses").
			WithReportableDetails(map[string]any{
				"subscription_id": current.ID,
				"status":          current.SubscriptionStatus,
			}).
			Mark(ierr.ErrResumeFailed)
	}

	client, err := s.Gateways.Get(current.PaymentGateway)
	if err != nil {
		return nil, err
	}

	if err := client.ResumeSubscription(ctx, current.GatewaySubscriptionRef); err != nil {
		s.Logger.Errorw("gateway resume failed",
			"subscription_id", current.ID,
			"error", err)
		return nil, ierr.WithError(err).
			WithHint("The gateway refused to resume the subscription").
			Mark(ierr.ErrResumeFailed)
	}

	current.SubscriptionStatus = types.SubscriptionStatusActive
	current.EndsAt = nil
	current.NextPlanID = nil
	if err := s.SubRepo.Update(ctx, current); err != nil {
		return nil, err
	}

	response := dto.NewSubscriptionResponse(current)
	s.publishEvent(ctx, types.WebhookEventSubscriptionResumed, subjectID, response)

	return response, nil
}

func (s *subscriptionService) GetNextBillingTime(ctx context.Context, subjectID string, override *time.Time) (*dto.NextBillingTimeResponse, error) {
	current, err := s.SubRepo.GetCurrentForSubject(ctx, subjectID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if override != nil {
		return dto.NewNextBillingTimeResponse(*override), nil
	}

	if current.OnTrial(time.Now().UTC()) {
		return dto.NewNextBillingTimeResponse(*current.TrialEndsAt), nil
	}

	client, err := s.Gateways.Get(current.PaymentGateway)
	if err != nil {
		return nil, err
	}

	remote, err := client.GetSubscription(ctx, current.GatewaySubscriptionRef)
	if err != nil {
		return nil, err
	}

	return dto.NewNextBillingTimeResponse(remote.CurrentPeriodEnd), nil
}

func (s *subscriptionService) GetProration(ctx context.Context, subjectID string, req *dto.ProrationRequest) (*dto.ProrationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	subj, err := s.SubjectRepo.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	current, err := s.currentSubscription(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	currentPlan, err := s.PlanRepo.Get(ctx, current.PlanID)
	if err != nil {
		return nil, err
	}

	targetPlan, err := s.PlanRepo.GetBySlug(ctx, fmt.Sprintf("%s_%s", req.Tier, req.Cycle))
	if err != nil {
		return nil, err
	}

	client, err := s.Gateways.Get(current.PaymentGateway)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	periodStart, periodEnd := localPeriodBounds(current.StartsAt, currentPlan.Cycle, now)

	remote, remoteErr := client.GetSubscription(ctx, current.GatewaySubscriptionRef)
	if remoteErr == nil {
		periodStart, periodEnd = remote.CurrentPeriodStart, remote.CurrentPeriodEnd

		preview, previewErr := client.PreviewUpcomingInvoice(ctx, gateway.PreviewInvoiceParams{
			CustomerRef:       subj.GatewayCustomerRef,
			SubscriptionRef:   current.GatewaySubscriptionRef,
			ItemRef:           remote.ItemRef,
			PriceRef:          targetPlan.GatewayPriceRef,
			Quantity:          req.Quantity,
			ProrationBehavior: types.ProrationBehaviorAlwaysInvoice,
		})
		if previewErr == nil {
			return &dto.ProrationResponse{
				Amount:   preview.Total,
				Currency: preview.Currency,
				Source:   dto.ProrationSourceGateway,
			}, nil
		}
		remoteErr = previewErr
	}

	// The gateway could not answer; the local estimator always can.
	s.Logger.Warnw("falling back to local proration estimate",
		"subject_id", subjectID,
		"error", remoteErr)

	amount := s.ProrationCalc.Estimate(proration.EstimateParams{
		CurrentAmount: currentPlan.Amount,
		CurrentMonths: currentPlan.Cycle.MonthsPerCycle(),
		CurrentQty:    current.Quantity,
		TargetAmount:  targetPlan.Amount,
		TargetMonths:  targetPlan.Cycle.MonthsPerCycle(),
		RequestedQty:  req.Quantity,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		ProrationDate: now,
	})

	return &dto.ProrationResponse{
		Amount:   amount,
		Currency: targetPlan.Currency,
		Source:   dto.ProrationSourceEstimate,
	}, nil
}

// currentSubscription loads the subject's live subscription, translating a
// repository miss into the user-facing no-active-subscription error.
func (s *subscriptionService) currentSubscription(ctx context.Context, subjectID string) (*subscription.Subscription, error) {
	current, err := s.SubRepo.GetCurrentForSubject(ctx, subjectID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHint("Subject has no active subscription").
				WithReportableDetails(map[string]any{
					"subject_id": subjectID,
				}).
				Mark(ierr.ErrNoActiveSubscription)
		}
		return nil, err
	}
	return current, nil
}

// localPeriodBounds walks billing periods forward from the start timestamp
// until the one containing now. It is only used when the gateway cannot be
// asked for the authoritative boundaries.
func localPeriodBounds(startsAt time.Time, cycle types.BillingCycle, now time.Time) (time.Time, time.Time) {
	months := cycle.MonthsPerCycle()
	start := startsAt.UTC()
	end := start.AddDate(0, months, 0)
	for !end.After(now) {
		start = end
		end = start.AddDate(0, months, 0)
	}
	return start, end
}

// publishEvent emits a lifecycle event. Failures are logged and swallowed;
// event delivery is never transactional with the state change.
func (s *subscriptionService) publishEvent(ctx context.Context, name types.WebhookEventName, subjectID string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			s.Logger.Warnw("failed to marshal event payload",
				"event_name", name,
				"error", err)
		} else {
			raw = data
		}
	}

	event := &types.WebhookEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_EVENT),
		EventName: name,
		TenantID:  types.GetTenantID(ctx),
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}

	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish lifecycle event",
			"event_name", name,
			"subject_id", subjectID,
			"error", err)
	}
}
