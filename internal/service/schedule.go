package service

import (
	"context"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/types"
)

// releaseExistingSchedule releases the live schedule of a subscription, if
// any, remotely first and locally second. It reports whether a schedule was
// released so callers can adjust proration behavior.
func (s *subscriptionService) releaseExistingSchedule(ctx context.Context, client gateway.Client, subscriptionID string) (bool, error) {
	schedule, err := s.ScheduleRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if err := s.releaseSchedule(ctx, client, schedule); err != nil {
		return false, err
	}

	return true, nil
}

// releaseSchedule removes a schedule remotely and then locally. The local
// delete never runs before the remote release succeeds; a remote object with
// no local record of it would be unreconcilable.
func (s *subscriptionService) releaseSchedule(ctx context.Context, client gateway.Client, schedule *subscription.SubscriptionSchedule) error {
	var err error
	switch schedule.GatewayRefKind {
	case types.ScheduleRefKindPendingSubscription:
		// A scheduled start is backed by a not-yet-active subscription, not a
		// schedule object. Releasing means cancelling it outright.
		_, err = client.CancelSubscription(ctx, schedule.GatewayRef, true)
	default:
		err = client.ReleaseSchedule(ctx, schedule.GatewayRef)
	}
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not release the existing schedule on the gateway").
			WithReportableDetails(map[string]any{
				"schedule_id":      schedule.ID,
				"gateway_ref":      schedule.GatewayRef,
				"gateway_ref_kind": schedule.GatewayRefKind,
			}).
			Mark(ierr.ErrScheduleConflict)
	}

	if err := s.ScheduleRepo.Delete(ctx, schedule.ID); err != nil {
		return ierr.WithError(err).
			WithHint("Schedule was released on the gateway but the local record could not be deleted").
			WithReportableDetails(map[string]any{
				"schedule_id": schedule.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	s.Logger.Infow("released subscription schedule",
		"schedule_id", schedule.ID,
		"subscription_id", schedule.SubscriptionID,
		"gateway_ref_kind", schedule.GatewayRefKind)

	return nil
}

// CancelSchedule drops the pending plan change booked for the subject's
// current subscription. Missing schedule is not an error; there is simply
// nothing to cancel.
func (s *subscriptionService) CancelSchedule(ctx context.Context, subjectID string) error {
	current, err := s.SubRepo.GetCurrentForSubject(ctx, subjectID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return ierr.WithError(err).
				WithHint("Subject has no active subscription").
				Mark(ierr.ErrNoActiveSubscription)
		}
		return err
	}

	client, err := s.Gateways.Get(current.PaymentGateway)
	if err != nil {
		return err
	}

	_, err = s.releaseExistingSchedule(ctx, client, current.ID)
	return err
}
