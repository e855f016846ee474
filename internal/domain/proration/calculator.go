package proration

import (
	"time"

	"github.com/shopspring/decimal"
)

// Calculator estimates the charge (positive) or credit (negative) of a plan
// change without consulting the gateway. It is the error-tolerant fallback
// behind the gateway's own invoice preview: same inputs always produce the
// same output, and no input can make it fail.
type Calculator interface {
	Estimate(params EstimateParams) decimal.Decimal
}

// EstimateParams describes a plan change within the current billing period.
type EstimateParams struct {
	// Current plan pricing, per unit per period, and its cycle
	CurrentAmount decimal.Decimal
	CurrentMonths int
	CurrentQty    int

	// Target plan pricing, per unit per period, and its cycle
	TargetAmount decimal.Decimal
	TargetMonths int
	RequestedQty int

	// Current billing period as reported by the gateway
	PeriodStart time.Time
	PeriodEnd   time.Time

	// ProrationDate is the instant the change takes effect, normally now
	ProrationDate time.Time
}

// NewCalculator returns the day-based estimator.
func NewCalculator() Calculator {
	return &dayBasedEstimator{}
}

// dayBasedEstimator prorates on whole UTC calendar days, matching the
// granularity the gateway uses for preview totals closely enough to serve as
// a fallback oracle.
type dayBasedEstimator struct{}

func (c *dayBasedEstimator) Estimate(params EstimateParams) decimal.Decimal {
	coefficient := remainingCoefficient(params.PeriodStart, params.PeriodEnd, params.ProrationDate)

	// Normalize both prices to the current period's length so cross-cycle
	// changes (e.g. monthly -> annual) compare like for like. The conversion
	// is linear: an annual price counts as twelve monthly ones. This is an
	// approximation of the gateway's own arithmetic, not a replica.
	currentMonths := monthsOrOne(params.CurrentMonths)
	targetMonths := monthsOrOne(params.TargetMonths)

	currentTotal := params.CurrentAmount.Mul(decimal.NewFromInt(int64(params.CurrentQty)))
	targetPerCurrentPeriod := params.TargetAmount.
		Div(decimal.NewFromInt(int64(targetMonths))).
		Mul(decimal.NewFromInt(int64(currentMonths)))
	targetTotal := targetPerCurrentPeriod.Mul(decimal.NewFromInt(int64(params.RequestedQty)))

	return targetTotal.Sub(currentTotal).Mul(coefficient).Round(2)
}

// remainingCoefficient returns the unused fraction of the billing period in
// whole UTC days, clamped to [0, 1] so degenerate inputs cannot fail.
func remainingCoefficient(start, end, at time.Time) decimal.Decimal {
	totalDays := daysBetweenUTC(start, end)
	if totalDays <= 0 {
		return decimal.Zero
	}

	remainingDays := daysBetweenUTC(at, end)
	if remainingDays < 0 {
		remainingDays = 0
	}
	if remainingDays > totalDays {
		remainingDays = totalDays
	}

	return decimal.NewFromInt(int64(remainingDays)).
		Div(decimal.NewFromInt(int64(totalDays)))
}

// daysBetweenUTC counts calendar days between two points, inclusive of the
// start day and exclusive of the end day.
func daysBetweenUTC(start, end time.Time) int {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	return int(endDay.Sub(startDay).Hours() / 24)
}

func monthsOrOne(months int) int {
	if months <= 0 {
		return 1
	}
	return months
}
