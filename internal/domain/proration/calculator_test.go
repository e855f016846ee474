package proration

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func periodOf(days int) (time.Time, time.Time) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, days)
}

func TestEstimateIsDeterministic(t *testing.T) {
	calc := NewCalculator()
	start, end := periodOf(30)

	params := EstimateParams{
		CurrentAmount: decimal.NewFromInt(30),
		CurrentMonths: 1,
		CurrentQty:    1,
		TargetAmount:  decimal.NewFromInt(90),
		TargetMonths:  1,
		RequestedQty:  2,
		PeriodStart:   start,
		PeriodEnd:     end,
		ProrationDate: start.AddDate(0, 0, 10),
	}

	first := calc.Estimate(params)
	for i := 0; i < 5; i++ {
		assert.True(t, first.Equal(calc.Estimate(params)))
	}
}

func TestEstimateScalesLinearlyWithQuantity(t *testing.T) {
	calc := NewCalculator()
	start, end := periodOf(30)

	base := EstimateParams{
		CurrentAmount: decimal.NewFromInt(10),
		CurrentMonths: 1,
		CurrentQty:    1,
		TargetAmount:  decimal.NewFromInt(10),
		TargetMonths:  1,
		RequestedQty:  2,
		PeriodStart:   start,
		PeriodEnd:     end,
		ProrationDate: start,
	}

	// Full period remaining: moving 1 -> 2 units of the same price costs one
	// extra unit, 1 -> 4 costs three
	twoUnits := calc.Estimate(base)
	assert.True(t, twoUnits.Equal(decimal.NewFromInt(10)), "got %s", twoUnits)

	base.RequestedQty = 4
	fourUnits := calc.Estimate(base)
	assert.True(t, fourUnits.Equal(decimal.NewFromInt(30)), "got %s", fourUnits)
}

func TestEstimateHalfwayThroughPeriod(t *testing.T) {
	calc := NewCalculator()
	start, end := periodOf(30)

	amount := calc.Estimate(EstimateParams{
		CurrentAmount: decimal.NewFromInt(30),
		CurrentMonths: 1,
		CurrentQty:    1,
		TargetAmount:  decimal.NewFromInt(90),
		TargetMonths:  1,
		RequestedQty:  1,
		PeriodStart:   start,
		PeriodEnd:     end,
		ProrationDate: start.AddDate(0, 0, 15),
	})

	// Half the 60 delta remains
	assert.True(t, amount.Equal(decimal.NewFromInt(30)), "got %s", amount)
}

func TestEstimateCrossCycleConversion(t *testing.T) {
	calc := NewCalculator()
	start, end := periodOf(30)

	// Moving monthly 30 -> annual 300 at the period start: the annual price
	// counts as 25/month, so the delta over the current period is -5
	amount := calc.Estimate(EstimateParams{
		CurrentAmount: decimal.NewFromInt(30),
		CurrentMonths: 1,
		CurrentQty:    1,
		TargetAmount:  decimal.NewFromInt(300),
		TargetMonths:  12,
		RequestedQty:  1,
		PeriodStart:   start,
		PeriodEnd:     end,
		ProrationDate: start,
	})

	assert.True(t, amount.Equal(decimal.NewFromInt(-5)), "got %s", amount)
}

func TestEstimateClampsDegenerateInputs(t *testing.T) {
	calc := NewCalculator()
	start, end := periodOf(30)

	params := EstimateParams{
		CurrentAmount: decimal.NewFromInt(30),
		CurrentMonths: 1,
		CurrentQty:    1,
		TargetAmount:  decimal.NewFromInt(90),
		TargetMonths:  1,
		RequestedQty:  1,
		PeriodStart:   start,
		PeriodEnd:     end,
		ProrationDate: end.AddDate(0, 0, 10),
	}

	// Proration date past the period end: nothing remains to prorate
	assert.True(t, calc.Estimate(params).IsZero())

	// Proration date before the period start clamps to the full delta
	params.ProrationDate = start.AddDate(0, 0, -10)
	assert.True(t, calc.Estimate(params).Equal(decimal.NewFromInt(60)))

	// Inverted period never panics and returns zero
	params.PeriodStart, params.PeriodEnd = end, start
	assert.True(t, calc.Estimate(params).IsZero())

	// Zero cycle months are treated as one
	params.PeriodStart, params.PeriodEnd = start, end
	params.ProrationDate = start
	params.TargetMonths = 0
	params.CurrentMonths = 0
	assert.True(t, calc.Estimate(params).Equal(decimal.NewFromInt(60)))
}
