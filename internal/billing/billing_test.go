package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"coworkpos-backend/internal/domain"
)

func testTariff() domain.Tariff {
	return domain.Tariff{
		FirstHourRateCents: 5800,
		BlockRateCents:     2900,
		BlockMinutes:       30,
		DayRateCents:       18000,
		DayThresholdHours:  3,
		ToleranceMinutes:   5,
	}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 9, hour, min, 0, 0, time.UTC)
}

func TestComputeCoworkingCost_FirstHour(t *testing.T) {
	c := ComputeCoworkingCost(at(9, 0), at(9, 42), testTariff())
	// 42 minutes: mod 30 = 12 > tolerance, no adjustment, within first hour.
	assert.Equal(t, int64(5800), c.CostCents)
	assert.Equal(t, 42, c.Minutes)
}

func TestComputeCoworkingCost_ToleranceRoundsDown(t *testing.T) {
	c := ComputeCoworkingCost(at(9, 0), at(10, 3), testTariff())
	// 63 minutes: mod 30 = 3 <= 5, rounds down to 60, first hour rate.
	assert.Equal(t, int64(5800), c.CostCents)
	assert.Equal(t, 60, c.Minutes)
}

func TestComputeCoworkingCost_BlocksAfterFirstHour(t *testing.T) {
	c := ComputeCoworkingCost(at(9, 0), at(10, 42), testTariff())
	// 102 minutes: mod 30 = 12, no adjustment. 42 past the hour = 2 blocks.
	assert.Equal(t, int64(5800+2*2900), c.CostCents)
	assert.Equal(t, 102, c.Minutes)
}

func TestComputeCoworkingCost_DayRateAtThreshold(t *testing.T) {
	c := ComputeCoworkingCost(at(9, 0), at(12, 10), testTariff())
	// 190 minutes >= 180: flat day rate regardless of the extra 10 minutes.
	assert.Equal(t, int64(18000), c.CostCents)
	assert.Equal(t, 190, c.Minutes)
}

func TestComputeCoworkingCost_EndBeforeStart(t *testing.T) {
	c := ComputeCoworkingCost(at(10, 0), at(9, 0), testTariff())
	assert.Equal(t, 0, c.Minutes)
	assert.Equal(t, int64(5800), c.CostCents)
}

func TestComputeCoworkingCost_PartialMinuteRoundsUp(t *testing.T) {
	start := at(9, 0)
	end := start.Add(61*time.Minute + 10*time.Second)
	c := ComputeCoworkingCost(start, end, testTariff())
	// 61m10s ceils to 62, mod 30 = 2 <= 5, rounds down to 60.
	assert.Equal(t, 60, c.Minutes)
	assert.Equal(t, int64(5800), c.CostCents)
}

func TestApplyTolerance_Table(t *testing.T) {
	tariff := testTariff()
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"exact boundary untouched", 90, 90},
		{"one over rounds down", 91, 90},
		{"five over rounds down", 95, 90},
		{"six over kept", 96, 96},
		{"zero", 0, 0},
		{"within first block", 12, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, applyTolerance(tc.in, tariff))
		})
	}
}

func TestComputeSessionTotal_WithExtras(t *testing.T) {
	end := at(9, 42)
	s := domain.CoworkingSession{
		StartTime: at(9, 0),
		EndTime:   &end,
		ConsumedExtras: []domain.Extra{
			{Name: "latte", PriceCents: 2000, Qty: 2},
		},
	}
	total, minutes := ComputeSessionTotal(s, testTariff())
	assert.Equal(t, int64(5800+4000), total)
	assert.Equal(t, 42, minutes)
}

func TestComputeSessionTotal_Idempotent(t *testing.T) {
	end := at(11, 17)
	s := domain.CoworkingSession{
		StartTime: at(9, 0),
		EndTime:   &end,
		ConsumedExtras: []domain.Extra{
			{Name: "espresso", PriceCents: 1500, Qty: 1},
			{Name: "croissant", PriceCents: 1800, Qty: 3},
		},
	}
	t1, m1 := ComputeSessionTotal(s, testTariff())
	t2, m2 := ComputeSessionTotal(s, testTariff())
	assert.Equal(t, t1, t2)
	assert.Equal(t, m1, m2)
}

func TestComputeSessionTotal_OpenSessionChargesExtrasOnly(t *testing.T) {
	s := domain.CoworkingSession{
		StartTime:      at(9, 0),
		ConsumedExtras: []domain.Extra{{Name: "tea", PriceCents: 1200, Qty: 1}},
	}
	total, minutes := ComputeSessionTotal(s, testTariff())
	assert.Equal(t, int64(1200), total)
	assert.Equal(t, 0, minutes)
}
