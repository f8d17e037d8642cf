// Package billing computes coworking session charges from timestamps and a
// tariff. It is pure: no storage, no clock, no side effects.
package billing

import (
	"time"

	"coworkpos-backend/internal/domain"
)

// Cost is the billed outcome for one occupancy period.
type Cost struct {
	CostCents int64
	// Minutes is the tolerance-adjusted duration. The raw duration is
	// discarded; reports always show this figure.
	Minutes int
}

// ComputeCoworkingCost prices a single occupancy period under t.
// A malformed period (end before start, zero timestamps) counts as zero
// duration rather than an error.
func ComputeCoworkingCost(start, end time.Time, t domain.Tariff) Cost {
	minutes := rawMinutes(start, end)
	minutes = applyTolerance(minutes, t)

	var cost int64
	switch {
	case minutes >= t.DayThresholdHours*60:
		cost = t.DayRateCents
	case minutes <= 60:
		cost = t.FirstHourRateCents
	default:
		blocks := ceilDiv(minutes-60, t.BlockMinutes)
		cost = t.FirstHourRateCents + t.BlockRateCents*int64(blocks)
	}
	return Cost{CostCents: cost, Minutes: minutes}
}

// ComputeSessionTotal returns the base coworking cost plus all consumed
// extras. Idempotent for unchanged session state, which is what lets the
// repair operation recompute and overwrite drifted stored totals.
func ComputeSessionTotal(s domain.CoworkingSession, t domain.Tariff) (totalCents int64, minutes int) {
	if s.EndTime == nil {
		return ExtrasTotal(s.ConsumedExtras), 0
	}
	c := ComputeCoworkingCost(s.StartTime, *s.EndTime, t)
	return c.CostCents + ExtrasTotal(s.ConsumedExtras), c.Minutes
}

// ExtrasTotal sums price times quantity over consumed extras.
func ExtrasTotal(extras []domain.Extra) int64 {
	var total int64
	for _, e := range extras {
		total += e.PriceCents * int64(e.Qty)
	}
	return total
}

// rawMinutes is the elapsed time rounded up to whole minutes, floored at 0.
func rawMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}

// applyTolerance rounds a small overrun down to the previous block boundary:
// a grace period for clients leaving slightly late.
func applyTolerance(minutes int, t domain.Tariff) int {
	if t.BlockMinutes <= 0 {
		return minutes
	}
	rem := minutes % t.BlockMinutes
	if rem > 0 && rem <= t.ToleranceMinutes {
		return minutes - rem
	}
	return minutes
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
