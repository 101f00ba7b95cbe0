package retention

import (
	"math"
	"time"
)

// The aggregate curve covers the first year of a subscription's life.
const curveMaxMonths = 12

// RetentionCurve builds one aggregate survival curve across all
// subscriptions, indexed by months since signup. At each offset only
// subscriptions old enough to be observed there count; offsets nobody
// has reached yet are skipped.
func (a *Analyzer) RetentionCurve(subs []Subscription, now time.Time) []RetentionCurvePoint {
	out := []RetentionCurvePoint{}

	for offset := 0; offset <= curveMaxMonths; offset++ {
		total, remaining := 0, 0
		for _, sub := range subs {
			if monthsBetween(sub.StartDate, now) < offset {
				continue
			}
			total++
			if sub.Status == StatusActive {
				remaining++
				continue
			}
			// Canceled members still count as retained at offsets they
			// were active through.
			if sub.CanceledAt != nil && monthsBetween(sub.StartDate, *sub.CanceledAt) >= offset {
				remaining++
			}
		}
		if total == 0 {
			continue
		}

		out = append(out, RetentionCurvePoint{
			MonthsSinceSignup:  offset,
			RetentionPercent:   math.Round(float64(remaining) / float64(total) * 100),
			CustomersRemaining: remaining,
			CustomersTotal:     total,
		})
	}

	return out
}
