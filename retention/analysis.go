package retention

import (
	"math"
	"time"
)

// Analyzer runs the full single-pass retention analysis. It holds no
// state besides the segment policy, so one Analyzer is safe to share
// across concurrent requests.
type Analyzer struct {
	policy SegmentPolicy
}

func NewAnalyzer(policy SegmentPolicy) *Analyzer {
	return &Analyzer{policy: policy}
}

// Analyze computes every derived view from the three synced collections
// and the supplied clock. It is a pure function of its arguments: it
// never mutates the inputs and never fails — missing or inconsistent
// upstream data degrades to zeros instead of aborting the report.
func (a *Analyzer) Analyze(subs []Subscription, payments []Payment, cancellations []Cancellation, now time.Time) RetentionAnalysis {
	activeCancellations := a.ActiveCancellations(subs, payments, now)
	atRisk := a.AtRiskCustomers(subs, payments, now)

	return RetentionAnalysis{
		Metrics:             a.Metrics(subs, payments, cancellations, atRisk, now),
		ActiveCancellations: activeCancellations,
		AtRiskCustomers:     atRisk,
		CohortData:          a.Cohorts(subs, now),
		RetentionCurve:      a.RetentionCurve(subs, now),
		ChurnReasons:        a.ChurnReasons(cancellations),
		SegmentRetention:    a.SegmentRetention(subs, payments, cancellations),
	}
}

// lifetimePaidByCustomer sums succeeded payments per customer in one
// pass so callers stay O(n) over subscriptions.
func lifetimePaidByCustomer(payments []Payment) map[string]float64 {
	totals := make(map[string]float64, len(payments))
	for _, p := range payments {
		if p.Status != PaymentSucceeded {
			continue
		}
		totals[p.CustomerID] += p.Amount
	}
	return totals
}

// ceilDays converts a duration to whole days, rounding up, floored at 0.
func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// floorDays converts a duration to whole elapsed days, floored at 0.
func floorDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// monthsBetween counts elapsed 30-day months between two instants.
func monthsBetween(from, to time.Time) int {
	return floorDays(to.Sub(from)) / 30
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
