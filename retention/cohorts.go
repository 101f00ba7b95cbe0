package retention

import (
	"math"
	"time"
)

// Trailing window of signup months the cohort table covers.
const cohortWindowMonths = 12

// Cohorts groups subscriptions by signup calendar month over the trailing
// year (oldest first) and computes each cohort's survival percentage at
// every month offset it has lived through. Months without signups are
// omitted rather than emitted as zero rows.
func (a *Analyzer) Cohorts(subs []Subscription, now time.Time) []CohortData {
	out := []CohortData{}

	for monthsAgo := cohortWindowMonths - 1; monthsAgo >= 0; monthsAgo-- {
		monthStart := startOfMonth(now).AddDate(0, -monthsAgo, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		cohort := []Subscription{}
		for _, sub := range subs {
			if sub.StartDate.Before(monthStart) || !sub.StartDate.Before(monthEnd) {
				continue
			}
			cohort = append(cohort, sub)
		}
		if len(cohort) == 0 {
			continue
		}

		revenue := 0.0
		for _, sub := range cohort {
			if sub.Status == StatusActive {
				revenue += sub.DiscountedAmount
			}
		}

		retention := make([]float64, 0, monthsAgo+1)
		for offset := 0; offset <= monthsAgo; offset++ {
			// Survived offset m means the member was still around when
			// month m ended, i.e. canceled no earlier than the start of
			// month m+1 (or never).
			boundary := monthStart.AddDate(0, offset+1, 0)
			retained := 0
			for _, sub := range cohort {
				if sub.Status == StatusActive || (sub.CanceledAt != nil && !sub.CanceledAt.Before(boundary)) {
					retained++
				}
			}
			retention = append(retention, math.Round(float64(retained)/float64(len(cohort))*100))
		}

		out = append(out, CohortData{
			Month:            monthStart.Format("2006-01"),
			SignupCount:      len(cohort),
			TotalRevenue:     round2(revenue),
			RetentionByMonth: retention,
		})
	}

	return out
}
