package retention

import "time"

// Horizons for the cohort-survival retention rates, in days.
const (
	horizon30Day   = 30
	horizon90Day   = 90
	horizon6Month  = 180
	horizon12Month = 365
)

// Metrics rolls up the scalar KPIs for the dashboard header. It consumes
// the at-risk list so the two views can never disagree about exposure.
func (a *Analyzer) Metrics(subs []Subscription, payments []Payment, cancellations []Cancellation, atRisk []AtRiskCustomer, now time.Time) RetentionMetrics {
	revenueAtRisk := 0.0
	for _, r := range atRisk {
		revenueAtRisk += r.MonthlyValue
	}

	return RetentionMetrics{
		Retention30Day:          retentionAtHorizon(subs, now, horizon30Day),
		Retention90Day:          retentionAtHorizon(subs, now, horizon90Day),
		Retention6Month:         retentionAtHorizon(subs, now, horizon6Month),
		Retention12Month:        retentionAtHorizon(subs, now, horizon12Month),
		AvgCustomerLifetimeDays: avgCustomerLifetimeDays(cancellations),
		AvgRevenuePerCustomer:   avgRevenuePerCustomer(payments),
		MonthlyChurnRate:        monthlyChurnRate(subs, cancellations, now),
		RevenueChurnRate:        revenueChurnRate(subs, cancellations, now),
		CustomersAtRisk:         len(atRisk),
		RevenueAtRisk:           round2(revenueAtRisk),
	}
}

// retentionAtHorizon measures how many subscriptions old enough to be
// observed at the horizon survived at least to the horizon mark, even if
// they canceled later. With no signups that old the rate is vacuously 100.
func retentionAtHorizon(subs []Subscription, now time.Time, horizonDays int) float64 {
	cutoff := now.AddDate(0, 0, -horizonDays)
	eligible, retained := 0, 0
	for _, sub := range subs {
		if sub.StartDate.After(cutoff) {
			continue
		}
		eligible++
		if sub.Status == StatusActive || (sub.CanceledAt != nil && sub.CanceledAt.After(cutoff)) {
			retained++
		}
	}
	if eligible == 0 {
		return 100
	}
	return round1(float64(retained) / float64(eligible) * 100)
}

func avgCustomerLifetimeDays(cancellations []Cancellation) float64 {
	if len(cancellations) == 0 {
		return 0
	}
	total := 0
	for _, c := range cancellations {
		total += c.DaysAsCustomer
	}
	return round1(float64(total) / float64(len(cancellations)))
}

// avgRevenuePerCustomer averages lifetime successful-payment totals over
// customers that have paid at least once.
func avgRevenuePerCustomer(payments []Payment) float64 {
	totals := lifetimePaidByCustomer(payments)
	if len(totals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range totals {
		sum += v
	}
	return round2(sum / float64(len(totals)))
}

// monthlyChurnRate: this calendar month's cancellations over the base of
// subscriptions that were active at any point this month.
func monthlyChurnRate(subs []Subscription, cancellations []Cancellation, now time.Time) float64 {
	monthStart := startOfMonth(now)

	churned := 0
	for _, c := range cancellations {
		if !c.CanceledAt.Before(monthStart) {
			churned++
		}
	}

	base := 0
	for _, sub := range subs {
		if sub.Status == StatusActive || (sub.CanceledAt != nil && !sub.CanceledAt.Before(monthStart)) {
			base++
		}
	}
	if base == 0 {
		return 0
	}
	return round1(float64(churned) / float64(base) * 100)
}

// revenueChurnRate: monthly revenue lost to this month's cancellations as
// a share of current MRR.
func revenueChurnRate(subs []Subscription, cancellations []Cancellation, now time.Time) float64 {
	monthStart := startOfMonth(now)

	lost := 0.0
	for _, c := range cancellations {
		if !c.CanceledAt.Before(monthStart) {
			lost += c.MonthlyValue
		}
	}

	mrr := 0.0
	for _, sub := range subs {
		if sub.Status == StatusActive {
			mrr += sub.DiscountedAmount
		}
	}
	if mrr == 0 {
		return 0
	}
	return round1(lost / mrr * 100)
}
