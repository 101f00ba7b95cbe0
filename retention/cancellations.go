package retention

import (
	"sort"
	"time"
)

// Data for a canceled customer is kept this long past access expiry
// before purge.
const purgeGraceDays = 30

// ActiveCancellations finds subscriptions that are canceled but still
// inside their paid-for period, or scheduled to lapse at period end.
// Results are sorted most urgent first (fewest days of access left).
func (a *Analyzer) ActiveCancellations(subs []Subscription, payments []Payment, now time.Time) []ActiveCancellation {
	paidByCustomer := lifetimePaidByCustomer(payments)

	out := []ActiveCancellation{}
	for _, sub := range subs {
		inGracePeriod := sub.Status == StatusCanceled && sub.CurrentPeriodEnd.After(now)
		scheduled := sub.CancelAtPeriodEnd && sub.Status == StatusActive
		if !inGracePeriod && !scheduled {
			continue
		}

		purgeDate := sub.CurrentPeriodEnd.AddDate(0, 0, purgeGraceDays)
		lifetimeEnd := now
		if sub.CanceledAt != nil {
			lifetimeEnd = *sub.CanceledAt
		}

		out = append(out, ActiveCancellation{
			SubscriptionID:       sub.ID,
			CustomerID:           sub.CustomerID,
			CustomerEmail:        sub.CustomerEmail,
			CustomerName:         sub.CustomerName,
			Status:               string(sub.Status),
			MonthlyValue:         sub.DiscountedAmount,
			SubscriptionType:     a.policy.Tier(sub.PlanAmount),
			CancellationReason:   sub.CancellationReason,
			CanceledAt:           sub.CanceledAt,
			AccessEndsAt:         sub.CurrentPeriodEnd,
			DaysUntilAccessEnds:  ceilDays(sub.CurrentPeriodEnd.Sub(now)),
			DataPurgeDate:        purgeDate,
			DaysUntilDataPurge:   ceilDays(purgeDate.Sub(now)),
			CustomerLifetimeDays: floorDays(lifetimeEnd.Sub(sub.StartDate)),
			TotalRevenuePaid:     paidByCustomer[sub.CustomerID],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntilAccessEnds < out[j].DaysUntilAccessEnds
	})
	return out
}
