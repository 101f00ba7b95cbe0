package retention

import (
	"math"
	"sort"
)

// Segment buckets every subscription into exactly one class.
type Segment string

const (
	SegmentBetaTester Segment = "beta_tester"
	SegmentDiscounted Segment = "discounted"
	SegmentLeague     Segment = "league"
	SegmentIndividual Segment = "individual"
)

// segmentOrder fixes the output order for equal-count segments.
var segmentOrder = []Segment{SegmentBetaTester, SegmentDiscounted, SegmentLeague, SegmentIndividual}

// SegmentPolicy decides how a subscription maps onto a segment. The
// league/individual split is a pricing-tier cutoff on the monthly amount;
// keeping it injectable means a price revision is a config change, not a
// code change.
type SegmentPolicy struct {
	LeagueMinMonthly float64
}

// DefaultSegmentPolicy matches the current pricing: plans at 100/month or
// above are league accounts.
func DefaultSegmentPolicy() SegmentPolicy {
	return SegmentPolicy{LeagueMinMonthly: 100}
}

// Tier is the two-way league/individual split used where coupon state is
// irrelevant (e.g. labeling active cancellations).
func (p SegmentPolicy) Tier(planAmount float64) string {
	if planAmount >= p.LeagueMinMonthly {
		return string(SegmentLeague)
	}
	return string(SegmentIndividual)
}

// Classify applies the full precedence: beta coupon, then partial
// discount, then the pricing tier.
func (p SegmentPolicy) Classify(sub Subscription) Segment {
	if isBetaCoupon(sub) {
		return SegmentBetaTester
	}
	if sub.CouponPercentOff > 0 && sub.CouponPercentOff < 100 {
		return SegmentDiscounted
	}
	return Segment(p.Tier(sub.PlanAmount))
}

// Label used when a cancellation carries no stated reason.
const reasonNotSpecified = "Not specified"

// ChurnReasons aggregates cancellations by stated reason, most common
// first.
func (a *Analyzer) ChurnReasons(cancellations []Cancellation) []ChurnReasonBreakdown {
	byReason := map[string]*ChurnReasonBreakdown{}
	order := []string{}

	for _, c := range cancellations {
		reason := c.Reason
		if reason == "" {
			reason = reasonNotSpecified
		}
		row, ok := byReason[reason]
		if !ok {
			row = &ChurnReasonBreakdown{Reason: reason}
			byReason[reason] = row
			order = append(order, reason)
		}
		row.Count++
		row.RevenueImpact += c.MonthlyValue
	}

	out := make([]ChurnReasonBreakdown, 0, len(order))
	for _, reason := range order {
		row := byReason[reason]
		row.RevenueImpact = round2(row.RevenueImpact)
		row.PercentOfChurn = math.Round(float64(row.Count) / float64(len(cancellations)) * 100)
		out = append(out, *row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// SegmentRetention compares retention, lifetime and LTV across the four
// customer segments. Every subscription lands in exactly one segment, so
// segment counts always sum to the subscription total.
func (a *Analyzer) SegmentRetention(subs []Subscription, payments []Payment, cancellations []Cancellation) []CustomerSegmentRetention {
	type segmentAccum struct {
		count     int
		active    int
		customers map[string]bool
	}

	accum := map[Segment]*segmentAccum{}
	for _, s := range segmentOrder {
		accum[s] = &segmentAccum{customers: map[string]bool{}}
	}

	segmentBySub := make(map[string]Segment, len(subs))
	for _, sub := range subs {
		seg := a.policy.Classify(sub)
		segmentBySub[sub.ID] = seg
		acc := accum[seg]
		acc.count++
		if sub.Status == StatusActive {
			acc.active++
		}
		acc.customers[sub.CustomerID] = true
	}

	// Lifetime days come from the cancellation records, matched back to
	// their subscription's segment. Cancellations with no surviving
	// subscription record are skipped.
	lifetimeSum := map[Segment]int{}
	lifetimeCount := map[Segment]int{}
	for _, c := range cancellations {
		seg, ok := segmentBySub[c.SubscriptionID]
		if !ok {
			continue
		}
		lifetimeSum[seg] += c.DaysAsCustomer
		lifetimeCount[seg]++
	}

	paidByCustomer := lifetimePaidByCustomer(payments)

	out := []CustomerSegmentRetention{}
	for _, seg := range segmentOrder {
		acc := accum[seg]
		if acc.count == 0 {
			continue
		}

		retentionRate := round1(float64(acc.active) / float64(acc.count) * 100)

		avgLifetime := 0.0
		if lifetimeCount[seg] > 0 {
			avgLifetime = round1(float64(lifetimeSum[seg]) / float64(lifetimeCount[seg]))
		}

		ltvSum := 0.0
		for customerID := range acc.customers {
			ltvSum += paidByCustomer[customerID]
		}
		avgLTV := round2(ltvSum / float64(len(acc.customers)))

		out = append(out, CustomerSegmentRetention{
			Segment:         seg,
			Count:           acc.count,
			RetentionRate:   retentionRate,
			ChurnRate:       round1(100 - retentionRate),
			AvgLifetimeDays: avgLifetime,
			AvgLTV:          avgLTV,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
