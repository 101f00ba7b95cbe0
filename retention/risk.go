package retention

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Additive risk score weights. Factors are independent and cumulative.
const (
	riskPointsNewCustomer   = 15
	riskPointsPastDue       = 40
	riskPointsFailedPayment = 20 // per failed payment in the window
	riskPointsBetaTester    = 25
	riskPointsExpiringDeal  = 10

	// Emit a customer only once the cumulative score reaches this bar.
	// A fresh signup alone (15) is intentionally the lowest qualifying case.
	riskInclusionThreshold = 15

	riskHighThreshold   = 50
	riskMediumThreshold = 30

	newCustomerWindowDays   = 30
	failedPaymentWindowDays = 30
)

// AtRiskCustomers scores still-active subscriptions by estimated
// likelihood of near-term cancellation. Subscriptions already canceled
// or scheduled to cancel are excluded; those are the active-cancellation
// detector's job. Results are sorted by descending score.
func (a *Analyzer) AtRiskCustomers(subs []Subscription, payments []Payment, now time.Time) []AtRiskCustomer {
	failedRecent := failedPaymentsByCustomer(payments, now)

	out := []AtRiskCustomer{}
	for _, sub := range subs {
		if sub.Status != StatusActive && sub.Status != StatusPastDue {
			continue
		}
		if sub.CancelAtPeriodEnd {
			continue
		}

		daysSinceSignup := floorDays(now.Sub(sub.StartDate))
		score := 0
		factors := []string{}

		if daysSinceSignup <= newCustomerWindowDays {
			score += riskPointsNewCustomer
			factors = append(factors, "New customer (first 30 days)")
		}
		if sub.Status == StatusPastDue {
			score += riskPointsPastDue
			factors = append(factors, "Payment past due")
		}
		if n := failedRecent[sub.CustomerID]; n > 0 {
			score += riskPointsFailedPayment * n
			factors = append(factors, fmt.Sprintf("%d failed payment(s) in last 30 days", n))
		}
		if isBetaCoupon(sub) {
			score += riskPointsBetaTester
			factors = append(factors, "Beta tester (100% discount)")
		}
		if sub.CouponDuration == "repeating" {
			score += riskPointsExpiringDeal
			factors = append(factors, "Discount may expire soon")
		}

		if score < riskInclusionThreshold {
			continue
		}

		out = append(out, AtRiskCustomer{
			SubscriptionID:   sub.ID,
			CustomerID:       sub.CustomerID,
			CustomerEmail:    sub.CustomerEmail,
			CustomerName:     sub.CustomerName,
			MonthlyValue:     sub.DiscountedAmount,
			DaysSinceSignup:  daysSinceSignup,
			RiskScore:        score,
			RiskLevel:        riskLevel(score),
			RiskFactors:      factors,
			SuggestedActions: suggestedActions(factors),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RiskScore > out[j].RiskScore
	})
	return out
}

func riskLevel(score int) RiskLevel {
	switch {
	case score >= riskHighThreshold:
		return RiskHigh
	case score >= riskMediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// failedPaymentsByCustomer counts failed payments per customer inside
// the trailing window.
func failedPaymentsByCustomer(payments []Payment, now time.Time) map[string]int {
	cutoff := now.AddDate(0, 0, -failedPaymentWindowDays)
	counts := map[string]int{}
	for _, p := range payments {
		if p.Status != PaymentFailed {
			continue
		}
		if p.Created.Before(cutoff) || p.Created.After(now) {
			continue
		}
		counts[p.CustomerID]++
	}
	return counts
}

// isBetaCoupon marks 100%-off coupons and coupons named after the beta
// program as beta-tester subscriptions.
func isBetaCoupon(sub Subscription) bool {
	if sub.CouponPercentOff >= 100 {
		return true
	}
	return sub.CouponID != "" && strings.Contains(strings.ToLower(sub.CouponID), "beta")
}

// suggestedActions maps factor categories to retention plays, in a fixed
// order: billing problems first, then beta conversion, then onboarding.
func suggestedActions(factors []string) []string {
	actions := []string{}
	for _, f := range factors {
		if strings.Contains(f, "failed payment") || f == "Payment past due" {
			actions = append(actions, "Update payment method", "Contact about billing")
			break
		}
	}
	for _, f := range factors {
		if strings.Contains(f, "Beta tester") {
			actions = append(actions, "Schedule conversion call", "Offer limited-time discount")
			break
		}
	}
	for _, f := range factors {
		if strings.Contains(f, "New customer") {
			actions = append(actions, "Send onboarding tips", "Schedule check-in call")
			break
		}
	}
	return actions
}
