package retention

import (
	"strings"
	"testing"
)

func TestAtRiskNewCustomerOnly(t *testing.T) {
	sub := activeSub("sub_new", "cus_new", 10, 20)

	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.AtRiskCustomers([]Subscription{sub}, nil, testNow)

	if len(out) != 1 {
		t.Fatalf("expected 1 at-risk customer, got %d", len(out))
	}
	r := out[0]
	if r.RiskScore != 15 {
		t.Errorf("score = %d, want 15", r.RiskScore)
	}
	if r.RiskLevel != RiskLow {
		t.Errorf("level = %s, want low", r.RiskLevel)
	}
	if len(r.RiskFactors) != 1 || r.RiskFactors[0] != "New customer (first 30 days)" {
		t.Errorf("factors = %v", r.RiskFactors)
	}
	wantActions := []string{"Send onboarding tips", "Schedule check-in call"}
	if len(r.SuggestedActions) != 2 || r.SuggestedActions[0] != wantActions[0] || r.SuggestedActions[1] != wantActions[1] {
		t.Errorf("actions = %v, want %v", r.SuggestedActions, wantActions)
	}
	if r.EngagementTrend != nil {
		t.Errorf("engagementTrend must stay nil, got %v", *r.EngagementTrend)
	}
}

func TestAtRiskNewPastDueIsHigh(t *testing.T) {
	sub := activeSub("sub_pd", "cus_pd", 10, 20)
	sub.Status = StatusPastDue

	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.AtRiskCustomers([]Subscription{sub}, nil, testNow)

	if len(out) != 1 {
		t.Fatalf("expected 1, got %d", len(out))
	}
	if out[0].RiskScore != 55 {
		t.Errorf("score = %d, want 55", out[0].RiskScore)
	}
	if out[0].RiskLevel != RiskHigh {
		t.Errorf("level = %s, want high", out[0].RiskLevel)
	}
}

func TestAtRiskFailedPaymentsAccumulate(t *testing.T) {
	sub := activeSub("sub_fp", "cus_fp", 200, 30)
	payments := []Payment{
		{ID: "py_1", CustomerID: "cus_fp", Status: PaymentFailed, Created: daysAgo(3)},
		{ID: "py_2", CustomerID: "cus_fp", Status: PaymentFailed, Created: daysAgo(12)},
		// Outside the trailing window, must not count.
		{ID: "py_3", CustomerID: "cus_fp", Status: PaymentFailed, Created: daysAgo(45)},
		// Succeeded payments never count as failures.
		{ID: "py_4", CustomerID: "cus_fp", Status: PaymentSucceeded, Created: daysAgo(3)},
	}

	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.AtRiskCustomers([]Subscription{sub}, payments, testNow)

	if len(out) != 1 {
		t.Fatalf("expected 1, got %d", len(out))
	}
	r := out[0]
	if r.RiskScore != 40 {
		t.Errorf("score = %d, want 40 (2 failed payments)", r.RiskScore)
	}
	if r.RiskLevel != RiskMedium {
		t.Errorf("level = %s, want medium", r.RiskLevel)
	}
	found := false
	for _, f := range r.RiskFactors {
		if f == "2 failed payment(s) in last 30 days" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing failed-payment factor in %v", r.RiskFactors)
	}
	if r.SuggestedActions[0] != "Update payment method" || r.SuggestedActions[1] != "Contact about billing" {
		t.Errorf("actions = %v", r.SuggestedActions)
	}
}

func TestAtRiskBetaTester(t *testing.T) {
	byPercent := activeSub("sub_b1", "cus_b1", 200, 30)
	byPercent.CouponID = "launch100"
	byPercent.CouponPercentOff = 100
	byPercent.DiscountedAmount = 0

	byName := activeSub("sub_b2", "cus_b2", 200, 30)
	byName.CouponID = "BETA-EARLY"
	byName.CouponPercentOff = 50

	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.AtRiskCustomers([]Subscription{byPercent, byName}, nil, testNow)

	if len(out) != 2 {
		t.Fatalf("expected both beta testers, got %d", len(out))
	}
	for _, r := range out {
		if r.RiskScore != 25 {
			t.Errorf("%s score = %d, want 25", r.SubscriptionID, r.RiskScore)
		}
		if !strings.Contains(strings.Join(r.RiskFactors, "|"), "Beta tester") {
			t.Errorf("%s factors = %v", r.SubscriptionID, r.RiskFactors)
		}
		if r.SuggestedActions[0] != "Schedule conversion call" {
			t.Errorf("%s actions = %v", r.SubscriptionID, r.SuggestedActions)
		}
	}
}

// A repeating discount alone (10 points) stays under the inclusion bar.
func TestAtRiskBelowThresholdExcluded(t *testing.T) {
	sub := activeSub("sub_rep", "cus_rep", 200, 30)
	sub.CouponID = "save20"
	sub.CouponPercentOff = 20
	sub.CouponDuration = "repeating"

	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.AtRiskCustomers([]Subscription{sub}, nil, testNow)
	if len(out) != 0 {
		t.Fatalf("expected none, got %+v", out)
	}
}

func TestAtRiskExcludesCanceledAndScheduled(t *testing.T) {
	scheduled := activeSub("sub_s", "cus_s", 5, 30)
	scheduled.CancelAtPeriodEnd = true
	canceled := canceledSub("sub_c", "cus_c", 100, 10, 30, "")
	trialing := activeSub("sub_t", "cus_t", 5, 30)
	trialing.Status = StatusTrialing

	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.AtRiskCustomers([]Subscription{scheduled, canceled, trialing}, nil, testNow)
	if len(out) != 0 {
		t.Fatalf("expected none, got %+v", out)
	}
}

func TestAtRiskSortedByScoreDescending(t *testing.T) {
	low := activeSub("sub_low", "cus_low", 10, 20)
	high := activeSub("sub_high", "cus_high", 10, 20)
	high.Status = StatusPastDue

	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.AtRiskCustomers([]Subscription{low, high}, nil, testNow)

	if len(out) != 2 {
		t.Fatalf("expected 2, got %d", len(out))
	}
	if out[0].SubscriptionID != "sub_high" || out[1].SubscriptionID != "sub_low" {
		t.Errorf("order = %s, %s", out[0].SubscriptionID, out[1].SubscriptionID)
	}
}
