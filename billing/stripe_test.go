package billing

import (
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v78"

	"churnboard-backend/retention"
)

func TestMonthlyAmount(t *testing.T) {
	cases := []struct {
		name          string
		unitAmount    int64
		interval      stripe.PriceRecurringInterval
		intervalCount int64
		want          float64
	}{
		{"monthly", 2999, stripe.PriceRecurringIntervalMonth, 1, 29.99},
		{"quarterly", 9000, stripe.PriceRecurringIntervalMonth, 3, 30},
		{"annual", 12000, stripe.PriceRecurringIntervalYear, 1, 10},
		{"weekly", 1200, stripe.PriceRecurringIntervalWeek, 1, 52},
		{"daily", 100, stripe.PriceRecurringIntervalDay, 1, 30},
		{"zero interval count treated as 1", 1000, stripe.PriceRecurringIntervalMonth, 0, 10},
	}
	for _, c := range cases {
		if got := monthlyAmount(c.unitAmount, c.interval, c.intervalCount); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestApplyCoupon(t *testing.T) {
	if got := applyCoupon(100, &stripe.Coupon{PercentOff: 30}); got != 70.0 {
		t.Errorf("percent off: got %v, want 70", got)
	}
	if got := applyCoupon(100, &stripe.Coupon{AmountOff: 2500}); got != 75.0 {
		t.Errorf("amount off: got %v, want 75", got)
	}
	if got := applyCoupon(10, &stripe.Coupon{AmountOff: 5000}); got != 0.0 {
		t.Errorf("over-discount must clamp at 0, got %v", got)
	}
	if got := applyCoupon(100, &stripe.Coupon{}); got != 100.0 {
		t.Errorf("no-op coupon: got %v, want 100", got)
	}
}

func TestNormalizeSubscription(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	canceled := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	sub := &stripe.Subscription{
		ID:               "sub_123",
		Status:           stripe.SubscriptionStatusCanceled,
		StartDate:        start.Unix(),
		CurrentPeriodEnd: periodEnd.Unix(),
		CanceledAt:       canceled.Unix(),
		Customer: &stripe.Customer{
			ID:    "cus_123",
			Email: "jo@example.com",
			Name:  "Jo Example",
		},
		CancellationDetails: &stripe.SubscriptionCancellationDetails{
			Feedback: stripe.SubscriptionCancellationDetailsFeedbackTooExpensive,
		},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				Price: &stripe.Price{
					UnitAmount: 12000,
					Recurring: &stripe.PriceRecurring{
						Interval:      stripe.PriceRecurringIntervalYear,
						IntervalCount: 1,
					},
				},
			}},
		},
		Discount: &stripe.Discount{
			Coupon: &stripe.Coupon{
				ID:         "save20",
				PercentOff: 20,
				Duration:   stripe.CouponDurationRepeating,
			},
		},
	}

	got := normalizeSubscription(sub)

	if got.ID != "sub_123" || got.CustomerID != "cus_123" {
		t.Errorf("ids: %+v", got)
	}
	if got.Status != retention.StatusCanceled {
		t.Errorf("status = %s", got.Status)
	}
	if got.PlanAmount != 10.0 {
		t.Errorf("planAmount = %v, want 10 (annual 120 normalized)", got.PlanAmount)
	}
	if got.DiscountedAmount != 8.0 {
		t.Errorf("discountedAmount = %v, want 8", got.DiscountedAmount)
	}
	if got.CanceledAt == nil || !got.CanceledAt.Equal(canceled) {
		t.Errorf("canceledAt = %v", got.CanceledAt)
	}
	if got.CancellationReason != string(stripe.SubscriptionCancellationDetailsFeedbackTooExpensive) {
		t.Errorf("reason = %q", got.CancellationReason)
	}
	if got.CouponID != "save20" || got.CouponPercentOff != 20 || got.CouponDuration != "repeating" {
		t.Errorf("coupon fields: %+v", got)
	}
}

// A subscription with every optional branch missing still normalizes to
// a usable zero-ish record.
func TestNormalizeSubscriptionSparse(t *testing.T) {
	sub := &stripe.Subscription{
		ID:               "sub_sparse",
		Status:           stripe.SubscriptionStatusActive,
		StartDate:        time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).Unix(),
		CurrentPeriodEnd: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Unix(),
	}

	got := normalizeSubscription(sub)

	if got.PlanAmount != 0 || got.DiscountedAmount != 0 {
		t.Errorf("amounts should be zero: %+v", got)
	}
	if got.CanceledAt != nil {
		t.Errorf("canceledAt should be nil")
	}
	if got.CustomerID != "" || got.CouponID != "" {
		t.Errorf("unexpected fields: %+v", got)
	}
}

func TestNormalizeCharge(t *testing.T) {
	created := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	p, ok := normalizeCharge(&stripe.Charge{
		ID:       "ch_1",
		Amount:   2999,
		Status:   stripe.ChargeStatusSucceeded,
		Created:  created.Unix(),
		Customer: &stripe.Customer{ID: "cus_1"},
	})
	if !ok {
		t.Fatalf("charge with customer should normalize")
	}
	if p.Amount != 29.99 || p.Status != retention.PaymentSucceeded || !p.Created.Equal(created) {
		t.Errorf("payment = %+v", p)
	}

	if _, ok := normalizeCharge(&stripe.Charge{ID: "ch_2", Amount: 100}); ok {
		t.Errorf("customerless charge must be skipped")
	}
}

func TestDeriveCancellation(t *testing.T) {
	policy := retention.DefaultSegmentPolicy()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	canceledAt := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	sub := retention.Subscription{
		ID:                 "sub_1",
		CustomerID:         "cus_1",
		Status:             retention.StatusCanceled,
		PlanAmount:         150,
		DiscountedAmount:   120,
		StartDate:          start,
		CanceledAt:         &canceledAt,
		CancellationReason: "too expensive",
	}

	c, ok := deriveCancellation(sub, policy)
	if !ok {
		t.Fatalf("canceled subscription must derive a cancellation")
	}
	if c.SubscriptionID != "sub_1" || c.CustomerID != "cus_1" {
		t.Errorf("ids: %+v", c)
	}
	if c.DaysAsCustomer != 151 {
		t.Errorf("daysAsCustomer = %d, want 151", c.DaysAsCustomer)
	}
	if c.MonthlyValue != 120 {
		t.Errorf("monthlyValue = %v, want discounted 120", c.MonthlyValue)
	}
	if c.SubscriptionType != "league" {
		t.Errorf("subscriptionType = %q, want league", c.SubscriptionType)
	}

	active := retention.Subscription{ID: "sub_2", Status: retention.StatusActive, StartDate: start}
	if _, ok := deriveCancellation(active, policy); ok {
		t.Errorf("active subscription must not derive a cancellation")
	}
}
