package billing

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"churnboard-backend/retention"
)

// SyncService pulls subscriptions and charges from Stripe and turns them
// into the strict record types the analytics core consumes. All defensive
// unwrapping of Stripe's nested optional shapes happens here, nowhere else.
type SyncService struct {
	sc         *client.API
	store      *Store
	repo       *Repository
	policy     retention.SegmentPolicy
	secretKey  string
	invalidKey bool // once detected, short-circuit further remote calls
}

var ErrStripeInvalidAPIKey = errors.New("stripe_invalid_api_key")

func maskKey(k string) string {
	if len(k) < 12 {
		return "****"
	}
	return k[:7] + "..." + k[len(k)-4:]
}

// NewSyncFromEnv returns a configured service, or nil when
// STRIPE_SECRET_KEY is not set (the dashboard then serves whatever the
// repository last persisted).
func NewSyncFromEnv(store *Store, repo *Repository, policy retention.SegmentPolicy) *SyncService {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return nil
	}
	sc := &client.API{}
	sc.Init(key, nil)
	return &SyncService{
		sc:        sc,
		store:     store,
		repo:      repo,
		policy:    policy,
		secretKey: key,
	}
}

// Sync pages every subscription and charge from Stripe, rebuilds the
// snapshot and persists it.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	if s == nil {
		return nil, errors.New("stripe not configured")
	}
	if s.invalidKey {
		return nil, ErrStripeInvalidAPIKey
	}
	started := time.Now()
	runID := uuid.NewString()
	log.Printf("[SYNC] run=%s starting", runID)

	subs, err := s.fetchSubscriptions(ctx)
	if err != nil {
		return nil, s.classify("subscriptions", err)
	}
	payments, err := s.fetchPayments(ctx)
	if err != nil {
		return nil, s.classify("charges", err)
	}

	cancellations := []retention.Cancellation{}
	for _, sub := range subs {
		if c, ok := deriveCancellation(sub, s.policy); ok {
			cancellations = append(cancellations, c)
		}
	}

	syncedAt := time.Now()
	s.store.Set(subs, payments, cancellations, syncedAt)
	if s.repo != nil {
		if err := s.repo.ReplaceSnapshot(runID, subs, payments, cancellations, syncedAt); err != nil {
			log.Printf("[SYNC] run=%s persist failed: %v", runID, err)
			return nil, err
		}
	}

	result := &SyncResult{
		RunID:             runID,
		StartedAt:         started,
		Duration:          time.Since(started),
		DurationMS:        time.Since(started).Milliseconds(),
		SubscriptionCount: len(subs),
		PaymentCount:      len(payments),
		CancellationCount: len(cancellations),
	}
	log.Printf("[SYNC] run=%s done: subs=%d payments=%d cancellations=%d in %s",
		runID, result.SubscriptionCount, result.PaymentCount, result.CancellationCount, result.Duration)
	return result, nil
}

// classify flags a permanently bad API key so we stop hammering Stripe.
func (s *SyncService) classify(stage string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && (se.HTTPStatusCode == 401 || strings.Contains(strings.ToLower(se.Msg), "invalid api key")) {
		log.Printf("[SYNC][%s] invalid api key (%s): %v", stage, maskKey(s.secretKey), se)
		s.invalidKey = true
		return ErrStripeInvalidAPIKey
	}
	log.Printf("[SYNC][%s] error: %v", stage, err)
	return err
}

func (s *SyncService) fetchSubscriptions(ctx context.Context) ([]retention.Subscription, error) {
	params := &stripe.SubscriptionListParams{Status: stripe.String("all")}
	params.Context = ctx
	params.AddExpand("data.customer")
	params.AddExpand("data.discount")

	subs := []retention.Subscription{}
	iter := s.sc.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, normalizeSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *SyncService) fetchPayments(ctx context.Context) ([]retention.Payment, error) {
	params := &stripe.ChargeListParams{}
	params.Context = ctx

	payments := []retention.Payment{}
	iter := s.sc.Charges.List(params)
	for iter.Next() {
		if p, ok := normalizeCharge(iter.Charge()); ok {
			payments = append(payments, p)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

// normalizeSubscription flattens Stripe's nested optional shapes into one
// strict record. Missing pieces degrade to zero values; nothing here can
// fail.
func normalizeSubscription(sub *stripe.Subscription) retention.Subscription {
	out := retention.Subscription{
		ID:                sub.ID,
		Status:            retention.SubscriptionStatus(sub.Status),
		StartDate:         time.Unix(sub.StartDate, 0).UTC(),
		CurrentPeriodEnd:  time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}

	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
		out.CustomerEmail = sub.Customer.Email
		out.CustomerName = sub.Customer.Name
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0).UTC()
		out.CanceledAt = &t
	}
	if sub.CancellationDetails != nil {
		out.CancellationReason = cancellationReason(sub.CancellationDetails)
	}

	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		interval := stripe.PriceRecurringIntervalMonth
		intervalCount := int64(1)
		if price.Recurring != nil {
			interval = price.Recurring.Interval
			intervalCount = price.Recurring.IntervalCount
		}
		out.PlanAmount = monthlyAmount(price.UnitAmount, interval, intervalCount)
	}

	out.DiscountedAmount = out.PlanAmount
	if sub.Discount != nil && sub.Discount.Coupon != nil {
		coupon := sub.Discount.Coupon
		out.CouponID = coupon.ID
		out.CouponPercentOff = coupon.PercentOff
		out.CouponDuration = string(coupon.Duration)
		out.DiscountedAmount = applyCoupon(out.PlanAmount, coupon)
	}

	return out
}

// monthlyAmount converts a price in cents at any billing interval to its
// monthly equivalent.
func monthlyAmount(unitAmount int64, interval stripe.PriceRecurringInterval, intervalCount int64) float64 {
	amount := float64(unitAmount) / 100
	if intervalCount < 1 {
		intervalCount = 1
	}
	per := amount / float64(intervalCount)
	switch interval {
	case stripe.PriceRecurringIntervalYear:
		return per / 12
	case stripe.PriceRecurringIntervalWeek:
		return per * 52 / 12
	case stripe.PriceRecurringIntervalDay:
		return per * 30
	default:
		return per
	}
}

func applyCoupon(planAmount float64, coupon *stripe.Coupon) float64 {
	if coupon.PercentOff > 0 {
		discounted := planAmount * (1 - coupon.PercentOff/100)
		if discounted < 0 {
			return 0
		}
		return discounted
	}
	if coupon.AmountOff > 0 {
		discounted := planAmount - float64(coupon.AmountOff)/100
		if discounted < 0 {
			return 0
		}
		return discounted
	}
	return planAmount
}

// cancellationReason prefers the customer's own words, then the survey
// feedback code, then Stripe's mechanical reason.
func cancellationReason(details *stripe.SubscriptionCancellationDetails) string {
	if details.Comment != "" {
		return details.Comment
	}
	if details.Feedback != "" {
		return string(details.Feedback)
	}
	return string(details.Reason)
}

func normalizeCharge(ch *stripe.Charge) (retention.Payment, bool) {
	if ch.Customer == nil || ch.Customer.ID == "" {
		// One-off charges without a customer can never join against a
		// subscription; skip them.
		return retention.Payment{}, false
	}
	return retention.Payment{
		ID:         ch.ID,
		CustomerID: ch.Customer.ID,
		Amount:     float64(ch.Amount) / 100,
		Status:     chargeStatus(ch),
		Created:    time.Unix(ch.Created, 0).UTC(),
	}, true
}

func chargeStatus(ch *stripe.Charge) retention.PaymentStatus {
	switch ch.Status {
	case stripe.ChargeStatusSucceeded:
		return retention.PaymentSucceeded
	case stripe.ChargeStatusPending:
		return retention.PaymentPending
	default:
		return retention.PaymentFailed
	}
}

// deriveCancellation builds the one-per-canceled-subscription record the
// analytics core expects.
func deriveCancellation(sub retention.Subscription, policy retention.SegmentPolicy) (retention.Cancellation, bool) {
	if sub.Status != retention.StatusCanceled || sub.CanceledAt == nil {
		return retention.Cancellation{}, false
	}
	days := int(sub.CanceledAt.Sub(sub.StartDate).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return retention.Cancellation{
		SubscriptionID:   sub.ID,
		CustomerID:       sub.CustomerID,
		CanceledAt:       *sub.CanceledAt,
		Reason:           sub.CancellationReason,
		MonthlyValue:     sub.DiscountedAmount,
		SubscriptionType: policy.Tier(sub.PlanAmount),
		DaysAsCustomer:   days,
	}, true
}
