package retention

import "time"

// SubscriptionStatus mirrors the billing provider's subscription states.
type SubscriptionStatus string

const (
	StatusActive            SubscriptionStatus = "active"
	StatusPastDue           SubscriptionStatus = "past_due"
	StatusCanceled          SubscriptionStatus = "canceled"
	StatusTrialing          SubscriptionStatus = "trialing"
	StatusIncomplete        SubscriptionStatus = "incomplete"
	StatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	StatusUnpaid            SubscriptionStatus = "unpaid"
	StatusPaused            SubscriptionStatus = "paused"
)

// Subscription is one synced subscription record. Amounts are
// monthly-normalized upstream (weekly/annual plans converted by the sync).
type Subscription struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customer_id"`
	CustomerEmail      string             `json:"customer_email"`
	CustomerName       string             `json:"customer_name"`
	Status             SubscriptionStatus `json:"status"`
	PlanAmount         float64            `json:"plan_amount"`
	DiscountedAmount   float64            `json:"discounted_amount"`
	StartDate          time.Time          `json:"start_date"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	CanceledAt         *time.Time         `json:"canceled_at,omitempty"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
	CancellationReason string             `json:"cancellation_reason,omitempty"`
	CouponID           string             `json:"coupon_id,omitempty"`
	CouponPercentOff   float64            `json:"coupon_percent_off,omitempty"`
	CouponDuration     string             `json:"coupon_duration,omitempty"`
}

type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is one synced charge record.
type Payment struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id"`
	Amount     float64       `json:"amount"`
	Status     PaymentStatus `json:"status"`
	Created    time.Time     `json:"created"`
}

// Cancellation is derived upstream from a subscription that reached
// canceled status: one record per canceled subscription.
type Cancellation struct {
	SubscriptionID   string    `json:"subscription_id"`
	CustomerID       string    `json:"customer_id"`
	CanceledAt       time.Time `json:"canceled_at"`
	Reason           string    `json:"reason,omitempty"`
	MonthlyValue     float64   `json:"monthly_value"`
	SubscriptionType string    `json:"subscription_type"`
	DaysAsCustomer   int       `json:"days_as_customer"`
}

// ActiveCancellation is a subscription inside its cancellation grace
// period, or scheduled to lapse at period end.
type ActiveCancellation struct {
	SubscriptionID       string     `json:"subscription_id"`
	CustomerID           string     `json:"customer_id"`
	CustomerEmail        string     `json:"customer_email"`
	CustomerName         string     `json:"customer_name"`
	Status               string     `json:"status"`
	MonthlyValue         float64    `json:"monthly_value"`
	SubscriptionType     string     `json:"subscription_type"`
	CancellationReason   string     `json:"cancellation_reason,omitempty"`
	CanceledAt           *time.Time `json:"canceled_at,omitempty"`
	AccessEndsAt         time.Time  `json:"access_ends_at"`
	DaysUntilAccessEnds  int        `json:"days_until_access_ends"`
	DataPurgeDate        time.Time  `json:"data_purge_date"`
	DaysUntilDataPurge   int        `json:"days_until_data_purge"`
	CustomerLifetimeDays int        `json:"customer_lifetime_days"`
	TotalRevenuePaid     float64    `json:"total_revenue_paid"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// AtRiskCustomer is an active subscription annotated with a heuristic
// cancellation risk score. EngagementTrend stays nil: no usage telemetry
// feeds this computation, and reporting a made-up trend would be worse
// than reporting none.
type AtRiskCustomer struct {
	SubscriptionID   string    `json:"subscription_id"`
	CustomerID       string    `json:"customer_id"`
	CustomerEmail    string    `json:"customer_email"`
	CustomerName     string    `json:"customer_name"`
	MonthlyValue     float64   `json:"monthly_value"`
	DaysSinceSignup  int       `json:"days_since_signup"`
	RiskScore        int       `json:"risk_score"`
	RiskLevel        RiskLevel `json:"risk_level"`
	RiskFactors      []string  `json:"risk_factors"`
	SuggestedActions []string  `json:"suggested_actions"`
	EngagementTrend  *string   `json:"engagement_trend,omitempty"`
}

// RetentionMetrics is the rolled-up KPI bundle for the dashboard header.
type RetentionMetrics struct {
	Retention30Day          float64 `json:"retention_30_day"`
	Retention90Day          float64 `json:"retention_90_day"`
	Retention6Month         float64 `json:"retention_6_month"`
	Retention12Month        float64 `json:"retention_12_month"`
	AvgCustomerLifetimeDays float64 `json:"avg_customer_lifetime_days"`
	AvgRevenuePerCustomer   float64 `json:"avg_revenue_per_customer"`
	MonthlyChurnRate        float64 `json:"monthly_churn_rate"`
	RevenueChurnRate        float64 `json:"revenue_churn_rate"`
	CustomersAtRisk         int     `json:"customers_at_risk"`
	RevenueAtRisk           float64 `json:"revenue_at_risk"`
}

// CohortData is one signup-month row: retention percentages indexed by
// months since the cohort month.
type CohortData struct {
	Month            string    `json:"month"`
	SignupCount      int       `json:"signup_count"`
	TotalRevenue     float64   `json:"total_revenue"`
	RetentionByMonth []float64 `json:"retention_by_month"`
}

// RetentionCurvePoint is one aggregate survival point.
type RetentionCurvePoint struct {
	MonthsSinceSignup  int     `json:"months_since_signup"`
	RetentionPercent   float64 `json:"retention_percent"`
	CustomersRemaining int     `json:"customers_remaining"`
	CustomersTotal     int     `json:"customers_total"`
}

// ChurnReasonBreakdown aggregates cancellations by stated reason.
type ChurnReasonBreakdown struct {
	Reason         string  `json:"reason"`
	Count          int     `json:"count"`
	RevenueImpact  float64 `json:"revenue_impact"`
	PercentOfChurn float64 `json:"percent_of_churn"`
}

// CustomerSegmentRetention compares retention across customer segments.
type CustomerSegmentRetention struct {
	Segment         Segment `json:"segment"`
	Count           int     `json:"count"`
	RetentionRate   float64 `json:"retention_rate"`
	ChurnRate       float64 `json:"churn_rate"`
	AvgLifetimeDays float64 `json:"avg_lifetime_days"`
	AvgLTV          float64 `json:"avg_ltv"`
}

// RetentionAnalysis is the composite result of one analysis pass. All
// slices are non-nil even when empty so the JSON shape is stable.
type RetentionAnalysis struct {
	Metrics             RetentionMetrics           `json:"metrics"`
	ActiveCancellations []ActiveCancellation       `json:"active_cancellations"`
	AtRiskCustomers     []AtRiskCustomer           `json:"at_risk_customers"`
	CohortData          []CohortData               `json:"cohort_data"`
	RetentionCurve      []RetentionCurvePoint      `json:"retention_curve"`
	ChurnReasons        []ChurnReasonBreakdown     `json:"churn_reasons"`
	SegmentRetention    []CustomerSegmentRetention `json:"segment_retention"`
}
