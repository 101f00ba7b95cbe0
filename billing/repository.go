package billing

import (
	"database/sql"
	"time"

	"churnboard-backend/retention"
)

// Repository persists the synced snapshot so the dashboard can serve data
// after a restart without waiting for the next sync.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceSnapshot swaps the persisted snapshot for the given one inside a
// single transaction.
func (r *Repository) ReplaceSnapshot(runID string, subs []retention.Subscription, payments []retention.Payment, cancellations []retention.Cancellation, syncedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"billing_subscriptions", "billing_payments", "billing_cancellations"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	for _, s := range subs {
		var canceledAt interface{}
		if s.CanceledAt != nil {
			canceledAt = *s.CanceledAt
		}
		_, err := tx.Exec(`INSERT INTO billing_subscriptions
			(id, customer_id, customer_email, customer_name, status, plan_amount, discounted_amount,
			 start_date, current_period_end, canceled_at, cancel_at_period_end, cancellation_reason,
			 coupon_id, coupon_percent_off, coupon_duration)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			s.ID, s.CustomerID, s.CustomerEmail, s.CustomerName, string(s.Status), s.PlanAmount, s.DiscountedAmount,
			s.StartDate, s.CurrentPeriodEnd, canceledAt, s.CancelAtPeriodEnd, s.CancellationReason,
			s.CouponID, s.CouponPercentOff, s.CouponDuration)
		if err != nil {
			return err
		}
	}

	for _, p := range payments {
		_, err := tx.Exec(`INSERT INTO billing_payments (id, customer_id, amount, status, created) VALUES (?,?,?,?,?)`,
			p.ID, p.CustomerID, p.Amount, string(p.Status), p.Created)
		if err != nil {
			return err
		}
	}

	for _, c := range cancellations {
		_, err := tx.Exec(`INSERT INTO billing_cancellations
			(subscription_id, customer_id, canceled_at, reason, monthly_value, subscription_type, days_as_customer)
			VALUES (?,?,?,?,?,?,?)`,
			c.SubscriptionID, c.CustomerID, c.CanceledAt, c.Reason, c.MonthlyValue, c.SubscriptionType, c.DaysAsCustomer)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`INSERT INTO billing_sync_runs (run_id, synced_at, subscription_count, payment_count, cancellation_count) VALUES (?,?,?,?,?)`,
		runID, syncedAt, len(subs), len(payments), len(cancellations)); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadSnapshot reads the persisted snapshot back; used at boot to warm
// the in-memory store. Returns empty collections and a zero time when no
// sync has ever run.
func (r *Repository) LoadSnapshot() ([]retention.Subscription, []retention.Payment, []retention.Cancellation, time.Time, error) {
	var syncedAt time.Time
	row := r.db.QueryRow(`SELECT synced_at FROM billing_sync_runs ORDER BY id DESC LIMIT 1`)
	if err := row.Scan(&syncedAt); err != nil {
		if err == sql.ErrNoRows {
			return []retention.Subscription{}, []retention.Payment{}, []retention.Cancellation{}, time.Time{}, nil
		}
		return nil, nil, nil, time.Time{}, err
	}

	subs, err := r.loadSubscriptions()
	if err != nil {
		return nil, nil, nil, time.Time{}, err
	}
	payments, err := r.loadPayments()
	if err != nil {
		return nil, nil, nil, time.Time{}, err
	}
	cancellations, err := r.loadCancellations()
	if err != nil {
		return nil, nil, nil, time.Time{}, err
	}
	return subs, payments, cancellations, syncedAt, nil
}

func (r *Repository) loadSubscriptions() ([]retention.Subscription, error) {
	rows, err := r.db.Query(`SELECT id, customer_id, customer_email, customer_name, status, plan_amount,
		discounted_amount, start_date, current_period_end, canceled_at, cancel_at_period_end,
		cancellation_reason, coupon_id, coupon_percent_off, coupon_duration FROM billing_subscriptions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []retention.Subscription{}
	for rows.Next() {
		var s retention.Subscription
		var status string
		var canceledAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.CustomerEmail, &s.CustomerName, &status, &s.PlanAmount,
			&s.DiscountedAmount, &s.StartDate, &s.CurrentPeriodEnd, &canceledAt, &s.CancelAtPeriodEnd,
			&s.CancellationReason, &s.CouponID, &s.CouponPercentOff, &s.CouponDuration); err != nil {
			return nil, err
		}
		s.Status = retention.SubscriptionStatus(status)
		if canceledAt.Valid {
			t := canceledAt.Time
			s.CanceledAt = &t
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *Repository) loadPayments() ([]retention.Payment, error) {
	rows, err := r.db.Query(`SELECT id, customer_id, amount, status, created FROM billing_payments`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []retention.Payment{}
	for rows.Next() {
		var p retention.Payment
		var status string
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.Amount, &status, &p.Created); err != nil {
			return nil, err
		}
		p.Status = retention.PaymentStatus(status)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *Repository) loadCancellations() ([]retention.Cancellation, error) {
	rows, err := r.db.Query(`SELECT subscription_id, customer_id, canceled_at, reason, monthly_value,
		subscription_type, days_as_customer FROM billing_cancellations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cancellations := []retention.Cancellation{}
	for rows.Next() {
		var c retention.Cancellation
		if err := rows.Scan(&c.SubscriptionID, &c.CustomerID, &c.CanceledAt, &c.Reason, &c.MonthlyValue,
			&c.SubscriptionType, &c.DaysAsCustomer); err != nil {
			return nil, err
		}
		cancellations = append(cancellations, c)
	}
	return cancellations, rows.Err()
}
