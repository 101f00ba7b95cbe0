package migrations

import (
	"database/sql"
	"fmt"
)

var db *sql.DB

// Init sets the DB connection for migrations
func Init(database *sql.DB) {
	db = database
}

// Migrate creates the billing snapshot tables if they do not exist
func Migrate() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}

	createSubscriptions := `
	CREATE TABLE IF NOT EXISTS billing_subscriptions (
		id VARCHAR(64) PRIMARY KEY,
		customer_id VARCHAR(64) NOT NULL,
		customer_email VARCHAR(191) NOT NULL DEFAULT '',
		customer_name VARCHAR(191) NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL,
		plan_amount DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		discounted_amount DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		start_date DATETIME NOT NULL,
		current_period_end DATETIME NOT NULL,
		canceled_at DATETIME NULL,
		cancel_at_period_end TINYINT(1) NOT NULL DEFAULT 0,
		cancellation_reason VARCHAR(255) NOT NULL DEFAULT '',
		coupon_id VARCHAR(64) NOT NULL DEFAULT '',
		coupon_percent_off DECIMAL(5,2) NOT NULL DEFAULT 0.00,
		coupon_duration VARCHAR(32) NOT NULL DEFAULT '',
		INDEX idx_billing_subscriptions_customer (customer_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createSubscriptions); err != nil {
		return err
	}

	createPayments := `
	CREATE TABLE IF NOT EXISTS billing_payments (
		id VARCHAR(64) PRIMARY KEY,
		customer_id VARCHAR(64) NOT NULL,
		amount DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		status VARCHAR(16) NOT NULL,
		created DATETIME NOT NULL,
		INDEX idx_billing_payments_customer (customer_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createPayments); err != nil {
		return err
	}

	createCancellations := `
	CREATE TABLE IF NOT EXISTS billing_cancellations (
		subscription_id VARCHAR(64) PRIMARY KEY,
		customer_id VARCHAR(64) NOT NULL,
		canceled_at DATETIME NOT NULL,
		reason VARCHAR(255) NOT NULL DEFAULT '',
		monthly_value DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		subscription_type VARCHAR(32) NOT NULL DEFAULT 'individual',
		days_as_customer INT NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createCancellations); err != nil {
		return err
	}

	createSyncRuns := `
	CREATE TABLE IF NOT EXISTS billing_sync_runs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		run_id VARCHAR(36) NOT NULL,
		synced_at DATETIME NOT NULL,
		subscription_count INT NOT NULL DEFAULT 0,
		payment_count INT NOT NULL DEFAULT 0,
		cancellation_count INT NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createSyncRuns); err != nil {
		return err
	}

	return nil
}
