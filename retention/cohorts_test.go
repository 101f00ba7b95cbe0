package retention

import (
	"testing"
	"time"
)

func subStarting(id, customerID string, start time.Time, amount float64) Subscription {
	return Subscription{
		ID:               id,
		CustomerID:       customerID,
		Status:           StatusActive,
		PlanAmount:       amount,
		DiscountedAmount: amount,
		StartDate:        start,
		CurrentPeriodEnd: testNow.Add(15 * 24 * time.Hour),
	}
}

func TestCohortsSkipEmptyMonths(t *testing.T) {
	// Signups only in June 2026; every other trailing month is omitted.
	sub := subStarting("sub_j", "cus_j", time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), 30)

	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.Cohorts([]Subscription{sub}, testNow)

	if len(out) != 1 {
		t.Fatalf("expected 1 cohort, got %d", len(out))
	}
	if out[0].Month != "2026-06" {
		t.Errorf("month = %s, want 2026-06", out[0].Month)
	}
	if out[0].SignupCount != 1 {
		t.Errorf("signupCount = %d, want 1", out[0].SignupCount)
	}
	// June is 2 months back from August: offsets 0, 1, 2.
	if len(out[0].RetentionByMonth) != 3 {
		t.Errorf("offsets = %d, want 3", len(out[0].RetentionByMonth))
	}
}

func TestCohortRetentionWithMidCohortCancel(t *testing.T) {
	juneStart := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	keeper := subStarting("sub_keep", "cus_keep", juneStart, 30)

	// Canceled June 20: gone before July started, so never retained.
	quickCancelAt := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	quick := subStarting("sub_quick", "cus_quick", juneStart, 30)
	quick.Status = StatusCanceled
	quick.CanceledAt = &quickCancelAt

	// Canceled July 15: survived month 0, gone by month 1's end.
	laterCancelAt := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	later := subStarting("sub_later", "cus_later", juneStart, 30)
	later.Status = StatusCanceled
	later.CanceledAt = &laterCancelAt

	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.Cohorts([]Subscription{keeper, quick, later}, testNow)

	if len(out) != 1 {
		t.Fatalf("expected 1 cohort, got %d", len(out))
	}
	c := out[0]
	if c.SignupCount != 3 {
		t.Fatalf("signupCount = %d, want 3", c.SignupCount)
	}
	want := []float64{67, 33, 33}
	if len(c.RetentionByMonth) != len(want) {
		t.Fatalf("retentionByMonth = %v", c.RetentionByMonth)
	}
	for i := range want {
		if c.RetentionByMonth[i] != want[i] {
			t.Errorf("offset %d = %v, want %v", i, c.RetentionByMonth[i], want[i])
		}
	}
	// Revenue snapshot counts only currently active members.
	if c.TotalRevenue != 30 {
		t.Errorf("totalRevenue = %v, want 30", c.TotalRevenue)
	}
}

func TestCohortFullFirstMonthRetention(t *testing.T) {
	start := time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)
	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.Cohorts([]Subscription{
		subStarting("s1", "c1", start, 30),
		subStarting("s2", "c2", start, 30),
	}, testNow)

	if len(out) != 1 {
		t.Fatalf("expected 1 cohort, got %d", len(out))
	}
	if out[0].RetentionByMonth[0] != 100 {
		t.Errorf("offset 0 = %v, want 100 (no member canceled in first month)", out[0].RetentionByMonth[0])
	}
}

func TestCohortsOldestFirst(t *testing.T) {
	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.Cohorts([]Subscription{
		subStarting("s_new", "c1", time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), 30),
		subStarting("s_old", "c2", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), 30),
	}, testNow)

	if len(out) != 2 {
		t.Fatalf("expected 2 cohorts, got %d", len(out))
	}
	if out[0].Month != "2026-03" || out[1].Month != "2026-08" {
		t.Errorf("order = %s, %s", out[0].Month, out[1].Month)
	}
}

// Signups older than the trailing year fall outside the table.
func TestCohortsTrailingWindow(t *testing.T) {
	a := NewAnalyzer(DefaultSegmentPolicy())
	out := a.Cohorts([]Subscription{
		subStarting("s_ancient", "c1", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 30),
	}, testNow)
	if len(out) != 0 {
		t.Fatalf("expected no cohorts, got %+v", out)
	}
}
