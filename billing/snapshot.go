package billing

import (
	"sync"
	"time"

	"churnboard-backend/retention"
)

// Store holds the latest synced billing snapshot. Readers always get
// copies, so an in-flight sync can never mutate a snapshot a request is
// computing over.
type Store struct {
	mu            sync.RWMutex
	subscriptions []retention.Subscription
	payments      []retention.Payment
	cancellations []retention.Cancellation
	syncedAt      time.Time
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the held snapshot.
func (s *Store) Set(subs []retention.Subscription, payments []retention.Payment, cancellations []retention.Cancellation, syncedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = subs
	s.payments = payments
	s.cancellations = cancellations
	s.syncedAt = syncedAt
}

// Snapshot returns copies of the held collections. Satisfies
// retention.SnapshotProvider.
func (s *Store) Snapshot() ([]retention.Subscription, []retention.Payment, []retention.Cancellation, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]retention.Subscription, len(s.subscriptions))
	copy(subs, s.subscriptions)
	payments := make([]retention.Payment, len(s.payments))
	copy(payments, s.payments)
	cancellations := make([]retention.Cancellation, len(s.cancellations))
	copy(cancellations, s.cancellations)

	return subs, payments, cancellations, s.syncedAt
}

// Counts reports snapshot sizes without copying the collections.
func (s *Store) Counts() (subs, payments, cancellations int, syncedAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscriptions), len(s.payments), len(s.cancellations), s.syncedAt
}
