package reminder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// Store records which reminders have already been delivered.
type Store interface {
	// MarkNotified records a delivery and reports whether it was the first for that schedule and due date.
	MarkNotified(ctx context.Context, scheduleID int64, dueDate string) (bool, error)
}

// Repository is a Store backed by the reminder_notifications table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new reminder notification repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

func (r *Repository) MarkNotified(ctx context.Context, scheduleID int64, dueDate string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reminder_notifications (schedule_id, due_date, notified_at) VALUES (?, ?, ?)`,
		scheduleID, dueDate, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record reminder notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// Cleanup deletes notifications for due dates before the given ISO date.
func (r *Repository) Cleanup(ctx context.Context, before string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminder_notifications WHERE due_date < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up reminder notifications: %w", err)
	}
	return res.RowsAffected()
}

// MemoryStore keeps deliveries in memory. Used when no database is configured.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (m *MemoryStore) MarkNotified(_ context.Context, scheduleID int64, dueDate string) (bool, error) {
	key := fmt.Sprintf("%d/%s", scheduleID, dueDate)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[key]; ok {
		return false, nil
	}
	m.seen[key] = struct{}{}
	return true, nil
}
