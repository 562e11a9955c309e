package schedule

import (
	"context"
	"time"
)

// Scheduler records a one-shot deferred action. Implementations must persist
// the due time so months-long delays survive process restarts.
type Scheduler interface {
	Schedule(ctx context.Context, kind string, subjectID string, runAt time.Time) error
}

// Task is a persisted deferred action awaiting execution.
type Task struct {
	ID        string
	Kind      string
	SubjectID string
	RunAt     time.Time
	CreatedAt time.Time
}

// TaskStore is the durable backing of the scheduler and its runner.
type TaskStore interface {
	Add(ctx context.Context, task Task) error
	Due(ctx context.Context, now time.Time, limit int) ([]Task, error)
	MarkDone(ctx context.Context, id string) error
}

// StoreScheduler is the straightforward Scheduler over a TaskStore.
type StoreScheduler struct {
	Store TaskStore
	IDGen func() string
}

func (s StoreScheduler) Schedule(ctx context.Context, kind string, subjectID string, runAt time.Time) error {
	id := kind + ":" + subjectID
	if s.IDGen != nil {
		id = s.IDGen()
	}
	return s.Store.Add(ctx, Task{
		ID:        id,
		Kind:      kind,
		SubjectID: subjectID,
		RunAt:     runAt.UTC(),
		CreatedAt: time.Now().UTC(),
	})
}
