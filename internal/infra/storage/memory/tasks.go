package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"rentable/internal/app/schedule"
)

// TaskStore is the in-memory schedule.TaskStore. Adding a task with an ID
// already present replaces the stored row, which makes Schedule idempotent
// for the default kind:subject IDs.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string]schedule.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]schedule.Task)}
}

func (s *TaskStore) Add(ctx context.Context, task schedule.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	return nil
}

func (s *TaskStore) Due(ctx context.Context, now time.Time, limit int) ([]schedule.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []schedule.Task
	for _, task := range s.tasks {
		if !task.RunAt.After(now) {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunAt.Before(out[j].RunAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *TaskStore) MarkDone(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	return nil
}
