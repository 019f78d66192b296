package service

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// collection is a JSON-serialized list kept under one key of a CollectionStore.
// It is loaded lazily and written back after every change. A failed write is
// logged and the in-memory change stands.
//
// Data a cache tier serves during an outage is shown to readers but never
// kept: writes need a load from the primary first, otherwise a partial list
// would replace the durable one.
type collection[T any] struct {
	mu     sync.Mutex
	store  repository.CollectionStore
	key    string
	items  []T
	loaded bool
}

func newCollection[T any](store repository.CollectionStore, key string) *collection[T] {
	return &collection[T]{store: store, key: key}
}

// load returns the current items and whether they came from the primary
// store. Must be called with mu held.
func (c *collection[T]) load(ctx context.Context) ([]T, bool, error) {
	if c.loaded {
		return c.items, true, nil
	}
	data, err := c.store.Load(ctx, c.key)
	stale := errors.Is(err, repository.ErrStale)

	var items []T
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil && !stale:
		return nil, false, fmt.Errorf("load %s: %w", c.key, err)
	default:
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, false, fmt.Errorf("decode %s: %w", c.key, err)
		}
	}
	if stale {
		slog.Warn("collection_stale_read", "key", c.key, "items", len(items))
		return items, false, nil
	}
	c.items = items
	c.loaded = true
	return items, true, nil
}

// read runs fn over the current items. fn must not keep the slice.
func (c *collection[T]) read(ctx context.Context, fn func(items []T)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, _, err := c.load(ctx)
	if err != nil {
		return err
	}
	fn(items)
	return nil
}

// write lets fn produce the new item list, then persists it. fn must not
// modify items when it returns an error.
func (c *collection[T]) write(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, fresh, err := c.load(ctx)
	if err != nil {
		return err
	}
	if !fresh {
		return fmt.Errorf("%w: %s is only available from cache", repository.ErrConnectionFailed, c.key)
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	c.items = items
	c.persist(ctx)
	return nil
}

func (c *collection[T]) persist(ctx context.Context) {
	data, err := json.Marshal(c.items)
	if err != nil {
		slog.Error("collection_encode_failed", "key", c.key, "error", err)
		return
	}
	if err := c.store.Save(ctx, c.key, data); err != nil {
		slog.Error("collection_persist_failed", "key", c.key, "error", err)
	}
}

// WorkoutLog is the persisted workout history, including trainer-scheduled
// workouts that have not been started yet.
type WorkoutLog struct {
	c *collection[domain.Workout]
}

func NewWorkoutLog(store repository.CollectionStore) *WorkoutLog {
	return &WorkoutLog{c: newCollection[domain.Workout](store, repository.KeyWorkouts)}
}

// ByUser returns copies of userID's workouts ordered by date.
func (l *WorkoutLog) ByUser(ctx context.Context, userID string) ([]domain.Workout, error) {
	out := []domain.Workout{}
	err := l.c.read(ctx, func(items []domain.Workout) {
		for _, w := range items {
			if w.UserID == userID {
				out = append(out, w.Clone())
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, err
}

// All returns copies of every workout.
func (l *WorkoutLog) All(ctx context.Context) ([]domain.Workout, error) {
	var out []domain.Workout
	err := l.c.read(ctx, func(items []domain.Workout) {
		out = make([]domain.Workout, len(items))
		for i, w := range items {
			out[i] = w.Clone()
		}
	})
	return out, err
}

func (l *WorkoutLog) Get(ctx context.Context, id string) (*domain.Workout, error) {
	var found *domain.Workout
	err := l.c.read(ctx, func(items []domain.Workout) {
		for _, w := range items {
			if w.ID == id {
				cp := w.Clone()
				found = &cp
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrWorkoutNotFound
	}
	return found, nil
}

// Append adds new workouts to the history.
func (l *WorkoutLog) Append(ctx context.Context, workouts ...domain.Workout) error {
	return l.c.write(ctx, func(items []domain.Workout) ([]domain.Workout, error) {
		for _, w := range workouts {
			items = append(items, w.Clone())
		}
		return items, nil
	})
}

// Upsert replaces the workout with the same id or appends it.
func (l *WorkoutLog) Upsert(ctx context.Context, w domain.Workout) error {
	return l.c.write(ctx, func(items []domain.Workout) ([]domain.Workout, error) {
		for i := range items {
			if items[i].ID == w.ID {
				items[i] = w.Clone()
				return items, nil
			}
		}
		return append(items, w.Clone()), nil
	})
}

// PlanBook is the persisted set of workout plans.
type PlanBook struct {
	c *collection[domain.WorkoutPlan]
}

func NewPlanBook(store repository.CollectionStore) *PlanBook {
	return &PlanBook{c: newCollection[domain.WorkoutPlan](store, repository.KeyWorkoutPlans)}
}

func (b *PlanBook) List(ctx context.Context) ([]domain.WorkoutPlan, error) {
	out := []domain.WorkoutPlan{}
	err := b.c.read(ctx, func(items []domain.WorkoutPlan) {
		for _, p := range items {
			out = append(out, p.Clone())
		}
	})
	return out, err
}

func (b *PlanBook) Get(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	var found *domain.WorkoutPlan
	err := b.c.read(ctx, func(items []domain.WorkoutPlan) {
		for _, p := range items {
			if p.ID == id {
				cp := p.Clone()
				found = &cp
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrPlanNotFound
	}
	return found, nil
}

func (b *PlanBook) Add(ctx context.Context, plan domain.WorkoutPlan) error {
	return b.c.write(ctx, func(items []domain.WorkoutPlan) ([]domain.WorkoutPlan, error) {
		return append(items, plan.Clone()), nil
	})
}

// Modify applies fn to a copy of the plan with id and stores the result.
func (b *PlanBook) Modify(ctx context.Context, id string, fn func(p *domain.WorkoutPlan) error) (*domain.WorkoutPlan, error) {
	var out domain.WorkoutPlan
	err := b.c.write(ctx, func(items []domain.WorkoutPlan) ([]domain.WorkoutPlan, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			p := items[i].Clone()
			if err := fn(&p); err != nil {
				return nil, err
			}
			items[i] = p
			out = p.Clone()
			return items, nil
		}
		return nil, ErrPlanNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete reports whether a plan was removed.
func (b *PlanBook) Delete(ctx context.Context, id string) (bool, error) {
	removed := false
	err := b.c.write(ctx, func(items []domain.WorkoutPlan) ([]domain.WorkoutPlan, error) {
		kept := items[:0:0]
		for _, p := range items {
			if p.ID == id {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		return kept, nil
	})
	return removed, err
}

// Unassign drops userID from every plan's assignee list.
func (b *PlanBook) Unassign(ctx context.Context, userID string) error {
	return b.c.write(ctx, func(items []domain.WorkoutPlan) ([]domain.WorkoutPlan, error) {
		out := make([]domain.WorkoutPlan, len(items))
		for i, p := range items {
			out[i] = p
			if !p.IsAssignedTo(userID) {
				continue
			}
			kept := []string{}
			for _, id := range p.AssignedTo {
				if id != userID {
					kept = append(kept, id)
				}
			}
			out[i].AssignedTo = kept
		}
		return out, nil
	})
}
