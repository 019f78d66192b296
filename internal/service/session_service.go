package service

import (
	"alcyxob/coachtrack/internal/domain"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ExerciseCatalog is the read-only exercise lookup the services validate against.
type ExerciseCatalog interface {
	Has(id string) bool
}

// SessionService tracks the single active workout of each user.
//
// Every mutation on a user without an active workout returns
// ErrNoActiveWorkout and changes nothing. Index errors return
// ErrIndexOutOfRange and change nothing.
type SessionService interface {
	// Start begins a workout seeded from planID, or empty when planID is blank
	// or unknown. If the user already has an active workout it is returned as is.
	Start(ctx context.Context, userID, planID string) (*domain.Workout, error)
	// StartScheduled makes a dormant trainer-scheduled workout the active one.
	StartScheduled(ctx context.Context, userID, workoutID string) (*domain.Workout, error)
	Active(ctx context.Context, userID string) (*domain.Workout, error)

	AddExercise(ctx context.Context, userID, exerciseID string) (*domain.Workout, error)
	RemoveExercise(ctx context.Context, userID string, exerciseIndex int) (*domain.Workout, error)
	UpdateSet(ctx context.Context, userID string, exerciseIndex, setIndex int, update domain.SetUpdate) (*domain.Workout, error)
	AddSet(ctx context.Context, userID string, exerciseIndex int) (*domain.Workout, error)
	RemoveSet(ctx context.Context, userID string, exerciseIndex, setIndex int) (*domain.Workout, error)

	// Save completes the active workout and records it in history. The
	// workout stays active until End or Discard.
	Save(ctx context.Context, userID string) (*domain.Workout, error)
	// End saves the active workout if needed and clears it. With nothing
	// active it returns (nil, nil).
	End(ctx context.Context, userID string) (*domain.Workout, error)
	// Discard clears the active workout without saving.
	Discard(ctx context.Context, userID string) error

	History(ctx context.Context, userID string) ([]domain.Workout, error)
}

// StatsRefresher recomputes a user's stats after their history changed.
type StatsRefresher interface {
	Refresh(ctx context.Context, userID string) error
}

type sessionService struct {
	mu     sync.Mutex // guards active and users
	active map[string]*domain.Workout
	users  map[string]*sync.Mutex

	workouts *WorkoutLog
	plans    *PlanBook
	catalog  ExerciseCatalog
	stats    StatsRefresher

	now   func() time.Time
	newID func() string
}

// NewSessionService creates the session tracker. stats may be nil.
func NewSessionService(workouts *WorkoutLog, plans *PlanBook, catalog ExerciseCatalog, stats StatsRefresher) SessionService {
	return &sessionService{
		active:   make(map[string]*domain.Workout),
		users:    make(map[string]*sync.Mutex),
		workouts: workouts,
		plans:    plans,
		catalog:  catalog,
		stats:    stats,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// lockUser serializes the calls of one user. Store I/O runs under this lock
// only, so a stalled store call holds up that user and nobody else.
func (s *sessionService) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.users[userID]
	if !ok {
		l = &sync.Mutex{}
		s.users[userID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// current returns the user's active workout. The caller must hold the user lock
// to touch it.
func (s *sessionService) current(userID string) (*domain.Workout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.active[userID]
	return w, ok
}

func (s *sessionService) setActive(userID string, w *domain.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w == nil {
		delete(s.active, userID)
		return
	}
	s.active[userID] = w
}

func (s *sessionService) Start(ctx context.Context, userID, planID string) (*domain.Workout, error) {
	defer s.lockUser(userID)()

	if w, ok := s.current(userID); ok {
		return cloneWorkout(w), nil
	}

	now := s.now()
	w := &domain.Workout{
		ID:        s.newID(),
		Name:      "Workout " + now.Format("02.01.2006"),
		Date:      now,
		Exercises: []domain.WorkoutExercise{},
		UserID:    userID,
	}
	if planID != "" {
		plan, err := s.plans.Get(ctx, planID)
		switch {
		case err == nil:
			w.Name = plan.Name
			w.Exercises = domain.CloneExercises(plan.Exercises)
		case errors.Is(err, ErrPlanNotFound):
			slog.Warn("workout_plan_missing", "plan_id", planID, "user_id", userID)
		default:
			return nil, err
		}
	}

	s.setActive(userID, w)
	slog.Info("workout_started", "user_id", userID, "workout_id", w.ID, "plan_id", planID)
	return cloneWorkout(w), nil
}

func (s *sessionService) StartScheduled(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	defer s.lockUser(userID)()

	if w, ok := s.current(userID); ok {
		return cloneWorkout(w), nil
	}

	scheduled, err := s.workouts.Get(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if scheduled.UserID != userID {
		return nil, ErrWorkoutNotFound
	}
	if scheduled.Completed {
		return nil, ErrWorkoutFinalized
	}

	// The session runs from now; the id is kept so saving replaces the dormant row.
	scheduled.Date = s.now()
	s.setActive(userID, scheduled)
	slog.Info("workout_started", "user_id", userID, "workout_id", scheduled.ID, "scheduled", true)
	return cloneWorkout(scheduled), nil
}

func (s *sessionService) Active(ctx context.Context, userID string) (*domain.Workout, error) {
	defer s.lockUser(userID)()
	w, ok := s.current(userID)
	if !ok {
		return nil, ErrNoActiveWorkout
	}
	return cloneWorkout(w), nil
}

// mutate applies fn to the user's active, unsaved workout.
func (s *sessionService) mutate(userID string, fn func(w *domain.Workout) error) (*domain.Workout, error) {
	defer s.lockUser(userID)()
	w, ok := s.current(userID)
	if !ok {
		return nil, ErrNoActiveWorkout
	}
	if w.Completed {
		return nil, ErrWorkoutFinalized
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	return cloneWorkout(w), nil
}

func (s *sessionService) AddExercise(ctx context.Context, userID, exerciseID string) (*domain.Workout, error) {
	if !s.catalog.Has(exerciseID) {
		return nil, ErrUnknownExercise
	}
	return s.mutate(userID, func(w *domain.Workout) error {
		w.Exercises = append(w.Exercises, domain.WorkoutExercise{
			ID:         s.newID(),
			ExerciseID: exerciseID,
			Sets:       []domain.WorkoutSet{{ID: s.newID()}},
		})
		return nil
	})
}

func (s *sessionService) RemoveExercise(ctx context.Context, userID string, exerciseIndex int) (*domain.Workout, error) {
	return s.mutate(userID, func(w *domain.Workout) error {
		if exerciseIndex < 0 || exerciseIndex >= len(w.Exercises) {
			return ErrIndexOutOfRange
		}
		w.Exercises = append(w.Exercises[:exerciseIndex], w.Exercises[exerciseIndex+1:]...)
		return nil
	})
}

func (s *sessionService) UpdateSet(ctx context.Context, userID string, exerciseIndex, setIndex int, update domain.SetUpdate) (*domain.Workout, error) {
	if err := validateSetUpdate(update); err != nil {
		return nil, err
	}
	return s.mutate(userID, func(w *domain.Workout) error {
		set, err := setAt(w, exerciseIndex, setIndex)
		if err != nil {
			return err
		}
		update.Apply(set)
		return nil
	})
}

func (s *sessionService) AddSet(ctx context.Context, userID string, exerciseIndex int) (*domain.Workout, error) {
	return s.mutate(userID, func(w *domain.Workout) error {
		if exerciseIndex < 0 || exerciseIndex >= len(w.Exercises) {
			return ErrIndexOutOfRange
		}
		ex := &w.Exercises[exerciseIndex]
		next := domain.WorkoutSet{ID: s.newID()}
		// Carry the previous set's values forward.
		if n := len(ex.Sets); n > 0 {
			next.Reps = ex.Sets[n-1].Reps
			next.Weight = ex.Sets[n-1].Weight
		}
		ex.Sets = append(ex.Sets, next)
		return nil
	})
}

func (s *sessionService) RemoveSet(ctx context.Context, userID string, exerciseIndex, setIndex int) (*domain.Workout, error) {
	return s.mutate(userID, func(w *domain.Workout) error {
		if _, err := setAt(w, exerciseIndex, setIndex); err != nil {
			return err
		}
		ex := &w.Exercises[exerciseIndex]
		ex.Sets = append(ex.Sets[:setIndex], ex.Sets[setIndex+1:]...)
		return nil
	})
}

func (s *sessionService) Save(ctx context.Context, userID string) (*domain.Workout, error) {
	unlock := s.lockUser(userID)
	w, ok := s.current(userID)
	if !ok {
		unlock()
		return nil, ErrNoActiveWorkout
	}
	err := s.finalize(ctx, w)
	out := cloneWorkout(w)
	unlock()

	if err != nil {
		return nil, err
	}
	s.refreshStats(ctx, userID)
	return out, nil
}

func (s *sessionService) End(ctx context.Context, userID string) (*domain.Workout, error) {
	unlock := s.lockUser(userID)
	w, ok := s.current(userID)
	if !ok {
		unlock()
		return nil, nil
	}
	wasSaved := w.Completed
	if err := s.finalize(ctx, w); err != nil {
		unlock()
		return nil, err
	}
	s.setActive(userID, nil)
	out := cloneWorkout(w)
	unlock()

	slog.Info("workout_ended", "user_id", userID, "workout_id", out.ID)
	if !wasSaved {
		s.refreshStats(ctx, userID)
	}
	return out, nil
}

func (s *sessionService) Discard(ctx context.Context, userID string) error {
	defer s.lockUser(userID)()
	if w, ok := s.current(userID); ok {
		s.setActive(userID, nil)
		slog.Info("workout_discarded", "user_id", userID, "workout_id", w.ID, "saved", w.Completed)
	}
	return nil
}

func (s *sessionService) History(ctx context.Context, userID string) ([]domain.Workout, error) {
	return s.workouts.ByUser(ctx, userID)
}

// finalize stamps completion and duration and upserts w into history. It is
// a no-op for a workout that was already saved. Must be called with the
// user lock held.
func (s *sessionService) finalize(ctx context.Context, w *domain.Workout) error {
	if w.Completed {
		return nil
	}
	done := w.Clone()
	done.Completed = true
	elapsed := s.now().Sub(w.Date).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	done.DurationMs = &elapsed

	if err := s.workouts.Upsert(ctx, done); err != nil {
		return err
	}
	*w = done
	slog.Info("workout_saved", "user_id", w.UserID, "workout_id", w.ID, "duration_ms", elapsed)
	return nil
}

func (s *sessionService) refreshStats(ctx context.Context, userID string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Refresh(ctx, userID); err != nil {
		slog.Error("stats_refresh_failed", "user_id", userID, "error", err)
	}
}

func setAt(w *domain.Workout, exerciseIndex, setIndex int) (*domain.WorkoutSet, error) {
	if exerciseIndex < 0 || exerciseIndex >= len(w.Exercises) {
		return nil, ErrIndexOutOfRange
	}
	sets := w.Exercises[exerciseIndex].Sets
	if setIndex < 0 || setIndex >= len(sets) {
		return nil, ErrIndexOutOfRange
	}
	return &sets[setIndex], nil
}

func validateSetUpdate(u domain.SetUpdate) error {
	if u.Reps != nil && *u.Reps < 0 {
		return validationErrorf("reps must not be negative")
	}
	if u.Weight != nil && *u.Weight < 0 {
		return validationErrorf("weight must not be negative")
	}
	if u.RestTime != nil && *u.RestTime < 0 {
		return validationErrorf("rest time must not be negative")
	}
	return nil
}

func cloneWorkout(w *domain.Workout) *domain.Workout {
	out := w.Clone()
	return &out
}
