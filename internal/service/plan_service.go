package service

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/repository"
	"alcyxob/coachtrack/internal/schedule"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Template values for exercises picked while scheduling without a plan.
const (
	scheduledDefaultReps   = 10
	scheduledDefaultWeight = 20
)

// ScheduleRequest describes one or many trainer-scheduled sessions for a client.
type ScheduleRequest struct {
	ClientID string
	// PlanID seeds exercises from a stored plan. When empty, PlanName and
	// ExerciseIDs are required.
	PlanID      string
	PlanName    string
	ExerciseIDs []string
	StartDate   time.Time
	// Recurring expands StartDate..EndDate over Weekdays (0=Sunday).
	Recurring bool
	EndDate   time.Time
	Weekdays  []int
}

// PlanService manages workout plans, their assignment to clients and the
// trainer path for pushing workouts into a client's history.
type PlanService interface {
	CreatePlan(ctx context.Context, trainerID string, plan domain.WorkoutPlan) (*domain.WorkoutPlan, error)
	// UpdatePlan replaces the plan stored under planID.
	UpdatePlan(ctx context.Context, planID string, plan domain.WorkoutPlan) (*domain.WorkoutPlan, error)
	GetPlan(ctx context.Context, planID string) (*domain.WorkoutPlan, error)
	ListPlans(ctx context.Context) ([]domain.WorkoutPlan, error)
	PlansForUser(ctx context.Context, userID string) ([]domain.WorkoutPlan, error)
	DeletePlan(ctx context.Context, planID string) error
	// AssignPlan adds userID to the plan's assignees; assigning twice is a no-op.
	AssignPlan(ctx context.Context, planID, userID string) (*domain.WorkoutPlan, error)

	// CreateWorkout stores a dormant workout for a client.
	CreateWorkout(ctx context.Context, trainerID string, workout domain.Workout) (*domain.Workout, error)
	ScheduleWorkouts(ctx context.Context, trainerID string, req ScheduleRequest) ([]domain.Workout, error)
}

type planService struct {
	plans    *PlanBook
	workouts *WorkoutLog
	clients  repository.ClientStore
	catalog  ExerciseCatalog

	now   func() time.Time
	newID func() string
}

func NewPlanService(plans *PlanBook, workouts *WorkoutLog, clients repository.ClientStore, catalog ExerciseCatalog) PlanService {
	return &planService{
		plans:    plans,
		workouts: workouts,
		clients:  clients,
		catalog:  catalog,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *planService) CreatePlan(ctx context.Context, trainerID string, plan domain.WorkoutPlan) (*domain.WorkoutPlan, error) {
	if err := s.preparePlan(&plan); err != nil {
		return nil, err
	}
	plan.ID = s.newID()
	plan.CreatedBy = trainerID
	plan.AssignedTo = nil

	if err := s.plans.Add(ctx, plan); err != nil {
		return nil, err
	}
	slog.Info("plan_created", "plan_id", plan.ID, "trainer_id", trainerID)
	return &plan, nil
}

func (s *planService) UpdatePlan(ctx context.Context, planID string, plan domain.WorkoutPlan) (*domain.WorkoutPlan, error) {
	if err := s.preparePlan(&plan); err != nil {
		return nil, err
	}
	updated, err := s.plans.Modify(ctx, planID, func(p *domain.WorkoutPlan) error {
		createdBy := p.CreatedBy
		*p = plan.Clone()
		p.ID = planID
		if p.CreatedBy == "" {
			p.CreatedBy = createdBy
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("plan_updated", "plan_id", planID)
	return updated, nil
}

func (s *planService) GetPlan(ctx context.Context, planID string) (*domain.WorkoutPlan, error) {
	return s.plans.Get(ctx, planID)
}

func (s *planService) ListPlans(ctx context.Context) ([]domain.WorkoutPlan, error) {
	return s.plans.List(ctx)
}

func (s *planService) PlansForUser(ctx context.Context, userID string) ([]domain.WorkoutPlan, error) {
	all, err := s.plans.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.WorkoutPlan{}
	for _, p := range all {
		if p.IsAssignedTo(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *planService) DeletePlan(ctx context.Context, planID string) error {
	removed, err := s.plans.Delete(ctx, planID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrPlanNotFound
	}
	slog.Info("plan_deleted", "plan_id", planID)
	return nil
}

func (s *planService) AssignPlan(ctx context.Context, planID, userID string) (*domain.WorkoutPlan, error) {
	if _, err := s.lookupUser(ctx, userID); err != nil {
		return nil, err
	}
	plan, err := s.plans.Modify(ctx, planID, func(p *domain.WorkoutPlan) error {
		if !p.IsAssignedTo(userID) {
			p.AssignedTo = append(p.AssignedTo, userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("plan_assigned", "plan_id", planID, "user_id", userID)
	return plan, nil
}

func (s *planService) CreateWorkout(ctx context.Context, trainerID string, workout domain.Workout) (*domain.Workout, error) {
	if strings.TrimSpace(workout.Name) == "" {
		return nil, validationErrorf("workout name is required")
	}
	if _, err := s.lookupUser(ctx, workout.UserID); err != nil {
		return nil, err
	}
	exercises, err := s.normalizeExercises(workout.Exercises)
	if err != nil {
		return nil, err
	}

	workout.ID = s.newID()
	workout.Exercises = exercises
	workout.CreatedBy = trainerID
	workout.DurationMs = nil
	if workout.Date.IsZero() {
		workout.Date = s.now()
	}

	if err := s.workouts.Append(ctx, workout); err != nil {
		return nil, err
	}
	slog.Info("workout_created", "workout_id", workout.ID, "user_id", workout.UserID, "trainer_id", trainerID)
	return &workout, nil
}

func (s *planService) ScheduleWorkouts(ctx context.Context, trainerID string, req ScheduleRequest) ([]domain.Workout, error) {
	// 1. Resolve client and exercise template
	client, err := s.lookupUser(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	planName := strings.TrimSpace(req.PlanName)
	var template []domain.WorkoutExercise
	if req.PlanID != "" {
		plan, err := s.plans.Get(ctx, req.PlanID)
		if err != nil {
			return nil, err
		}
		if planName == "" {
			planName = plan.Name
		}
		template = plan.Exercises
	} else {
		if planName == "" {
			return nil, validationErrorf("plan name is required")
		}
		if len(req.ExerciseIDs) == 0 {
			return nil, validationErrorf("select at least one exercise")
		}
		for _, id := range req.ExerciseIDs {
			if !s.catalog.Has(id) {
				return nil, ErrUnknownExercise
			}
			template = append(template, domain.WorkoutExercise{
				ID:         s.newID(),
				ExerciseID: id,
				Sets: []domain.WorkoutSet{{
					ID:     s.newID(),
					Reps:   scheduledDefaultReps,
					Weight: scheduledDefaultWeight,
				}},
			})
		}
	}

	// 2. Expand dates
	if req.StartDate.IsZero() {
		return nil, validationErrorf("start date is required")
	}
	var dates []time.Time
	if req.Recurring {
		if req.EndDate.IsZero() {
			return nil, validationErrorf("end date is required for recurring sessions")
		}
		weekdays, ok := schedule.Weekdays(req.Weekdays)
		if !ok || len(weekdays) == 0 {
			return nil, validationErrorf("select at least one valid weekday")
		}
		dates = schedule.RecurringDates(req.StartDate, req.EndDate, weekdays)
	} else {
		dates = schedule.SingleDate(req.StartDate)
	}
	if len(dates) == 0 {
		return nil, validationErrorf("no valid training dates")
	}

	// 3. One dormant workout per date
	name := planName + " - " + client.Name
	workouts := make([]domain.Workout, len(dates))
	for i, d := range dates {
		workouts[i] = domain.Workout{
			ID:        s.newID(),
			Name:      name,
			Date:      d,
			Exercises: domain.CloneExercises(template),
			UserID:    client.ID,
			CreatedBy: trainerID,
		}
	}
	if err := s.workouts.Append(ctx, workouts...); err != nil {
		return nil, err
	}
	slog.Info("workouts_scheduled", "user_id", client.ID, "trainer_id", trainerID, "count", len(workouts))
	return workouts, nil
}

func (s *planService) lookupUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, validationErrorf("client is required")
	}
	user, err := s.clients.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// preparePlan validates the plan body and fills missing exercise and set ids.
func (s *planService) preparePlan(plan *domain.WorkoutPlan) error {
	if strings.TrimSpace(plan.Name) == "" {
		return validationErrorf("plan name is required")
	}
	for _, h := range plan.Schedule {
		if h.DayOfWeek < 0 || h.DayOfWeek > 6 {
			return validationErrorf("schedule day %d is not a weekday index", h.DayOfWeek)
		}
	}
	exercises, err := s.normalizeExercises(plan.Exercises)
	if err != nil {
		return err
	}
	plan.Exercises = exercises
	return nil
}

// normalizeExercises checks catalog references and set values, and gives
// every exercise and set an id unique within its parent.
func (s *planService) normalizeExercises(in []domain.WorkoutExercise) ([]domain.WorkoutExercise, error) {
	out := domain.CloneExercises(in)
	seenEx := map[string]bool{}
	for i := range out {
		ex := &out[i]
		if !s.catalog.Has(ex.ExerciseID) {
			return nil, ErrUnknownExercise
		}
		if ex.ID == "" || seenEx[ex.ID] {
			ex.ID = s.newID()
		}
		seenEx[ex.ID] = true

		seenSet := map[string]bool{}
		for j := range ex.Sets {
			set := &ex.Sets[j]
			if set.Reps < 0 || set.Weight < 0 {
				return nil, validationErrorf("reps and weight must not be negative")
			}
			if set.ID == "" || seenSet[set.ID] {
				set.ID = s.newID()
			}
			seenSet[set.ID] = true
		}
	}
	return out, nil
}
