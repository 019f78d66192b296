package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"alcyxob/coachtrack/internal/domain"
)

func TestCreatePlanValidation(t *testing.T) {
	f := newFixture()
	tests := []struct {
		name string
		plan domain.WorkoutPlan
		want error
	}{
		{"missing name", domain.WorkoutPlan{}, ErrValidation},
		{"unknown exercise", domain.WorkoutPlan{Name: "P", Exercises: []domain.WorkoutExercise{{ExerciseID: "moon-walk"}}}, ErrUnknownExercise},
		{"negative reps", domain.WorkoutPlan{Name: "P", Exercises: []domain.WorkoutExercise{
			{ExerciseID: "squat", Sets: []domain.WorkoutSet{{Reps: -1}}},
		}}, ErrValidation},
		{"bad schedule day", domain.WorkoutPlan{Name: "P", Schedule: []domain.ScheduleHint{{DayOfWeek: 7}}}, ErrValidation},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if _, err := f.planSvc.CreatePlan(context.Background(), "t1", test.plan); !errors.Is(err, test.want) {
				t.Errorf("expected %v, got %v", test.want, err)
			}
		})
	}
}

func TestCreatePlanAssignsUniqueIDs(t *testing.T) {
	f := newFixture()
	plan, err := f.planSvc.CreatePlan(context.Background(), "t1", domain.WorkoutPlan{
		Name: "Dupes",
		Exercises: []domain.WorkoutExercise{
			{ID: "x", ExerciseID: "squat", Sets: []domain.WorkoutSet{{ID: "s"}, {ID: "s"}}},
			{ID: "x", ExerciseID: "deadlift"},
		},
		AssignedTo: []string{"sneaky"},
	})
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if plan.Exercises[0].ID == plan.Exercises[1].ID {
		t.Error("exercise ids must be unique within the plan")
	}
	if plan.Exercises[0].Sets[0].ID == plan.Exercises[0].Sets[1].ID {
		t.Error("set ids must be unique within the exercise")
	}
	if plan.CreatedBy != "t1" || len(plan.AssignedTo) != 0 {
		t.Errorf("unexpected ownership fields: %+v", plan)
	}
}

func TestUpdatePlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	plan := seedPlan(t, f)

	if _, err := f.planSvc.UpdatePlan(ctx, "missing", domain.WorkoutPlan{Name: "X"}); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}

	updated, err := f.planSvc.UpdatePlan(ctx, plan.ID, domain.WorkoutPlan{ID: "ignored", Name: "Pull Day"})
	if err != nil {
		t.Fatalf("UpdatePlan failed: %v", err)
	}
	if updated.ID != plan.ID || updated.Name != "Pull Day" || len(updated.Exercises) != 0 || updated.CreatedBy != "trainer-1" {
		t.Errorf("unexpected replacement: %+v", updated)
	}
	plans, _ := f.planSvc.ListPlans(ctx)
	if len(plans) != 1 {
		t.Errorf("expected 1 plan, got %d", len(plans))
	}
}

func TestAssignPlanIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	plan := seedPlan(t, f)
	client, _ := f.addClient("Ann", "ann@example.com")

	for i := 0; i < 2; i++ {
		if _, err := f.planSvc.AssignPlan(ctx, plan.ID, client.ID); err != nil {
			t.Fatalf("AssignPlan failed: %v", err)
		}
	}
	stored, _ := f.planSvc.GetPlan(ctx, plan.ID)
	if len(stored.AssignedTo) != 1 {
		t.Errorf("expected one assignee, got %v", stored.AssignedTo)
	}

	mine, _ := f.planSvc.PlansForUser(ctx, client.ID)
	if len(mine) != 1 {
		t.Errorf("expected the plan in the client's list, got %d", len(mine))
	}

	if _, err := f.planSvc.AssignPlan(ctx, plan.ID, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := f.planSvc.AssignPlan(ctx, "missing", client.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestDeletePlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	plan := seedPlan(t, f)
	if err := f.planSvc.DeletePlan(ctx, plan.ID); err != nil {
		t.Fatalf("DeletePlan failed: %v", err)
	}
	if err := f.planSvc.DeletePlan(ctx, plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestCreateWorkoutIsDormant(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	client, _ := f.addClient("Ann", "ann@example.com")

	w, err := f.planSvc.CreateWorkout(ctx, "t1", domain.Workout{
		Name:      "Saturday",
		UserID:    client.ID,
		Exercises: []domain.WorkoutExercise{{ExerciseID: "squat"}},
	})
	if err != nil {
		t.Fatalf("CreateWorkout failed: %v", err)
	}
	if w.CreatedBy != "t1" || w.Completed || w.Date.IsZero() {
		t.Errorf("unexpected workout: %+v", w)
	}
	if _, err := f.sessions.Active(ctx, client.ID); !errors.Is(err, ErrNoActiveWorkout) {
		t.Error("a created workout must not become the active session")
	}
	history, _ := f.sessions.History(ctx, client.ID)
	if len(history) != 1 {
		t.Errorf("expected 1 workout in history, got %d", len(history))
	}
}

func TestScheduleWorkoutsRecurring(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	client, _ := f.addClient("Ann", "ann@example.com")

	start := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC) // Monday
	got, err := f.planSvc.ScheduleWorkouts(ctx, "t1", ScheduleRequest{
		ClientID:    client.ID,
		PlanName:    "Strength",
		ExerciseIDs: []string{"squat", "bench-press"},
		StartDate:   start,
		Recurring:   true,
		EndDate:     start.AddDate(0, 0, 13),
		Weekdays:    []int{1, 4},
	})
	if err != nil {
		t.Fatalf("ScheduleWorkouts failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 sessions, got %d", len(got))
	}
	for _, w := range got {
		if w.Name != "Strength - Ann" || w.UserID != client.ID || w.CreatedBy != "t1" || w.Completed {
			t.Errorf("unexpected workout: %+v", w)
		}
		if w.Date.Hour() != 12 {
			t.Errorf("expected noon, got %s", w.Date)
		}
		if len(w.Exercises) != 2 || w.Exercises[0].Sets[0].Reps != 10 || w.Exercises[0].Sets[0].Weight != 20 {
			t.Errorf("unexpected default sets: %+v", w.Exercises)
		}
	}

	// Sessions do not share set storage.
	got[0].Exercises[0].Sets[0].Reps = 99
	if got[1].Exercises[0].Sets[0].Reps != 10 {
		t.Error("scheduled workouts alias each other's sets")
	}
}

func TestScheduleWorkoutsFromPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	client, _ := f.addClient("Ann", "ann@example.com")
	plan := seedPlan(t, f)

	got, err := f.planSvc.ScheduleWorkouts(ctx, "t1", ScheduleRequest{
		ClientID:  client.ID,
		PlanID:    plan.ID,
		StartDate: f.clock.Now(),
	})
	if err != nil {
		t.Fatalf("ScheduleWorkouts failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Push Day - Ann" || got[0].Exercises[0].Sets[0].Weight != 60 {
		t.Errorf("unexpected schedule: %+v", got)
	}
}

func TestScheduleWorkoutsErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	client, _ := f.addClient("Ann", "ann@example.com")
	monday := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  ScheduleRequest
		want error
	}{
		{"unknown client", ScheduleRequest{ClientID: "ghost", PlanName: "P", ExerciseIDs: []string{"squat"}, StartDate: monday}, ErrUserNotFound},
		{"no exercises", ScheduleRequest{ClientID: client.ID, PlanName: "P", StartDate: monday}, ErrValidation},
		{"no name", ScheduleRequest{ClientID: client.ID, ExerciseIDs: []string{"squat"}, StartDate: monday}, ErrValidation},
		{"no weekdays", ScheduleRequest{ClientID: client.ID, PlanName: "P", ExerciseIDs: []string{"squat"},
			StartDate: monday, Recurring: true, EndDate: monday.AddDate(0, 0, 7)}, ErrValidation},
		{"no matching dates", ScheduleRequest{ClientID: client.ID, PlanName: "P", ExerciseIDs: []string{"squat"},
			StartDate: monday, Recurring: true, EndDate: monday.AddDate(0, 0, 1), Weekdays: []int{5}}, ErrValidation},
		{"unknown exercise", ScheduleRequest{ClientID: client.ID, PlanName: "P", ExerciseIDs: []string{"moon-walk"}, StartDate: monday}, ErrUnknownExercise},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if _, err := f.planSvc.ScheduleWorkouts(ctx, "t1", test.req); !errors.Is(err, test.want) {
				t.Errorf("expected %v, got %v", test.want, err)
			}
		})
	}

	history, _ := f.sessions.History(ctx, client.ID)
	if len(history) != 0 {
		t.Errorf("failed schedules must not write workouts, got %d", len(history))
	}
}
