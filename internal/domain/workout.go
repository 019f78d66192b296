package domain

import (
	"time"
)

// WorkoutSet is one set of an exercise inside a workout or plan.
type WorkoutSet struct {
	ID        string  `bson:"id" json:"id"` // Unique within its exercise
	Reps      int     `bson:"reps" json:"reps"`
	Weight    float64 `bson:"weight" json:"weight"` // kg
	Completed bool    `bson:"completed" json:"completed"`
	RestTime  *int    `bson:"restTime,omitempty" json:"restTime,omitempty"` // seconds
}

// Volume is reps times weight for this set.
func (s WorkoutSet) Volume() float64 {
	return float64(s.Reps) * s.Weight
}

// SetUpdate carries the fields of a partial set update; nil fields are left untouched.
type SetUpdate struct {
	Reps      *int     `json:"reps,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	RestTime  *int     `json:"restTime,omitempty"`
}

// Apply merges the non-nil fields of u into s.
func (u SetUpdate) Apply(s *WorkoutSet) {
	if u.Reps != nil {
		s.Reps = *u.Reps
	}
	if u.Weight != nil {
		s.Weight = *u.Weight
	}
	if u.Completed != nil {
		s.Completed = *u.Completed
	}
	if u.RestTime != nil {
		rest := *u.RestTime
		s.RestTime = &rest
	}
}

// Empty reports whether the update changes nothing.
func (u SetUpdate) Empty() bool {
	return u.Reps == nil && u.Weight == nil && u.Completed == nil && u.RestTime == nil
}

// WorkoutExercise references a catalog exercise and holds its ordered sets.
type WorkoutExercise struct {
	ID         string       `bson:"id" json:"id"`
	ExerciseID string       `bson:"exerciseId" json:"exerciseId"` // Catalog id
	Sets       []WorkoutSet `bson:"sets" json:"sets"`
	Notes      string       `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Clone returns a deep copy; the returned sets never alias the receiver's.
func (e WorkoutExercise) Clone() WorkoutExercise {
	out := e
	out.Sets = make([]WorkoutSet, len(e.Sets))
	for i, s := range e.Sets {
		out.Sets[i] = s
		if s.RestTime != nil {
			rest := *s.RestTime
			out.Sets[i].RestTime = &rest
		}
	}
	return out
}

// CloneExercises deep-copies a slice of exercises.
func CloneExercises(in []WorkoutExercise) []WorkoutExercise {
	out := make([]WorkoutExercise, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

// Workout is one training session, either self-started or scheduled by a trainer.
type Workout struct {
	ID         string            `bson:"id" json:"id"`
	Name       string            `bson:"name" json:"name"`
	Date       time.Time         `bson:"date" json:"date"`
	DurationMs *int64            `bson:"durationMs,omitempty" json:"duration,omitempty"` // Set once, on completion
	Exercises  []WorkoutExercise `bson:"exercises" json:"exercises"`
	Completed  bool              `bson:"completed" json:"completed"`
	UserID     string            `bson:"userId" json:"userId"`
	CreatedBy  string            `bson:"createdBy,omitempty" json:"createdBy,omitempty"` // Trainer id for scheduled workouts
}

// Clone returns a deep copy of the workout.
func (w Workout) Clone() Workout {
	out := w
	out.Exercises = CloneExercises(w.Exercises)
	if w.DurationMs != nil {
		d := *w.DurationMs
		out.DurationMs = &d
	}
	return out
}

// Volume sums reps*weight across every set of the workout.
func (w Workout) Volume() float64 {
	var total float64
	for _, e := range w.Exercises {
		for _, s := range e.Sets {
			total += s.Volume()
		}
	}
	return total
}

// Scheduled reports whether the workout was pushed by a trainer.
func (w Workout) Scheduled() bool {
	return w.CreatedBy != ""
}
