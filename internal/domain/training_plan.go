// internal/domain/training_plan.go
package domain

// ScheduleHint suggests when a plan is meant to be trained.
type ScheduleHint struct {
	DayOfWeek int    `bson:"dayOfWeek" json:"dayOfWeek"` // 0 (Sunday) - 6 (Saturday)
	Time      string `bson:"time,omitempty" json:"time,omitempty"`
}

// WorkoutPlan is a reusable exercise/set template created by a trainer.
type WorkoutPlan struct {
	ID          string            `bson:"id" json:"id"`
	Name        string            `bson:"name" json:"name"`
	Description string            `bson:"description,omitempty" json:"description,omitempty"`
	Exercises   []WorkoutExercise `bson:"exercises" json:"exercises"`
	CreatedBy   string            `bson:"createdBy" json:"createdBy"` // Trainer id
	AssignedTo  []string          `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Schedule    []ScheduleHint    `bson:"schedule,omitempty" json:"schedule,omitempty"`
}

// Clone returns a deep copy of the plan.
func (p WorkoutPlan) Clone() WorkoutPlan {
	out := p
	out.Exercises = CloneExercises(p.Exercises)
	if p.AssignedTo != nil {
		out.AssignedTo = append([]string(nil), p.AssignedTo...)
	}
	if p.Schedule != nil {
		out.Schedule = append([]ScheduleHint(nil), p.Schedule...)
	}
	return out
}

// IsAssignedTo reports whether userID is among the plan's assignees.
func (p WorkoutPlan) IsAssignedTo(userID string) bool {
	for _, id := range p.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}
