// internal/domain/exercise.go
package domain

// ExerciseCategory groups catalog exercises.
type ExerciseCategory string

const (
	CategoryChest     ExerciseCategory = "chest"
	CategoryBack      ExerciseCategory = "back"
	CategoryLegs      ExerciseCategory = "legs"
	CategoryShoulders ExerciseCategory = "shoulders"
	CategoryArms      ExerciseCategory = "arms"
	CategoryCore      ExerciseCategory = "core"
	CategoryCardio    ExerciseCategory = "cardio"
	CategoryFullBody  ExerciseCategory = "full-body"
)

// Categories lists every category in display order.
var Categories = []ExerciseCategory{
	CategoryChest, CategoryBack, CategoryLegs, CategoryShoulders,
	CategoryArms, CategoryCore, CategoryCardio, CategoryFullBody,
}

func (c ExerciseCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Exercise represents a single exercise definition in the read-only catalog.
type Exercise struct {
	ID           string           `yaml:"id" json:"id"`
	Name         string           `yaml:"name" json:"name"`
	Category     ExerciseCategory `yaml:"category" json:"category"`
	Equipment    string           `yaml:"equipment,omitempty" json:"equipment,omitempty"`
	MuscleGroups []string         `yaml:"muscleGroups" json:"muscleGroups"`
	Instructions string           `yaml:"instructions,omitempty" json:"instructions,omitempty"`
	// VideoRef is an object key in file storage, or an absolute URL.
	VideoRef string `yaml:"videoRef,omitempty" json:"videoRef,omitempty"`
}
