// Package catalog holds the read-only exercise catalog.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"alcyxob/coachtrack/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var builtin []byte

var ErrExerciseNotFound = errors.New("exercise not found in catalog")

// Catalog is an immutable, id-indexed list of exercises. Safe for concurrent use.
type Catalog struct {
	exercises []domain.Exercise
	byID      map[string]int
}

// Builtin parses the catalog shipped with the binary.
func Builtin() (*Catalog, error) {
	return Parse(builtin)
}

// LoadFile parses a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a YAML list of exercises.
func Parse(data []byte) (*Catalog, error) {
	var exercises []domain.Exercise
	if err := yaml.Unmarshal(data, &exercises); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(exercises)
}

// New builds a catalog from exercises, rejecting duplicates and unknown categories.
func New(exercises []domain.Exercise) (*Catalog, error) {
	c := &Catalog{
		exercises: make([]domain.Exercise, 0, len(exercises)),
		byID:      make(map[string]int, len(exercises)),
	}
	for _, ex := range exercises {
		if ex.ID == "" || ex.Name == "" {
			return nil, fmt.Errorf("catalog entry %q: id and name are required", ex.ID)
		}
		if !ex.Category.Valid() {
			return nil, fmt.Errorf("catalog entry %q: unknown category %q", ex.ID, ex.Category)
		}
		if _, dup := c.byID[ex.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", ex.ID)
		}
		ex.MuscleGroups = append([]string(nil), ex.MuscleGroups...)
		c.byID[ex.ID] = len(c.exercises)
		c.exercises = append(c.exercises, ex)
	}
	return c, nil
}

// Get returns a copy of the exercise with the given id.
func (c *Catalog) Get(id string) (domain.Exercise, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Exercise{}, ErrExerciseNotFound
	}
	return copyExercise(c.exercises[i]), nil
}

// Has reports whether id is a catalog exercise.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// List returns copies of all exercises in catalog order.
func (c *Catalog) List() []domain.Exercise {
	out := make([]domain.Exercise, len(c.exercises))
	for i, ex := range c.exercises {
		out[i] = copyExercise(ex)
	}
	return out
}

// ByCategory returns the exercises of one category in catalog order.
func (c *Catalog) ByCategory(cat domain.ExerciseCategory) []domain.Exercise {
	out := []domain.Exercise{}
	for _, ex := range c.exercises {
		if ex.Category == cat {
			out = append(out, copyExercise(ex))
		}
	}
	return out
}

// Grouped returns all exercises keyed by category.
func (c *Catalog) Grouped() map[domain.ExerciseCategory][]domain.Exercise {
	out := make(map[domain.ExerciseCategory][]domain.Exercise, len(domain.Categories))
	for _, cat := range domain.Categories {
		if list := c.ByCategory(cat); len(list) > 0 {
			out[cat] = list
		}
	}
	return out
}

func copyExercise(ex domain.Exercise) domain.Exercise {
	ex.MuscleGroups = append([]string(nil), ex.MuscleGroups...)
	return ex
}
