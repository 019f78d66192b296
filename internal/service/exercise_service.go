package service

import (
	"alcyxob/coachtrack/internal/catalog"
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/storage"
	"context"
	"errors"
	"log/slog"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrUnknownCategory  = errors.New("unknown exercise category")
)

// ExerciseService serves the read-only exercise catalog with playable video links.
type ExerciseService interface {
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
	ExercisesByCategory(ctx context.Context, category domain.ExerciseCategory) ([]domain.Exercise, error)
	GetExercise(ctx context.Context, exerciseID string) (*domain.Exercise, error)
	// Has reports whether exerciseID is a catalog exercise.
	Has(exerciseID string) bool
}

type exerciseService struct {
	catalog *catalog.Catalog
	videos  *storage.VideoLinker
}

// NewExerciseService wraps cat. A nil videos linker returns references as stored.
func NewExerciseService(cat *catalog.Catalog, videos *storage.VideoLinker) ExerciseService {
	return &exerciseService{catalog: cat, videos: videos}
}

func (s *exerciseService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.withVideos(ctx, s.catalog.List()), nil
}

func (s *exerciseService) ExercisesByCategory(ctx context.Context, category domain.ExerciseCategory) ([]domain.Exercise, error) {
	if !category.Valid() {
		return nil, ErrUnknownCategory
	}
	return s.withVideos(ctx, s.catalog.ByCategory(category)), nil
}

func (s *exerciseService) GetExercise(ctx context.Context, exerciseID string) (*domain.Exercise, error) {
	ex, err := s.catalog.Get(exerciseID)
	if err != nil {
		if errors.Is(err, catalog.ErrExerciseNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	ex.VideoRef = s.link(ctx, ex)
	return &ex, nil
}

func (s *exerciseService) Has(exerciseID string) bool {
	return s.catalog.Has(exerciseID)
}

func (s *exerciseService) withVideos(ctx context.Context, list []domain.Exercise) []domain.Exercise {
	for i := range list {
		list[i].VideoRef = s.link(ctx, list[i])
	}
	return list
}

// link resolves the video reference. A presign failure drops the video
// rather than failing the listing.
func (s *exerciseService) link(ctx context.Context, ex domain.Exercise) string {
	url, err := s.videos.Link(ctx, ex.VideoRef)
	if err != nil {
		slog.Warn("video_link_failed", "exercise_id", ex.ID, "error", err)
		return ""
	}
	return url
}
