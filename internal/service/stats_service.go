package service

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/repository"
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"
)

// StatsService keeps UserStats in line with the workout history.
type StatsService interface {
	Refresh(ctx context.Context, userID string) error
	RefreshAll(ctx context.Context) error
}

type statsService struct {
	clients  repository.ClientStore
	workouts *WorkoutLog
	now      func() time.Time
}

func NewStatsService(clients repository.ClientStore, workouts *WorkoutLog) StatsService {
	return &statsService{clients: clients, workouts: workouts, now: time.Now}
}

// Refresh recomputes and stores one user's stats. Unknown users are skipped.
// Only the stats are written, so a password change that lands meanwhile stays.
func (s *statsService) Refresh(ctx context.Context, userID string) error {
	history, err := s.workouts.ByUser(ctx, userID)
	if err != nil {
		return err
	}
	err = s.clients.UpdateStats(ctx, userID, ComputeStats(history, s.now()))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// RefreshAll recomputes stats for every client and reports all failures together.
func (s *statsService) RefreshAll(ctx context.Context) error {
	users, err := s.clients.GetAll(ctx)
	if err != nil {
		return err
	}
	var errs []error
	refreshed := 0
	for _, u := range users {
		if !u.IsClient() {
			continue
		}
		if err := s.Refresh(ctx, u.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		refreshed++
	}
	slog.Info("stats_refreshed", "users", refreshed, "failed", len(errs))
	return errors.Join(errs...)
}

// ComputeStats derives stats from the completed workouts in history. Streaks
// count consecutive calendar days with at least one completed workout; the
// current streak must reach today or yesterday relative to now.
func ComputeStats(history []domain.Workout, now time.Time) domain.UserStats {
	stats := domain.NewUserStats()
	days := map[time.Time]bool{}

	for _, w := range history {
		if !w.Completed {
			continue
		}
		stats.TotalWorkouts++
		stats.TotalVolume += w.Volume()
		days[calendarDay(w.Date)] = true
		for _, ex := range w.Exercises {
			for _, set := range ex.Sets {
				if set.Weight > 0 && set.Weight > stats.PersonalRecords[ex.ExerciseID] {
					stats.PersonalRecords[ex.ExerciseID] = set.Weight
				}
			}
		}
	}

	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	run := 0
	for i, d := range sorted {
		if i > 0 && sorted[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > stats.LongestStreak {
			stats.LongestStreak = run
		}
	}

	if n := len(sorted); n > 0 {
		today := calendarDay(now)
		last := sorted[n-1]
		if last.Equal(today) || last.AddDate(0, 0, 1).Equal(today) {
			stats.CurrentStreak = run
		}
	}
	return stats
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
