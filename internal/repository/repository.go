package repository

import (
	"alcyxob/coachtrack/internal/domain"
	"context"
)

// Error constants for repository layer
var (
	ErrNotFound         = RepositoryError("not found")
	ErrConflict         = RepositoryError("conflict")
	ErrConnectionFailed = RepositoryError("connection failed")
	// ErrStale comes with data served from a cache tier while the primary
	// store is unreachable. The data is fine to show but must not be written
	// back as the new durable state.
	ErrStale = RepositoryError("stale data")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Well-known keys for serialized collections.
const (
	KeyWorkouts     = "workouts"
	KeyWorkoutPlans = "workoutPlans"
)

// ClientStore persists user accounts (clients, trainers and admins).
type ClientStore interface {
	GetAll(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts a user whose ID is already set. Returns ErrConflict on a duplicate email.
	Create(ctx context.Context, user *domain.User) error
	// Update replaces the stored user with the same ID. Returns ErrNotFound if absent.
	Update(ctx context.Context, user *domain.User) error
	// UpdateStats overwrites only the stats of the user with id and stamps
	// updatedAt. Returns ErrNotFound if absent.
	UpdateStats(ctx context.Context, id string, stats domain.UserStats) error
	// Delete reports whether a user was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// InvitationStore persists invitation codes.
type InvitationStore interface {
	GetAll(ctx context.Context) ([]domain.Invitation, error)
	// Create returns ErrConflict if the code already exists.
	Create(ctx context.Context, inv *domain.Invitation) error
	// Remove deletes the invitation and reports whether it existed. A true
	// result is the caller's exclusive claim on the invitation.
	Remove(ctx context.Context, code string) (bool, error)
}

// CollectionStore keeps serialized collections under well-known keys.
type CollectionStore interface {
	// Load returns ErrNotFound when nothing was saved under key. A cache-backed
	// store may return data together with ErrStale.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Stores bundles the persistence contracts the services consume.
type Stores struct {
	Clients     ClientStore
	Invitations InvitationStore
	Collections CollectionStore
}
