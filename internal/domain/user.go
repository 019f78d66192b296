package domain

import (
	"time"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTrainer, RoleClient, RoleAdmin:
		return true
	}
	return false
}

// User represents a user in the system (client, trainer or admin).
type User struct {
	ID       string    `bson:"_id" json:"id"`
	Name     string    `bson:"name" json:"name"`
	Email    string    `bson:"email" json:"email"` // Unique across the registry
	Phone    string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role     Role      `bson:"role" json:"role"`
	JoinDate time.Time `bson:"joinDate" json:"joinDate"`

	// PasswordHash is the bcrypt hash of the current credential. For a fresh
	// client it is the hash of the one-time starter password.
	PasswordHash    string `bson:"passwordHash" json:"-"`
	PasswordChanged bool   `bson:"passwordChanged" json:"passwordChanged"`

	Stats     UserStats `bson:"stats" json:"stats"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// CanManageClients is the route-guard rule for trainer-only screens.
func (u *User) CanManageClients() bool {
	return CanManageClients(u.Role)
}

// CanManageClients reports whether the role may use trainer-only operations.
func CanManageClients(r Role) bool {
	return r == RoleTrainer || r == RoleAdmin
}

// UserStats aggregates a user's completed workout history.
type UserStats struct {
	TotalWorkouts   int                `bson:"totalWorkouts" json:"totalWorkouts"`
	TotalVolume     float64            `bson:"totalVolume" json:"totalVolume"` // sum of reps*weight in kg
	CurrentStreak   int                `bson:"currentStreak" json:"currentStreak"`
	LongestStreak   int                `bson:"longestStreak" json:"longestStreak"`
	PersonalRecords map[string]float64 `bson:"personalRecords" json:"personalRecords"` // exercise id -> best weight
}

// NewUserStats returns all-zero stats with an initialized record map.
func NewUserStats() UserStats {
	return UserStats{PersonalRecords: map[string]float64{}}
}

// Invitation is a consumable code that provisions exactly one client account.
type Invitation struct {
	Code      string    `bson:"_id" json:"code"`
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
