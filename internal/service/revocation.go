package service

import (
	"sync"
	"time"
)

// RevocationList remembers logged-out token ids until the tokens expire on
// their own, and removed users for good. It is process-local.
type RevocationList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // token id -> token expiry
	users   map[string]struct{}
	now     func() time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{
		revoked: make(map[string]time.Time),
		users:   make(map[string]struct{}),
		now:     time.Now,
	}
}

// Revoke marks tokenID as unusable until expiresAt.
func (r *RevocationList) Revoke(tokenID string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, id)
		}
	}
	if expiresAt.After(now) {
		r.revoked[tokenID] = expiresAt
	}
}

// Revoked reports whether tokenID was revoked and has not yet expired.
func (r *RevocationList) Revoked(tokenID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exp, ok := r.revoked[tokenID]
	return ok && exp.After(r.now())
}

// RevokeUser rejects every token of userID, issued or future.
func (r *RevocationList) RevokeUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = struct{}{}
}

// UserRevoked reports whether userID's tokens were revoked wholesale.
func (r *RevocationList) UserRevoked(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userID]
	return ok
}

// Len returns the number of tracked token ids.
func (r *RevocationList) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.revoked)
}
