// Package tiered layers a durable primary store over the process-local cache.
//
// Every successful primary call is mirrored into the cache. When the primary
// is unreachable the Policy decides whether the call is served by the cache
// or fails with repository.ErrConnectionFailed. Collections served from the
// cache come back with repository.ErrStale; a collection the cache never saw
// fails with ErrConnectionFailed rather than reading as empty.
package tiered

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/repository"
	"alcyxob/coachtrack/internal/repository/memory"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Policy says what to do when the primary store cannot be reached.
type Policy struct {
	// ReadFallback serves reads from the cache.
	ReadFallback bool
	// WriteFallback applies writes to the cache only. Off means the caller sees
	// ErrConnectionFailed and is expected to retry.
	WriteFallback bool
}

type Store struct {
	primary  repository.Stores
	cache    *memory.Store
	policy   Policy
	degraded atomic.Bool
}

func New(primary repository.Stores, cache *memory.Store, policy Policy) *Store {
	return &Store{primary: primary, cache: cache, policy: policy}
}

// Stores exposes the tiered store through the repository.Stores bundle.
func (s *Store) Stores() repository.Stores {
	return repository.Stores{
		Clients:     clients{s},
		Invitations: invitations{s},
		Collections: collections{s},
	}
}

// Degraded reports whether the last primary call failed to connect.
func (s *Store) Degraded() bool {
	return s.degraded.Load()
}

var collectionKeys = []string{repository.KeyWorkouts, repository.KeyWorkoutPlans}

// Warm copies the primary's clients, invitations and collections into the cache.
func (s *Store) Warm(ctx context.Context) error {
	users, err := s.primary.Clients.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("warm clients: %w", err)
	}
	invs, err := s.primary.Invitations.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("warm invitations: %w", err)
	}
	_ = s.cacheClients().ReplaceAll(ctx, users)
	_ = s.cacheInvitations().ReplaceAll(ctx, invs)
	for _, key := range collectionKeys {
		data, err := s.primary.Collections.Load(ctx, key)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			continue
		case err != nil:
			return fmt.Errorf("warm %s: %w", key, err)
		}
		_ = s.cache.Save(ctx, key, data)
	}
	s.degraded.Store(false)
	return nil
}

// unavailable reports whether err means the primary could not serve the call,
// as opposed to a definitive answer like not-found or conflict.
func unavailable(err error) bool {
	return err != nil &&
		!errors.Is(err, repository.ErrNotFound) &&
		!errors.Is(err, repository.ErrConflict)
}

// observe records the outcome of a primary call and reports whether the
// caller should fall back.
func (s *Store) observe(op string, err error, allowed bool) (fallback bool, out error) {
	if !unavailable(err) {
		s.degraded.Store(false)
		return false, err
	}
	s.degraded.Store(true)
	if allowed {
		slog.Warn("primary_store_unavailable", "op", op, "fallback", "cache", "error", err)
		return true, nil
	}
	slog.Error("primary_store_unavailable", "op", op, "error", err)
	return false, fmt.Errorf("%w: %s: %v", repository.ErrConnectionFailed, op, err)
}

func (s *Store) cacheClients() memory.Clients {
	return memory.Clients{Store: s.cache}
}

func (s *Store) cacheInvitations() memory.Invitations {
	return memory.Invitations{Store: s.cache}
}

type clients struct{ s *Store }

func (c clients) GetAll(ctx context.Context) ([]domain.User, error) {
	users, err := c.s.primary.Clients.GetAll(ctx)
	if fb, err := c.s.observe("clients.getAll", err, c.s.policy.ReadFallback); fb {
		return c.s.cacheClients().GetAll(ctx)
	} else if err != nil {
		return nil, err
	}
	_ = c.s.cacheClients().ReplaceAll(ctx, users)
	return users, nil
}

func (c clients) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := c.s.primary.Clients.GetByID(ctx, id)
	if fb, err := c.s.observe("clients.getByID", err, c.s.policy.ReadFallback); fb {
		return c.s.cacheClients().GetByID(ctx, id)
	} else if err != nil {
		return nil, err
	}
	c.s.cacheClients().Put(ctx, user)
	return user, nil
}

func (c clients) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := c.s.primary.Clients.GetByEmail(ctx, email)
	if fb, err := c.s.observe("clients.getByEmail", err, c.s.policy.ReadFallback); fb {
		return c.s.cacheClients().GetByEmail(ctx, email)
	} else if err != nil {
		return nil, err
	}
	c.s.cacheClients().Put(ctx, user)
	return user, nil
}

func (c clients) Create(ctx context.Context, user *domain.User) error {
	err := c.s.primary.Clients.Create(ctx, user)
	if fb, err := c.s.observe("clients.create", err, c.s.policy.WriteFallback); fb {
		return c.s.cacheClients().Create(ctx, user)
	} else if err != nil {
		return err
	}
	c.s.cacheClients().Put(ctx, user)
	return nil
}

func (c clients) Update(ctx context.Context, user *domain.User) error {
	err := c.s.primary.Clients.Update(ctx, user)
	if fb, err := c.s.observe("clients.update", err, c.s.policy.WriteFallback); fb {
		return c.s.cacheClients().Update(ctx, user)
	} else if err != nil {
		return err
	}
	c.s.cacheClients().Put(ctx, user)
	return nil
}

func (c clients) UpdateStats(ctx context.Context, id string, stats domain.UserStats) error {
	err := c.s.primary.Clients.UpdateStats(ctx, id, stats)
	if fb, err := c.s.observe("clients.updateStats", err, c.s.policy.WriteFallback); fb {
		return c.s.cacheClients().UpdateStats(ctx, id, stats)
	} else if err != nil {
		return err
	}
	_ = c.s.cacheClients().UpdateStats(ctx, id, stats)
	return nil
}

func (c clients) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := c.s.primary.Clients.Delete(ctx, id)
	if fb, err := c.s.observe("clients.delete", err, c.s.policy.WriteFallback); fb {
		return c.s.cacheClients().Delete(ctx, id)
	} else if err != nil {
		return false, err
	}
	_, _ = c.s.cacheClients().Delete(ctx, id)
	return removed, nil
}

type invitations struct{ s *Store }

func (i invitations) GetAll(ctx context.Context) ([]domain.Invitation, error) {
	invs, err := i.s.primary.Invitations.GetAll(ctx)
	if fb, err := i.s.observe("invitations.getAll", err, i.s.policy.ReadFallback); fb {
		return i.s.cacheInvitations().GetAll(ctx)
	} else if err != nil {
		return nil, err
	}
	_ = i.s.cacheInvitations().ReplaceAll(ctx, invs)
	return invs, nil
}

func (i invitations) Create(ctx context.Context, inv *domain.Invitation) error {
	err := i.s.primary.Invitations.Create(ctx, inv)
	if fb, err := i.s.observe("invitations.create", err, i.s.policy.WriteFallback); fb {
		return i.s.cacheInvitations().Create(ctx, inv)
	} else if err != nil {
		return err
	}
	_ = i.s.cacheInvitations().Create(ctx, inv)
	return nil
}

func (i invitations) Remove(ctx context.Context, code string) (bool, error) {
	removed, err := i.s.primary.Invitations.Remove(ctx, code)
	if fb, err := i.s.observe("invitations.remove", err, i.s.policy.WriteFallback); fb {
		return i.s.cacheInvitations().Remove(ctx, code)
	} else if err != nil {
		return false, err
	}
	_, _ = i.s.cacheInvitations().Remove(ctx, code)
	return removed, nil
}

type collections struct{ s *Store }

func (c collections) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := c.s.primary.Collections.Load(ctx, key)
	if fb, err := c.s.observe("collections.load", err, c.s.policy.ReadFallback); fb {
		cached, cerr := c.s.cache.Load(ctx, key)
		if errors.Is(cerr, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: collections.load: %s not cached", repository.ErrConnectionFailed, key)
		}
		if cerr != nil {
			return nil, cerr
		}
		return cached, repository.ErrStale
	} else if err != nil {
		return nil, err
	}
	_ = c.s.cache.Save(ctx, key, data)
	return data, nil
}

func (c collections) Save(ctx context.Context, key string, data []byte) error {
	err := c.s.primary.Collections.Save(ctx, key, data)
	if fb, err := c.s.observe("collections.save", err, c.s.policy.WriteFallback); fb {
		return c.s.cache.Save(ctx, key, data)
	} else if err != nil {
		return err
	}
	_ = c.s.cache.Save(ctx, key, data)
	return nil
}
