// Package memory is a non-durable, process-local implementation of the
// repository contracts. It backs development runs and the cache tier.
package memory

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store implements every repository contract over in-memory maps.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	order       []string // insertion order of user ids
	invitations map[string]domain.Invitation
	collections map[string][]byte
}

var (
	_ repository.ClientStore     = Clients{}
	_ repository.InvitationStore = Invitations{}
	_ repository.CollectionStore = (*Store)(nil)
)

func New() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		invitations: make(map[string]domain.Invitation),
		collections: make(map[string][]byte),
	}
}

// Stores exposes s through the repository.Stores bundle.
func (s *Store) Stores() repository.Stores {
	return repository.Stores{
		Clients:     Clients{s},
		Invitations: Invitations{s},
		Collections: s,
	}
}

// Clients adapts Store to repository.ClientStore.
type Clients struct{ *Store }

// Invitations adapts Store to repository.InvitationStore.
type Invitations struct{ *Store }

// --- users ---

func (c Clients) GetAll(ctx context.Context) ([]domain.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.User, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, copyUser(c.users[id]))
	}
	return out, nil
}

func (c Clients) GetByID(ctx context.Context, id string) (*domain.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := copyUser(u)
	return &cp, nil
}

func (c Clients) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.order {
		if strings.EqualFold(c.users[id].Email, email) {
			cp := copyUser(c.users[id])
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (c Clients) Create(ctx context.Context, user *domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.users[user.ID]; exists {
		return repository.ErrConflict
	}
	for _, u := range c.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrConflict
		}
	}
	c.users[user.ID] = copyUser(*user)
	c.order = append(c.order, user.ID)
	return nil
}

func (c Clients) Update(ctx context.Context, user *domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	c.users[user.ID] = copyUser(*user)
	return nil
}

func (c Clients) UpdateStats(ctx context.Context, id string, stats domain.UserStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Stats = stats
	u.UpdatedAt = time.Now().UTC()
	c.users[id] = copyUser(u)
	return nil
}

func (c Clients) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[id]; !ok {
		return false, nil
	}
	delete(c.users, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Put inserts user or replaces the stored copy with the same ID.
func (c Clients) Put(ctx context.Context, user *domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[user.ID]; !ok {
		c.order = append(c.order, user.ID)
	}
	c.users[user.ID] = copyUser(*user)
}

// ReplaceAll swaps the whole user set; used to refresh the cache tier.
func (c Clients) ReplaceAll(ctx context.Context, users []domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = make(map[string]domain.User, len(users))
	c.order = make([]string, 0, len(users))
	for _, u := range users {
		if _, dup := c.users[u.ID]; dup {
			continue
		}
		c.users[u.ID] = copyUser(u)
		c.order = append(c.order, u.ID)
	}
	return nil
}

// --- invitations ---

func (i Invitations) GetAll(ctx context.Context) ([]domain.Invitation, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]domain.Invitation, 0, len(i.invitations))
	for _, inv := range i.invitations {
		out = append(out, inv)
	}
	// Newest first, matching the order trainers see in the UI.
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].Code < out[b].Code
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

func (i Invitations) Create(ctx context.Context, inv *domain.Invitation) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, exists := i.invitations[inv.Code]; exists {
		return repository.ErrConflict
	}
	i.invitations[inv.Code] = *inv
	return nil
}

func (i Invitations) Remove(ctx context.Context, code string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.invitations[code]; !ok {
		return false, nil
	}
	delete(i.invitations, code)
	return true, nil
}

// ReplaceAll swaps the whole invitation set; used to refresh the cache tier.
func (i Invitations) ReplaceAll(ctx context.Context, invs []domain.Invitation) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.invitations = make(map[string]domain.Invitation, len(invs))
	for _, inv := range invs {
		i.invitations[inv.Code] = inv
	}
	return nil
}

// --- collections ---

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[key] = append([]byte(nil), data...)
	return nil
}

func copyUser(u domain.User) domain.User {
	if u.Stats.PersonalRecords != nil {
		records := make(map[string]float64, len(u.Stats.PersonalRecords))
		for k, v := range u.Stats.PersonalRecords {
			records[k] = v
		}
		u.Stats.PersonalRecords = records
	}
	return u
}
