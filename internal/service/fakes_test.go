package service

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/notify"
	"alcyxob/coachtrack/internal/repository"
	"alcyxob/coachtrack/internal/repository/memory"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type fakeCatalog map[string]bool

func (c fakeCatalog) Has(id string) bool { return c[id] }

var testCatalog = fakeCatalog{"bench-press": true, "squat": true, "deadlift": true}

// fakeClock advances only when told to.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// sequentialIDs returns "id-1", "id-2", ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// failingCollections fails every call, like an unreachable store with no cache.
type failingCollections struct{}

func (failingCollections) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, repository.ErrConnectionFailed
}

func (failingCollections) Save(ctx context.Context, key string, data []byte) error {
	return repository.ErrConnectionFailed
}

// saveFailingCollections loads fine but never persists.
type saveFailingCollections struct{ *memory.Store }

func (s saveFailingCollections) Save(ctx context.Context, key string, data []byte) error {
	return errors.New("disk full")
}

// fixture wires every service over one memory store.
type fixture struct {
	store    *memory.Store
	stores   repository.Stores
	workouts *WorkoutLog
	plans    *PlanBook
	clock    *fakeClock
	mailer   *fakeMailer
	revoked  *RevocationList

	sessions *sessionService
	planSvc  *planService
	clients  *clientService
	auth     *authService
	stats    *statsService
}

func newFixture() *fixture {
	f := &fixture{store: memory.New(), clock: newFakeClock(), mailer: &fakeMailer{}, revoked: NewRevocationList()}
	f.stores = f.store.Stores()
	f.workouts = NewWorkoutLog(f.stores.Collections)
	f.plans = NewPlanBook(f.stores.Collections)
	ids := sequentialIDs()

	f.stats = NewStatsService(f.stores.Clients, f.workouts).(*statsService)
	f.stats.now = f.clock.Now

	f.sessions = NewSessionService(f.workouts, f.plans, testCatalog, f.stats).(*sessionService)
	f.sessions.now = f.clock.Now
	f.sessions.newID = ids

	f.planSvc = NewPlanService(f.plans, f.workouts, f.stores.Clients, testCatalog).(*planService)
	f.planSvc.now = f.clock.Now
	f.planSvc.newID = ids

	f.clients = NewClientService(f.stores.Clients, f.stores.Invitations, f.plans, f.workouts, f.revoked, f.mailer,
		WelcomeSettings{AppName: "Coachtrack"}).(*clientService)
	f.clients.now = f.clock.Now
	f.clients.newID = ids

	f.auth = NewAuthService(f.stores.Clients, f.stores.Invitations, f.revoked,
		AuthOptions{JWTSecret: "test-secret", JWTExpiration: time.Hour}).(*authService)
	return f
}

// addClient creates a client directly and returns it with its starter password.
func (f *fixture) addClient(name, email string) (*domain.User, string) {
	user, password, err := f.clients.AddClient(context.Background(), NewClient{Name: name, Email: email})
	if err != nil {
		panic(err)
	}
	return user, password
}
