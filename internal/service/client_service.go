package service

import (
	"alcyxob/coachtrack/internal/credential"
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/notify"
	"alcyxob/coachtrack/internal/repository"
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const invitationCodeAttempts = 5

// NewClient is the trainer's input for creating a client account.
type NewClient struct {
	Name  string
	Email string
	Phone string
	// StarterPassword is generated when empty.
	StarterPassword string
}

// WelcomeSettings fills the app-specific parts of the welcome email.
type WelcomeSettings struct {
	AppName  string
	LoginURL string
}

// ClientService is the client registry and credential issuance.
type ClientService interface {
	// AddClient creates a client and returns it together with the plain starter
	// password. The password is not stored and cannot be retrieved later.
	AddClient(ctx context.Context, input NewClient) (*domain.User, string, error)
	ListClients(ctx context.Context) ([]domain.User, error)
	GetClient(ctx context.Context, clientID string) (*domain.User, error)
	// RemoveClient deletes the account. Its workouts stay in history and its
	// plan assignments are dropped.
	RemoveClient(ctx context.Context, clientID string) error
	ClientHistory(ctx context.Context, clientID string) ([]domain.Workout, error)

	InviteClient(ctx context.Context, name, email string) (*domain.Invitation, error)
	ListInvitations(ctx context.Context) ([]domain.Invitation, error)

	GenerateStarterPassword() (string, error)
}

type clientService struct {
	clients     repository.ClientStore
	invitations repository.InvitationStore
	plans       *PlanBook
	workouts    *WorkoutLog
	revoked     *RevocationList
	mailer      notify.Mailer
	welcome     WelcomeSettings

	now   func() time.Time
	newID func() string
}

func NewClientService(
	clients repository.ClientStore,
	invitations repository.InvitationStore,
	plans *PlanBook,
	workouts *WorkoutLog,
	revoked *RevocationList,
	mailer notify.Mailer,
	welcome WelcomeSettings,
) ClientService {
	if mailer == nil {
		mailer = notify.LogMailer{}
	}
	if revoked == nil {
		revoked = NewRevocationList()
	}
	return &clientService{
		clients:     clients,
		invitations: invitations,
		plans:       plans,
		workouts:    workouts,
		revoked:     revoked,
		mailer:      mailer,
		welcome:     welcome,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *clientService) AddClient(ctx context.Context, input NewClient) (*domain.User, string, error) {
	// 1. Validate input
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	phone := strings.TrimSpace(input.Phone)
	if name == "" {
		return nil, "", validationErrorf("name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}

	password := input.StarterPassword
	if password == "" {
		generated, err := credential.StarterPassword()
		if err != nil {
			return nil, "", err
		}
		password = generated
	} else if err := credential.ValidateNew(password); err != nil {
		return nil, "", validationErrorf("%v", err)
	}

	// 2. Reject duplicates before touching the store
	existing, err := s.clients.GetAll(ctx)
	if err != nil {
		return nil, "", err
	}
	for _, u := range existing {
		if strings.EqualFold(u.Email, email) {
			return nil, "", ErrClientEmailExists
		}
	}
	if phone != "" {
		for _, u := range existing {
			if u.Phone == phone {
				return nil, "", ErrClientPhoneExists
			}
		}
	}

	// 3. Create the account
	hash, err := credential.Hash(password)
	if err != nil {
		return nil, "", err
	}
	now := s.now().UTC()
	user := &domain.User{
		ID:              s.newID(),
		Name:            name,
		Email:           email,
		Phone:           phone,
		Role:            domain.RoleClient,
		JoinDate:        now,
		PasswordHash:    hash,
		PasswordChanged: false,
		Stats:           domain.NewUserStats(),
		UpdatedAt:       now,
	}
	if err := s.clients.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, "", ErrClientEmailExists
		}
		return nil, "", err
	}
	slog.Info("client_created", "client_id", user.ID)

	// 4. Welcome email; delivery problems never fail the creation
	s.sendWelcome(ctx, user, password)
	return user, password, nil
}

func (s *clientService) sendWelcome(ctx context.Context, user *domain.User, password string) {
	msg, err := notify.ComposeWelcome(notify.Welcome{
		AppName:         s.welcome.AppName,
		LoginURL:        s.welcome.LoginURL,
		Name:            user.Name,
		Email:           user.Email,
		StarterPassword: password,
	})
	if err != nil {
		slog.Error("welcome_compose_failed", "client_id", user.ID, "error", err)
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Error("welcome_send_failed", "client_id", user.ID, "error", err)
	}
}

func (s *clientService) ListClients(ctx context.Context) ([]domain.User, error) {
	users, err := s.clients.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.User{}
	for _, u := range users {
		if u.IsClient() {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *clientService) GetClient(ctx context.Context, clientID string) (*domain.User, error) {
	user, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsClient() {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *clientService) RemoveClient(ctx context.Context, clientID string) error {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return err
	}
	removed, err := s.clients.Delete(ctx, clientID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrUserNotFound
	}
	s.revoked.RevokeUser(clientID)
	if err := s.plans.Unassign(ctx, clientID); err != nil {
		slog.Error("plan_unassign_failed", "client_id", clientID, "error", err)
	}
	slog.Info("client_removed", "client_id", clientID)
	return nil
}

func (s *clientService) ClientHistory(ctx context.Context, clientID string) ([]domain.Workout, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.workouts.ByUser(ctx, clientID)
}

func (s *clientService) InviteClient(ctx context.Context, name, email string) (*domain.Invitation, error) {
	email = normalizeEmail(email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}

	for attempt := 0; attempt < invitationCodeAttempts; attempt++ {
		code, err := credential.InvitationCode()
		if err != nil {
			return nil, err
		}
		inv := &domain.Invitation{
			Code:      code,
			Name:      strings.TrimSpace(name),
			Email:     email,
			CreatedAt: s.now().UTC(),
		}
		err = s.invitations.Create(ctx, inv)
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		slog.Info("invitation_created", "code", inv.Code)
		return inv, nil
	}
	return nil, errors.New("could not allocate a unique invitation code")
}

func (s *clientService) ListInvitations(ctx context.Context) ([]domain.Invitation, error) {
	return s.invitations.GetAll(ctx)
}

func (s *clientService) GenerateStarterPassword() (string, error) {
	return credential.StarterPassword()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return validationErrorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationErrorf("email %q is malformed", email)
	}
	return nil
}
