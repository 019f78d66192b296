package service

import (
	"alcyxob/coachtrack/internal/credential"
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const tokenIssuer = "coachtrack"

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID          string      `json:"uid"`
	Role            domain.Role `json:"role"`
	PasswordChanged bool        `json:"pwc"`
	jwt.RegisteredClaims
}

// AuthService is the login gate and token issuer.
type AuthService interface {
	// Login checks a registered user's password, or provisions a client from a
	// matching invitation. Unknown users get ErrUserNotInvited.
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// ParseToken validates signature, expiry and revocation.
	ParseToken(token string) (*Claims, error)
	Logout(claims *Claims)
	Me(ctx context.Context, userID string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next, confirm string) (token string, user *domain.User, err error)
	// SwitchRole flips client and trainer for demos. Disabled outside dev mode.
	SwitchRole(ctx context.Context, userID string) (token string, user *domain.User, err error)
	// EnsureTrainer creates a trainer account unless the email is taken.
	EnsureTrainer(ctx context.Context, name, email, password string) error
}

type AuthOptions struct {
	JWTSecret     string
	JWTExpiration time.Duration
	DevMode       bool
}

type authService struct {
	clients     repository.ClientStore
	invitations repository.InvitationStore
	revoked     *RevocationList
	opts        AuthOptions

	now   func() time.Time
	newID func() string
}

// NewAuthService creates a new instance of authService.
func NewAuthService(clients repository.ClientStore, invitations repository.InvitationStore, revoked *RevocationList, opts AuthOptions) AuthService {
	if opts.JWTSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if opts.JWTExpiration <= 0 {
		opts.JWTExpiration = time.Hour * 1 // Default to 1 hour if not set properly
	}
	if revoked == nil {
		revoked = NewRevocationList()
	}
	return &authService{
		clients:     clients,
		invitations: invitations,
		revoked:     revoked,
		opts:        opts,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	// 1. Basic Input Validation
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, validationErrorf("email and password are required")
	}

	// 2. Registered user: the password must match
	user, err := s.clients.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !credential.Matches(user.PasswordHash, password) {
			slog.Info("login_rejected", "reason", "invalid_password", "user_id", user.ID)
			return "", nil, ErrInvalidPassword
		}
		return s.issue(user, "login")
	case !errors.Is(err, repository.ErrNotFound):
		return "", nil, err
	}

	// 3. Unknown user: an invitation may provision the account
	user, err = s.redeemInvitation(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	return s.issue(user, "invitation")
}

// redeemInvitation finds an invitation matching email, or whose code equals
// password, and turns it into a client account.
func (s *authService) redeemInvitation(ctx context.Context, email, password string) (*domain.User, error) {
	invs, err := s.invitations.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var match *domain.Invitation
	for i := range invs {
		if (invs[i].Email != "" && strings.EqualFold(invs[i].Email, email)) || invs[i].Code == password {
			match = &invs[i]
			break
		}
	}
	if match == nil {
		slog.Info("login_rejected", "reason", "not_invited")
		return nil, ErrUserNotInvited
	}

	// Removing the invitation is the claim; only one caller can win it.
	claimed, err := s.invitations.Remove(ctx, match.Code)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrUserNotInvited
	}

	hash, err := credential.Hash(password)
	if err != nil {
		s.restoreInvitation(ctx, match)
		return nil, err
	}
	name := match.Name
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	now := s.now().UTC()
	user := &domain.User{
		ID:              s.newID(),
		Name:            name,
		Email:           email,
		Role:            domain.RoleClient,
		JoinDate:        now,
		PasswordHash:    hash,
		PasswordChanged: false,
		Stats:           domain.NewUserStats(),
		UpdatedAt:       now,
	}
	if err := s.clients.Create(ctx, user); err != nil {
		s.restoreInvitation(ctx, match)
		return nil, err
	}
	slog.Info("invitation_redeemed", "code", match.Code, "client_id", user.ID)
	return user, nil
}

// restoreInvitation puts a claimed invitation back after account creation failed.
func (s *authService) restoreInvitation(ctx context.Context, inv *domain.Invitation) {
	if err := s.invitations.Create(ctx, inv); err != nil {
		slog.Error("invitation_restore_failed", "code", inv.Code, "error", err)
	}
}

func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.opts.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || s.revoked.Revoked(claims.ID) || s.revoked.UserRevoked(claims.UserID) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) Logout(claims *Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	expires := s.now().Add(s.opts.JWTExpiration)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	s.revoked.Revoke(claims.ID, expires)
	slog.Info("logout", "user_id", claims.UserID)
}

func (s *authService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.clients.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, current, next, confirm string) (string, *domain.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if !credential.Matches(user.PasswordHash, current) {
		return "", nil, ErrInvalidPassword
	}
	if err := credential.ValidateNew(next); err != nil {
		return "", nil, validationErrorf("%v", err)
	}
	if next != confirm {
		return "", nil, validationErrorf("passwords do not match")
	}
	if next == current {
		return "", nil, validationErrorf("new password must differ from the current one")
	}

	hash, err := credential.Hash(next)
	if err != nil {
		return "", nil, err
	}
	user.PasswordHash = hash
	user.PasswordChanged = true
	user.UpdatedAt = s.now().UTC()
	if err := s.clients.Update(ctx, user); err != nil {
		return "", nil, err
	}
	slog.Info("password_changed", "user_id", user.ID)
	return s.issue(user, "password_change")
}

func (s *authService) SwitchRole(ctx context.Context, userID string) (string, *domain.User, error) {
	if !s.opts.DevMode {
		return "", nil, ErrRoleSwitchDisabled
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	switch user.Role {
	case domain.RoleClient:
		user.Role = domain.RoleTrainer
	case domain.RoleTrainer:
		user.Role = domain.RoleClient
	default:
		return "", nil, validationErrorf("role %s cannot be switched", user.Role)
	}
	user.UpdatedAt = s.now().UTC()
	if err := s.clients.Update(ctx, user); err != nil {
		return "", nil, err
	}
	slog.Warn("role_switched", "user_id", user.ID, "role", user.Role)
	return s.issue(user, "role_switch")
}

func (s *authService) EnsureTrainer(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if _, err := s.clients.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err := credential.ValidateNew(password); err != nil {
		return validationErrorf("trainer password: %v", err)
	}
	hash, err := credential.Hash(password)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	trainer := &domain.User{
		ID:              s.newID(),
		Name:            name,
		Email:           email,
		Role:            domain.RoleTrainer,
		JoinDate:        now,
		PasswordHash:    hash,
		PasswordChanged: true,
		Stats:           domain.NewUserStats(),
		UpdatedAt:       now,
	}
	if err := s.clients.Create(ctx, trainer); err != nil && !errors.Is(err, repository.ErrConflict) {
		return err
	}
	slog.Info("trainer_seeded", "user_id", trainer.ID)
	return nil
}

// issue signs a token for user.
func (s *authService) issue(user *domain.User, reason string) (string, *domain.User, error) {
	now := s.now()
	claims := &Claims{
		UserID:          user.ID,
		Role:            user.Role,
		PasswordChanged: user.PasswordChanged,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.newID(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.JWTExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	slog.Info("token_issued", "user_id", user.ID, "role", user.Role, "reason", reason)
	return signed, user, nil
}
