package postgres

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/repository"
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
)

type clientStore struct{ a *Adapter }

const userColumns = `id, name, email, phone, role, join_date, password_hash, password_changed, stats, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var stats []byte
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.Role, &user.JoinDate,
		&user.PasswordHash, &user.PasswordChanged, &stats, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.Stats = domain.NewUserStats()
	if len(stats) > 0 {
		if err := json.Unmarshal(stats, &user.Stats); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *clientStore) GetAll(ctx context.Context) ([]domain.User, error) {
	rows, err := s.a.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY join_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *clientStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(s.a.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *clientStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(s.a.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *clientStore) Create(ctx context.Context, user *domain.User) error {
	stats, err := json.Marshal(user.Stats)
	if err != nil {
		return err
	}
	q := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = s.a.pool.Exec(ctx, q, user.ID, user.Name, user.Email, user.Phone, string(user.Role), user.JoinDate,
		user.PasswordHash, user.PasswordChanged, string(stats), user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (s *clientStore) Update(ctx context.Context, user *domain.User) error {
	stats, err := json.Marshal(user.Stats)
	if err != nil {
		return err
	}
	q := `UPDATE users SET name = $1, email = $2, phone = $3, role = $4, password_hash = $5,
		password_changed = $6, stats = $7, updated_at = $8 WHERE id = $9`
	tag, err := s.a.pool.Exec(ctx, q, user.Name, user.Email, user.Phone, string(user.Role), user.PasswordHash,
		user.PasswordChanged, string(stats), user.UpdatedAt, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *clientStore) UpdateStats(ctx context.Context, id string, stats domain.UserStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	tag, err := s.a.pool.Exec(ctx, `UPDATE users SET stats = $1, updated_at = now() WHERE id = $2`, string(data), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *clientStore) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.a.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
