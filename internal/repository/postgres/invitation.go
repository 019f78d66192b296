package postgres

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/repository"
	"context"
)

type invitationStore struct{ a *Adapter }

func (s *invitationStore) GetAll(ctx context.Context) ([]domain.Invitation, error) {
	rows, err := s.a.pool.Query(ctx, `SELECT code, name, email, created_at FROM invitations ORDER BY created_at DESC, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := []domain.Invitation{}
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(&inv.Code, &inv.Name, &inv.Email, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (s *invitationStore) Create(ctx context.Context, inv *domain.Invitation) error {
	_, err := s.a.pool.Exec(ctx, `INSERT INTO invitations (code, name, email, created_at) VALUES ($1, $2, $3, $4)`,
		inv.Code, inv.Name, inv.Email, inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// Remove deletes the row; only one concurrent caller observes an affected row.
func (s *invitationStore) Remove(ctx context.Context, code string) (bool, error) {
	tag, err := s.a.pool.Exec(ctx, `DELETE FROM invitations WHERE code = $1`, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
