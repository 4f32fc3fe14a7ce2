package pg

import (
	"context"
	"database/sql"
	"errors"

	"coopra.org/internal/member"
)

// MemberStore persists cooperative members.
type MemberStore struct {
	s *Store
}

var _ member.Store = (*MemberStore)(nil)

func (s *Store) Members() *MemberStore { return &MemberStore{s: s} }

const memberColumns = `id, cooperative_id, name, email, role, status, joined_at, updated_at`

func scanMember(row rowScanner) (member.Member, error) {
	var m member.Member
	err := row.Scan(&m.ID, &m.CooperativeID, &m.Name, &m.Email, &m.Role, &m.Status, &m.JoinedAt, &m.UpdatedAt)
	return m, err
}

func (ms *MemberStore) Create(ctx context.Context, m *member.Member) error {
	_, err := ms.s.db.ExecContext(ctx, `
		insert into members (id, cooperative_id, name, email, role, status, joined_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.CooperativeID, m.Name, m.Email, m.Role, m.Status, m.JoinedAt, m.UpdatedAt)
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return member.ErrConflict
		case pgErrForeignKeyViolation:
			return member.ErrInvalidInput
		}
	}
	return err
}

func (ms *MemberStore) Get(ctx context.Context, id string) (member.Member, error) {
	m, err := scanMember(ms.s.db.QueryRowContext(ctx, `
		select `+memberColumns+` from members where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return member.Member{}, member.ErrNotFound
	}
	return m, err
}

func (ms *MemberStore) ListByCooperative(ctx context.Context, cooperativeID string) ([]member.Member, error) {
	rows, err := ms.s.db.QueryContext(ctx, `
		select `+memberColumns+` from members where cooperative_id = $1 order by joined_at asc
	`, cooperativeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []member.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (ms *MemberStore) Update(ctx context.Context, m *member.Member) error {
	res, err := ms.s.db.ExecContext(ctx, `
		update members set name = $2, email = $3, role = $4, status = $5, updated_at = $6
		where id = $1
	`, m.ID, m.Name, m.Email, m.Role, m.Status, m.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return member.ErrNotFound
	}
	return nil
}
