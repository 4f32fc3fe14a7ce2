package pg

import (
	"context"
	"database/sql"
	"errors"

	"coopra.org/internal/coop"
)

// CoopStore persists cooperatives.
type CoopStore struct {
	s *Store
}

var _ coop.Store = (*CoopStore)(nil)

func (s *Store) Cooperatives() *CoopStore { return &CoopStore{s: s} }

const coopColumns = `id, name, coalesce(registration_no,''), coalesce(region,''), admin_id, status, coalesce(status_reason,''), created_at, updated_at`

func scanCooperative(row interface{ Scan(...any) error }) (coop.Cooperative, error) {
	var c coop.Cooperative
	err := row.Scan(&c.ID, &c.Name, &c.RegistrationNo, &c.Region, &c.AdminID, &c.Status, &c.StatusReason, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (cs *CoopStore) Create(ctx context.Context, c *coop.Cooperative) error {
	_, err := cs.s.db.ExecContext(ctx, `
		insert into cooperatives (id, name, registration_no, region, admin_id, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, nullIfEmpty(c.RegistrationNo), nullIfEmpty(c.Region), c.AdminID, c.Status, c.CreatedAt, c.UpdatedAt)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return coop.ErrInvalidInput
	}
	return err
}

func (cs *CoopStore) Get(ctx context.Context, id string) (coop.Cooperative, error) {
	c, err := scanCooperative(cs.s.db.QueryRowContext(ctx, `
		select `+coopColumns+` from cooperatives where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return coop.Cooperative{}, coop.ErrNotFound
	}
	return c, err
}

func (cs *CoopStore) List(ctx context.Context, status coop.Status) ([]coop.Cooperative, error) {
	query := `select ` + coopColumns + ` from cooperatives`
	args := []any{}
	if status != "" {
		query += ` where status = $1`
		args = append(args, status)
	}
	query += ` order by created_at asc`

	rows, err := cs.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []coop.Cooperative
	for rows.Next() {
		c, err := scanCooperative(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// Transition is a conditional update: it only succeeds when the stored
// status still equals the expected one, which makes concurrent approvals
// of the same cooperative resolve to exactly one winner.
func (cs *CoopStore) Transition(ctx context.Context, id string, from, to coop.Status, reason string) (coop.Cooperative, error) {
	c, err := scanCooperative(cs.s.db.QueryRowContext(ctx, `
		update cooperatives
		set status = $3, status_reason = $4, updated_at = now()
		where id = $1 and status = $2
		returning `+coopColumns+`
	`, id, from, to, nullIfEmpty(reason)))
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish unknown id from a lost race on status.
		var exists bool
		if probeErr := cs.s.db.QueryRowContext(ctx, `select exists(select 1 from cooperatives where id = $1)`, id).Scan(&exists); probeErr != nil {
			return coop.Cooperative{}, probeErr
		}
		if !exists {
			return coop.Cooperative{}, coop.ErrNotFound
		}
		return coop.Cooperative{}, coop.ErrInvalidTransition
	}
	return c, err
}
