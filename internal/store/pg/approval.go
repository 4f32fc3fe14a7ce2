package pg

import (
	"context"
	"database/sql"
	"errors"

	"coopra.org/internal/approval"
)

// ApprovalStore persists approval requests and their decisions.
type ApprovalStore struct {
	s *Store
}

var _ approval.Store = (*ApprovalStore)(nil)

func (s *Store) Approvals() *ApprovalStore { return &ApprovalStore{s: s} }

const requestColumns = `id, cooperative_id, type, title, coalesce(description,''), amount, initiator_id, coalesce(initiator_name,''), required_approvals, status, created_at, decided_at`

type rowScanner interface{ Scan(...any) error }

func scanRequest(row rowScanner) (approval.Request, error) {
	var r approval.Request
	var decidedAt sql.NullTime
	err := row.Scan(&r.ID, &r.CooperativeID, &r.Type, &r.Title, &r.Description, &r.Amount,
		&r.InitiatorID, &r.InitiatorName, &r.RequiredApprovals, &r.Status, &r.CreatedAt, &decidedAt)
	if decidedAt.Valid {
		t := decidedAt.Time
		r.DecidedAt = &t
	}
	return r, err
}

func (as *ApprovalStore) Create(ctx context.Context, r *approval.Request) error {
	_, err := as.s.db.ExecContext(ctx, `
		insert into approval_requests
			(id, cooperative_id, type, title, description, amount, initiator_id, initiator_name, required_approvals, status, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.ID, r.CooperativeID, r.Type, r.Title, nullIfEmpty(r.Description), r.Amount,
		r.InitiatorID, nullIfEmpty(r.InitiatorName), r.RequiredApprovals, r.Status, r.CreatedAt)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
		return approval.ErrInvalidInput
	}
	return err
}

func (as *ApprovalStore) Get(ctx context.Context, id string) (approval.Request, error) {
	r, err := scanRequest(as.s.db.QueryRowContext(ctx, `
		select `+requestColumns+` from approval_requests where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return approval.Request{}, approval.ErrNotFound
	}
	if err != nil {
		return approval.Request{}, err
	}
	r.Decisions, err = as.decisionsFor(ctx, as.s.db, id)
	return r, err
}

func (as *ApprovalStore) List(ctx context.Context, filter approval.Filter) ([]approval.Request, error) {
	query := `select ` + requestColumns + ` from approval_requests`
	var (
		conds []string
		args  []any
	)
	if filter.CooperativeID != "" {
		args = append(args, filter.CooperativeID)
		conds = append(conds, `cooperative_id = $1`)
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		if len(args) == 1 {
			conds = append(conds, `status = $1`)
		} else {
			conds = append(conds, `status = $2`)
		}
	}
	for i, c := range conds {
		if i == 0 {
			query += ` where ` + c
		} else {
			query += ` and ` + c
		}
	}
	query += ` order by created_at asc`

	rows, err := as.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []approval.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range res {
		res[i].Decisions, err = as.decisionsFor(ctx, as.s.db, res[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (as *ApprovalStore) decisionsFor(ctx context.Context, q querier, requestID string) ([]approval.Decision, error) {
	rows, err := q.QueryContext(ctx, `
		select id, request_id, reviewer_id, coalesce(reviewer_name,''), coalesce(reviewer_role,''), approved, coalesce(notes,''), created_at
		from approval_decisions
		where request_id = $1
		order by created_at asc, id asc
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []approval.Decision
	for rows.Next() {
		var d approval.Decision
		if err := rows.Scan(&d.ID, &d.RequestID, &d.ReviewerID, &d.ReviewerName, &d.ReviewerRole, &d.Approved, &d.Notes, &d.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// AppendDecision records the decision and re-derives the request status in
// one serializable transaction. The request row is locked first so two
// reviewers deciding at once serialize; a unique index on
// (request_id, reviewer_id) backstops the duplicate check.
func (as *ApprovalStore) AppendDecision(ctx context.Context, requestID string, d approval.Decision) (approval.Request, error) {
	tx, err := as.s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return approval.Request{}, err
	}
	defer func() { _ = tx.Rollback() }()

	r, err := scanRequest(tx.QueryRowContext(ctx, `
		select `+requestColumns+` from approval_requests where id = $1 for update
	`, requestID))
	if errors.Is(err, sql.ErrNoRows) {
		return approval.Request{}, approval.ErrNotFound
	}
	if err != nil {
		return approval.Request{}, err
	}
	if r.Status.Terminal() {
		return approval.Request{}, approval.ErrTerminal
	}

	if _, err := tx.ExecContext(ctx, `
		insert into approval_decisions (id, request_id, reviewer_id, reviewer_name, reviewer_role, approved, notes, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.ID, requestID, d.ReviewerID, nullIfEmpty(d.ReviewerName), nullIfEmpty(d.ReviewerRole), d.Approved, nullIfEmpty(d.Notes), d.CreatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return approval.Request{}, approval.ErrDuplicateDecision
		}
		return approval.Request{}, err
	}

	decisions, err := as.decisionsFor(ctx, tx, requestID)
	if err != nil {
		return approval.Request{}, err
	}

	status := approval.Reduce(r.RequiredApprovals, decisions)
	var decidedAt sql.NullTime
	if status.Terminal() {
		decidedAt = sql.NullTime{Time: d.CreatedAt, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
		update approval_requests set status = $2, decided_at = $3 where id = $1
	`, requestID, status, decidedAt); err != nil {
		return approval.Request{}, err
	}

	if err := tx.Commit(); err != nil {
		return approval.Request{}, err
	}

	r.Status = status
	r.Decisions = decisions
	if decidedAt.Valid {
		t := decidedAt.Time
		r.DecidedAt = &t
	}
	return r, nil
}
