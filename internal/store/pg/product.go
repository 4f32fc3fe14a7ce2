package pg

import (
	"context"
	"database/sql"
	"errors"

	"coopra.org/internal/product"
)

// ProductStore persists marketplace listings.
type ProductStore struct {
	s *Store
}

var _ product.Store = (*ProductStore)(nil)

func (s *Store) Products() *ProductStore { return &ProductStore{s: s} }

const productColumns = `id, cooperative_id, name, coalesce(description,''), price, stock, created_at, updated_at`

func scanProduct(row rowScanner) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.CooperativeID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (ps *ProductStore) Create(ctx context.Context, p *product.Product) error {
	_, err := ps.s.db.ExecContext(ctx, `
		insert into products (id, cooperative_id, name, description, price, stock, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.CooperativeID, p.Name, nullIfEmpty(p.Description), p.Price, p.Stock, p.CreatedAt, p.UpdatedAt)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
		return product.ErrInvalidInput
	}
	return err
}

func (ps *ProductStore) Get(ctx context.Context, id string) (product.Product, error) {
	p, err := scanProduct(ps.s.db.QueryRowContext(ctx, `
		select `+productColumns+` from products where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return product.Product{}, product.ErrNotFound
	}
	return p, err
}

func (ps *ProductStore) ListByCooperative(ctx context.Context, cooperativeID string) ([]product.Product, error) {
	rows, err := ps.s.db.QueryContext(ctx, `
		select `+productColumns+` from products where cooperative_id = $1 order by created_at asc
	`, cooperativeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (ps *ProductStore) Update(ctx context.Context, p *product.Product) error {
	res, err := ps.s.db.ExecContext(ctx, `
		update products set name = $2, description = $3, price = $4, stock = $5, updated_at = $6
		where id = $1
	`, p.ID, p.Name, nullIfEmpty(p.Description), p.Price, p.Stock, p.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return product.ErrNotFound
	}
	return nil
}
