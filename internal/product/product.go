package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coopra.org/internal/ids"
)

// Product is one marketplace listing owned by a cooperative. Prices are in
// minor units; no floats.
type Product struct {
	ID            string    `json:"id"`
	CooperativeID string    `json:"cooperative_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         int64     `json:"price"`
	Stock         int       `json:"stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

var (
	ErrNotFound     = errors.New("product: not found")
	ErrInvalidInput = errors.New("product: invalid input")
)

// Store describes persistence for products.
type Store interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (Product, error)
	ListByCooperative(ctx context.Context, cooperativeID string) ([]Product, error)
	Update(ctx context.Context, p *Product) error
}

// StatusChecker gates marketplace writes on the owning cooperative's status.
type StatusChecker interface {
	RequireApproved(ctx context.Context, cooperativeID string) error
}

// Service owns marketplace listings. Listing reads are open; every write
// requires the owning cooperative to be approved.
type Service struct {
	store Store
	gate  StatusChecker
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store Store, gate StatusChecker) *Service {
	return &Service{store: store, gate: gate, now: time.Now}
}

// CreateParams carries the fields needed to list a product.
type CreateParams struct {
	CooperativeID string
	Name          string
	Description   string
	Price         int64
	Stock         int
}

// Create lists a new product for an approved cooperative.
func (s *Service) Create(ctx context.Context, p CreateParams) (Product, error) {
	p.CooperativeID = strings.TrimSpace(p.CooperativeID)
	if p.CooperativeID == "" {
		return Product{}, fmt.Errorf("%w: cooperative_id is required", ErrInvalidInput)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.Price <= 0 {
		return Product{}, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if p.Stock < 0 {
		return Product{}, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	if err := s.gate.RequireApproved(ctx, p.CooperativeID); err != nil {
		return Product{}, err
	}
	now := s.now().UTC()
	prod := Product{
		ID:            ids.New(),
		CooperativeID: p.CooperativeID,
		Name:          p.Name,
		Description:   strings.TrimSpace(p.Description),
		Price:         p.Price,
		Stock:         p.Stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, &prod); err != nil {
		return Product{}, err
	}
	return prod, nil
}

// Get loads a product by id.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// List returns a cooperative's products.
func (s *Service) List(ctx context.Context, cooperativeID string) ([]Product, error) {
	cooperativeID = strings.TrimSpace(cooperativeID)
	if cooperativeID == "" {
		return nil, fmt.Errorf("%w: cooperative_id is required", ErrInvalidInput)
	}
	return s.store.ListByCooperative(ctx, cooperativeID)
}

// UpdateParams carries optional updates to a listing.
type UpdateParams struct {
	Name        *string
	Description *string
	Price       *int64
	Stock       *int
}

// Update modifies a listing for an approved cooperative.
func (s *Service) Update(ctx context.Context, id string, upd UpdateParams) (Product, error) {
	prod, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.gate.RequireApproved(ctx, prod.CooperativeID); err != nil {
		return Product{}, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return Product{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		prod.Name = name
	}
	if upd.Description != nil {
		prod.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Price != nil {
		if *upd.Price <= 0 {
			return Product{}, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
		}
		prod.Price = *upd.Price
	}
	if upd.Stock != nil {
		if *upd.Stock < 0 {
			return Product{}, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
		}
		prod.Stock = *upd.Stock
	}
	prod.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, &prod); err != nil {
		return Product{}, err
	}
	return prod, nil
}
