// Package products implements the product catalogue: a small ownerless
// collection that anyone may read and any authenticated user may change.
package products

import (
	"context"
	"time"
)

// Product is a catalogue entry.
type Product struct {
	ID        int64     `json:"id" example:"1"`
	Name      string    `json:"name" example:"Laptop"`
	Price     float64   `json:"price" example:"999.99"`
	Category  string    `json:"category" example:"electronics"`
	Stock     int       `json:"stock" example:"10"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Filter narrows List. Category matches case-insensitively as a substring;
// Limit <= 0 means no limit.
type Filter struct {
	Category string
	Limit    int
}

// ProductStore persists products. Get, Update and Delete return an error
// matching apperror.ErrProductNotFound for unknown IDs.
type ProductStore interface {
	// List returns the matching products ordered by ID, and the size of the
	// whole catalogue regardless of the filter.
	List(ctx context.Context, f Filter) ([]*Product, int, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id int64) error
}

// CreateProductRequest is the body of POST /api/products.
type CreateProductRequest struct {
	Name     string   `json:"name" validate:"required,max=200" example:"Laptop"`
	Price    *float64 `json:"price" validate:"required,gte=0" example:"999.99"`
	Category string   `json:"category" validate:"required,max=100" example:"electronics"`
	Stock    *int     `json:"stock" validate:"required,gte=0" example:"10"`
}

// UpdateProductRequest is the body of PUT /api/products/{id}. Absent fields
// keep their current value.
type UpdateProductRequest struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200" example:"Laptop Pro"`
	Price    *float64 `json:"price,omitempty" validate:"omitempty,gte=0" example:"1299.99"`
	Category *string  `json:"category,omitempty" validate:"omitempty,min=1,max=100" example:"electronics"`
	Stock    *int     `json:"stock,omitempty" validate:"omitempty,gte=0" example:"5"`
}

// Apply copies the set fields of r onto p.
func (r UpdateProductRequest) Apply(p *Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
}

// ListResponse is returned by GET /api/products.
type ListResponse struct {
	Success bool       `json:"success" example:"true"`
	Data    []*Product `json:"data"`
	Count   int        `json:"count" example:"2"`
	Total   int        `json:"total" example:"3"`
}

// ProductResponse wraps a single product.
type ProductResponse struct {
	Success bool     `json:"success" example:"true"`
	Data    *Product `json:"data"`
	Message string   `json:"message,omitempty" example:"product created"`
}

// MessageResponse is a body-less success.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"product deleted"`
}

// DemoCatalogue is seeded alongside the demo users.
func DemoCatalogue() []*Product {
	return []*Product{
		{Name: "Laptop", Price: 999.99, Category: "electronics", Stock: 10},
		{Name: "Smartphone", Price: 599.99, Category: "electronics", Stock: 25},
		{Name: "Book", Price: 19.99, Category: "books", Stock: 50},
	}
}
