package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/products"
)

// Products is an in-memory products.ProductStore.
type Products struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*products.Product
	now    func() time.Time
}

var _ products.ProductStore = (*Products)(nil)

// NewProducts returns an empty catalogue.
func NewProducts() *Products {
	return &Products{byID: make(map[int64]*products.Product), now: time.Now}
}

func (s *Products) List(_ context.Context, f products.Filter) ([]*products.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category := strings.ToLower(f.Category)
	out := make([]*products.Product, 0, len(s.byID))
	for _, p := range s.byID {
		if category != "" && !strings.Contains(strings.ToLower(p.Category), category) {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, len(s.byID), nil
}

func (s *Products) Get(_ context.Context, id int64) (*products.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, productNotFound()
	}
	c := *p
	return &c, nil
}

func (s *Products) Create(_ context.Context, p *products.Product) (*products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	stored := *p
	stored.ID = s.nextID
	stored.CreatedAt = s.now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	s.byID[stored.ID] = &stored
	c := stored
	return &c, nil
}

func (s *Products) Update(_ context.Context, p *products.Product) (*products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[p.ID]
	if !ok {
		return nil, productNotFound()
	}
	stored := *p
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = s.now().UTC()
	s.byID[p.ID] = &stored
	c := stored
	return &c, nil
}

func (s *Products) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return productNotFound()
	}
	delete(s.byID, id)
	return nil
}

func productNotFound() error {
	return apperror.NewNotFoundError(apperror.CodeProductNotFound, "product not found")
}
