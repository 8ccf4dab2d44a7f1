package products

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/logging"
)

// ProductService defines the operations behind the /api/products routes.
type ProductService interface {
	List(ctx context.Context, f Filter) ([]*Product, int, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, actor *auth.Identity, req CreateProductRequest) (*Product, error)
	Update(ctx context.Context, actor *auth.Identity, id int64, req UpdateProductRequest) (*Product, error)
	Delete(ctx context.Context, actor *auth.Identity, id int64) error
}

type productServiceImpl struct {
	store ProductStore
}

// NewProductService creates a ProductService backed by store.
func NewProductService(store ProductStore) ProductService {
	return &productServiceImpl{store: store}
}

func (s *productServiceImpl) List(ctx context.Context, f Filter) ([]*Product, int, error) {
	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, wrapStoreError("failed to list products", err)
	}
	if items == nil {
		items = []*Product{}
	}
	return items, total, nil
}

func (s *productServiceImpl) Get(ctx context.Context, id int64) (*Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapStoreError("failed to get product", err)
	}
	return p, nil
}

func (s *productServiceImpl) Create(ctx context.Context, actor *auth.Identity, req CreateProductRequest) (*Product, error) {
	if !auth.CanMutateGlobal(actor) {
		return nil, apperror.NewAuthMissing("authentication required")
	}
	p := &Product{Name: req.Name, Category: req.Category}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}

	created, err := s.store.Create(ctx, p)
	if err != nil {
		return nil, wrapStoreError("failed to create product", err)
	}
	logging.FromContext(ctx).Info("product created",
		zap.Int64("product_id", created.ID), zap.String("name", created.Name), zap.Int64("actor_id", actor.ID))
	return created, nil
}

func (s *productServiceImpl) Update(ctx context.Context, actor *auth.Identity, id int64, req UpdateProductRequest) (*Product, error) {
	if !auth.CanMutateGlobal(actor) {
		return nil, apperror.NewAuthMissing("authentication required")
	}
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapStoreError("failed to get product", err)
	}
	req.Apply(current)

	updated, err := s.store.Update(ctx, current)
	if err != nil {
		return nil, wrapStoreError("failed to update product", err)
	}
	logging.FromContext(ctx).Info("product updated",
		zap.Int64("product_id", updated.ID), zap.Int64("actor_id", actor.ID))
	return updated, nil
}

func (s *productServiceImpl) Delete(ctx context.Context, actor *auth.Identity, id int64) error {
	if !auth.CanMutateGlobal(actor) {
		return apperror.NewAuthMissing("authentication required")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return wrapStoreError("failed to delete product", err)
	}
	logging.FromContext(ctx).Info("product deleted",
		zap.Int64("product_id", id), zap.Int64("actor_id", actor.ID))
	return nil
}

func wrapStoreError(msg string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewDatabaseError(msg, err)
}
