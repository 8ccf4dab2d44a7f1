package products_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/memstore"
	"github.com/user/serverkit-go/products"
)

func ptr[T any](v T) *T { return &v }

var someone = &auth.Identity{ID: 5, Email: "x@y.com", Role: auth.RoleUser}

func seeded(t *testing.T) products.ProductService {
	t.Helper()
	store := memstore.NewProducts()
	for _, p := range products.DemoCatalogue() {
		_, err := store.Create(context.Background(), p)
		require.NoError(t, err)
	}
	return products.NewProductService(store)
}

func TestProductService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := seeded(t)

	created, err := svc.Create(ctx, someone, products.CreateProductRequest{
		Name: "Desk", Price: ptr(150.0), Category: "furniture", Stock: ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
	assert.Equal(t, 0, created.Stock)

	updated, err := svc.Update(ctx, someone, created.ID, products.UpdateProductRequest{Price: ptr(120.0)})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.Price)
	assert.Equal(t, "Desk", updated.Name, "absent fields keep their value")

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Price, got.Price)

	require.NoError(t, svc.Delete(ctx, someone, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestProductService_MutationsNeedIdentity(t *testing.T) {
	ctx := context.Background()
	svc := seeded(t)

	_, err := svc.Create(ctx, nil, products.CreateProductRequest{Name: "x", Price: ptr(1.0), Category: "c", Stock: ptr(1)})
	assert.ErrorIs(t, err, apperror.ErrAuthMissing)
	_, err = svc.Update(ctx, nil, 1, products.UpdateProductRequest{})
	assert.ErrorIs(t, err, apperror.ErrAuthMissing)
	assert.ErrorIs(t, svc.Delete(ctx, nil, 1), apperror.ErrAuthMissing)
}

func TestProductService_UnknownIDs(t *testing.T) {
	ctx := context.Background()
	svc := seeded(t)

	_, err := svc.Update(ctx, someone, 99, products.UpdateProductRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, someone, 99), apperror.ErrProductNotFound)
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	svc := seeded(t)

	items, total, err := svc.List(ctx, products.Filter{Category: "Books"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Book", items[0].Name)
	assert.Equal(t, 3, total)

	items, _, err = svc.List(ctx, products.Filter{Category: "garden"})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
