package order_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/Additional-Code/storefront/internal/database"
	"github.com/Additional-Code/storefront/internal/entity"
	"github.com/Additional-Code/storefront/internal/repository/order"
)

// newTestRepo backs the repository with an in-memory sqlite database so the
// SQL itself is exercised, not a fake. A single connection keeps the
// in-memory database alive for the test's lifetime.
func newTestRepo(t *testing.T) *order.Repository {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.NewCreateTable().Model((*entity.Order)(nil)).Exec(context.Background())
	require.NoError(t, err)

	return order.NewRepository(&database.Connections{Writer: db, Reader: db})
}

func insertOrder(t *testing.T, repo *order.Repository, product string, price float64, at time.Time) *entity.Order {
	t.Helper()
	o := &entity.Order{Product: product, Price: price, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, repo.Insert(context.Background(), o))
	return o
}

func TestRepository_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	created := insertOrder(t, repo, "Laptop", 1299.99, at)
	assert.NotZero(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Laptop", got.Product)
	assert.Equal(t, 1299.99, got.Price)
	assert.True(t, got.CreatedAt.Equal(at))
	assert.True(t, got.UpdatedAt.Equal(at))
}

func TestRepository_GetByID_Absent(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, entity.ErrOrderNotFound)
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empty table yields empty slice", func(t *testing.T) {
		repo := newTestRepo(t)

		orders, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
	})

	t.Run("orders come back most recent first", func(t *testing.T) {
		repo := newTestRepo(t)

		base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		insertOrder(t, repo, "A", 1, base)
		insertOrder(t, repo, "B", 2, base.Add(time.Minute))
		insertOrder(t, repo, "C", 3, base.Add(2*time.Minute))

		orders, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 3)
		assert.Equal(t, "C", orders[0].Product)
		assert.Equal(t, "B", orders[1].Product)
		assert.Equal(t, "A", orders[2].Product)
	})
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	price := func(v float64) *float64 { return &v }
	product := func(v string) *string { return &v }

	t.Run("price only leaves product and created_at alone", func(t *testing.T) {
		repo := newTestRepo(t)

		past := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		created := insertOrder(t, repo, "Laptop", 1299.99, past)

		updated, err := repo.Update(ctx, created.ID, entity.OrderPatch{Price: price(999.99)})
		require.NoError(t, err)
		assert.Equal(t, "Laptop", updated.Product)
		assert.Equal(t, 999.99, updated.Price)
		assert.True(t, updated.CreatedAt.Equal(past))
		assert.True(t, updated.UpdatedAt.After(past))
	})

	t.Run("product only leaves price alone", func(t *testing.T) {
		repo := newTestRepo(t)

		past := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		created := insertOrder(t, repo, "Laptop", 1299.99, past)

		updated, err := repo.Update(ctx, created.ID, entity.OrderPatch{Product: product("Workstation")})
		require.NoError(t, err)
		assert.Equal(t, "Workstation", updated.Product)
		assert.Equal(t, 1299.99, updated.Price)
	})

	t.Run("empty patch still refreshes updated_at", func(t *testing.T) {
		repo := newTestRepo(t)

		past := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		created := insertOrder(t, repo, "Laptop", 1299.99, past)

		updated, err := repo.Update(ctx, created.ID, entity.OrderPatch{})
		require.NoError(t, err)
		assert.Equal(t, "Laptop", updated.Product)
		assert.True(t, updated.UpdatedAt.After(past))
	})

	t.Run("absent id reports not found without writing", func(t *testing.T) {
		repo := newTestRepo(t)

		_, err := repo.Update(ctx, 42, entity.OrderPatch{Price: price(5)})
		assert.ErrorIs(t, err, entity.ErrOrderNotFound)

		orders, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	created := insertOrder(t, repo, "Laptop", 1299.99, at)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "Laptop", deleted.Product)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, entity.ErrOrderNotFound)

	_, err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, entity.ErrOrderNotFound)
}
