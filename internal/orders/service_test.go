package orders_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printworks/print-orders/internal/auth"
	"github.com/printworks/print-orders/internal/orders"
	"github.com/printworks/print-orders/internal/postgres"
	"github.com/printworks/print-orders/internal/prints"
)

var (
	alice = auth.Identity{UserID: "user-alice"}
	bob   = auth.Identity{UserID: "user-bob"}
	admin = auth.Identity{UserID: "user-admin", Admin: true}
)

// newTestService connects to the database named by TEST_POSTGRES_DSN and
// starts from empty prints/orders tables. Without a database the test skips.
func newTestService(t *testing.T) (*orders.Service, *prints.Repo) {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, dsn, 8)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE orders, prints`)
	require.NoError(t, err)

	pr := &prints.Repo{DB: pool}
	return &orders.Service{DB: pool, Prints: pr, Orders: &orders.Repo{DB: pool}}, pr
}

// seedPrints loads the catalog through the bulk replace path and returns the
// rows keyed by name.
func seedPrints(t *testing.T, pr *prints.Repo, items ...prints.ImportItem) map[string]prints.Print {
	t.Helper()
	ctx := context.Background()

	n, err := pr.ReplaceAll(ctx, items)
	require.NoError(t, err)
	require.Equal(t, len(items), n)

	list, err := pr.List(ctx)
	require.NoError(t, err)

	out := map[string]prints.Print{}
	for _, p := range list {
		out[p.Name] = p
	}
	return out
}

func stockOf(t *testing.T, pr *prints.Repo, id string) int {
	t.Helper()
	p, err := pr.Get(context.Background(), id)
	require.NoError(t, err)
	return p.QuantityAvailable
}

func Test_CreateOrder_Lifecycle(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()
	byName := seedPrints(t, pr,
		prints.ImportItem{Name: "poster", QuantityAvailable: 10},
		prints.ImportItem{Name: "coded-poster", QuantityAvailable: 10, Code: "X42"},
	)

	plain, err := svc.Create(ctx, alice, orders.CreateInput{
		PrintID: byName["poster"].ID, Quantity: 2, PhotosLink: "https://photos/a",
	})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, plain.Status)
	assert.Nil(t, plain.StatusUpdatedAt)
	assert.Equal(t, 8, stockOf(t, pr, byName["poster"].ID))

	// a coded print needs no photos link and no manual fulfillment step
	coded, err := svc.Create(ctx, alice, orders.CreateInput{
		PrintID: byName["coded-poster"].ID, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusOrdered, coded.Status)
	assert.NotNil(t, coded.StatusUpdatedAt)
}

func Test_CreateOrder_Validation(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()
	byName := seedPrints(t, pr, prints.ImportItem{Name: "poster", QuantityAvailable: 3})
	printID := byName["poster"].ID

	tests := []struct {
		name    string
		in      orders.CreateInput
		wantErr error
	}{
		{
			name:    "zero_quantity",
			in:      orders.CreateInput{PrintID: printID, Quantity: 0, PhotosLink: "https://photos/a"},
			wantErr: orders.ErrInvalidQuantity,
		},
		{
			name:    "negative_quantity",
			in:      orders.CreateInput{PrintID: printID, Quantity: -1, PhotosLink: "https://photos/a"},
			wantErr: orders.ErrInvalidQuantity,
		},
		{
			name:    "unknown_print",
			in:      orders.CreateInput{PrintID: "3b1f39a0-0000-0000-0000-000000000000", Quantity: 1, PhotosLink: "https://photos/a"},
			wantErr: orders.ErrPrintNotFound,
		},
		{
			name:    "over_stock",
			in:      orders.CreateInput{PrintID: printID, Quantity: 4, PhotosLink: "https://photos/a"},
			wantErr: orders.ErrInsufficientStock,
		},
		{
			name:    "missing_photos_link",
			in:      orders.CreateInput{PrintID: printID, Quantity: 1},
			wantErr: orders.ErrMissingPhotosLink,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, alice, tc.in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// nothing committed by any of the failures
	assert.Equal(t, 3, stockOf(t, pr, printID))
	mine, err := svc.ListMine(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func Test_OrderFlow_StockConservation(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()
	byName := seedPrints(t, pr, prints.ImportItem{Name: "poster", QuantityAvailable: 5})
	printID := byName["poster"].ID

	o, err := svc.Create(ctx, alice, orders.CreateInput{
		PrintID: printID, Quantity: 5, PhotosLink: "https://photos/a",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stockOf(t, pr, printID))

	_, err = svc.Create(ctx, bob, orders.CreateInput{
		PrintID: printID, Quantity: 1, PhotosLink: "https://photos/b",
	})
	assert.ErrorIs(t, err, orders.ErrInsufficientStock)

	// shrinking the order returns the difference
	_, err = svc.Update(ctx, alice, o.ID, orders.UpdateInput{
		Quantity: 3, PhotosLink: "https://photos/a",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stockOf(t, pr, printID))

	// growing beyond what is left fails and moves nothing
	_, err = svc.Update(ctx, alice, o.ID, orders.UpdateInput{
		Quantity: 6, PhotosLink: "https://photos/a",
	})
	assert.ErrorIs(t, err, orders.ErrInsufficientStock)
	assert.Equal(t, 2, stockOf(t, pr, printID))

	// deleting restores the full remaining quantity
	_, err = svc.Delete(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stockOf(t, pr, printID))
}

func Test_ConcurrentCreate_OneWinner(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()
	byName := seedPrints(t, pr, prints.ImportItem{Name: "poster", QuantityAvailable: 1})
	printID := byName["poster"].ID

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, auth.Identity{UserID: "racer"}, orders.CreateInput{
				PrintID: printID, Quantity: 1, PhotosLink: "https://photos/r",
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, orders.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok, "exactly one create must win")
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 0, stockOf(t, pr, printID))
}

func Test_DeleteOrder_NoDoubleStockReturn(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()
	byName := seedPrints(t, pr, prints.ImportItem{Name: "poster", QuantityAvailable: 4})
	printID := byName["poster"].ID

	o, err := svc.Create(ctx, alice, orders.CreateInput{
		PrintID: printID, Quantity: 3, PhotosLink: "https://photos/a",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stockOf(t, pr, printID))

	_, err = svc.Delete(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stockOf(t, pr, printID))

	_, err = svc.Delete(ctx, alice, o.ID)
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
	assert.Equal(t, 4, stockOf(t, pr, printID))
}

func Test_OwnerAndLifecycleGuards(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()
	byName := seedPrints(t, pr, prints.ImportItem{Name: "poster", QuantityAvailable: 10})
	printID := byName["poster"].ID

	o, err := svc.Create(ctx, alice, orders.CreateInput{
		PrintID: printID, Quantity: 2, PhotosLink: "https://photos/a",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob, o.ID, orders.UpdateInput{Quantity: 1, PhotosLink: "x"})
	assert.ErrorIs(t, err, orders.ErrUnauthorized)
	_, err = svc.Delete(ctx, bob, o.ID)
	assert.ErrorIs(t, err, orders.ErrUnauthorized)

	_, err = svc.SetStatus(ctx, admin, o.ID, orders.StatusOrdered)
	require.NoError(t, err)

	// ordered is terminal for the owner
	_, err = svc.Update(ctx, alice, o.ID, orders.UpdateInput{Quantity: 1, PhotosLink: "x"})
	assert.ErrorIs(t, err, orders.ErrNotPending)
	_, err = svc.Delete(ctx, alice, o.ID)
	assert.ErrorIs(t, err, orders.ErrNotPending)
	assert.Equal(t, 8, stockOf(t, pr, printID))
}

func Test_SetStatus(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()
	byName := seedPrints(t, pr, prints.ImportItem{Name: "poster", QuantityAvailable: 10})

	o, err := svc.Create(ctx, alice, orders.CreateInput{
		PrintID: byName["poster"].ID, Quantity: 1, PhotosLink: "https://photos/a",
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, alice, o.ID, orders.StatusOrdered)
	assert.ErrorIs(t, err, orders.ErrUnauthorized)

	_, err = svc.SetStatus(ctx, admin, o.ID, orders.Status("shipped"))
	assert.ErrorIs(t, err, orders.ErrInvalidStatus)

	got, err := svc.SetStatus(ctx, admin, o.ID, orders.StatusOrdered)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusOrdered, got.Status)
	assert.NotNil(t, got.StatusUpdatedAt)

	// no transition leads back to pending
	_, err = svc.SetStatus(ctx, admin, o.ID, orders.StatusPending)
	assert.ErrorIs(t, err, orders.ErrInvalidStatus)

	// status change moves no stock
	assert.Equal(t, 9, stockOf(t, pr, byName["poster"].ID))
}

func Test_DeleteAllOrders_KeepsStock(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()
	byName := seedPrints(t, pr, prints.ImportItem{Name: "poster", QuantityAvailable: 5})
	printID := byName["poster"].ID

	_, err := svc.Create(ctx, alice, orders.CreateInput{
		PrintID: printID, Quantity: 2, PhotosLink: "https://photos/a",
	})
	require.NoError(t, err)

	_, err = svc.DeleteAllOrders(ctx, alice)
	assert.ErrorIs(t, err, orders.ErrUnauthorized)

	n, err := svc.DeleteAllOrders(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// administrative reset: the wipe does not put stock back
	assert.Equal(t, 3, stockOf(t, pr, printID))
}

func Test_DeletePrint_BlockedByOrders(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()
	byName := seedPrints(t, pr, prints.ImportItem{Name: "poster", QuantityAvailable: 5})
	printID := byName["poster"].ID

	o, err := svc.Create(ctx, alice, orders.CreateInput{
		PrintID: printID, Quantity: 1, PhotosLink: "https://photos/a",
	})
	require.NoError(t, err)

	err = svc.DeletePrint(ctx, admin, printID)
	assert.ErrorIs(t, err, prints.ErrHasOrders)

	_, err = svc.Delete(ctx, alice, o.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePrint(ctx, admin, printID))
	err = svc.DeletePrint(ctx, admin, printID)
	assert.ErrorIs(t, err, orders.ErrPrintNotFound)
}

func Test_DeletePrint_SerializesWithCreate(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()

	// a racing create and delete must never both succeed: either the create
	// commits first and the delete fails the dependent-order check, or the
	// delete commits first and the create sees no print. A committed order
	// silently cascading away would break conservation.
	for i := 0; i < 20; i++ {
		byName := seedPrints(t, pr, prints.ImportItem{Name: "poster", QuantityAvailable: 5})
		printID := byName["poster"].ID

		var (
			created   orders.Order
			createErr error
			deleteErr error
			wg        sync.WaitGroup
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			created, createErr = svc.Create(ctx, alice, orders.CreateInput{
				PrintID: printID, Quantity: 1, PhotosLink: "https://photos/a",
			})
		}()
		go func() {
			defer wg.Done()
			deleteErr = svc.DeletePrint(ctx, admin, printID)
		}()
		wg.Wait()

		if createErr == nil {
			assert.ErrorIs(t, deleteErr, prints.ErrHasOrders)
			_, err := svc.Orders.Get(ctx, created.ID)
			assert.NoError(t, err, "committed order must survive the delete attempt")
		} else {
			assert.ErrorIs(t, createErr, orders.ErrPrintNotFound)
			assert.NoError(t, deleteErr)
		}
	}
}

func Test_ListOrders(t *testing.T) {
	svc, pr := newTestService(t)
	ctx := context.Background()
	byName := seedPrints(t, pr, prints.ImportItem{Name: "poster", QuantityAvailable: 10, Code: ""})
	printID := byName["poster"].ID

	_, err := svc.Create(ctx, alice, orders.CreateInput{PrintID: printID, Quantity: 1, PhotosLink: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, orders.CreateInput{PrintID: printID, Quantity: 2, PhotosLink: "b"})
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "poster", mine[0].PrintName)

	_, err = svc.ListAll(ctx, alice)
	assert.ErrorIs(t, err, orders.ErrUnauthorized)

	all, err := svc.ListAll(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := svc.CountPending(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
