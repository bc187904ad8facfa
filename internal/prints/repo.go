package prints

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound         = errors.New("print not found")
	ErrHasOrders        = errors.New("print has existing orders")
	ErrNegativeQuantity = errors.New("quantity would go negative")
)

const printCols = `id, name, COALESCE(url,''), quantity_available, COALESCE(code,''), created_at, updated_at`

// Repo is the inventory ledger. It owns print rows only; the stock invariant
// linking quantity_available to active orders is enforced by the order service,
// which drives the tx-scoped methods below.
type Repo struct{ DB *pgxpool.Pool }

func scanPrint(row pgx.Row) (Print, error) {
	var p Print
	err := row.Scan(&p.ID, &p.Name, &p.URL, &p.QuantityAvailable, &p.Code, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Print{}, ErrNotFound
	}
	if err != nil {
		return Print{}, err
	}
	p.IsAvailable = p.QuantityAvailable > 0
	return p, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Print, error) {
	return scanPrint(r.DB.QueryRow(ctx, `SELECT `+printCols+` FROM prints WHERE id=$1`, id))
}

func (r *Repo) List(ctx context.Context) ([]Print, error) {
	return r.query(ctx, `SELECT `+printCols+` FROM prints ORDER BY name`)
}

func (r *Repo) Search(ctx context.Context, query string) ([]Print, error) {
	return r.query(ctx, `SELECT `+printCols+` FROM prints WHERE name ILIKE '%'||$1||'%' ORDER BY name`, query)
}

func (r *Repo) query(ctx context.Context, sql string, args ...any) ([]Print, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Print
	for rows.Next() {
		p, err := scanPrint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, name, url string, qty int) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO prints (id, name, url, quantity_available)
		VALUES ($1, $2, NULLIF($3,''), $4)`, id, name, url, qty)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repo) Update(ctx context.Context, id, name, url string, qty int) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE prints SET name=$2, url=NULLIF($3,''), quantity_available=$4, updated_at=now()
		WHERE id=$1`, id, name, url, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one print unless any order, active or historical, still
// references it.
func (r *Repo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// take the same row lock the order service takes, so the dependent-order
	// check cannot interleave with an order being created against this print
	if _, err := r.GetForUpdate(ctx, tx, id); err != nil {
		return err
	}
	var n int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE print_id=$1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrHasOrders
	}
	if _, err := tx.Exec(ctx, `DELETE FROM prints WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM prints`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// ReplaceAll discards every print row and inserts the given list in one
// transaction. It is a full inventory reset: it knows nothing about orders,
// and the foreign key cascade removes any that referenced the old rows.
func (r *Repo) ReplaceAll(ctx context.Context, items []ImportItem) (int, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM prints`); err != nil {
		return 0, err
	}
	for _, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO prints (id, name, url, quantity_available, code)
			VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''))`,
			uuid.NewString(), it.Name, it.URL, it.QuantityAvailable, it.Code)
		if err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(items), nil
}

// GetForUpdate locks the print row for the rest of the transaction. Concurrent
// mutations against the same print serialize on this lock.
func (r *Repo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Print, error) {
	return scanPrint(tx.QueryRow(ctx, `SELECT `+printCols+` FROM prints WHERE id=$1 FOR UPDATE`, id))
}

// AdjustQuantity moves quantity_available by delta inside the caller's
// transaction. The WHERE guard rejects any write that would take the count
// below zero, so a failed adjustment leaves the row untouched.
func (r *Repo) AdjustQuantity(ctx context.Context, tx pgx.Tx, id string, delta int) error {
	ct, err := tx.Exec(ctx, `
		UPDATE prints SET quantity_available = quantity_available + $2, updated_at = now()
		WHERE id=$1 AND quantity_available + $2 >= 0`, id, delta)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM prints WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrNegativeQuantity
}
