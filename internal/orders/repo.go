package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderCols = `id, user_id, print_id, quantity, COALESCE(description,''), COALESCE(photos_link,''), status, created_at, status_updated_at`

// Repo is the order store: pure persistence, no cross-entity rules. The
// invariants tying orders to print stock live in Service.
type Repo struct{ DB *pgxpool.Pool }

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.PrintID, &o.Quantity, &o.Description, &o.PhotosLink,
		&o.Status, &o.CreatedAt, &o.StatusUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	return scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]UserOrder, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.user_id, o.print_id, o.quantity, COALESCE(o.description,''),
		       COALESCE(o.photos_link,''), o.status, o.created_at, o.status_updated_at,
		       p.name, COALESCE(p.code,'')
		FROM orders o JOIN prints p ON o.print_id = p.id
		WHERE o.user_id = $1
		ORDER BY o.status ASC, o.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserOrder
	for rows.Next() {
		var o UserOrder
		if err := rows.Scan(&o.ID, &o.UserID, &o.PrintID, &o.Quantity, &o.Description, &o.PhotosLink,
			&o.Status, &o.CreatedAt, &o.StatusUpdatedAt, &o.PrintName, &o.PrintCode); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) ListAll(ctx context.Context) ([]AdminOrder, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.user_id, o.print_id, o.quantity, COALESCE(o.description,''),
		       COALESCE(o.photos_link,''), o.status, o.created_at, o.status_updated_at, p.name
		FROM orders o JOIN prints p ON o.print_id = p.id
		ORDER BY o.status ASC, o.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminOrder
	for rows.Next() {
		var o AdminOrder
		if err := rows.Scan(&o.ID, &o.UserID, &o.PrintID, &o.Quantity, &o.Description, &o.PhotosLink,
			&o.Status, &o.CreatedAt, &o.StatusUpdatedAt, &o.PrintName); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) CountPending(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id=$1 AND status=$2`,
		userID, StatusPending).Scan(&n)
	return n, err
}

func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// GetForUpdate locks the order row inside the caller's transaction.
func (r *Repo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Order, error) {
	return scanOrder(tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, id))
}

func (r *Repo) InsertTx(ctx context.Context, tx pgx.Tx, o Order) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, print_id, quantity, description, photos_link, status, created_at, status_updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), $7, $8, $9)`,
		o.ID, o.UserID, o.PrintID, o.Quantity, o.Description, o.PhotosLink, o.Status, o.CreatedAt, o.StatusUpdatedAt)
	return err
}

func (r *Repo) UpdateTx(ctx context.Context, tx pgx.Tx, id string, qty int, description, photosLink string) error {
	ct, err := tx.Exec(ctx, `
		UPDATE orders SET quantity=$2, description=NULLIF($3,''), photos_link=NULLIF($4,'')
		WHERE id=$1`, id, qty, description, photosLink)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repo) DeleteTx(ctx context.Context, tx pgx.Tx, id string) error {
	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// SetStatus is a compare-and-set on the lifecycle column; it reports whether
// the row was still in the expected from-status.
func (r *Repo) SetStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, status_updated_at=now()
		WHERE id=$1 AND status=$3`, id, to, from)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
