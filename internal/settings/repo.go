package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	KeyAnnouncementHeader = "announcement_header"
	KeyHowToUse           = "how_to_use"
)

var ErrNotFound = errors.New("setting not found")

type Repo struct{ DB *pgxpool.Pool }

// All returns every setting as a key -> value map.
func (r *Repo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT key, COALESCE(value,'') FROM app_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *Repo) Set(ctx context.Context, key, value string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE app_settings SET value=$2, updated_at=now() WHERE key=$1`, key, value)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
