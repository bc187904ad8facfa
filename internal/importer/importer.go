// Package importer is the bulk replace gateway: it takes the already-parsed
// row list from the import collaborator and swaps the whole print catalog for
// it. The replacement is a destructive full reset and is not checked against
// existing orders; callers run it only when that is safe.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/printworks/print-orders/internal/prints"
)

var ErrInvalidRow = errors.New("invalid import row")

type Gateway struct {
	Prints *prints.Repo
}

// Replace validates every row, then clears and repopulates the ledger in one
// transaction. No row is written unless all rows pass.
func (g *Gateway) Replace(ctx context.Context, items []prints.ImportItem) (int, error) {
	for i, it := range items {
		if err := validate(it); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return g.Prints.ReplaceAll(ctx, items)
}

func validate(it prints.ImportItem) error {
	if it.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRow)
	}
	if it.QuantityAvailable < 0 {
		return fmt.Errorf("%w: quantityAvailable must be >= 0", ErrInvalidRow)
	}
	return nil
}
