package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printworks/print-orders/internal/auth"
	"github.com/printworks/print-orders/internal/prints"
)

// Service coordinates every mutation that touches both an order and its print.
// Each one runs as a single transaction: the print row is locked FOR UPDATE,
// both tables are written, and the deferred rollback guarantees that a failure
// leaves no partial state. Two concurrent creates against the last unit of
// stock serialize on the row lock, so exactly one of them wins.
type Service struct {
	DB     *pgxpool.Pool
	Prints *prints.Repo
	Orders *Repo
}

// Create reserves quantity units of a print for the caller. Status starts as
// ordered when the print carries a fulfillment code (nothing manual is left to
// do), pending otherwise. A photos link is mandatory for code-less prints.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (Order, error) {
	if in.Quantity < 1 {
		return Order{}, ErrInvalidQuantity
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback(ctx)

	p, err := s.Prints.GetForUpdate(ctx, tx, in.PrintID)
	if errors.Is(err, prints.ErrNotFound) {
		return Order{}, ErrPrintNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if in.Quantity > p.QuantityAvailable {
		return Order{}, ErrInsufficientStock
	}
	if p.Code == "" && in.PhotosLink == "" {
		return Order{}, ErrMissingPhotosLink
	}

	status := StatusPending
	var statusAt *time.Time
	if p.Code != "" {
		status = StatusOrdered
		now := time.Now().UTC()
		statusAt = &now
	}

	o := Order{
		ID:              uuid.NewString(),
		UserID:          caller.UserID,
		PrintID:         in.PrintID,
		Quantity:        in.Quantity,
		Description:     in.Description,
		PhotosLink:      in.PhotosLink,
		Status:          status,
		CreatedAt:       time.Now().UTC(),
		StatusUpdatedAt: statusAt,
	}
	if err := s.Orders.InsertTx(ctx, tx, o); err != nil {
		return Order{}, err
	}
	if err := s.Prints.AdjustQuantity(ctx, tx, in.PrintID, -in.Quantity); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Update edits quantity, description and photos link of the caller's own
// pending order. Stock moves by the quantity difference: growing the order
// consumes stock, shrinking it returns stock.
func (s *Service) Update(ctx context.Context, caller auth.Identity, orderID string, in UpdateInput) (Order, error) {
	if in.Quantity < 1 {
		return Order{}, ErrInvalidQuantity
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback(ctx)

	o, err := s.Orders.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != caller.UserID {
		return Order{}, ErrUnauthorized
	}
	if o.Status != StatusPending {
		return Order{}, ErrNotPending
	}

	p, err := s.Prints.GetForUpdate(ctx, tx, o.PrintID)
	if err != nil {
		return Order{}, err
	}
	diff := in.Quantity - o.Quantity
	if diff > 0 && diff > p.QuantityAvailable {
		return Order{}, ErrInsufficientStock
	}

	if err := s.Orders.UpdateTx(ctx, tx, orderID, in.Quantity, in.Description, in.PhotosLink); err != nil {
		return Order{}, err
	}
	if diff != 0 {
		if err := s.Prints.AdjustQuantity(ctx, tx, o.PrintID, -diff); err != nil {
			return Order{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}

	o.Quantity = in.Quantity
	o.Description = in.Description
	o.PhotosLink = in.PhotosLink
	return o, nil
}

// Delete removes the caller's own pending order and returns its full quantity
// to the print. A second delete of the same order sees OrderNotFound, so stock
// is returned exactly once.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, orderID string) (Order, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback(ctx)

	o, err := s.Orders.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != caller.UserID {
		return Order{}, ErrUnauthorized
	}
	if o.Status != StatusPending {
		return Order{}, ErrNotPending
	}

	if _, err := s.Prints.GetForUpdate(ctx, tx, o.PrintID); err != nil {
		return Order{}, err
	}
	if err := s.Prints.AdjustQuantity(ctx, tx, o.PrintID, o.Quantity); err != nil {
		return Order{}, err
	}
	if err := s.Orders.DeleteTx(ctx, tx, orderID); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

// SetStatus applies an admin lifecycle transition. The transition table allows
// pending -> ordered and nothing else; no inventory moves here.
func (s *Service) SetStatus(ctx context.Context, caller auth.Identity, orderID string, status Status) (Order, error) {
	if !caller.Admin {
		return Order{}, ErrUnauthorized
	}
	if !status.Valid() {
		return Order{}, ErrInvalidStatus
	}

	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.Status, status) {
		return Order{}, ErrInvalidStatus
	}
	ok, err := s.Orders.SetStatus(ctx, orderID, o.Status, status)
	if err != nil {
		return Order{}, err
	}
	if !ok {
		// lost the race against another transition
		return Order{}, ErrInvalidStatus
	}
	return s.Orders.Get(ctx, orderID)
}

func (s *Service) ListMine(ctx context.Context, caller auth.Identity) ([]UserOrder, error) {
	return s.Orders.ListByUser(ctx, caller.UserID)
}

func (s *Service) ListAll(ctx context.Context, caller auth.Identity) ([]AdminOrder, error) {
	if !caller.Admin {
		return nil, ErrUnauthorized
	}
	return s.Orders.ListAll(ctx)
}

func (s *Service) CountPending(ctx context.Context, caller auth.Identity) (int, error) {
	return s.Orders.CountPending(ctx, caller.UserID)
}

// DeleteAllOrders is an administrative reset. It deliberately does not return
// stock to the prints: it is used around catalog replacement, not as a batch
// of individual cancellations.
func (s *Service) DeleteAllOrders(ctx context.Context, caller auth.Identity) (int64, error) {
	if !caller.Admin {
		return 0, ErrUnauthorized
	}
	return s.Orders.DeleteAll(ctx)
}

// DeletePrint refuses while any order, active or historical, references the
// print. Prints with order history stay around as the audit trail.
func (s *Service) DeletePrint(ctx context.Context, caller auth.Identity, printID string) error {
	if !caller.Admin {
		return ErrUnauthorized
	}
	err := s.Prints.Delete(ctx, printID)
	if errors.Is(err, prints.ErrNotFound) {
		return ErrPrintNotFound
	}
	return err
}

func (s *Service) DeleteAllPrints(ctx context.Context, caller auth.Identity) (int64, error) {
	if !caller.Admin {
		return 0, ErrUnauthorized
	}
	return s.Prints.DeleteAll(ctx)
}
