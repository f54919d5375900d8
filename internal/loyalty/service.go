package loyalty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
	"github.com/ariefcatur/go-pos-backend/internal/auth"
	"github.com/ariefcatur/go-pos-backend/internal/events"
)

// Repository reads outside a transaction; ledger writes go through InTx.
type Repository interface {
	OrderExists(ctx context.Context, merchantID, orderID int64) (bool, error)
	PaymentActive(ctx context.Context, merchantID, paymentID int64) (bool, error)
	FindTransaction(ctx context.Context, merchantID, id int64) (*Transaction, error)
	List(ctx context.Context, merchantID int64, f ListFilter) ([]Transaction, int, error)
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is one ledger transaction. Lock* methods take row locks held until the
// surrounding InTx commits or rolls back.
type Tx interface {
	LockCustomer(ctx context.Context, merchantID, customerID int64) (*Customer, error)
	LockTransaction(ctx context.Context, merchantID, id int64) (*Transaction, error)
	SaveBalance(ctx context.Context, c *Customer) error
	InsertTransaction(ctx context.Context, t *Transaction) error
	UpdateTransaction(ctx context.Context, t *Transaction) error
}

type Idempotency interface {
	Reserve(ctx context.Context, merchantID int64, key string) (reserved bool, existingID int64, err error)
	Complete(ctx context.Context, merchantID int64, key string, transactionID int64) error
	Release(ctx context.Context, merchantID int64, key string) error
}

type Service struct {
	repo   Repository
	idem   Idempotency
	events events.Publisher
	log    *slog.Logger
}

func NewService(repo Repository, idem Idempotency, pub events.Publisher, log *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, idem: idem, events: pub, log: log}
}

// Create records a transaction and applies its points to the customer.
// A non-empty idemKey makes retries with the same key return the first result
// with replayed=true instead of applying the points again.
func (s *Service) Create(ctx context.Context, in CreateInput, idemKey string) (t *Transaction, replayed bool, err error) {
	merchantID, err := auth.MerchantID(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := in.Validate(); err != nil {
		return nil, false, err
	}

	if idemKey != "" && s.idem != nil {
		reserved, existingID, rerr := s.idem.Reserve(ctx, merchantID, idemKey)
		if rerr != nil {
			return nil, false, apperr.Internal("idempotency store unavailable", rerr)
		}
		if !reserved {
			if existingID == 0 {
				return nil, false, apperr.Conflict("a request with this Idempotency-Key is still being processed")
			}
			prev, gerr := s.Get(ctx, existingID)
			return prev, gerr == nil, gerr
		}
		defer func() {
			if err != nil {
				if rerr := s.idem.Release(context.WithoutCancel(ctx), merchantID, idemKey); rerr != nil {
					s.log.Error("release idempotency key", "key", idemKey, "err", rerr)
				}
				return
			}
			if cerr := s.idem.Complete(context.WithoutCancel(ctx), merchantID, idemKey, t.ID); cerr != nil {
				s.log.Error("complete idempotency key", "key", idemKey, "transaction_id", t.ID, "err", cerr)
			}
		}()
	}

	if err := s.requireOrder(ctx, merchantID, in.OrderID); err != nil {
		return nil, false, err
	}
	if err := s.requirePayment(ctx, merchantID, in.PaymentID); err != nil {
		return nil, false, err
	}

	t = &Transaction{
		CustomerID:  in.CustomerID,
		OrderID:     &in.OrderID,
		PaymentID:   &in.PaymentID,
		Points:      in.Points,
		Source:      in.Source,
		Description: in.Description,
	}
	err = s.repo.InTx(ctx, func(tx Tx) error {
		c, err := tx.LockCustomer(ctx, merchantID, in.CustomerID)
		if err != nil {
			return customerErr(err, in.CustomerID)
		}
		Apply(c, in.Points)
		if err := tx.SaveBalance(ctx, c); err != nil {
			return fmt.Errorf("save balance: %w", err)
		}
		if err := tx.InsertTransaction(ctx, t); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		t.Customer = c
		return nil
	})
	if err != nil {
		return nil, false, wrapTx("create loyalty point transaction", err)
	}

	s.log.InfoContext(ctx, "loyalty points applied", "transaction_id", t.ID, "customer_id", t.CustomerID, "points", t.Points)
	s.publish(ctx, merchantID, events.ActionCreated, t, t.Points)
	return t, false, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	merchantID, err := auth.MerchantID(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.FindTransaction(ctx, merchantID, id)
	if err != nil {
		return nil, transactionErr(err, id)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Transaction, int, error) {
	merchantID, err := auth.MerchantID(ctx)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.List(ctx, merchantID, f)
	if err != nil {
		return nil, 0, apperr.Internal("could not list loyalty point transactions", err)
	}
	return items, total, nil
}

// Update rewrites a transaction. A points change reverses the old value and
// applies the new one to the customer in the same database transaction.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Transaction, error) {
	merchantID, err := auth.MerchantID(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.OrderID.HasValue() {
		if err := s.requireOrder(ctx, merchantID, in.OrderID.Value); err != nil {
			return nil, err
		}
	}
	if in.PaymentID.HasValue() {
		if err := s.requirePayment(ctx, merchantID, in.PaymentID.Value); err != nil {
			return nil, err
		}
	}

	var t *Transaction
	var delta int64
	err = s.repo.InTx(ctx, func(tx Tx) error {
		var err error
		t, err = tx.LockTransaction(ctx, merchantID, id)
		if err != nil {
			return transactionErr(err, id)
		}
		c, err := tx.LockCustomer(ctx, merchantID, t.CustomerID)
		if err != nil {
			return customerErr(err, t.CustomerID)
		}

		if in.Points.HasValue() && in.Points.Value != t.Points {
			delta = in.Points.Value - t.Points
			Replace(c, t.Points, in.Points.Value)
			t.Points = in.Points.Value
			if err := tx.SaveBalance(ctx, c); err != nil {
				return fmt.Errorf("save balance: %w", err)
			}
		}
		if in.Source.HasValue() {
			t.Source = in.Source.Value
		}
		if in.Description.Set {
			t.Description = in.Description.Ptr()
		}
		if in.OrderID.Set {
			t.OrderID = in.OrderID.Ptr()
		}
		if in.PaymentID.Set {
			t.PaymentID = in.PaymentID.Ptr()
		}
		if err := tx.UpdateTransaction(ctx, t); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		t.Customer = c
		return nil
	})
	if err != nil {
		return nil, wrapTx("update loyalty point transaction", err)
	}

	s.publish(ctx, merchantID, events.ActionUpdated, t, delta)
	return t, nil
}

// Remove deactivates a transaction and reverses its effect on the balance.
func (s *Service) Remove(ctx context.Context, id int64) (*Transaction, error) {
	merchantID, err := auth.MerchantID(ctx)
	if err != nil {
		return nil, err
	}

	var t *Transaction
	err = s.repo.InTx(ctx, func(tx Tx) error {
		var err error
		t, err = tx.LockTransaction(ctx, merchantID, id)
		if err != nil {
			return transactionErr(err, id)
		}
		c, err := tx.LockCustomer(ctx, merchantID, t.CustomerID)
		if err != nil {
			return customerErr(err, t.CustomerID)
		}
		Reverse(c, t.Points)
		if err := tx.SaveBalance(ctx, c); err != nil {
			return fmt.Errorf("save balance: %w", err)
		}
		t.IsActive = false
		if err := tx.UpdateTransaction(ctx, t); err != nil {
			return fmt.Errorf("deactivate transaction: %w", err)
		}
		t.Customer = c
		return nil
	})
	if err != nil {
		return nil, wrapTx("remove loyalty point transaction", err)
	}

	s.log.InfoContext(ctx, "loyalty points reversed", "transaction_id", t.ID, "customer_id", t.CustomerID, "points", t.Points)
	s.publish(ctx, merchantID, events.ActionRemoved, t, -t.Points)
	return t, nil
}

func (s *Service) requireOrder(ctx context.Context, merchantID, orderID int64) error {
	ok, err := s.repo.OrderExists(ctx, merchantID, orderID)
	if err != nil {
		return apperr.Internal("could not resolve order", err)
	}
	if !ok {
		return apperr.NotFound("order %d not found", orderID)
	}
	return nil
}

func (s *Service) requirePayment(ctx context.Context, merchantID, paymentID int64) error {
	ok, err := s.repo.PaymentActive(ctx, merchantID, paymentID)
	if err != nil {
		return apperr.Internal("could not resolve payment", err)
	}
	if !ok {
		return apperr.NotFound("payment %d not found or not active", paymentID)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, merchantID int64, action string, t *Transaction, delta int64) {
	p := events.LoyaltyPointsChanged{
		TransactionID: t.ID,
		CustomerID:    t.CustomerID,
		MerchantID:    merchantID,
		Action:        action,
		Delta:         delta,
	}
	if t.Customer != nil {
		p.CurrentPoints = t.Customer.CurrentPoints
		p.LifetimePoints = t.Customer.LifetimePoints
	}
	// keyed by customer so one customer's events stay ordered
	s.events.Publish(ctx, events.EventLoyaltyPointsChanged, events.Key(t.CustomerID), p)
}

func customerErr(err error, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("loyalty customer %d not found", id)
	}
	return fmt.Errorf("lock customer: %w", err)
}

func transactionErr(err error, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("loyalty point transaction %d not found", id)
	}
	return apperr.Internal("could not load loyalty point transaction", err)
}

// wrapTx keeps apperr kinds raised inside the transaction and turns anything
// else into an Internal error.
func wrapTx(op string, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Internal(op+" failed", err)
}
