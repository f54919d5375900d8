package kitchen

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
	"github.com/ariefcatur/go-pos-backend/internal/auth"
	"github.com/ariefcatur/go-pos-backend/internal/events"
)

type Repository interface {
	OrderExists(ctx context.Context, merchantID, orderID int64) (bool, error)
	OnlineOrderExists(ctx context.Context, merchantID, onlineOrderID int64) (bool, error)
	StationActive(ctx context.Context, merchantID, stationID int64) (bool, error)
	Create(ctx context.Context, o *Order) error
	// Find returns soft-deleted rows too.
	Find(ctx context.Context, merchantID, id int64) (*Order, error)
	List(ctx context.Context, merchantID int64, f ListFilter) ([]Order, int, error)
	// Mutate locks the row, lets fn change it and writes it back in one
	// transaction. An error from fn rolls back without writing.
	Mutate(ctx context.Context, merchantID, id int64, fn func(o *Order) error) (*Order, error)
}

type TicketEncoder interface {
	Encode(content string) ([]byte, error)
}

type Service struct {
	repo    Repository
	events  events.Publisher
	tickets TicketEncoder
	log     *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, pub events.Publisher, tickets TicketEncoder, log *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, events: pub, tickets: tickets, log: log, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	merchantID, err := auth.MerchantID(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLinks(ctx, merchantID, in.OrderID, in.OnlineOrderID, in.StationID); err != nil {
		return nil, err
	}

	o := &Order{
		MerchantID:    merchantID,
		OrderID:       in.OrderID,
		OnlineOrderID: in.OnlineOrderID,
		StationID:     in.StationID,
		Priority:      in.Priority,
		Notes:         in.Notes,
		Status:        RowActive,
	}
	status := in.BusinessStatus
	if status == "" {
		status = StatusPending
	}
	o.SetBusinessStatus(status, s.now().UTC())

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, apperr.Internal("could not create kitchen order", err)
	}
	s.log.InfoContext(ctx, "kitchen order created", "kitchen_order_id", o.ID, "merchant_id", merchantID)
	s.publish(ctx, events.ActionCreated, "", o)
	return o, nil
}

// Get returns an active kitchen order; deleted ones read as not found.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	merchantID, err := auth.MerchantID(ctx)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.Find(ctx, merchantID, id)
	if err != nil {
		return nil, orderErr(err, id)
	}
	if o.Deleted() {
		return nil, apperr.NotFound("kitchen order %d not found", id)
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	merchantID, err := auth.MerchantID(ctx)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.List(ctx, merchantID, f)
	if err != nil {
		return nil, 0, apperr.Internal("could not list kitchen orders", err)
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Order, error) {
	merchantID, err := auth.MerchantID(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLinks(ctx, merchantID, in.OrderID.Ptr(), in.OnlineOrderID.Ptr(), in.StationID.Ptr()); err != nil {
		return nil, err
	}

	var previous BusinessStatus
	o, err := s.repo.Mutate(ctx, merchantID, id, func(o *Order) error {
		if o.Deleted() {
			return apperr.Conflict("kitchen order %d has been deleted", id)
		}
		previous = o.BusinessStatus
		if in.linksTouched() {
			o.OrderID = in.OrderID.Ptr()
			o.OnlineOrderID = in.OnlineOrderID.Ptr()
		}
		if in.StationID.Set {
			o.StationID = in.StationID.Ptr()
		}
		if in.BusinessStatus.HasValue() {
			o.SetBusinessStatus(in.BusinessStatus.Value, s.now().UTC())
		}
		if in.Priority.HasValue() {
			o.Priority = in.Priority.Value
		}
		if in.Notes.Set {
			o.Notes = in.Notes.Ptr()
		}
		return nil
	})
	if err != nil {
		return nil, mutateErr("update kitchen order", err, id)
	}

	s.publish(ctx, events.ActionUpdated, previous, o)
	return o, nil
}

// Remove soft-deletes the order. Removing it again is a Conflict.
func (s *Service) Remove(ctx context.Context, id int64) (*Order, error) {
	merchantID, err := auth.MerchantID(ctx)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.Mutate(ctx, merchantID, id, func(o *Order) error {
		if o.Deleted() {
			return apperr.Conflict("kitchen order %d is already deleted", id)
		}
		o.Status = RowDeleted
		return nil
	})
	if err != nil {
		return nil, mutateErr("delete kitchen order", err, id)
	}

	s.log.InfoContext(ctx, "kitchen order deleted", "kitchen_order_id", id, "merchant_id", merchantID)
	s.publish(ctx, events.ActionRemoved, o.BusinessStatus, o)
	return o, nil
}

// Ticket renders a QR code PNG that links a station screen to the order.
func (s *Service) Ticket(ctx context.Context, id int64, baseURL string) ([]byte, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := s.tickets.Encode(TicketURL(baseURL, o.ID))
	if err != nil {
		return nil, apperr.Internal("could not render ticket", err)
	}
	return png, nil
}

// checkLinks re-resolves every referenced id that is being set.
func (s *Service) checkLinks(ctx context.Context, merchantID int64, orderID, onlineOrderID, stationID *int64) error {
	type check struct {
		id     *int64
		exists func(context.Context, int64, int64) (bool, error)
		what   string
	}
	for _, c := range []check{
		{orderID, s.repo.OrderExists, "order"},
		{onlineOrderID, s.repo.OnlineOrderExists, "online order"},
		{stationID, s.repo.StationActive, "kitchen station"},
	} {
		if c.id == nil {
			continue
		}
		ok, err := c.exists(ctx, merchantID, *c.id)
		if err != nil {
			return apperr.Internal("could not resolve "+c.what, err)
		}
		if !ok {
			return apperr.NotFound("%s %d not found", c.what, *c.id)
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, action string, previous BusinessStatus, o *Order) {
	s.events.Publish(ctx, events.EventKitchenOrderChanged, events.Key(o.ID), events.KitchenOrderChanged{
		KitchenOrderID: o.ID,
		MerchantID:     o.MerchantID,
		Action:         action,
		PreviousStatus: string(previous),
		BusinessStatus: string(o.BusinessStatus),
		Priority:       o.Priority,
	})
}

func orderErr(err error, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("kitchen order %d not found", id)
	}
	return apperr.Internal("could not load kitchen order", err)
}

func mutateErr(op string, err error, id int64) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("kitchen order %d not found", id)
	}
	return apperr.Internal("could not "+op, err)
}
