// Package audit checks loyalty balances against their ledger after every
// points change. It reports drift and never writes balances.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-pos-backend/internal/events"
	kafkax "github.com/ariefcatur/go-pos-backend/internal/kafka"
)

var ErrUnknownCustomer = errors.New("unknown loyalty customer")

type Snapshot struct {
	CustomerID       int64
	StoredCurrent    int64
	StoredLifetime   int64
	ExpectedCurrent  int64
	ExpectedLifetime int64
}

func (s Snapshot) Drifted() bool {
	return s.StoredCurrent != s.ExpectedCurrent || s.StoredLifetime != s.ExpectedLifetime
}

type Ledger interface {
	Snapshot(ctx context.Context, customerID int64) (Snapshot, error)
}

type Dedup interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
}

type Service struct {
	Ledger Ledger
	Dedup  Dedup
	Events events.Publisher
	Log    *slog.Logger
}

// HandlePointsChanged is the consumer handler for loyalty.points.changed.
func (s *Service) HandlePointsChanged(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.Error("drop undecodable event", "offset", m.Offset, "err", err)
		return nil
	}
	if env.EventType != events.EventLoyaltyPointsChanged {
		return nil
	}

	seen, err := s.Dedup.Seen(ctx, env.EventID)
	if err != nil {
		return fmt.Errorf("dedup lookup: %w", err)
	}
	if seen {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.LoyaltyPointsChanged](env.Payload)
	if err != nil {
		s.Log.Error("drop event with bad payload", "event_id", env.EventID, "err", err)
		return nil
	}

	snap, err := s.Ledger.Snapshot(ctx, p.CustomerID)
	if errors.Is(err, ErrUnknownCustomer) {
		s.Log.Warn("event for unknown customer", "event_id", env.EventID, "customer_id", p.CustomerID)
		return s.Dedup.Mark(ctx, env.EventID)
	}
	if err != nil {
		return fmt.Errorf("snapshot customer %d: %w", p.CustomerID, err)
	}

	if snap.Drifted() {
		s.Log.Warn("loyalty ledger drift",
			"customer_id", snap.CustomerID,
			"stored_current", snap.StoredCurrent, "expected_current", snap.ExpectedCurrent,
			"stored_lifetime", snap.StoredLifetime, "expected_lifetime", snap.ExpectedLifetime,
			"event_id", env.EventID)
		s.Events.Publish(ctx, events.EventLoyaltyLedgerDrift, events.Key(snap.CustomerID), events.LoyaltyLedgerDrift{
			CustomerID:       snap.CustomerID,
			StoredCurrent:    snap.StoredCurrent,
			StoredLifetime:   snap.StoredLifetime,
			ExpectedCurrent:  snap.ExpectedCurrent,
			ExpectedLifetime: snap.ExpectedLifetime,
			SourceEventID:    env.EventID,
		})
	}
	return s.Dedup.Mark(ctx, env.EventID)
}
