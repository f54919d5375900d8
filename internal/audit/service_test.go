package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-pos-backend/internal/events"
	kafkax "github.com/ariefcatur/go-pos-backend/internal/kafka"
	"github.com/ariefcatur/go-pos-backend/internal/redisx"
)

type fakeLedger struct {
	snap  Snapshot
	err   error
	calls int
}

func (f *fakeLedger) Snapshot(_ context.Context, customerID int64) (Snapshot, error) {
	f.calls++
	s := f.snap
	s.CustomerID = customerID
	return s, f.err
}

type published struct {
	eventType string
	key       string
	payload   any
}

type recordingPublisher struct{ events []published }

func (p *recordingPublisher) Publish(_ context.Context, eventType, key string, payload any) {
	p.events = append(p.events, published{eventType, key, payload})
}

type failingDedup struct{}

func (failingDedup) Seen(context.Context, string) (bool, error) { return false, errors.New("redis: connection refused") }
func (failingDedup) Mark(context.Context, string) error { return errors.New("redis: connection refused") }

func newService(t *testing.T, ledger Ledger) (*Service, *recordingPublisher, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	pub := &recordingPublisher{}
	return &Service{
		Ledger: ledger,
		Dedup:  redisx.NewDeduper(client, "ledger-audit"),
		Events: pub,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, pub, mr
}

func pointsChanged(eventID string, customerID int64) kafkago.Message {
	env := events.Envelope{
		EventID:      eventID,
		EventType:    events.EventLoyaltyPointsChanged,
		EventVersion: 1,
		Payload:      kafkax.MustMarshal(events.LoyaltyPointsChanged{TransactionID: 1, CustomerID: customerID, Delta: 50}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandlePointsChangedConsistent(t *testing.T) {
	ledger := &fakeLedger{snap: Snapshot{StoredCurrent: 150, StoredLifetime: 550, ExpectedCurrent: 150, ExpectedLifetime: 550}}
	svc, pub, mr := newService(t, ledger)

	require.NoError(t, svc.HandlePointsChanged(context.Background(), pointsChanged("ev-1", 5)))
	assert.Empty(t, pub.events)
	assert.True(t, mr.Exists("dedup:ledger-audit:ev-1"))

	// redelivery is skipped
	require.NoError(t, svc.HandlePointsChanged(context.Background(), pointsChanged("ev-1", 5)))
	assert.Equal(t, 1, ledger.calls)
}

func TestHandlePointsChangedReportsDrift(t *testing.T) {
	ledger := &fakeLedger{snap: Snapshot{StoredCurrent: 200, StoredLifetime: 550, ExpectedCurrent: 150, ExpectedLifetime: 550}}
	svc, pub, _ := newService(t, ledger)

	require.NoError(t, svc.HandlePointsChanged(context.Background(), pointsChanged("ev-2", 5)))
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.EventLoyaltyLedgerDrift, pub.events[0].eventType)
	assert.Equal(t, "5", pub.events[0].key)
	drift := pub.events[0].payload.(events.LoyaltyLedgerDrift)
	assert.Equal(t, int64(200), drift.StoredCurrent)
	assert.Equal(t, int64(150), drift.ExpectedCurrent)
	assert.Equal(t, "ev-2", drift.SourceEventID)
}

func TestHandlePointsChangedSkipsAndErrors(t *testing.T) {
	t.Run("otherEventType", func(t *testing.T) {
		ledger := &fakeLedger{}
		svc, _, _ := newService(t, ledger)
		m := kafkago.Message{Value: kafkax.MustMarshal(events.Envelope{EventID: "x", EventType: events.EventKitchenOrderChanged})}
		require.NoError(t, svc.HandlePointsChanged(context.Background(), m))
		assert.Zero(t, ledger.calls)
	})

	t.Run("garbage", func(t *testing.T) {
		ledger := &fakeLedger{}
		svc, _, _ := newService(t, ledger)
		require.NoError(t, svc.HandlePointsChanged(context.Background(), kafkago.Message{Value: []byte("{")}))
		assert.Zero(t, ledger.calls)
	})

	t.Run("unknownCustomerIsMarked", func(t *testing.T) {
		svc, _, mr := newService(t, &fakeLedger{err: ErrUnknownCustomer})
		require.NoError(t, svc.HandlePointsChanged(context.Background(), pointsChanged("ev-3", 9)))
		assert.True(t, mr.Exists("dedup:ledger-audit:ev-3"))
	})

	t.Run("storageErrorIsRetried", func(t *testing.T) {
		svc, _, mr := newService(t, &fakeLedger{err: errors.New("db down")})
		assert.Error(t, svc.HandlePointsChanged(context.Background(), pointsChanged("ev-4", 9)))
		assert.False(t, mr.Exists("dedup:ledger-audit:ev-4"))
	})

	t.Run("dedupUnavailable", func(t *testing.T) {
		ledger := &fakeLedger{}
		svc, _, _ := newService(t, ledger)
		svc.Dedup = failingDedup{}
		assert.Error(t, svc.HandlePointsChanged(context.Background(), pointsChanged("ev-5", 9)))
		assert.Zero(t, ledger.calls)
	})
}

func TestRepoSnapshot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM loyalty_customers c LEFT JOIN loyalty_point_transactions t`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"current_points", "lifetime_points", "sum", "sum_positive"}).
			AddRow(int64(30), int64(450), int64(30), int64(450)))
	mock.ExpectQuery(`FROM loyalty_customers c`).WithArgs(int64(6)).
		WillReturnRows(pgxmock.NewRows([]string{"current_points", "lifetime_points", "sum", "sum_positive"}))

	repo := &Repo{DB: mock}
	s, err := repo.Snapshot(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, s.Drifted())
	assert.Equal(t, int64(5), s.CustomerID)

	_, err = repo.Snapshot(context.Background(), 6)
	assert.ErrorIs(t, err, ErrUnknownCustomer)
	assert.NoError(t, mock.ExpectationsWereMet())
}
