package kitchen

import (
	"context"
	"errors"
	"time"
)

// MockRepository keeps kitchen orders in memory. Func fields override the
// default behaviour of a method.
type MockRepository struct {
	orders       map[int64]*Order
	nextID       int64
	orderIDs     map[int64]int64 // order id -> merchant id
	onlineIDs    map[int64]int64
	stations     map[int64]int64 // active station id -> merchant id
	stationNames map[int64]string

	CreateFunc func(ctx context.Context, o *Order) error
	MutateFunc func(ctx context.Context, merchantID, id int64, fn func(o *Order) error) (*Order, error)
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		orders:       map[int64]*Order{},
		orderIDs:     map[int64]int64{},
		onlineIDs:    map[int64]int64{},
		stations:     map[int64]int64{},
		stationNames: map[int64]string{},
	}
}

func (m *MockRepository) OrderExists(_ context.Context, merchantID, id int64) (bool, error) {
	owner, ok := m.orderIDs[id]
	return ok && owner == merchantID, nil
}

func (m *MockRepository) OnlineOrderExists(_ context.Context, merchantID, id int64) (bool, error) {
	owner, ok := m.onlineIDs[id]
	return ok && owner == merchantID, nil
}

func (m *MockRepository) StationActive(_ context.Context, merchantID, id int64) (bool, error) {
	owner, ok := m.stations[id]
	return ok && owner == merchantID, nil
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	m.nextID++
	o.ID = m.nextID
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.withStation(o)
	stored := *o
	m.orders[o.ID] = &stored
	return nil
}

func (m *MockRepository) Find(_ context.Context, merchantID, id int64) (*Order, error) {
	o, ok := m.orders[id]
	if !ok || o.MerchantID != merchantID {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockRepository) List(_ context.Context, merchantID int64, f ListFilter) ([]Order, int, error) {
	out := []Order{}
	for _, o := range m.orders {
		if o.MerchantID != merchantID || o.Deleted() {
			continue
		}
		if f.BusinessStatus != nil && o.BusinessStatus != *f.BusinessStatus {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *MockRepository) Mutate(ctx context.Context, merchantID, id int64, fn func(o *Order) error) (*Order, error) {
	if m.MutateFunc != nil {
		return m.MutateFunc(ctx, merchantID, id, fn)
	}
	o, err := m.Find(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(o); err != nil {
		return nil, err
	}
	o.UpdatedAt = time.Now()
	m.withStation(o)
	stored := *o
	m.orders[id] = &stored
	return o, nil
}

func (m *MockRepository) withStation(o *Order) {
	o.StationName = nil
	if o.StationID != nil {
		if name, ok := m.stationNames[*o.StationID]; ok {
			o.StationName = &name
		}
	}
}

type recordedEvent struct {
	eventType string
	key       string
	payload   any
}

type MockPublisher struct {
	events []recordedEvent
}

func (p *MockPublisher) Publish(_ context.Context, eventType, key string, payload any) {
	p.events = append(p.events, recordedEvent{eventType: eventType, key: key, payload: payload})
}

type MockEncoder struct {
	content string
	err     error
}

func (e *MockEncoder) Encode(content string) ([]byte, error) {
	e.content = content
	if e.err != nil {
		return nil, e.err
	}
	return []byte("png:" + content), nil
}

var errStorage = errors.New("connection reset")
