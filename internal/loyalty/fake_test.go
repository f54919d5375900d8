package loyalty

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeCustomer struct {
	Customer
	MerchantID int64
	Active     bool
}

type fakeState struct {
	customers    map[int64]fakeCustomer
	transactions map[int64]Transaction
	nextID       int64
}

func (s fakeState) clone() fakeState {
	c := fakeState{
		customers:    make(map[int64]fakeCustomer, len(s.customers)),
		transactions: make(map[int64]Transaction, len(s.transactions)),
		nextID:       s.nextID,
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	return c
}

// fakeRepo keeps rows in memory; InTx works on a copy that replaces the
// committed state only when fn succeeds.
type fakeRepo struct {
	mu       sync.Mutex
	state    fakeState
	orders   map[int64]int64 // order id -> merchant id
	payments map[int64]int64 // active payment id -> merchant id

	failInsert error
	failUpdate error
	commits    int
	rollbacks  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		state:    fakeState{customers: map[int64]fakeCustomer{}, transactions: map[int64]Transaction{}},
		orders:   map[int64]int64{},
		payments: map[int64]int64{},
	}
}

func (r *fakeRepo) addCustomer(merchantID int64, c Customer) {
	r.state.customers[c.ID] = fakeCustomer{Customer: c, MerchantID: merchantID, Active: true}
}

func (r *fakeRepo) customer(id int64) Customer {
	return r.state.customers[id].Customer
}

func (r *fakeRepo) OrderExists(_ context.Context, merchantID, orderID int64) (bool, error) {
	m, ok := r.orders[orderID]
	return ok && m == merchantID, nil
}

func (r *fakeRepo) PaymentActive(_ context.Context, merchantID, paymentID int64) (bool, error) {
	m, ok := r.payments[paymentID]
	return ok && m == merchantID, nil
}

func (r *fakeRepo) FindTransaction(_ context.Context, merchantID, id int64) (*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.state.transactions[id]
	if !ok || !t.IsActive {
		return nil, ErrNotFound
	}
	c := r.state.customers[t.CustomerID]
	if c.MerchantID != merchantID {
		return nil, ErrNotFound
	}
	cust := c.Customer
	t.Customer = &cust
	return &t, nil
}

func (r *fakeRepo) List(_ context.Context, merchantID int64, f ListFilter) ([]Transaction, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Transaction
	for _, t := range r.state.transactions {
		if t.IsActive && r.state.customers[t.CustomerID].MerchantID == merchantID {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) InTx(ctx context.Context, fn func(tx Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	work := &fakeTx{repo: r, state: r.state.clone()}
	if err := fn(work); err != nil {
		r.rollbacks++
		return err
	}
	r.state = work.state
	r.commits++
	return nil
}

type fakeTx struct {
	repo  *fakeRepo
	state fakeState
}

func (tx *fakeTx) LockCustomer(_ context.Context, merchantID, customerID int64) (*Customer, error) {
	c, ok := tx.state.customers[customerID]
	if !ok || !c.Active || c.MerchantID != merchantID {
		return nil, ErrNotFound
	}
	cust := c.Customer
	return &cust, nil
}

func (tx *fakeTx) LockTransaction(_ context.Context, merchantID, id int64) (*Transaction, error) {
	t, ok := tx.state.transactions[id]
	if !ok || !t.IsActive || tx.state.customers[t.CustomerID].MerchantID != merchantID {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (tx *fakeTx) SaveBalance(_ context.Context, c *Customer) error {
	fc, ok := tx.state.customers[c.ID]
	if !ok {
		return errors.New("no such customer")
	}
	fc.CurrentPoints = c.CurrentPoints
	fc.LifetimePoints = c.LifetimePoints
	tx.state.customers[c.ID] = fc
	return nil
}

func (tx *fakeTx) InsertTransaction(_ context.Context, t *Transaction) error {
	if tx.repo.failInsert != nil {
		return tx.repo.failInsert
	}
	tx.state.nextID++
	t.ID = tx.state.nextID
	t.IsActive = true
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	row := *t
	row.Customer = nil
	tx.state.transactions[t.ID] = row
	return nil
}

func (tx *fakeTx) UpdateTransaction(_ context.Context, t *Transaction) error {
	if tx.repo.failUpdate != nil {
		return tx.repo.failUpdate
	}
	row := *t
	row.Customer = nil
	row.UpdatedAt = time.Now()
	tx.state.transactions[t.ID] = row
	return nil
}

type fakeIdem struct {
	keys map[string]int64 // 0 = pending
}

func newFakeIdem() *fakeIdem { return &fakeIdem{keys: map[string]int64{}} }

func (f *fakeIdem) Reserve(_ context.Context, _ int64, key string) (bool, int64, error) {
	if id, ok := f.keys[key]; ok {
		return false, id, nil
	}
	f.keys[key] = 0
	return true, 0, nil
}

func (f *fakeIdem) Complete(_ context.Context, _ int64, key string, id int64) error {
	f.keys[key] = id
	return nil
}

func (f *fakeIdem) Release(_ context.Context, _ int64, key string) error {
	delete(f.keys, key)
	return nil
}

type recordedEvent struct {
	eventType string
	key       string
	payload   any
}

type fakePublisher struct {
	events []recordedEvent
}

func (p *fakePublisher) Publish(_ context.Context, eventType, key string, payload any) {
	p.events = append(p.events, recordedEvent{eventType: eventType, key: key, payload: payload})
}
