package commands_test

import (
	"context"
	"sync"
	"time"

	"storefront/internal/core/application/notify"
	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/model/payment"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// memStores is the committed state behind the fake unit of work. Writes go
// through a staging buffer and only land here on Commit, which lets tests
// assert atomicity.
type memStores struct {
	orders   map[kernel.UUID]*order.Order
	payments map[kernel.UUID]*payment.Payment
	carts    map[string]*cart.Cart
	records  map[kernel.UUID]*notification.Record
}

func newMemStores() *memStores {
	return &memStores{
		orders:   make(map[kernel.UUID]*order.Order),
		payments: make(map[kernel.UUID]*payment.Payment),
		carts:    make(map[string]*cart.Cart),
		records:  make(map[kernel.UUID]*notification.Record),
	}
}

type fakeUoW struct {
	s          *memStores
	pending    []func()
	begun      bool
	committed  bool
	rolledBack bool
}

func (u *fakeUoW) Begin(context.Context) error { u.begun = true; return nil }

func (u *fakeUoW) Commit(context.Context) error {
	for _, apply := range u.pending {
		apply()
	}
	u.pending = nil
	u.committed = true
	return nil
}

func (u *fakeUoW) Rollback(context.Context) error {
	if !u.committed {
		u.pending = nil
		u.rolledBack = true
	}
	return nil
}

func (u *fakeUoW) OrderRepository() ports.OrderRepository               { return fakeOrderRepo{u} }
func (u *fakeUoW) PaymentRepository() ports.PaymentRepository           { return fakePaymentRepo{u} }
func (u *fakeUoW) CartRepository() ports.CartRepository                 { return fakeCartRepo{u} }
func (u *fakeUoW) NotificationRepository() ports.NotificationRepository { return fakeRecordRepo{u} }

type fakeOrderRepo struct{ u *fakeUoW }

func (r fakeOrderRepo) Add(_ context.Context, o *order.Order) error {
	r.u.pending = append(r.u.pending, func() { r.u.s.orders[o.ID()] = o })
	return nil
}

func (r fakeOrderRepo) Update(_ context.Context, o *order.Order) error {
	r.u.pending = append(r.u.pending, func() { r.u.s.orders[o.ID()] = o })
	return nil
}

func (r fakeOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	o, ok := r.u.s.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return o, nil
}

func (r fakeOrderRepo) GetByNumber(_ context.Context, number string) (*order.Order, error) {
	for _, o := range r.u.s.orders {
		if o.Number() == number {
			return o, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("order", number)
}

type fakePaymentRepo struct{ u *fakeUoW }

func (r fakePaymentRepo) Add(_ context.Context, p *payment.Payment) error {
	r.u.pending = append(r.u.pending, func() { r.u.s.payments[p.ID()] = p })
	return nil
}

func (r fakePaymentRepo) Update(_ context.Context, p *payment.Payment) error {
	r.u.pending = append(r.u.pending, func() { r.u.s.payments[p.ID()] = p })
	return nil
}

func (r fakePaymentRepo) Get(_ context.Context, id kernel.UUID) (*payment.Payment, error) {
	p, ok := r.u.s.payments[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("payment", id.String())
	}
	return p, nil
}

func (r fakePaymentRepo) GetByOrderID(_ context.Context, orderID kernel.UUID) (*payment.Payment, error) {
	for _, p := range r.u.s.payments {
		if p.OrderID().IsEqual(orderID) {
			return p, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("payment", orderID.String())
}

func (r fakePaymentRepo) GetByExternalReference(_ context.Context, reference string) (*payment.Payment, error) {
	for _, p := range r.u.s.payments {
		if p.ExternalReference() != nil && *p.ExternalReference() == reference {
			return p, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("payment", reference)
}

type fakeCartRepo struct{ u *fakeUoW }

func (r fakeCartRepo) Save(_ context.Context, c *cart.Cart) error {
	r.u.pending = append(r.u.pending, func() { r.u.s.carts[c.OwnerID()] = c })
	return nil
}

func (r fakeCartRepo) Get(_ context.Context, ownerID string) (*cart.Cart, error) {
	c, ok := r.u.s.carts[ownerID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("cart", ownerID)
	}
	return c, nil
}

func (r fakeCartRepo) ListAbandoned(context.Context, time.Time, int) ([]*cart.Cart, error) {
	return nil, nil
}

type fakeRecordRepo struct{ u *fakeUoW }

func (r fakeRecordRepo) Add(_ context.Context, rec *notification.Record) error {
	r.u.pending = append(r.u.pending, func() { r.u.s.records[rec.ID()] = rec })
	return nil
}

func (r fakeRecordRepo) Update(_ context.Context, rec *notification.Record) error {
	r.u.pending = append(r.u.pending, func() { r.u.s.records[rec.ID()] = rec })
	return nil
}

func (r fakeRecordRepo) Get(_ context.Context, id kernel.UUID) (*notification.Record, error) {
	rec, ok := r.u.s.records[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("record", id.String())
	}
	return rec, nil
}

type fakeCheckoutUoWFactory struct{ u *fakeUoW }

func (f fakeCheckoutUoWFactory) Create() commands.CheckoutUoW { return f.u }

type fakeCallbackUoWFactory struct{ u *fakeUoW }

func (f fakeCallbackUoWFactory) Create() commands.CallbackUoW { return f.u }

type fakeFulfillmentUoWFactory struct{ u *fakeUoW }

func (f fakeFulfillmentUoWFactory) Create() commands.FulfillmentUoW { return f.u }

type fakeNotificationUoWFactory struct{ u *fakeUoW }

func (f fakeNotificationUoWFactory) Create() commands.NotificationUoW { return f.u }

type capturedNotifier struct {
	mu          sync.Mutex
	events      []notify.Event
	redelivered []*notification.Record
}

func (n *capturedNotifier) Dispatch(_ context.Context, event notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *capturedNotifier) Redeliver(_ context.Context, record *notification.Record) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redelivered = append(n.redelivered, record)
}

type capturedPublisher struct {
	events []ports.TransitionEvent
	err    error
}

func (p *capturedPublisher) PublishTransition(_ context.Context, event ports.TransitionEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type stubGateway struct {
	session ports.PaymentSession
	err     error
	calls   int
}

func (g *stubGateway) CreateSession(
	context.Context, kernel.UUID, decimal.Decimal, string,
) (ports.PaymentSession, error) {
	g.calls++
	if g.err != nil {
		return ports.PaymentSession{}, g.err
	}
	return g.session, nil
}

type memSessionStore struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{carts: make(map[string]*cart.Cart)}
}

func (s *memSessionStore) Load(_ context.Context, ownerID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[ownerID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("cart", ownerID)
	}
	return c, nil
}

func (s *memSessionStore) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.OwnerID()] = c
	return nil
}

func (s *memSessionStore) Delete(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, ownerID)
	return nil
}

type stubIdentity struct{ customers map[string]ports.Customer }

func (s stubIdentity) Resolve(ctx context.Context, token string) (ports.Customer, error) {
	return s.Lookup(ctx, token)
}

func (s stubIdentity) Lookup(_ context.Context, customerID string) (ports.Customer, error) {
	c, ok := s.customers[customerID]
	if !ok {
		return ports.Customer{}, errs.NewObjectNotFoundError("customer", customerID)
	}
	return c, nil
}
