// Package store holds the shared application state: the product catalog,
// the order log, and the browsing sessions with their carts and users.
//
// In remote mode products and orders mirror the document store change feed
// and mutations are plain writes whose effect arrives through the feed. In
// local mode state lives in memory and is persisted to the key-value area
// after every change. Carts are always kept in the key-value area.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/flicky/aqua-storefront/internal/catalog"
	"github.com/flicky/aqua-storefront/internal/docstore"
	"github.com/flicky/aqua-storefront/internal/identity"
	"github.com/flicky/aqua-storefront/internal/kv"
	"github.com/flicky/aqua-storefront/internal/model"
)

const (
	keyProducts   = "mvs_products"
	keyOrders     = "mvs_orders"
	keyCartPrefix = "mvs_cart:"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Mode is decided once at startup and never changes for the life of a Store.
type Mode interface{ isMode() }

type Remote struct {
	Docs     docstore.Store
	Identity identity.Provider
}

type Local struct {
	Credentials identity.Credentials
}

func (Remote) isMode() {}
func (Local) isMode()  {}

type EventKind string

const (
	EventProducts EventKind = "products"
	EventOrders   EventKind = "orders"
	EventCart     EventKind = "cart"
	EventSession  EventKind = "session"
)

// Event tells listeners what changed. SessionID is set for cart and session events.
type Event struct {
	Kind      EventKind
	SessionID string
}

type Store struct {
	mode Mode
	kv   kv.Store
	log  *slog.Logger
	seed []model.Product

	sessionTTL time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	unsubs []docstore.Unsubscribe

	mu           sync.Mutex
	products     []model.Product
	orders       []model.Order
	loading      bool
	productsSeen bool
	sessions     map[string]*Session
	listeners    map[int]func(Event)
	nextListener int
}

type Option func(*Store)

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithSessionTTL drops registered sessions idle for longer than ttl.
// Zero keeps them until their cart empties or they sign out.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Store) { s.sessionTTL = ttl }
}

// WithSeed replaces the built-in catalog used for seeding and local fallback.
func WithSeed(products []model.Product) Option {
	return func(s *Store) { s.seed = products }
}

func New(ctx context.Context, mode Mode, kvs kv.Store, opts ...Option) (*Store, error) {
	s := &Store{
		mode:      mode,
		kv:        kvs,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		seed:      catalog.Seed(),
		sessions:  make(map[string]*Session),
		listeners: make(map[int]func(Event)),
		loading:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.products = cloneProducts(s.seed)

	switch m := mode.(type) {
	case Remote:
		if err := s.subscribe(m.Docs); err != nil {
			s.Close()
			return nil, err
		}
	case Local:
		s.loadLocal(ctx)
	default:
		return nil, fmt.Errorf("unknown store mode %T", mode)
	}
	if s.sessionTTL > 0 {
		go s.pruneLoop(s.sessionTTL)
	}
	return s, nil
}

func (s *Store) pruneLoop(ttl time.Duration) {
	ticker := time.NewTicker(max(ttl/4, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.PruneSessions(now.Add(-ttl)); n > 0 {
				s.log.Debug("pruned idle sessions", "count", n)
			}
		}
	}
}

func (s *Store) subscribe(docs docstore.Store) error {
	unsub, err := docs.Subscribe(s.ctx, docstore.Products, nil, s.onProducts, func(err error) {
		s.log.Warn("products sync error", "error", err)
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.emit(Event{Kind: EventProducts})
	})
	if err != nil {
		return fmt.Errorf("subscribe products: %w", err)
	}
	s.unsubs = append(s.unsubs, unsub)

	unsub, err = docs.Subscribe(s.ctx, docstore.Orders, &docstore.OrderBy{Field: "date", Desc: true}, s.onOrders, func(err error) {
		s.log.Warn("orders sync error", "error", err)
	})
	if err != nil {
		return fmt.Errorf("subscribe orders: %w", err)
	}
	s.unsubs = append(s.unsubs, unsub)
	return nil
}

func (s *Store) onProducts(docs []docstore.Document) {
	products, err := docstore.Decode(docs, func(p *model.Product, id string) { p.ID = id })
	if err != nil {
		s.log.Error("decode products snapshot", "error", err)
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	first := !s.productsSeen
	s.productsSeen = true
	seed := first && len(products) == 0
	if !seed {
		s.products = products
	}
	s.loading = false
	s.mu.Unlock()

	if seed {
		s.seedRemote()
	}
	s.emit(Event{Kind: EventProducts})
}

// seedRemote writes the built-in catalog into an empty products collection.
// Writes are not confirmed and there is no guard against another instance
// seeding at the same time.
func (s *Store) seedRemote() {
	docs := s.mode.(Remote).Docs
	s.log.Info("seeding initial catalog", "products", len(s.seed))
	for _, p := range s.seed {
		if err := docs.Set(s.ctx, docstore.Products, p.ID, p); err != nil {
			s.log.Warn("seed product", "product_id", p.ID, "error", err)
		}
	}
}

func (s *Store) onOrders(docs []docstore.Document) {
	orders, err := docstore.Decode(docs, func(o *model.Order, id string) { o.ID = id })
	if err != nil {
		s.log.Error("decode orders snapshot", "error", err)
		return
	}
	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
	s.emit(Event{Kind: EventOrders})
}

func (s *Store) loadLocal(ctx context.Context) {
	var products []model.Product
	ok, err := kv.LoadJSON(ctx, s.kv, keyProducts, &products)
	if err != nil {
		s.log.Warn("load local products", "error", err)
	}
	var orders []model.Order
	okOrders, err := kv.LoadJSON(ctx, s.kv, keyOrders, &orders)
	if err != nil {
		s.log.Warn("load local orders", "error", err)
	}

	s.mu.Lock()
	if ok {
		s.products = products
	}
	if okOrders {
		s.orders = orders
	}
	s.loading = false
	s.mu.Unlock()
}

// Close releases every change-feed subscription.
func (s *Store) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.cancel()
}

// Subscribe registers fn for every state change. Listeners run on the
// goroutine that made the change, never under the store lock.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	s.nextListener++
	id := s.nextListener
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit(e Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}

func (s *Store) Online() bool {
	_, ok := s.mode.(Remote)
	return ok
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Products() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProducts(s.products)
}

func (s *Store) Product(id string) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (s *Store) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = cloneOrder(o)
	}
	return out
}

func (s *Store) Order(id string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return cloneOrder(o), true
		}
	}
	return model.Order{}, false
}

func (s *Store) AddProduct(ctx context.Context, p model.Product) {
	if r, ok := s.mode.(Remote); ok {
		if err := r.Docs.Set(ctx, docstore.Products, p.ID, p); err != nil {
			s.log.Error("add product", "product_id", p.ID, "error", err)
		}
		return
	}
	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()
	s.persistLocal(ctx)
	s.emit(Event{Kind: EventProducts})
}

func (s *Store) UpdateProduct(ctx context.Context, p model.Product) {
	if r, ok := s.mode.(Remote); ok {
		fields, err := docstore.Fields(p)
		if err == nil {
			err = r.Docs.Update(ctx, docstore.Products, p.ID, fields)
		}
		if err != nil {
			s.log.Error("update product", "product_id", p.ID, "error", err)
		}
		return
	}
	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
		}
	}
	s.mu.Unlock()
	s.persistLocal(ctx)
	s.emit(Event{Kind: EventProducts})
}

func (s *Store) RemoveProduct(ctx context.Context, id string) {
	if r, ok := s.mode.(Remote); ok {
		if err := r.Docs.Delete(ctx, docstore.Products, id); err != nil {
			s.log.Error("remove product", "product_id", id, "error", err)
		}
		return
	}
	s.mu.Lock()
	kept := s.products[:0:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.mu.Unlock()
	s.persistLocal(ctx)
	s.emit(Event{Kind: EventProducts})
}

// SetProducts replaces the catalog in memory and, in remote mode, upserts
// every product. A failed upsert is logged and the rest still run.
func (s *Store) SetProducts(ctx context.Context, products []model.Product) {
	s.mu.Lock()
	s.products = cloneProducts(products)
	s.mu.Unlock()

	if r, ok := s.mode.(Remote); ok {
		for _, p := range products {
			if err := r.Docs.Set(ctx, docstore.Products, p.ID, p); err != nil {
				s.log.Error("set product", "product_id", p.ID, "error", err)
			}
		}
	} else {
		s.persistLocal(ctx)
	}
	s.emit(Event{Kind: EventProducts})
}

// AddOrder records a placed order. In remote mode a failed order write
// keeps the order in memory instead, so it is never lost.
func (s *Store) AddOrder(ctx context.Context, order model.Order) {
	order = cloneOrder(order)

	r, ok := s.mode.(Remote)
	if !ok {
		s.prependOrder(order)
		s.persistLocal(ctx)
		s.emit(Event{Kind: EventOrders})
		return
	}

	if err := r.Docs.Set(ctx, docstore.Orders, order.ID, order); err != nil {
		s.log.Error("order sync failed, keeping order locally", "order_id", order.ID, "error", err)
		s.prependOrder(order)
		s.emit(Event{Kind: EventOrders})
		return
	}
	s.deductStock(ctx, r.Docs, order.Items)
}

// deductStock patches each ordered product to max(0, stock-qty) based on the
// stock currently in memory. Patches are independent and not compensated.
func (s *Store) deductStock(ctx context.Context, docs docstore.Store, items []model.CartItem) {
	for _, item := range items {
		p, ok := s.Product(item.ID)
		if !ok {
			continue
		}
		stock := max(0, p.Stock-item.Quantity)
		if err := docs.Update(ctx, docstore.Products, p.ID, map[string]any{"stock": stock}); err != nil {
			s.log.Warn("deduct stock", "product_id", p.ID, "error", err)
		}
	}
}

func (s *Store) prependOrder(o model.Order) {
	s.mu.Lock()
	s.orders = append([]model.Order{o}, s.orders...)
	s.mu.Unlock()
}

// UpdateOrderStatus sets any status from any other. Remote failures are discarded.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) {
	if r, ok := s.mode.(Remote); ok {
		if err := r.Docs.Update(ctx, docstore.Orders, id, map[string]any{"status": status}); err != nil {
			s.log.Debug("update order status", "order_id", id, "error", err)
		}
		return
	}
	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
		}
	}
	s.mu.Unlock()
	s.persistLocal(ctx)
	s.emit(Event{Kind: EventOrders})
}

func (s *Store) persistLocal(ctx context.Context) {
	if _, ok := s.mode.(Local); !ok {
		return
	}
	s.mu.Lock()
	products := cloneProducts(s.products)
	orders := make([]model.Order, len(s.orders))
	copy(orders, s.orders)
	s.mu.Unlock()

	if err := kv.SaveJSON(ctx, s.kv, keyProducts, products); err != nil {
		s.log.Error("persist products", "error", err)
	}
	if err := kv.SaveJSON(ctx, s.kv, keyOrders, orders); err != nil {
		s.log.Error("persist orders", "error", err)
	}
}

func cloneProducts(in []model.Product) []model.Product {
	out := make([]model.Product, len(in))
	copy(out, in)
	return out
}

func cloneOrder(o model.Order) model.Order {
	items := make([]model.CartItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
