package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/marinamsm/GoMarketplace/internal/domain"
	"github.com/marinamsm/GoMarketplace/internal/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// StorageKey is the key the whole cart is persisted under.
const StorageKey = "@GoMarketplace:products"

const defaultWriteTimeout = 5 * time.Second

type Option func(*Store)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithWriteTimeout bounds every write-through.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.writeTimeout = timeout
		}
	}
}

// WithPersistErrorHandler registers a callback for failed write-throughs. It runs on the
// goroutine that observed the failure and must not call back into the store's mutations.
func WithPersistErrorHandler(fn func(*PersistError)) Option {
	return func(s *Store) {
		s.onPersistError = fn
	}
}

// Snapshot is a consistent, caller-owned view of the cart.
type Snapshot struct {
	Products      []domain.Product `json:"products"`
	UpdateCounter uint64           `json:"update_counter"`
	Totals        domain.Totals    `json:"totals"`
}

// Store owns the cart line items. Reads see mutations as soon as they are applied;
// mutation calls return once the write-through is confirmed.
type Store struct {
	storage        storage.Storage
	writer         *writer
	log            logrus.FieldLogger
	writeTimeout   time.Duration
	onPersistError func(*PersistError)
	sfg            singleflight.Group

	mu            sync.RWMutex
	products      []domain.Product
	updateCounter uint64
	closed        bool
	watchers      map[chan uint64]struct{}
	done          chan struct{}
}

// New loads the persisted cart and starts the write-through goroutine. A missing,
// unreadable or corrupt cart yields an empty one; it never fails startup.
func New(ctx context.Context, st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:      st,
		log:          logrus.StandardLogger(),
		writeTimeout: defaultWriteTimeout,
		watchers:     make(map[chan uint64]struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.products = s.load(ctx)
	s.writer = newWriter(st, StorageKey, s.writeTimeout)

	s.log.WithField("products", len(s.products)).Debug("cart loaded")
	return s
}

func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

func (s *Store) UpdateCounter() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updateCounter
}

func (s *Store) Totals() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totals(s.products)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Products:      slices.Clone(s.products),
		UpdateCounter: s.updateCounter,
		Totals:        totals(s.products),
	}
}

// AddToCart appends the product with quantity 1, or increments it if already present.
// The returned snapshot is the cart this call committed.
func (s *Store) AddToCart(ctx context.Context, in domain.ProductInput) (Snapshot, error) {
	if in.ID == "" {
		return Snapshot{}, fmt.Errorf("%w: empty id", ErrInvalidProduct)
	}
	if in.Price < 0 {
		return Snapshot{}, fmt.Errorf("%w: negative price for %s", ErrInvalidProduct, in.ID)
	}

	return s.mutate(ctx, "add", in.ID, func(products []domain.Product) ([]domain.Product, error) {
		if idx := indexOf(products, in.ID); idx >= 0 {
			return increment(products, idx), nil
		}
		return append(products, in.WithQuantity(1)), nil
	})
}

// Increment returns ErrProductNotFound and changes nothing when id is not in the cart.
func (s *Store) Increment(ctx context.Context, id string) (Snapshot, error) {
	return s.mutate(ctx, "increment", id, func(products []domain.Product) ([]domain.Product, error) {
		idx := indexOf(products, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return increment(products, idx), nil
	})
}

// Decrement removes the item when its quantity is 1. Same not-found contract as Increment.
func (s *Store) Decrement(ctx context.Context, id string) (Snapshot, error) {
	return s.mutate(ctx, "decrement", id, func(products []domain.Product) ([]domain.Product, error) {
		idx := indexOf(products, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		if products[idx].Quantity > 1 {
			products[idx].Quantity--
			return products, nil
		}
		return slices.Delete(products, idx, idx+1), nil
	})
}

// Reload replaces the in-memory cart with what storage holds, for when the key was
// changed behind the store's back. Queued writes land before the read, and mutations
// wait until the swap is done. On any read error the cart and counter are left as they
// are. Concurrent calls share one read.
func (s *Store) Reload(ctx context.Context) error {
	_, err, _ := s.sfg.Do("reload", func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return nil, ErrClosed
		}

		select {
		case <-s.writer.barrier():
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		products, err := s.read(ctx)
		if err != nil {
			return nil, fmt.Errorf("reload cart failed: %w", err)
		}

		s.products = products
		s.updateCounter++
		s.notifyLocked(s.updateCounter)
		s.log.WithFields(logrus.Fields{
			"products":       len(products),
			"update_counter": s.updateCounter,
		}).Debug("cart reloaded")
		return nil, nil
	})
	return err
}

// Watch delivers the update counter after every change. A slow reader only sees the
// latest value. The channel is closed when ctx is done or the store is closed.
func (s *Store) Watch(ctx context.Context) <-chan uint64 {
	ch := make(chan uint64, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.watchers[ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}()
	return ch
}

// Close flushes the pending write and stops the store. It does not close the storage.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for ch := range s.watchers {
		close(ch)
	}
	s.watchers = nil
	close(s.done)
	s.mu.Unlock()

	s.writer.close()
	return nil
}

// mutate applies fn to a copy of the items, publishes the result and queues the
// write-through while still holding the lock, so writes reach storage in order.
// Once applied, the committed snapshot is returned even when the write fails.
func (s *Store) mutate(ctx context.Context, action, id string, fn func([]domain.Product) ([]domain.Product, error)) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrClosed
	}

	next, err := fn(slices.Clone(s.products))
	if err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	if next == nil {
		next = []domain.Product{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return Snapshot{}, fmt.Errorf("marshal cart failed: %w", err)
	}

	s.products = next
	s.updateCounter++
	counter := s.updateCounter
	snap := s.snapshotLocked()
	done := s.writer.enqueue(data)
	s.notifyLocked(counter)
	s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{
		"action":         action,
		"product_id":     id,
		"update_counter": counter,
	})
	log.Debug("cart updated")

	select {
	case errWrite := <-done:
		return snap, s.confirm(log, counter, errWrite)
	case <-ctx.Done():
		go func() {
			_ = s.confirm(log, counter, <-done)
		}()
		return snap, ctx.Err()
	}
}

func (s *Store) confirm(log logrus.FieldLogger, counter uint64, errWrite error) error {
	if errWrite == nil {
		return nil
	}

	perr := &PersistError{UpdateCounter: counter, Err: errWrite}
	log.WithError(errWrite).Error("cart write-through failed")
	if s.onPersistError != nil {
		s.onPersistError(perr)
	}
	return perr
}

func (s *Store) notifyLocked(counter uint64) {
	for ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- counter
	}
}

// load is the startup read: a missing, unreadable or corrupt cart becomes an empty one.
func (s *Store) load(ctx context.Context) []domain.Product {
	products, err := s.read(ctx)
	if err != nil {
		s.log.WithError(err).Warn("cart read failed, starting empty")
		return []domain.Product{}
	}
	return products
}

// read returns the persisted cart. Only a missing key counts as an empty cart.
func (s *Store) read(ctx context.Context) ([]domain.Product, error) {
	raw, err := s.storage.GetItem(ctx, StorageKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []domain.Product{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []domain.Product
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("persisted cart is corrupt: %w", err)
	}

	return s.sanitize(items), nil
}

// sanitize drops entries that break the cart invariants, keeping the first of duplicates.
func (s *Store) sanitize(items []domain.Product) []domain.Product {
	seen := make(map[string]struct{}, len(items))
	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		_, dup := seen[item.ID]
		if item.ID == "" || item.Quantity < 1 || dup {
			s.log.WithFields(logrus.Fields{
				"product_id": item.ID,
				"quantity":   item.Quantity,
			}).Warn("dropping invalid persisted cart item")
			continue
		}
		seen[item.ID] = struct{}{}
		products = append(products, item)
	}
	return products
}

func indexOf(products []domain.Product, id string) int {
	return slices.IndexFunc(products, func(p domain.Product) bool {
		return p.ID == id
	})
}

func increment(products []domain.Product, idx int) []domain.Product {
	products[idx].Quantity++
	return products
}

func totals(products []domain.Product) domain.Totals {
	var t domain.Totals
	for _, p := range products {
		t.Items += p.Quantity
		t.Amount += p.Subtotal()
	}
	return t
}
