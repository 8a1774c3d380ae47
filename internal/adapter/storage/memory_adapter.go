package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/core/domain"
	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/port"
)

// MemoryStore is the shared state behind the in-process repositories.
// A transaction takes the store's write lock, so repository calls made
// with the transaction context skip their own locking.
type MemoryStore struct {
	mu sync.RWMutex

	nextOrderID int64
	nextItemID  int64
	nextEntryID int64

	users    map[int64]domain.UserProfile
	products map[int64]domain.Product
	orders   map[int64]domain.Order
	items    map[int64][]domain.LineItem
	entries  map[invKey]domain.InventoryEntry
}

type invKey struct {
	sellerID  int64
	productID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextOrderID: 1,
		nextItemID:  1,
		nextEntryID: 1,
		users:       make(map[int64]domain.UserProfile),
		products:    make(map[int64]domain.Product),
		orders:      make(map[int64]domain.Order),
		items:       make(map[int64][]domain.LineItem),
		entries:     make(map[invKey]domain.InventoryEntry),
	}
}

type memTxKey struct{}

func inTx(ctx context.Context) bool {
	v, ok := ctx.Value(memTxKey{}).(bool)
	return ok && v
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.RLock()
	}
}

func (m *MemoryStore) runlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.RUnlock()
	}
}

func (m *MemoryStore) wlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.Lock()
	}
}

func (m *MemoryStore) wunlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.Unlock()
	}
}

var _ port.TxManager = (*MemoryStore)(nil)

// WithinTx serializes the whole store for the duration of fn. The
// in-memory maps mutate in place, so fn must order its checks before
// its writes; the engine's two-phase acceptance does exactly that.
func (m *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

// SeedUser registers a user and returns its id. Test and dev helper.
func (m *MemoryStore) SeedUser(profile domain.UserProfile) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if profile.UserID == 0 {
		profile.UserID = int64(len(m.users)) + 1
	}
	m.users[profile.UserID] = profile
	return profile.UserID
}

// SeedProduct registers a catalog product and returns its id.
func (m *MemoryStore) SeedProduct(p domain.Product) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		p.ID = int64(len(m.products)) + 1
	}
	m.products[p.ID] = p
	return p.ID
}

// MemoryUsers exposes the store as a UserRepository.
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ port.UserRepository = (*MemoryUsers)(nil)

func (r *MemoryUsers) Exists(ctx context.Context, userID int64) (bool, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	_, ok := r.store.users[userID]
	return ok, nil
}

func (r *MemoryUsers) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	p, ok := r.store.users[userID]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

// MemoryProducts exposes the store as a ProductRepository.
type MemoryProducts struct{ store *MemoryStore }

func NewMemoryProducts(store *MemoryStore) *MemoryProducts { return &MemoryProducts{store: store} }

var _ port.ProductRepository = (*MemoryProducts)(nil)

func (r *MemoryProducts) Exists(ctx context.Context, productID int64) (bool, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	_, ok := r.store.products[productID]
	return ok, nil
}

func (r *MemoryProducts) FindAll(ctx context.Context) ([]domain.Product, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	out := make([]domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MemoryOrders exposes the store as an OrderRepository.
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ port.OrderRepository = (*MemoryOrders)(nil)

func (r *MemoryOrders) Create(ctx context.Context, order *domain.Order, items []domain.LineInput) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	order.ID = r.store.nextOrderID
	r.store.nextOrderID++
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.store.orders[order.ID] = *order

	lines := make([]domain.LineItem, 0, len(items))
	for _, in := range items {
		lines = append(lines, domain.LineItem{
			ID:        r.store.nextItemID,
			OrderID:   order.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
		})
		r.store.nextItemID++
	}
	r.store.items[order.ID] = lines
	return nil
}

func (r *MemoryOrders) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	o, ok := r.store.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

// GetByIDForUpdate is identical to GetByID here: the transaction
// already holds the store-wide write lock.
func (r *MemoryOrders) GetByIDForUpdate(ctx context.Context, orderID int64) (*domain.Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r *MemoryOrders) LineItems(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	lines := r.store.items[orderID]
	out := make([]domain.LineItem, len(lines))
	copy(out, lines)
	return out, nil
}

func (r *MemoryOrders) LineItemViews(ctx context.Context, orderID int64) ([]domain.LineItemView, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	lines := r.store.items[orderID]
	out := make([]domain.LineItemView, 0, len(lines))
	for _, it := range lines {
		p := r.store.products[it.ProductID]
		out = append(out, domain.LineItemView{
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
		})
	}
	return out, nil
}

func (r *MemoryOrders) MarkAccepted(ctx context.Context, orderID int64) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	o, ok := r.store.orders[orderID]
	if !ok {
		return nil
	}
	o.Status = domain.OrderStatusAccepted
	o.UpdatedAt = time.Now().UTC()
	r.store.orders[orderID] = o
	return nil
}

func (r *MemoryOrders) MarkCompleted(ctx context.Context, orderID int64) (bool, error) {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	o, ok := r.store.orders[orderID]
	if !ok || !o.Status.CanTransitionTo(domain.OrderStatusCompleted) {
		return false, nil
	}
	o.Status = domain.OrderStatusCompleted
	o.UpdatedAt = time.Now().UTC()
	r.store.orders[orderID] = o
	return true, nil
}

func (r *MemoryOrders) FindByBuyer(ctx context.Context, buyerID int64) ([]domain.Order, error) {
	return r.findOrders(ctx, func(o domain.Order) bool { return o.BuyerID == buyerID })
}

func (r *MemoryOrders) FindBySeller(ctx context.Context, sellerID int64) ([]domain.Order, error) {
	return r.findOrders(ctx, func(o domain.Order) bool { return o.SellerID == sellerID })
}

func (r *MemoryOrders) findOrders(ctx context.Context, match func(domain.Order) bool) ([]domain.Order, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, o := range r.store.orders {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MemoryInventory exposes the store as an InventoryRepository.
type MemoryInventory struct{ store *MemoryStore }

func NewMemoryInventory(store *MemoryStore) *MemoryInventory {
	return &MemoryInventory{store: store}
}

var _ port.InventoryRepository = (*MemoryInventory)(nil)

func (r *MemoryInventory) Get(ctx context.Context, sellerID, productID int64) (*domain.InventoryEntry, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	e, ok := r.store.entries[invKey{sellerID, productID}]
	if !ok {
		return nil, nil
	}
	cp := e
	return &cp, nil
}

func (r *MemoryInventory) GetForUpdate(ctx context.Context, sellerID, productID int64) (*domain.InventoryEntry, error) {
	return r.Get(ctx, sellerID, productID)
}

func (r *MemoryInventory) Decrement(ctx context.Context, sellerID, productID int64, quantity int) (bool, error) {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	key := invKey{sellerID, productID}
	e, ok := r.store.entries[key]
	if !ok || e.Quantity < quantity {
		return false, nil
	}
	e.Quantity -= quantity
	e.UpdatedAt = time.Now().UTC()
	r.store.entries[key] = e
	return true, nil
}

func (r *MemoryInventory) Upsert(ctx context.Context, entry *domain.InventoryEntry) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	key := invKey{entry.SellerID, entry.ProductID}
	now := time.Now().UTC()
	if existing, ok := r.store.entries[key]; ok {
		existing.Listed = true
		existing.UpdatedAt = now
		r.store.entries[key] = existing
		*entry = existing
		return nil
	}
	entry.ID = r.store.nextEntryID
	r.store.nextEntryID++
	entry.CreatedAt = now
	entry.UpdatedAt = now
	r.store.entries[key] = *entry
	return nil
}

func (r *MemoryInventory) UpdateQuantity(ctx context.Context, sellerID, productID int64, quantity int) (bool, error) {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	key := invKey{sellerID, productID}
	e, ok := r.store.entries[key]
	if !ok {
		return false, nil
	}
	e.Quantity = quantity
	e.UpdatedAt = time.Now().UTC()
	r.store.entries[key] = e
	return true, nil
}

func (r *MemoryInventory) Delete(ctx context.Context, sellerID, productID int64) (bool, error) {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	key := invKey{sellerID, productID}
	if _, ok := r.store.entries[key]; !ok {
		return false, nil
	}
	delete(r.store.entries, key)
	return true, nil
}

func (r *MemoryInventory) FindListed(ctx context.Context, sellerID int64) ([]domain.SellerListing, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	out := make([]domain.SellerListing, 0)
	for key, e := range r.store.entries {
		if key.sellerID != sellerID || !e.Listed {
			continue
		}
		p := r.store.products[key.productID]
		out = append(out, domain.SellerListing{
			ProductID:   key.productID,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Quantity:    e.Quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}
