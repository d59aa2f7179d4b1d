package memory

import (
	"context"
	"sync"

	"github.com/EsnatJahan/E-Commerce/internal/datamodels/order"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/product"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/user"
)

// Store 内存仓储，测试与本地演示用。加锁范围与 MySQL 实现的
// 单文档操作语义一致：DecrementStock 在一次临界区内完成校验与扣减。
type Store struct {
	mu          sync.RWMutex
	nextUserID  int64
	nextProdID  int64
	nextOrderID int64
	users       map[int64]user.User
	products    map[int64]product.Product
	orders      map[int64]order.Order
}

func NewStore() *Store {
	return &Store{
		nextUserID:  1,
		nextProdID:  1,
		nextOrderID: 1,
		users:       make(map[int64]user.User),
		products:    make(map[int64]product.Product),
		orders:      make(map[int64]order.Order),
	}
}

// Users 用户仓储视图
func (s *Store) Users() user.Repository { return (*userStore)(s) }

// Products 商品仓储视图
func (s *Store) Products() product.Repository { return (*productStore)(s) }

// Orders 订单仓储视图
func (s *Store) Orders() order.Repository { return (*orderStore)(s) }

// ---- user.Repository ----

type userStore Store

func (m *userStore) GetByID(ctx context.Context, id int64) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (m *userStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *userStore) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrEmailExists
		}
	}
	u.ID = m.nextUserID
	m.nextUserID++
	m.users[u.ID] = *u
	return nil
}

func (m *userStore) Update(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	m.users[u.ID] = *u
	return nil
}

// ---- product.Repository ----

type productStore Store

func (m *productStore) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *productStore) List(ctx context.Context, f product.Filter) ([]*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*product.Product, 0)
	// 按插入顺序返回（自增 ID 即自然顺序）
	for id := int64(1); id < m.nextProdID; id++ {
		p, ok := m.products[id]
		if !ok {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.Brand != "" && p.Brand != f.Brand {
			continue
		}
		cp := p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *productStore) Create(ctx context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextProdID
	m.nextProdID++
	m.products[p.ID] = *p
	return nil
}

func (m *productStore) Update(ctx context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return product.ErrNotFound
	}
	m.products[p.ID] = *p
	return nil
}

func (m *productStore) DecrementStock(ctx context.Context, id, qty int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return product.ErrNotFound
	}
	if p.Stock < qty {
		return product.ErrInsufficientStock
	}
	p.Stock -= qty
	m.products[id] = p
	return nil
}

func (m *productStore) IncrementStock(ctx context.Context, id, qty int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Stock += qty
	m.products[id] = p
	return nil
}

// ---- order.Repository ----

type orderStore Store

func (m *orderStore) Create(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.nextOrderID
	m.nextOrderID++
	m.orders[o.ID] = *o
	return nil
}

func (m *orderStore) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (m *orderStore) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*order.Order, 0)
	// 新订单在前
	for id := m.nextOrderID - 1; id >= 1; id-- {
		o, ok := m.orders[id]
		if !ok || o.UserID != userID {
			continue
		}
		cp := o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *orderStore) ListByStatus(ctx context.Context, status string) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*order.Order, 0)
	for id := m.nextOrderID - 1; id >= 1; id-- {
		o, ok := m.orders[id]
		if !ok || o.Status != status {
			continue
		}
		cp := o
		out = append(out, &cp)
	}
	return out, nil
}
