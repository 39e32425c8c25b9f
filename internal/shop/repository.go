package shop

import (
	"context"
	"sort"
	"sync"
)

// OrderRepository archives checkouts. Service depends only on this
// interface.
type OrderRepository interface {
	Save(ctx context.Context, o *Order) error
	ListBySession(ctx context.Context, sessionID string) ([]*Order, error)
}

type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string][]*Order
}

func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders: make(map[string][]*Order),
	}
}

func (r *InMemoryOrderRepository) Save(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *o
	r.orders[o.SessionID] = append(r.orders[o.SessionID], &cp)
	return nil
}

func (r *InMemoryOrderRepository) ListBySession(ctx context.Context, sessionID string) ([]*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Order, 0, len(r.orders[sessionID]))
	for _, o := range r.orders[sessionID] {
		cp := *o
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
