package repository

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
)

// MemoryOrderStore implements OrderRepository and ReturnRepository.
// Listings come back in creation order.
type MemoryOrderStore struct {
	mu        sync.RWMutex
	orders    map[string]*domain.Order
	orderIDs  []string
	returns   map[string]*domain.ReturnRequest
	returnIDs []string
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders:  make(map[string]*domain.Order),
		returns: make(map[string]*domain.ReturnRequest),
	}
}

func (s *MemoryOrderStore) CreateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return ErrDuplicateID
	}
	s.orders[order.ID] = order.Clone()
	s.orderIDs = append(s.orderIDs, order.ID)
	return nil
}

func (s *MemoryOrderStore) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order.Clone(), nil
}

func (s *MemoryOrderStore) UpdateOrder(_ context.Context, orderID string, fn func(*domain.Order) error) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}

	// fn works on a copy so a failed update leaves nothing half applied
	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.orders[orderID] = working
	return working.Clone(), nil
}

func (s *MemoryOrderStore) ListOrders(_ context.Context) ([]*domain.Order, error) {
	return s.filterOrders(func(*domain.Order) bool { return true }), nil
}

func (s *MemoryOrderStore) ListOrdersByEmail(_ context.Context, email string) ([]*domain.Order, error) {
	return s.filterOrders(func(o *domain.Order) bool { return o.PlacedBy(email) }), nil
}

func (s *MemoryOrderStore) filterOrders(keep func(*domain.Order) bool) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Order, 0)
	for _, id := range s.orderIDs {
		if order := s.orders[id]; keep(order) {
			result = append(result, order.Clone())
		}
	}
	return result
}

func (s *MemoryOrderStore) CreateReturn(_ context.Context, ret *domain.ReturnRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.returns[ret.ID]; exists {
		return ErrDuplicateID
	}
	s.returns[ret.ID] = cloneReturn(ret)
	s.returnIDs = append(s.returnIDs, ret.ID)
	return nil
}

func (s *MemoryOrderStore) GetReturn(_ context.Context, returnID string) (*domain.ReturnRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret, ok := s.returns[returnID]
	if !ok {
		return nil, ErrReturnNotFound
	}
	return cloneReturn(ret), nil
}

func (s *MemoryOrderStore) ListReturnsByOrder(_ context.Context, orderID string) ([]*domain.ReturnRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ReturnRequest, 0)
	for _, id := range s.returnIDs {
		if ret := s.returns[id]; ret.OrderID == orderID {
			result = append(result, cloneReturn(ret))
		}
	}
	return result, nil
}

func cloneReturn(r *domain.ReturnRequest) *domain.ReturnRequest {
	cp := *r
	cp.Items = make([]domain.ReturnItem, len(r.Items))
	copy(cp.Items, r.Items)
	return &cp
}
