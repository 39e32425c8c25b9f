package shop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"grocerbot/internal/cart"
	"grocerbot/internal/metrics"
	"grocerbot/internal/session"
)

var ErrEmptyCart = errors.New("cart is empty")

type Service struct {
	engine  *cart.Engine
	orders  OrderRepository
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

func NewService(engine *cart.Engine, orders OrderRepository, logger *log.Logger, m *metrics.Metrics) *Service {
	return &Service{
		engine:  engine,
		orders:  orders,
		logger:  logger,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *Service) Add(sess *session.Session, name string, qty int) (cart.Result, error) {
	res, err := sess.ApplyCart(s.engine, cart.ActionAdd, name, qty)
	s.metrics.CartOperation(string(cart.ActionAdd), err)
	return res, err
}

func (s *Service) Clear(sess *session.Session) (cart.Result, error) {
	res, err := sess.ApplyCart(s.engine, cart.ActionClear, "", 0)
	s.metrics.CartOperation(string(cart.ActionClear), err)
	return res, err
}

// Checkout prices the cart with tax, archives the order and empties the
// cart. Nothing is archived for an empty cart.
func (s *Service) Checkout(ctx context.Context, sess *session.Session) (*Order, error) {
	if sess.Cart.IsEmpty() {
		s.metrics.Checkout(ErrEmptyCart)
		return nil, ErrEmptyCart
	}

	subtotal := round2(sess.Cart.Subtotal)
	tax := round2(subtotal * TaxRate)

	order := &Order{
		ID:        s.newID(),
		SessionID: sess.ID,
		Items:     append([]cart.Item{}, sess.Cart.Items...),
		ItemCount: sess.Cart.ItemCount,
		Subtotal:  subtotal,
		TaxRate:   TaxRate,
		Tax:       tax,
		Total:     round2(subtotal + tax),
		CreatedAt: s.now().UTC(),
	}

	if err := s.orders.Save(ctx, order); err != nil {
		s.metrics.Checkout(err)
		return nil, fmt.Errorf("archive order: %w", err)
	}

	if _, err := s.Clear(sess); err != nil {
		return nil, err
	}
	s.metrics.Checkout(nil)
	s.logger.Info("order placed", "session", sess.ID, "order", order.ID, "total", order.Total)

	return order, nil
}

func (s *Service) Orders(ctx context.Context, sessionID string) ([]*Order, error) {
	return s.orders.ListBySession(ctx, sessionID)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
