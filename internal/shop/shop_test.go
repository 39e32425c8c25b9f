package shop

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocerbot/internal/cart"
	"grocerbot/internal/catalog"
	"grocerbot/internal/db"
	"grocerbot/internal/session"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type failingRepo struct{}

func (failingRepo) Save(ctx context.Context, o *Order) error {
	return errors.New("disk full")
}

func (failingRepo) ListBySession(ctx context.Context, sessionID string) ([]*Order, error) {
	return nil, nil
}

func newService(t *testing.T, repo OrderRepository) *Service {
	t.Helper()
	cat, err := catalog.New(catalog.DefaultCategories)
	require.NoError(t, err)

	svc := NewService(cart.NewEngine(cat), repo, log.New(io.Discard), nil)
	svc.now = func() time.Time { return t0 }
	svc.newID = func() string { return "order-1" }
	return svc
}

// banana 40 + 2 x potato 30 = 100
func cartOf100(t *testing.T, svc *Service, sess *session.Session) {
	t.Helper()
	_, err := svc.Add(sess, "banana", 1)
	require.NoError(t, err)
	_, err = svc.Add(sess, "potato", 2)
	require.NoError(t, err)
	require.Equal(t, 100.0, sess.Cart.Subtotal)
}

func TestCheckout_AppliesTaxAndClearsCart(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	svc := newService(t, repo)
	sess := session.New("s1", t0)
	cartOf100(t, svc, sess)

	order, err := svc.Checkout(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, 100.0, order.Subtotal)
	assert.Equal(t, 18.0, order.Tax)
	assert.Equal(t, 118.0, order.Total)
	assert.Equal(t, TaxRate, order.TaxRate)
	assert.Equal(t, 3, order.ItemCount)
	assert.Len(t, order.Items, 2)

	assert.True(t, sess.Cart.IsEmpty())
	assert.Equal(t, 0.0, sess.Cart.Subtotal)
	assert.True(t, sess.Dirty())

	orders, err := svc.Orders(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "order-1", orders[0].ID)
}

func TestCheckout_EmptyCartCreatesNothing(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	svc := newService(t, repo)

	_, err := svc.Checkout(context.Background(), session.New("s1", t0))
	assert.ErrorIs(t, err, ErrEmptyCart)

	orders, err := repo.ListBySession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_ArchiveFailureKeepsCart(t *testing.T) {
	svc := newService(t, failingRepo{})
	sess := session.New("s1", t0)
	cartOf100(t, svc, sess)

	_, err := svc.Checkout(context.Background(), sess)
	require.Error(t, err)
	assert.Len(t, sess.Cart.Items, 2)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 14.4, round2(80*TaxRate))
	assert.Equal(t, 0.01, round2(0.005))
	assert.Equal(t, 45.9, round2(255*TaxRate))
}

func TestSQLiteOrderRepository_RoundTrip(t *testing.T) {
	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := NewSQLiteOrderRepository(sqlDB)
	svc := newService(t, repo)
	sess := session.New("s1", t0)
	cartOf100(t, svc, sess)

	_, err = svc.Checkout(context.Background(), sess)
	require.NoError(t, err)

	orders, err := repo.ListBySession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "order-1", o.ID)
	assert.Equal(t, 118.0, o.Total)
	assert.True(t, o.CreatedAt.Equal(t0))
	require.Len(t, o.Items, 2)
	assert.Equal(t, "banana", o.Items[0].Name)
	assert.Equal(t, 60.0, o.Items[1].LineTotal)

	other, err := repo.ListBySession(context.Background(), "s2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

// ---------------- handlers ----------------

func newTestRouter(t *testing.T, sess *session.Session) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(newService(t, NewInMemoryOrderRepository()))
	r := gin.New()
	r.Use(func(c *gin.Context) { session.Attach(c, sess) })
	r.GET("/cart", h.GetCart)
	r.POST("/cart/add", h.Add)
	r.POST("/cart/clear", h.Clear)
	r.POST("/cart/checkout", h.Checkout)
	r.GET("/orders", h.Orders)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestAddHandler(t *testing.T) {
	sess := session.New("s1", t0)
	r := newTestRouter(t, sess)

	w := do(r, http.MethodPost, "/cart/add", `{"item_name":"Apple","quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Added 2kg of apple to cart")

	w = do(r, http.MethodPost, "/cart/add", `{"item_name":"apple"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, sess.Cart.Items[0].Quantity)

	w = do(r, http.MethodPost, "/cart/add", `{"item_name":"durian"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Item 'durian' not found")

	w = do(r, http.MethodPost, "/cart/add", `{"quantity":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/cart/add", `{"item_name":"apple","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddHandler_QuantityCap(t *testing.T) {
	sess := session.New("s1", t0)
	r := newTestRouter(t, sess)

	for _, body := range []string{
		`{"item_name":"apple","quantity":9223372036854775807}`,
		`{"item_name":"apple","quantity":1001}`,
		`{"item_name":"apple","quantity":100000000000000000000}`,
	} {
		w := do(r, http.MethodPost, "/cart/add", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.True(t, sess.Cart.IsEmpty())

	w := do(r, http.MethodPost, "/cart/add", `{"item_name":"apple","quantity":1000}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/cart/add", `{"item_name":"apple","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "apple already has 1000kg")
	assert.Equal(t, cart.MaxLineQuantity, sess.Cart.Items[0].Quantity)
	assert.Equal(t, 80000.0, sess.Cart.Subtotal)
}

func TestCartAndClearHandlers(t *testing.T) {
	sess := session.New("s1", t0)
	r := newTestRouter(t, sess)

	do(r, http.MethodPost, "/cart/add", `{"item_name":"milk","quantity":1}`)

	w := do(r, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success  bool      `json:"success"`
		Cart     cart.Cart `json:"cart"`
		Currency string    `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INR", body.Currency)
	assert.Equal(t, 60.0, body.Cart.Subtotal)

	w = do(r, http.MethodPost, "/cart/clear", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cart cleared")
	assert.True(t, sess.Cart.IsEmpty())
}

func TestCheckoutHandler(t *testing.T) {
	sess := session.New("s1", t0)
	r := newTestRouter(t, sess)

	w := do(r, http.MethodPost, "/cart/checkout", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cart is empty")

	do(r, http.MethodPost, "/cart/add", `{"item_name":"banana","quantity":1}`)
	do(r, http.MethodPost, "/cart/add", `{"item_name":"potato","quantity":2}`)

	w = do(r, http.MethodPost, "/cart/checkout", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Order Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 18.0, body.Order.Tax)
	assert.Equal(t, 118.0, body.Order.Total)

	w = do(r, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"order_id":"order-1"`)
}
