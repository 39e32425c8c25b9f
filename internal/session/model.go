package session

import (
	"time"

	"grocerbot/internal/cart"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// MaxStoredTurns bounds the persisted chat history.
	MaxStoredTurns = 20
	// MaxOrderItems bounds UserContext.LastOrderItems.
	MaxOrderItems = 10
)

type ChatTurn struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderedItem struct {
	Item      string    `json:"item"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

type UserContext struct {
	DisplayName    string            `json:"name"`
	LastOrderItems []OrderedItem     `json:"last_order_items"`
	Preferences    map[string]string `json:"preferences"`
}

// Session is everything the server keeps for one client. It exclusively
// owns its cart, history and user context.
type Session struct {
	ID          string      `json:"session_id"`
	Cart        *cart.Cart  `json:"shopping_cart"`
	History     []ChatTurn  `json:"chat_history"`
	UserContext UserContext `json:"user_context"`
	CreatedAt   time.Time   `json:"created_at"`
	LastSeen    time.Time   `json:"last_seen"`

	dirty bool
}

func New(id string, now time.Time) *Session {
	return &Session{
		ID:      id,
		Cart:    cart.New(now),
		History: []ChatTurn{},
		UserContext: UserContext{
			LastOrderItems: []OrderedItem{},
			Preferences:    map[string]string{},
		},
		CreatedAt: now,
		LastSeen:  now,
	}
}

func (s *Session) AppendTurn(role, message string, now time.Time) {
	s.History = append(s.History, ChatTurn{Role: role, Message: message, Timestamp: now})
	s.dirty = true
}

// TruncateHistory keeps only the most recent n turns.
func (s *Session) TruncateHistory(n int) {
	if len(s.History) > n {
		s.History = append([]ChatTurn(nil), s.History[len(s.History)-n:]...)
	}
}

// RecentTurns returns up to n of the latest turns, oldest first.
func (s *Session) RecentTurns(n int) []ChatTurn {
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// RecordOrderItem appends to LastOrderItems, evicting the oldest entries
// beyond MaxOrderItems.
func (s *Session) RecordOrderItem(item string, qty int, now time.Time) {
	items := append(s.UserContext.LastOrderItems, OrderedItem{Item: item, Quantity: qty, Timestamp: now})
	if len(items) > MaxOrderItems {
		items = append([]OrderedItem(nil), items[len(items)-MaxOrderItems:]...)
	}
	s.UserContext.LastOrderItems = items
	s.dirty = true
}

func (s *Session) RecentOrderItems(n int) []OrderedItem {
	items := s.UserContext.LastOrderItems
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

// ApplyCart runs a cart action and marks the session dirty when the cart
// changed.
func (s *Session) ApplyCart(e *cart.Engine, action cart.Action, name string, qty int) (cart.Result, error) {
	res, err := e.Apply(s.Cart, action, name, qty)
	if res.Mutated {
		s.dirty = true
	}
	return res, err
}

func (s *Session) MarkDirty() { s.dirty = true }

func (s *Session) Dirty() bool { return s.dirty }

func (s *Session) ClearDirty() { s.dirty = false }
