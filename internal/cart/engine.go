package cart

import (
	"errors"
	"fmt"
	"time"

	"grocerbot/internal/catalog"
)

type Action string

const (
	ActionAdd   Action = "add"
	ActionClear Action = "clear"
	ActionView  Action = "view"
)

// MaxLineQuantity caps the kilograms held on one cart line.
const MaxLineQuantity = 1000

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", MaxLineQuantity)
	ErrUnknownAction   = errors.New("invalid action")
)

// ItemNotFoundError names the item that failed catalog resolution.
type ItemNotFoundError struct {
	Name string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("Item '%s' not found", e.Name)
}

func (e *ItemNotFoundError) Unwrap() error {
	return ErrItemNotFound
}

// Result describes the outcome of Apply. Mutated is false for view and for
// any failed action.
type Result struct {
	OK      bool
	Message string
	Mutated bool
	Item    *Item
}

// Engine applies cart actions, pricing items through the catalog.
type Engine struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c, now: time.Now}
}

// Apply dispatches an action. name and qty are only read by add.
func (e *Engine) Apply(c *Cart, action Action, name string, qty int) (Result, error) {
	switch action {
	case ActionAdd:
		return e.Add(c, name, qty)
	case ActionClear:
		return e.Clear(c), nil
	case ActionView:
		return Result{OK: true, Message: "Cart retrieved"}, nil
	default:
		return Result{Message: ErrUnknownAction.Error()}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// Add resolves name through the catalog and merges it into the cart. The
// line is stored under the catalog name so spelling variants merge.
func (e *Engine) Add(c *Cart, name string, qty int) (Result, error) {
	if qty < 1 || qty > MaxLineQuantity {
		return Result{Message: ErrInvalidQuantity.Error()}, ErrInvalidQuantity
	}

	match, ok := e.catalog.Lookup(name)
	if !ok {
		err := &ItemNotFoundError{Name: name}
		return Result{Message: err.Error()}, err
	}

	idx := c.Find(match.Name)
	if idx >= 0 {
		if qty > MaxLineQuantity-c.Items[idx].Quantity {
			err := fmt.Errorf("%w: %s already has %dkg", ErrInvalidQuantity, match.Name, c.Items[idx].Quantity)
			return Result{Message: err.Error()}, err
		}
		c.Items[idx].Quantity += qty
	} else {
		c.Items = append(c.Items, Item{
			Name:      match.Name,
			Quantity:  qty,
			UnitPrice: match.Price,
			Category:  match.Category,
		})
		idx = len(c.Items) - 1
	}

	c.Recalculate()
	c.LastUpdated = e.now()

	added := c.Items[idx]
	return Result{
		OK:      true,
		Message: fmt.Sprintf("Added %dkg of %s to cart", qty, match.Name),
		Mutated: true,
		Item:    &added,
	}, nil
}

func (e *Engine) Clear(c *Cart) Result {
	c.Items = []Item{}
	c.Recalculate()
	c.LastUpdated = e.now()
	return Result{OK: true, Message: "Cart cleared", Mutated: true}
}
