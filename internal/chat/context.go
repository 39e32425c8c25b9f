package chat

import (
	"fmt"
	"strconv"
	"strings"

	"grocerbot/internal/cart"
	"grocerbot/internal/session"
)

const (
	contextTurns     = 5
	contextTurnChars = 100
	contextOrders    = 3
)

// BuildContext renders the session state the model needs on every call:
// recent turns, the authoritative cart and recent orders.
func BuildContext(s *session.Session) string {
	var b strings.Builder

	b.WriteString("=== CONVERSATION HISTORY (Last 5 messages) ===\n")
	turns := s.RecentTurns(contextTurns)
	if len(turns) == 0 {
		b.WriteString("No previous conversation\n")
	}
	for _, t := range turns {
		role := "Assistant"
		if t.Role == session.RoleUser {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, truncate(t.Message, contextTurnChars))
	}

	b.WriteString("\n\n=== CURRENT SHOPPING CART ===\n")
	if s.Cart.IsEmpty() {
		b.WriteString("Cart is empty\n")
	}
	for _, it := range s.Cart.Items {
		fmt.Fprintf(&b, "- %dkg %s @ Rs%s/kg = Rs%s\n", it.Quantity, it.Name, money(it.UnitPrice), money(it.LineTotal))
	}
	fmt.Fprintf(&b, "Total Items: %d\n", s.Cart.ItemCount)
	fmt.Fprintf(&b, "Subtotal: Rs%s\n", money(s.Cart.Subtotal))

	b.WriteString("\n\n=== USER CONTEXT ===\n")
	recent := s.RecentOrderItems(contextOrders)
	names := make([]string, 0, len(recent))
	for _, o := range recent {
		names = append(names, o.Item)
	}
	fmt.Fprintf(&b, "Last ordered items: [%s]\n", strings.Join(names, ", "))

	return b.String()
}

// CartListing is the deterministic answer to "what's in my cart".
func CartListing(c *cart.Cart) string {
	if c.IsEmpty() {
		return "Your cart is empty."
	}

	lines := make([]string, 0, len(c.Items)+2)
	lines = append(lines, "Here are the items in your cart:")
	for _, it := range c.Items {
		lines = append(lines, fmt.Sprintf("- %dkg %s - Rs%s x %d = Rs%s",
			it.Quantity, it.Name, money(it.UnitPrice), it.Quantity, money(it.LineTotal)))
	}
	lines = append(lines, "Subtotal: Rs"+money(c.Subtotal))
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
