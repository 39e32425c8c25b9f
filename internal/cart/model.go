package cart

import (
	"strings"
	"time"
)

// Item is one cart line. Name is the identity key, compared case-folded.
type Item struct {
	Name      string  `json:"item"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
	Category  string  `json:"category"`
	LineTotal float64 `json:"total"`
}

// Cart holds items in insertion order. Subtotal and ItemCount are derived
// and must only be written by Recalculate.
type Cart struct {
	Items       []Item    `json:"items"`
	Subtotal    float64   `json:"subtotal"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// Summary is the compact cart view returned alongside chat replies.
type Summary struct {
	ItemCount int     `json:"item_count"`
	Subtotal  float64 `json:"subtotal"`
	Items     []Item  `json:"items"`
	Count     int     `json:"count"`
}

func New(now time.Time) *Cart {
	return &Cart{Items: []Item{}, CreatedAt: now, LastUpdated: now}
}

// Recalculate rebuilds line totals and cart totals from the item list.
func (c *Cart) Recalculate() {
	var subtotal float64
	count := 0
	for i := range c.Items {
		c.Items[i].LineTotal = float64(c.Items[i].Quantity) * c.Items[i].UnitPrice
		subtotal += c.Items[i].LineTotal
		count += c.Items[i].Quantity
	}
	c.Subtotal = subtotal
	c.ItemCount = count
}

// Find returns the index of the item with the given name, or -1.
func (c *Cart) Find(name string) int {
	for i, it := range c.Items {
		if strings.EqualFold(it.Name, name) {
			return i
		}
	}
	return -1
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Summary() Summary {
	return Summary{
		ItemCount: c.ItemCount,
		Subtotal:  c.Subtotal,
		Items:     append([]Item{}, c.Items...),
		Count:     len(c.Items),
	}
}
