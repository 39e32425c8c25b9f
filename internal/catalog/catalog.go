package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrEmptyCatalog = errors.New("catalog has no items")

// Catalog is the process-wide price table. It is built once and only read
// afterwards, so it is safe to share between goroutines.
type Catalog struct {
	categories []Category
	exact      map[string]Match
}

// New builds a catalog from ordered categories. Names are lowercased and the
// first occurrence of a name wins the exact index.
func New(categories []Category) (*Catalog, error) {
	c := &Catalog{exact: make(map[string]Match)}

	total := 0
	for _, cat := range categories {
		norm := Category{Name: strings.ToLower(strings.TrimSpace(cat.Name))}
		for _, it := range cat.Items {
			name := strings.ToLower(strings.TrimSpace(it.Name))
			if name == "" {
				continue
			}
			if it.Price < 0 {
				return nil, errors.New("negative price for " + name)
			}
			norm.Items = append(norm.Items, Item{Name: name, Price: it.Price})
			if _, seen := c.exact[name]; !seen {
				c.exact[name] = Match{Name: name, Price: it.Price, Category: norm.Name}
			}
			total++
		}
		c.categories = append(c.categories, norm)
	}

	if total == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// Lookup resolves a free-text item name to a catalog entry.
//
// An exact (case-insensitive) name always wins. Otherwise the first item, in
// file order, whose name contains the query or is contained in it is
// returned. Partial matching is best effort: "pea" will resolve to "peach"
// if peach is listed first.
func (c *Catalog) Lookup(name string) (Match, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return Match{}, false
	}

	if m, ok := c.exact[q]; ok {
		return m, true
	}

	for _, cat := range c.categories {
		for _, it := range cat.Items {
			if strings.Contains(it.Name, q) || strings.Contains(q, it.Name) {
				return Match{Name: it.Name, Price: it.Price, Category: cat.Name}, true
			}
		}
	}
	return Match{}, false
}

// Categories returns a copy of the ordered category list.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = Category{Name: cat.Name, Items: append([]Item(nil), cat.Items...)}
	}
	return out
}

// Category returns the named category if present.
func (c *Catalog) Category(name string) (Category, bool) {
	name = strings.ToLower(name)
	for _, cat := range c.categories {
		if cat.Name == name {
			return Category{Name: cat.Name, Items: append([]Item(nil), cat.Items...)}, true
		}
	}
	return Category{}, false
}

// MarshalJSON renders {"category": {"item": price}} keeping file order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c.categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, cat.Name); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, it := range cat.Items {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, it.Name); err != nil {
				return nil, err
			}
			price, err := json.Marshal(it.Price)
			if err != nil {
				return nil, err
			}
			buf.Write(price)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Indented is the catalog as indented JSON, used inside model prompts and
// when writing the sample price file.
func (c *Catalog) Indented() (string, error) {
	raw, err := c.MarshalJSON()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}
