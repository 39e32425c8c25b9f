package catalog

// Item is a single priced product. Price is per kg.
type Item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Category groups items in the order they appear in the price file.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Match is the result of a successful lookup.
type Match struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}
