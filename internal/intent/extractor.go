package intent

import (
	"regexp"
	"strconv"
	"strings"

	"grocerbot/internal/cart"
	"grocerbot/internal/catalog"
)

// Intent is the heuristic reading of one user message. The three signals
// are independent; callers decide what to do with the combination.
type Intent struct {
	IsCartQuery     bool
	WantsToOrder    bool
	IsPriceQuestion bool

	// Item is empty when nothing could be extracted. Quantity is 0 when a
	// quantity was stated but falls outside 1..cart.MaxLineQuantity.
	Item     string
	Quantity int
	// Rule names the pattern (or fallback) that produced Item.
	Rule string
}

// HasItem reports whether an item candidate was extracted.
func (i Intent) HasItem() bool {
	return i.Item != ""
}

// Rule is one step of the extraction cascade.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Extract func(groups []string) (item string, qty int, ok bool)
}

// DefaultRules are evaluated in order against the lowercased text, most
// specific first. The first rule that matches wins.
var DefaultRules = []Rule{
	{
		Name:    "quantity_unit_of_item",
		Pattern: regexp.MustCompile(`(\d+)\s*(?:kg|kilos?|kilograms?|g|grams?)?\s+(?:of\s+)?([a-zA-Z]+)`),
		Extract: quantityThenItem,
	},
	{
		Name:    "add_item_to",
		Pattern: regexp.MustCompile(`add\s+(\d+)?\s*([a-zA-Z]+)\s+to`),
		Extract: quantityThenItem,
	},
	{
		Name:    "order_item",
		Pattern: regexp.MustCompile(`order\s+(\d+)?\s*([a-zA-Z]+)`),
		Extract: quantityThenItem,
	},
	{
		Name:    "i_want_item",
		Pattern: regexp.MustCompile(`i want\s+(\d+)?\s*([a-zA-Z]+)`),
		Extract: quantityThenItem,
	},
	{
		Name:    "quantity_item",
		Pattern: regexp.MustCompile(`(\d+)\s*([a-zA-Z]+)(?:\s+please)?`),
		Extract: quantityThenItem,
	},
}

// FallbackCategories are scanned, in order, for a catalog name appearing
// anywhere in the text when no rule matched.
var FallbackCategories = []string{"fruits", "vegetables"}

var cartQueryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`what.*in.*my.*cart`),
	regexp.MustCompile(`what.*in.*the.*cart`),
	regexp.MustCompile(`what.*are.*in.*my.*cart`),
	regexp.MustCompile(`what.*items.*in.*my.*cart`),
	regexp.MustCompile(`list.*cart`),
	regexp.MustCompile(`show.*cart`),
}

var orderKeywords = []string{
	"yes", "add", "order", "i want", "put in cart", "add to cart",
	"please add", "add it", "i need", "give me", "put it", "include",
	"buy", "purchase", "get me",
}

var priceKeywords = []string{"price", "cost", "how much", "rate"}

// Extractor classifies free text against a fixed rule cascade and the
// price catalog.
type Extractor struct {
	catalog *catalog.Catalog
	rules   []Rule
}

func NewExtractor(c *catalog.Catalog) *Extractor {
	return &Extractor{catalog: c, rules: DefaultRules}
}

// WithRules returns a copy of the extractor using a different cascade.
func (e *Extractor) WithRules(rules []Rule) *Extractor {
	return &Extractor{catalog: e.catalog, rules: rules}
}

func (e *Extractor) Classify(text string) Intent {
	lower := strings.ToLower(text)

	item, qty, rule := e.extract(lower)
	return Intent{
		IsCartQuery:     IsCartQuery(lower),
		WantsToOrder:    WantsToOrder(lower),
		IsPriceQuestion: IsPriceQuestion(lower),
		Item:            item,
		Quantity:        qty,
		Rule:            rule,
	}
}

// ExtractItem returns the candidate item and quantity. qty defaults to 1
// and is 0 for a stated quantity that is out of range. item is empty when
// nothing was found.
func (e *Extractor) ExtractItem(text string) (string, int) {
	item, qty, _ := e.extract(strings.ToLower(text))
	return item, qty
}

func (e *Extractor) extract(lower string) (string, int, string) {
	for _, r := range e.rules {
		groups := r.Pattern.FindStringSubmatch(lower)
		if groups == nil {
			continue
		}
		item, qty, ok := r.Extract(groups)
		if !ok {
			continue
		}
		return item, qty, r.Name
	}

	if e.catalog == nil {
		return "", 1, ""
	}
	for _, name := range FallbackCategories {
		cat, ok := e.catalog.Category(name)
		if !ok {
			continue
		}
		for _, it := range cat.Items {
			if strings.Contains(lower, it.Name) {
				return it.Name, 1, "catalog_" + name
			}
		}
	}
	return "", 1, ""
}

// quantityThenItem handles the (digits?, word) group layout shared by every
// default rule.
func quantityThenItem(groups []string) (string, int, bool) {
	if len(groups) < 3 {
		return "", 1, false
	}
	qty, _ := parseQuantity(groups[1])
	item := groups[2]
	if item == "" {
		item = groups[1]
	}
	if item == "" {
		return "", 1, false
	}
	return item, qty, true
}

// parseQuantity reads the captured digits. A missing quantity means 1; a
// stated one must lie within 1..cart.MaxLineQuantity.
func parseQuantity(s string) (int, bool) {
	if s == "" {
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > cart.MaxLineQuantity {
		return 0, false
	}
	return n, true
}

func IsCartQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range cartQueryPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

func WantsToOrder(text string) bool {
	return containsAny(strings.ToLower(text), orderKeywords)
}

func IsPriceQuestion(text string) bool {
	return containsAny(strings.ToLower(text), priceKeywords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
