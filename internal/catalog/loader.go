package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// DefaultCategories is the sample price table written when no price file
// exists yet.
var DefaultCategories = []Category{
	{Name: "fruits", Items: []Item{{"apple", 80}, {"banana", 40}, {"orange", 60}}},
	{Name: "vegetables", Items: []Item{{"potato", 30}, {"tomato", 40}, {"onion", 25}}},
	{Name: "dairy", Items: []Item{{"milk", 60}, {"eggs", 80}}},
	{Name: "grains", Items: []Item{{"rice", 80}, {"wheat", 40}}},
	{Name: "other", Items: []Item{{"sugar", 45}, {"salt", 20}}},
}

// Parse reads a {"category": {"item": price}} document. JSON and YAML are
// both accepted; yaml nodes are walked directly so mapping order survives.
func Parse(data []byte) (*Catalog, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse price file: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, ErrEmptyCatalog
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, errors.New("price file must be a mapping of categories")
	}

	var categories []Category
	for i := 0; i+1 < len(doc.Content); i += 2 {
		catName := doc.Content[i].Value
		body := doc.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("category %q must be a mapping of item prices", catName)
		}

		cat := Category{Name: catName}
		for j := 0; j+1 < len(body.Content); j += 2 {
			var price float64
			if err := body.Content[j+1].Decode(&price); err != nil {
				return nil, fmt.Errorf("price for %s/%s: %w", catName, body.Content[j].Value, err)
			}
			cat.Items = append(cat.Items, Item{Name: body.Content[j].Value, Price: price})
		}
		categories = append(categories, cat)
	}

	return New(categories)
}

// Load reads the price file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadOrCreate loads the price file, writing the sample table first when
// the file does not exist.
func LoadOrCreate(path string, logger *log.Logger) (*Catalog, error) {
	c, err := Load(path)
	if err == nil {
		logger.Info("grocery prices loaded", "path", path, "categories", len(c.categories))
		return c, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	logger.Warn("price file not found, creating sample prices", "path", path)

	c, err = New(DefaultCategories)
	if err != nil {
		return nil, err
	}
	body, err := c.Indented()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(body+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write sample prices: %w", err)
	}
	return c, nil
}
