package compliance

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

// Catalog is the static registry of document templates.
type Catalog struct {
	order   []domain.DocumentTypeID
	entries map[domain.DocumentTypeID]domain.DocumentType
}

func NewCatalog(types []domain.DocumentType) (*Catalog, error) {
	c := &Catalog{
		order:   make([]domain.DocumentTypeID, 0, len(types)),
		entries: make(map[domain.DocumentTypeID]domain.DocumentType, len(types)),
	}
	for i, dt := range types {
		dt.ID = domain.DocumentTypeID(strings.TrimSpace(string(dt.ID)))
		if dt.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: empty id", i)
		}
		if strings.TrimSpace(dt.Title) == "" {
			return nil, fmt.Errorf("catalog entry %q: empty title", dt.ID)
		}
		if !dt.Kind.Valid() {
			return nil, fmt.Errorf("catalog entry %q: unknown kind %q", dt.ID, dt.Kind)
		}
		if _, dup := c.entries[dt.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", dt.ID)
		}
		c.order = append(c.order, dt.ID)
		c.entries[dt.ID] = dt
	}
	return c, nil
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc struct {
		Documents []domain.DocumentType `yaml:"documents"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	return NewCatalog(doc.Documents)
}

func (c *Catalog) Lookup(id domain.DocumentTypeID) (domain.DocumentType, bool) {
	dt, ok := c.entries[id]
	return dt, ok
}

// Entries returns catalog entries in declaration order.
func (c *Catalog) Entries() []domain.DocumentType {
	out := make([]domain.DocumentType, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.order)
}
