package compliance

import (
	"embed"
	"fmt"
	"os"
	"sort"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

//go:embed data/catalog.yaml data/rules.yaml
var defaultTables embed.FS

// Engine evaluates a rule set against a catalog. It holds no mutable state.
type Engine struct {
	catalog *Catalog
	rules   *RuleSet
}

func NewEngine(catalog *Catalog, rules *RuleSet) *Engine {
	return &Engine{catalog: catalog, rules: rules}
}

// DefaultEngine builds an engine from the embedded catalog and rule tables.
func DefaultEngine() (*Engine, error) {
	return LoadEngine("", "")
}

// LoadEngine reads the catalog and rule tables from the given paths, falling
// back to the embedded copies for empty paths.
func LoadEngine(catalogPath, rulesPath string) (*Engine, error) {
	rawCatalog, err := readTable(catalogPath, "data/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	rawRules, err := readTable(rulesPath, "data/rules.yaml")
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	catalog, err := ParseCatalog(rawCatalog)
	if err != nil {
		return nil, err
	}
	rules, err := ParseRuleSet(rawRules)
	if err != nil {
		return nil, err
	}
	return NewEngine(catalog, rules), nil
}

func readTable(path, embedded string) ([]byte, error) {
	if path == "" {
		return defaultTables.ReadFile(embedded)
	}
	return os.ReadFile(path)
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) Rules() *RuleSet {
	return e.rules
}

// Evaluation is a built roadmap plus the rule ids that were dropped because
// the catalog does not know them.
type Evaluation struct {
	Items   []domain.RoadmapItem
	Unknown []domain.DocumentTypeID
}

// GeneratedTypes projects document records onto the set of types that have
// at least one record. Versions and history are irrelevant here.
func GeneratedTypes(records []domain.DocumentRecord) map[domain.DocumentTypeID]struct{} {
	out := make(map[domain.DocumentTypeID]struct{}, len(records))
	for _, rec := range records {
		out[rec.TypeID] = struct{}{}
	}
	return out
}

func (e *Engine) BuildRoadmap(profile domain.CompanyProfile, records []domain.DocumentRecord) []domain.RoadmapItem {
	return e.Evaluate(profile, records).Items
}

func (e *Engine) Evaluate(profile domain.CompanyProfile, records []domain.DocumentRecord) Evaluation {
	generated := GeneratedTypes(records)
	applicable := e.rules.Applicable(profile)

	items := make([]domain.RoadmapItem, 0, len(applicable))
	added := make(map[domain.DocumentTypeID]struct{}, len(applicable))
	var unknown []domain.DocumentTypeID

	for _, rule := range applicable {
		if _, dup := added[rule.Document]; dup {
			continue
		}
		entry, ok := e.catalog.Lookup(rule.Document)
		if !ok {
			unknown = appendOnce(unknown, rule.Document)
			continue
		}

		status := domain.StatusMissing
		if _, done := generated[rule.Document]; done {
			status = domain.StatusCompleted
		}
		items = append(items, domain.RoadmapItem{
			ID:       entry.ID,
			Title:    entry.Title,
			Kind:     entry.Kind,
			Priority: rule.Priority,
			Status:   status,
			Reason:   rule.Reason,
			Rank:     len(items),
		})
		added[rule.Document] = struct{}{}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return sortKey(items[i]) < sortKey(items[j])
	})

	return Evaluation{Items: items, Unknown: unknown}
}

// sortKey orders critical before recommended, then missing before completed.
func sortKey(item domain.RoadmapItem) int {
	key := 0
	if item.Priority != domain.PriorityCritical {
		key += 2
	}
	if item.Status != domain.StatusMissing {
		key++
	}
	return key
}

func appendOnce(ids []domain.DocumentTypeID, id domain.DocumentTypeID) []domain.DocumentTypeID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
