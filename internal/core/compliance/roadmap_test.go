package compliance

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

var universalCritical = []domain.DocumentTypeID{
	"employment-contract", "disciplinary", "grievance", "leave", "health-safety", "uif", "termination",
}

var universalRecommended = []domain.DocumentTypeID{
	"sexual-harassment", "electronic-communications", "recruitment-selection",
	"job-description", "leave-application", "code-of-ethics",
}

func newDefaultEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := DefaultEngine()
	require.NoError(t, err)
	return engine
}

func records(ids ...domain.DocumentTypeID) []domain.DocumentRecord {
	out := make([]domain.DocumentRecord, 0, len(ids))
	for i, id := range ids {
		out = append(out, domain.DocumentRecord{ID: string(id) + "-rec", TypeID: id, Version: 1 + i%3})
	}
	return out
}

func itemByID(items []domain.RoadmapItem, id domain.DocumentTypeID) (domain.RoadmapItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.RoadmapItem{}, false
}

func TestDefaultTablesReferenceOnlyCatalogDocuments(t *testing.T) {
	engine := newDefaultEngine(t)
	assert.Empty(t, engine.Rules().UnknownDocuments(engine.Catalog()))
}

func TestRoadmapTechnologySmallCompanyWithoutDocuments(t *testing.T) {
	engine := newDefaultEngine(t)
	profile := domain.CompanyProfile{CompanyName: "Acme", Industry: domain.IndustryTechnology, CompanySize: domain.CompanySizeSmall}

	items := engine.BuildRoadmap(profile, nil)

	for _, id := range universalCritical {
		item, ok := itemByID(items, id)
		require.True(t, ok, "missing universal item %s", id)
		assert.Equal(t, domain.PriorityCritical, item.Priority)
		assert.Equal(t, domain.StatusMissing, item.Status)
	}
	for _, id := range []domain.DocumentTypeID{"confidentiality", "data-protection-privacy"} {
		item, ok := itemByID(items, id)
		require.True(t, ok, "missing industry item %s", id)
		assert.Equal(t, domain.PriorityCritical, item.Priority)
		assert.Equal(t, domain.StatusMissing, item.Status)
		assert.NotEqual(t, "Recommended for technology businesses.", item.Reason)
	}
	for _, id := range []domain.DocumentTypeID{"remote-hybrid-work", "byod", "social-media", "expense-reimbursement", "conflict-of-interest"} {
		item, ok := itemByID(items, id)
		require.True(t, ok, "missing industry item %s", id)
		assert.Equal(t, domain.PriorityRecommended, item.Priority)
	}
	_, ok := itemByID(items, "employment-equity")
	assert.False(t, ok, "size rules must not fire for 11-50")

	status := Score(items)
	assert.Equal(t, 0, status.Score)
	assert.Equal(t, 9, status.TotalMandatory)
	require.NotNil(t, status.NextRecommendation)
	assert.Equal(t, universalCritical[0], status.NextRecommendation.ID)
}

func TestRoadmapTechnologyWithUniversalDocumentsCompleted(t *testing.T) {
	engine := newDefaultEngine(t)
	profile := domain.CompanyProfile{CompanyName: "Acme", Industry: domain.IndustryTechnology, CompanySize: domain.CompanySizeSmall}

	items := engine.BuildRoadmap(profile, records(universalCritical...))
	status := Score(items)

	assert.Equal(t, 9, status.TotalMandatory)
	assert.Equal(t, 7, status.CompletedMandatory)
	assert.Equal(t, 78, status.Score)
	assert.Equal(t, []domain.DocumentTypeID{"confidentiality", "data-protection-privacy"}, status.MissingMandatory)
	require.NotNil(t, status.NextRecommendation)
	assert.Equal(t, domain.DocumentTypeID("confidentiality"), status.NextRecommendation.ID)

	// Critical+missing first, then critical+completed.
	assert.Equal(t, domain.DocumentTypeID("confidentiality"), items[0].ID)
	assert.Equal(t, domain.DocumentTypeID("data-protection-privacy"), items[1].ID)
	assert.Equal(t, universalCritical[0], items[2].ID)
}

func TestRoadmapEmptyProfileHasOnlyUniversalItems(t *testing.T) {
	engine := newDefaultEngine(t)

	items := engine.BuildRoadmap(domain.CompanyProfile{CompanyName: "Acme"}, nil)

	got := make([]domain.DocumentTypeID, 0, len(items))
	for _, item := range items {
		got = append(got, item.ID)
	}
	want := append(append([]domain.DocumentTypeID{}, universalCritical...), universalRecommended...)
	assert.Equal(t, want, got)
}

func TestRoadmapUnrecognizedProfileValuesFireNothing(t *testing.T) {
	engine := newDefaultEngine(t)
	empty := engine.BuildRoadmap(domain.CompanyProfile{CompanyName: "Acme"}, nil)
	odd := engine.BuildRoadmap(domain.CompanyProfile{
		CompanyName: "Acme",
		Industry:    domain.Industry("Space Mining"),
		CompanySize: domain.CompanySize("a few"),
	}, nil)
	assert.Equal(t, empty, odd)
}

func TestRoadmapLargeCompanyGetsSizeRules(t *testing.T) {
	engine := newDefaultEngine(t)

	for _, industry := range append(domain.Industries(), domain.IndustryUnset) {
		items := engine.BuildRoadmap(domain.CompanyProfile{CompanyName: "Acme", Industry: industry, CompanySize: domain.CompanySizeXLarge}, nil)
		for _, id := range []domain.DocumentTypeID{"employment-equity", "workplace-skills-plan"} {
			item, ok := itemByID(items, id)
			require.True(t, ok, "industry %q: missing %s", industry, id)
			assert.Equal(t, domain.PriorityCritical, item.Priority)
		}
	}
}

func TestRoadmapFirstRuleWinsPriorityAndReason(t *testing.T) {
	engine := newDefaultEngine(t)

	items := engine.BuildRoadmap(domain.CompanyProfile{CompanyName: "Acme", CompanySize: domain.CompanySizeMedium}, nil)
	item, ok := itemByID(items, "sexual-harassment")
	require.True(t, ok)
	assert.Equal(t, domain.PriorityRecommended, item.Priority, "size group must not override the universal group")
	assert.Equal(t, "Recommended best practice for every employer.", item.Reason)

	items = engine.BuildRoadmap(domain.CompanyProfile{CompanyName: "Clinic", Industry: domain.IndustryHealth}, nil)
	item, ok = itemByID(items, "code-of-ethics")
	require.True(t, ok)
	assert.Equal(t, domain.PriorityRecommended, item.Priority)
}

func TestRoadmapDropsDocumentsUnknownToCatalog(t *testing.T) {
	catalog, err := NewCatalog([]domain.DocumentType{
		{ID: "known", Title: "Known", Kind: domain.KindPolicy},
	})
	require.NoError(t, err)
	rules, err := ParseRuleSet([]byte(`
universal:
  critical:
    reason: always
    documents: [ghost, known, ghost]
`))
	require.NoError(t, err)

	eval := NewEngine(catalog, rules).Evaluate(domain.CompanyProfile{CompanyName: "Acme"}, nil)
	require.Len(t, eval.Items, 1)
	assert.Equal(t, domain.DocumentTypeID("known"), eval.Items[0].ID)
	assert.Equal(t, []domain.DocumentTypeID{"ghost"}, eval.Unknown)
	assert.Equal(t, []domain.DocumentTypeID{"ghost"}, rules.UnknownDocuments(catalog))
}

func TestRoadmapCompletionReflectsExistenceOnly(t *testing.T) {
	engine := newDefaultEngine(t)
	profile := domain.CompanyProfile{CompanyName: "Acme", Industry: domain.IndustryMining}

	once := records("disciplinary", "ppe")
	twice := append(records("disciplinary", "ppe"), domain.DocumentRecord{ID: "again", TypeID: "disciplinary", Version: 4})

	a := engine.BuildRoadmap(profile, once)
	b := engine.BuildRoadmap(profile, twice)
	assert.Equal(t, a, b)
	assert.Equal(t, Score(a), Score(b))
}

func TestRoadmapProperties(t *testing.T) {
	engine := newDefaultEngine(t)
	catalogIDs := make([]domain.DocumentTypeID, 0, engine.Catalog().Len())
	for _, dt := range engine.Catalog().Entries() {
		catalogIDs = append(catalogIDs, dt.ID)
	}
	sizes := append(domain.CompanySizes(), domain.CompanySizeUnset, domain.CompanySize("bogus"))
	industries := append(domain.Industries(), domain.IndustryUnset, domain.Industry("bogus"))
	rng := rand.New(rand.NewSource(42))

	for _, industry := range industries {
		for _, size := range sizes {
			var done []domain.DocumentTypeID
			for _, id := range catalogIDs {
				if rng.Intn(3) == 0 {
					done = append(done, id)
				}
			}
			profile := domain.CompanyProfile{CompanyName: "Acme", Industry: industry, CompanySize: size}
			items := engine.BuildRoadmap(profile, records(done...))

			assert.Equal(t, items, engine.BuildRoadmap(profile, records(done...)), "non-deterministic roadmap")

			seen := make(map[domain.DocumentTypeID]bool)
			for i, item := range items {
				assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
				seen[item.ID] = true
				if i > 0 {
					assert.LessOrEqual(t, sortKey(items[i-1]), sortKey(item), "sort order broken at %d", i)
					if sortKey(items[i-1]) == sortKey(item) {
						assert.Less(t, items[i-1].Rank, item.Rank, "tie order not preserved at %d", i)
					}
				}
			}

			status := Score(items)
			assert.GreaterOrEqual(t, status.Score, 0)
			assert.LessOrEqual(t, status.Score, 100)
			assert.LessOrEqual(t, status.CompletedMandatory, status.TotalMandatory)
			if status.CompletedMandatory == 0 {
				assert.Equal(t, 0, status.Score)
			}
			assert.Equal(t, status.Score == 100, status.CompletedMandatory == status.TotalMandatory && status.TotalMandatory > 0)
			assert.Equal(t, status.NextRecommendation == nil, len(status.MissingMandatory) == 0)
		}
	}
}

func TestParseRuleSetRejectsUnknownEnums(t *testing.T) {
	_, err := ParseRuleSet([]byte(`
industries:
  - bundle: x
    industries: [Underwater Basket Weaving]
    rules: []
`))
	assert.Error(t, err)

	_, err = ParseRuleSet([]byte(`
size:
  large_bands: ["9000+"]
`))
	assert.Error(t, err)

	_, err = ParseRuleSet([]byte(`
size:
  rules:
    - {document: a, priority: urgent}
`))
	assert.Error(t, err)
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]domain.DocumentType{
		{ID: "a", Title: "A", Kind: domain.KindPolicy},
		{ID: "a", Title: "A again", Kind: domain.KindForm},
	})
	assert.Error(t, err)
}
