package compliance

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

type RuleGroup string

const (
	GroupUniversalCritical    RuleGroup = "universal-critical"
	GroupUniversalRecommended RuleGroup = "universal-recommended"
	GroupIndustry             RuleGroup = "industry"
	GroupSize                 RuleGroup = "size"
)

// Rule is one (document, priority, reason) triple produced for a profile.
type Rule struct {
	Document domain.DocumentTypeID
	Priority domain.Priority
	Reason   string
	Group    RuleGroup
}

// RuleSet holds the declarative rule tables. It is immutable after parsing
// and safe for concurrent use.
type RuleSet struct {
	universalCritical    []Rule
	universalRecommended []Rule
	industries           map[domain.Industry][]Rule
	largeBands           map[domain.CompanySize]struct{}
	size                 []Rule
}

type rulesFile struct {
	Universal struct {
		Critical    universalBlock `yaml:"critical"`
		Recommended universalBlock `yaml:"recommended"`
	} `yaml:"universal"`
	Industries []industryBundle `yaml:"industries"`
	Size       sizeBlock        `yaml:"size"`
}

type universalBlock struct {
	Reason    string   `yaml:"reason"`
	Documents []string `yaml:"documents"`
}

type ruleEntry struct {
	Document string `yaml:"document"`
	Priority string `yaml:"priority"`
	Reason   string `yaml:"reason"`
}

type industryBundle struct {
	Bundle     string      `yaml:"bundle"`
	Reason     string      `yaml:"reason"`
	Industries []string    `yaml:"industries"`
	Rules      []ruleEntry `yaml:"rules"`
}

type sizeBlock struct {
	Reason     string      `yaml:"reason"`
	LargeBands []string    `yaml:"large_bands"`
	Rules      []ruleEntry `yaml:"rules"`
}

// ParseRuleSet decodes the YAML rule tables. Unknown industries, size bands
// or priorities are load errors; document ids are checked separately against
// a catalog with UnknownDocuments.
func ParseRuleSet(raw []byte) (*RuleSet, error) {
	var file rulesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode rules yaml: %w", err)
	}

	rs := &RuleSet{
		industries: make(map[domain.Industry][]Rule),
		largeBands: make(map[domain.CompanySize]struct{}),
	}
	rs.universalCritical = universalRules(file.Universal.Critical, domain.PriorityCritical, GroupUniversalCritical)
	rs.universalRecommended = universalRules(file.Universal.Recommended, domain.PriorityRecommended, GroupUniversalRecommended)

	for _, bundle := range file.Industries {
		rules, err := convertRules(bundle.Rules, bundle.Reason, GroupIndustry)
		if err != nil {
			return nil, fmt.Errorf("industry bundle %q: %w", bundle.Bundle, err)
		}
		for _, raw := range bundle.Industries {
			ind, ok := domain.ParseIndustry(raw)
			if !ok {
				return nil, fmt.Errorf("industry bundle %q: unknown industry %q", bundle.Bundle, raw)
			}
			if _, dup := rs.industries[ind]; dup {
				return nil, fmt.Errorf("industry %q mapped by more than one bundle", ind)
			}
			rs.industries[ind] = rules
		}
	}

	for _, raw := range file.Size.LargeBands {
		band, ok := domain.ParseCompanySize(raw)
		if !ok {
			return nil, fmt.Errorf("size rules: unknown company size band %q", raw)
		}
		rs.largeBands[band] = struct{}{}
	}
	sizeRules, err := convertRules(file.Size.Rules, file.Size.Reason, GroupSize)
	if err != nil {
		return nil, fmt.Errorf("size rules: %w", err)
	}
	rs.size = sizeRules

	return rs, nil
}

func universalRules(block universalBlock, priority domain.Priority, group RuleGroup) []Rule {
	out := make([]Rule, 0, len(block.Documents))
	for _, id := range block.Documents {
		out = append(out, Rule{
			Document: domain.DocumentTypeID(strings.TrimSpace(id)),
			Priority: priority,
			Reason:   block.Reason,
			Group:    group,
		})
	}
	return out
}

func convertRules(entries []ruleEntry, fallbackReason string, group RuleGroup) ([]Rule, error) {
	out := make([]Rule, 0, len(entries))
	for _, e := range entries {
		priority := domain.Priority(strings.TrimSpace(e.Priority))
		if !priority.Valid() {
			return nil, fmt.Errorf("document %q: unknown priority %q", e.Document, e.Priority)
		}
		reason := strings.TrimSpace(e.Reason)
		if reason == "" {
			reason = fallbackReason
		}
		out = append(out, Rule{
			Document: domain.DocumentTypeID(strings.TrimSpace(e.Document)),
			Priority: priority,
			Reason:   reason,
			Group:    group,
		})
	}
	return out, nil
}

// IsLarge reports whether the size band triggers the size rules.
func (rs *RuleSet) IsLarge(size domain.CompanySize) bool {
	_, ok := rs.largeBands[size]
	return ok
}

// Applicable returns every rule that fires for the profile, before
// deduplication, in evaluation order.
func (rs *RuleSet) Applicable(profile domain.CompanyProfile) []Rule {
	out := make([]Rule, 0, len(rs.universalCritical)+len(rs.universalRecommended)+8)
	out = append(out, rs.universalCritical...)
	out = append(out, rs.universalRecommended...)
	if profile.Industry != domain.IndustryUnset {
		out = append(out, rs.industries[profile.Industry]...)
	}
	if rs.IsLarge(profile.CompanySize) {
		out = append(out, rs.size...)
	}
	return out
}

// UnknownDocuments lists rule document ids the catalog does not know, each
// reported once in first-seen order.
func (rs *RuleSet) UnknownDocuments(c *Catalog) []domain.DocumentTypeID {
	seen := make(map[domain.DocumentTypeID]struct{})
	var unknown []domain.DocumentTypeID
	check := func(rules []Rule) {
		for _, r := range rules {
			if _, ok := c.Lookup(r.Document); ok {
				continue
			}
			if _, dup := seen[r.Document]; dup {
				continue
			}
			seen[r.Document] = struct{}{}
			unknown = append(unknown, r.Document)
		}
	}
	check(rs.universalCritical)
	check(rs.universalRecommended)
	for _, ind := range domain.Industries() {
		check(rs.industries[ind])
	}
	check(rs.size)
	return unknown
}
