package domain

type Priority string

const (
	PriorityCritical    Priority = "critical"
	PriorityRecommended Priority = "recommended"
)

func (p Priority) Valid() bool {
	return p == PriorityCritical || p == PriorityRecommended
}

type CompletionStatus string

const (
	StatusCompleted CompletionStatus = "completed"
	StatusMissing   CompletionStatus = "missing"
)

// RoadmapItem is one line of a company's compliance checklist. Rank is the
// item's position in rule-evaluation order, before sorting.
type RoadmapItem struct {
	ID       DocumentTypeID   `json:"id"`
	Title    string           `json:"title"`
	Kind     DocumentKind     `json:"kind"`
	Priority Priority         `json:"priority"`
	Status   CompletionStatus `json:"status"`
	Reason   string           `json:"reason"`
	Rank     int              `json:"rank"`
}

type ComplianceStatus struct {
	Score              int              `json:"score"`
	TotalMandatory     int              `json:"total_mandatory"`
	CompletedMandatory int              `json:"completed_mandatory"`
	MissingMandatory   []DocumentTypeID `json:"missing_mandatory"`
	NextRecommendation *RoadmapItem     `json:"next_recommendation"`

	TotalRecommended     int `json:"total_recommended"`
	CompletedRecommended int `json:"completed_recommended"`
}

// Assessment bundles one consistent roadmap computation with the profile it
// was computed for.
type Assessment struct {
	Profile CompanyProfile   `json:"profile"`
	Items   []RoadmapItem    `json:"items"`
	Status  ComplianceStatus `json:"status"`
}
