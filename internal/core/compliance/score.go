package compliance

import "github.com/kirillkom/hrdocs-compliance/internal/core/domain"

// Score reduces a built roadmap to a compliance status. Only critical items
// count towards the score; a roadmap without critical items scores 0.
func Score(items []domain.RoadmapItem) domain.ComplianceStatus {
	status := domain.ComplianceStatus{
		MissingMandatory: []domain.DocumentTypeID{},
	}

	var next *domain.RoadmapItem
	for i := range items {
		item := items[i]
		if item.Priority != domain.PriorityCritical {
			status.TotalRecommended++
			if item.Status == domain.StatusCompleted {
				status.CompletedRecommended++
			}
			continue
		}

		status.TotalMandatory++
		if item.Status == domain.StatusCompleted {
			status.CompletedMandatory++
			continue
		}
		status.MissingMandatory = append(status.MissingMandatory, item.ID)
		if next == nil || item.Rank < next.Rank {
			next = &item
		}
	}

	status.Score = percentRoundHalfUp(status.CompletedMandatory, status.TotalMandatory)
	status.NextRecommendation = next
	return status
}

func percentRoundHalfUp(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}
