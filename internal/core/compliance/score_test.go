package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

func critical(id string, status domain.CompletionStatus, rank int) domain.RoadmapItem {
	return domain.RoadmapItem{ID: domain.DocumentTypeID(id), Priority: domain.PriorityCritical, Status: status, Rank: rank}
}

func TestScoreWithoutMandatoryItemsIsZero(t *testing.T) {
	status := Score([]domain.RoadmapItem{
		{ID: "a", Priority: domain.PriorityRecommended, Status: domain.StatusCompleted},
	})
	assert.Equal(t, 0, status.Score)
	assert.Equal(t, 0, status.TotalMandatory)
	assert.Nil(t, status.NextRecommendation)
	assert.Empty(t, status.MissingMandatory)
	assert.Equal(t, 1, status.CompletedRecommended)

	assert.Equal(t, 0, Score(nil).Score)
}

func TestScoreRoundsHalfUp(t *testing.T) {
	cases := []struct {
		done, total, want int
	}{
		{2, 3, 67},
		{1, 3, 33},
		{7, 9, 78},
		{1, 8, 13},
		{1, 2, 50},
		{3, 3, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, percentRoundHalfUp(tc.done, tc.total), "%d/%d", tc.done, tc.total)
	}
}

func TestScoreNextRecommendationUsesEvaluationRank(t *testing.T) {
	// Deliberately out of rank order: the pointer must not depend on slice order.
	items := []domain.RoadmapItem{
		critical("later", domain.StatusMissing, 5),
		critical("earlier", domain.StatusMissing, 2),
		critical("done", domain.StatusCompleted, 0),
	}
	status := Score(items)
	require.NotNil(t, status.NextRecommendation)
	assert.Equal(t, domain.DocumentTypeID("earlier"), status.NextRecommendation.ID)
	assert.Equal(t, []domain.DocumentTypeID{"later", "earlier"}, status.MissingMandatory)
	assert.Equal(t, 33, status.Score)
}

func TestScoreAllCompleted(t *testing.T) {
	status := Score([]domain.RoadmapItem{
		critical("a", domain.StatusCompleted, 0),
		critical("b", domain.StatusCompleted, 1),
	})
	assert.Equal(t, 100, status.Score)
	assert.Nil(t, status.NextRecommendation)
}
