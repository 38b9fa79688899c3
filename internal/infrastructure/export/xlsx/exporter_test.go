package xlsx

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

func TestExportWritesSummaryAndRoadmapSheets(t *testing.T) {
	next := domain.RoadmapItem{ID: "employment-contract", Title: "Employment Contract", Kind: domain.KindForm, Priority: domain.PriorityCritical, Status: domain.StatusMissing, Reason: "Required by law"}
	items := []domain.RoadmapItem{
		next,
		{ID: "leave", Title: "Leave Policy", Kind: domain.KindPolicy, Priority: domain.PriorityCritical, Status: domain.StatusCompleted, Reason: "Required by law"},
	}
	status := domain.ComplianceStatus{
		Score:              50,
		TotalMandatory:     2,
		CompletedMandatory: 1,
		MissingMandatory:   []domain.DocumentTypeID{"employment-contract"},
		NextRecommendation: &next,
	}
	profile := domain.CompanyProfile{CompanyID: "acme", CompanyName: "Acme", Industry: domain.IndustryRetail, CompanySize: domain.CompanySizeSmall}

	var buf bytes.Buffer
	require.NoError(t, NewExporter().Export(context.Background(), &buf, profile, items, status))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, RoadmapSheet}, f.GetSheetList())

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Company", "Acme"}, summary[0])
	assert.Equal(t, []string{"Compliance score", "50"}, summary[3])
	assert.Equal(t, []string{"Next recommendation", "Employment Contract"}, summary[6])
	assert.Equal(t, []string{"Missing critical documents", "employment-contract"}, summary[7])

	rows, err := f.GetRows(RoadmapSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"#", "Document", "Type ID", "Kind", "Priority", "Status", "Reason"}, rows[0])
	assert.Equal(t, []string{"1", "Employment Contract", "employment-contract", "form", "critical", "missing", "Required by law"}, rows[1])
	assert.Equal(t, "completed", rows[2][5])
}

func TestExportEmptyRoadmapKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter().Export(context.Background(), &buf, domain.CompanyProfile{CompanyName: "Acme"}, nil, domain.ComplianceStatus{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RoadmapSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExportHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	assert.ErrorIs(t, NewExporter().Export(ctx, &buf, domain.CompanyProfile{}, nil, domain.ComplianceStatus{}), context.Canceled)
	assert.Zero(t, buf.Len())
}
