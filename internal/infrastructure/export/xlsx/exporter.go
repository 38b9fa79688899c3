package xlsx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SummarySheet = "Summary"
	RoadmapSheet = "Roadmap"
)

var roadmapHeader = []any{"#", "Document", "Type ID", "Kind", "Priority", "Status", "Reason"}

// Exporter renders a roadmap into a two-sheet workbook: a summary with the
// score and a checklist with one row per roadmap item.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string {
	return ContentType
}

func (e *Exporter) Export(
	ctx context.Context,
	w io.Writer,
	profile domain.CompanyProfile,
	items []domain.RoadmapItem,
	status domain.ComplianceStatus,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(RoadmapSheet); err != nil {
		return fmt.Errorf("create roadmap sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, bold, profile, status); err != nil {
		return err
	}
	if err := writeRoadmap(f, bold, items); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, bold int, profile domain.CompanyProfile, status domain.ComplianceStatus) error {
	next := ""
	if status.NextRecommendation != nil {
		next = status.NextRecommendation.Title
	}
	missing := make([]string, 0, len(status.MissingMandatory))
	for _, id := range status.MissingMandatory {
		missing = append(missing, string(id))
	}

	rows := [][]any{
		{"Company", profile.CompanyName},
		{"Industry", string(profile.Industry)},
		{"Company size", string(profile.CompanySize)},
		{"Compliance score", status.Score},
		{"Critical documents completed", fmt.Sprintf("%d of %d", status.CompletedMandatory, status.TotalMandatory)},
		{"Recommended documents completed", fmt.Sprintf("%d of %d", status.CompletedRecommended, status.TotalRecommended)},
		{"Next recommendation", next},
		{"Missing critical documents", strings.Join(missing, ", ")},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return fmt.Errorf("style summary labels: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 34)
}

func writeRoadmap(f *excelize.File, bold int, items []domain.RoadmapItem) error {
	if err := f.SetSheetRow(RoadmapSheet, "A1", &roadmapHeader); err != nil {
		return fmt.Errorf("write roadmap header: %w", err)
	}
	for i, item := range items {
		row := []any{
			i + 1,
			item.Title,
			string(item.ID),
			string(item.Kind),
			string(item.Priority),
			string(item.Status),
			item.Reason,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(RoadmapSheet, cell, &row); err != nil {
			return fmt.Errorf("write roadmap row %d: %w", i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(roadmapHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(RoadmapSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style roadmap header: %w", err)
	}
	if len(items) > 0 {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(items)+1)
		if err := f.AutoFilter(RoadmapSheet, ref, []excelize.AutoFilterOptions{}); err != nil {
			return fmt.Errorf("add roadmap filter: %w", err)
		}
	}
	if err := f.SetColWidth(RoadmapSheet, "B", "B", 40); err != nil {
		return err
	}
	return f.SetColWidth(RoadmapSheet, "G", "G", 60)
}
