package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/hrdocs-compliance/internal/core/compliance"
	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/infrastructure/export/xlsx"
)

func newRoadmapCmd() *cobra.Command {
	var (
		tables    tableFlags
		company   string
		industry  string
		size      string
		completed []string
		asJSON    bool
		xlsxPath  string
	)
	cmd := &cobra.Command{
		Use:   "roadmap",
		Short: "Preview the roadmap and score for a hypothetical company",
		Long:  "Evaluates the rule tables for the given industry and size, treating --completed document ids as already generated. Nothing is read from or written to the database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := tables.load()
			if err != nil {
				return err
			}

			profile := domain.CompanyProfile{CompanyName: company}
			if ind, ok := domain.ParseIndustry(industry); ok {
				profile.Industry = ind
			} else if industry != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: unrecognized industry %q treated as unset\n", industry)
			}
			if band, ok := domain.ParseCompanySize(size); ok {
				profile.CompanySize = band
			} else if size != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: unrecognized company size %q treated as unset\n", size)
			}

			items := engine.BuildRoadmap(profile, previewRecords(completed))
			status := compliance.Score(items)

			if xlsxPath != "" {
				return writeWorkbook(cmd, xlsxPath, profile, items, status)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(domain.Assessment{Profile: profile, Items: items, Status: status})
			}
			return printRoadmap(cmd, items, status)
		},
	}
	tables.register(cmd)
	cmd.Flags().StringVar(&company, "company", "Preview", "Company name shown in exports")
	cmd.Flags().StringVar(&industry, "industry", "", "Industry, e.g. Technology or Mining")
	cmd.Flags().StringVar(&size, "size", "", "Company size band: 1-10, 11-50, 51-200, 201-500 or 500+")
	cmd.Flags().StringSliceVar(&completed, "completed", nil, "Document type ids already generated (comma separated)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the roadmap to this .xlsx file instead of printing it")
	return cmd
}

func previewRecords(ids []string) []domain.DocumentRecord {
	now := time.Now().UTC()
	records := make([]domain.DocumentRecord, 0, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		records = append(records, domain.NewDocumentRecord(fmt.Sprintf("preview-%d", i+1), "preview", domain.DocumentTypeID(id), "", "", now))
	}
	return records
}

func printRoadmap(cmd *cobra.Command, items []domain.RoadmapItem, status domain.ComplianceStatus) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Compliance score: %d%% (%d of %d critical documents)\n", status.Score, status.CompletedMandatory, status.TotalMandatory)
	if status.NextRecommendation != nil {
		fmt.Fprintf(out, "Next: %s (%s)\n", status.NextRecommendation.Title, status.NextRecommendation.ID)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPRIORITY\tSTATUS\tID\tTITLE")
	for i, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, item.Priority, item.Status, item.ID, item.Title)
	}
	return tw.Flush()
}

func writeWorkbook(cmd *cobra.Command, path string, profile domain.CompanyProfile, items []domain.RoadmapItem, status domain.ComplianceStatus) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := xlsx.NewExporter().Export(cmd.Context(), f, profile, items, status); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d roadmap items to %s\n", len(items), path)
	return nil
}
