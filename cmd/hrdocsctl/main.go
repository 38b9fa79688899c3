// Command hrdocsctl inspects the compliance tables offline: it lists the
// catalog, previews roadmaps for a hypothetical company and lints rule files.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kirillkom/hrdocs-compliance/internal/core/compliance"
)

type tableFlags struct {
	catalogPath string
	rulesPath   string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "Path to catalog YAML (defaults to the embedded table)")
	cmd.Flags().StringVar(&f.rulesPath, "rules", os.Getenv("RULES_PATH"), "Path to rules YAML (defaults to the embedded table)")
}

func (f *tableFlags) load() (*compliance.Engine, error) {
	engine, err := compliance.LoadEngine(f.catalogPath, f.rulesPath)
	if err != nil {
		return nil, fmt.Errorf("load compliance tables: %w", err)
	}
	return engine, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hrdocsctl",
		Short:         "Operator tooling for the HR compliance roadmap engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCatalogCmd(), newRoadmapCmd(), newRulesCmd())
	return root
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
