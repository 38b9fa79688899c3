package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the rule tables",
	}
	cmd.AddCommand(newRulesCheckCmd())
	return cmd
}

func newRulesCheckCmd() *cobra.Command {
	var tables tableFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fail when the rules reference document ids missing from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := tables.load()
			if err != nil {
				return err
			}
			unknown := engine.Rules().UnknownDocuments(engine.Catalog())
			for _, id := range unknown {
				fmt.Fprintf(cmd.OutOrStdout(), "unknown document id: %s\n", id)
			}
			if len(unknown) > 0 {
				return fmt.Errorf("%d rule document ids are not in the catalog", len(unknown))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d catalog entries, every rule resolves\n", engine.Catalog().Len())
			return nil
		},
	}
	tables.register(cmd)
	return cmd
}
