package main

import (
	"fmt"

	"github.com/scrypster/kindred/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "import <family.yaml>",
		Short:   "Import people and relationships from a YAML family tree",
		GroupID: "system",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := importer.NewFamilyTreeImporter(store, a.logger).ImportFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			if a.jsonOutput {
				return printJSON(a.out, result)
			}
			printImportResult(a.out, result)
			return nil
		},
	}
}
