package main

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/scrypster/kindred/internal/backup"
	"github.com/spf13/cobra"
)

func newBackupCmd(a *app) *cobra.Command {
	var (
		dir  string
		keep int
	)

	cmd := &cobra.Command{
		Use:     "backup",
		Short:   "Snapshot the SQLite store and prune old snapshots",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Storage.StorageEngine != "sqlite" {
				return fmt.Errorf("backup supports the sqlite engine only, got %q", a.cfg.Storage.StorageEngine)
			}

			store, err := openStore(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			dbStore, ok := store.(interface{ GetDB() *sql.DB })
			if !ok {
				return fmt.Errorf("store does not expose a database handle")
			}

			if dir == "" {
				dir = filepath.Join(a.cfg.Storage.DataPath, "backups")
			}
			result, err := backup.Take(cmd.Context(), dbStore.GetDB(), backup.Options{Dir: dir, Keep: keep})
			if err != nil {
				return err
			}

			if a.jsonOutput {
				return printJSON(a.out, result)
			}
			fmt.Fprintf(a.out, "Snapshot written to %s (%d bytes)\n", result.Path, result.Size)
			if len(result.Pruned) > 0 {
				fmt.Fprintf(a.out, "Pruned %d old snapshots\n", len(result.Pruned))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "snapshot directory (default: <data_path>/backups)")
	cmd.Flags().IntVar(&keep, "keep", 10, "number of newest snapshots to retain (0 keeps all)")
	return cmd
}
