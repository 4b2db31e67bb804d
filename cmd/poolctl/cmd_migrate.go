package main

import (
	"fmt"

	"github.com/odvcencio/codepool/pkg/migrate"
	"github.com/odvcencio/codepool/pkg/poolcfg"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var dryRun, keepV0 bool

	cmd := &cobra.Command{
		Use:   "migrate [<hash>]",
		Short: "Migrate legacy v0 record(s) to the v1 layout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			cfg, err := poolcfg.Load(s.Root())
			if err != nil {
				return err
			}
			opts := migrate.Options{KeepV0: keepV0, DryRun: dryRun, Author: poolcfg.Author(cfg)}

			out := cmd.OutOrStdout()

			if len(args) == 1 {
				report, err := migrate.MigrateV0ToV1(s, args[0], opts)
				if err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				if report.AlreadyV1 {
					fmt.Fprintf(out, "%s: already v1, skipped\n", report.FunctionHash)
					return nil
				}
				verb := "migrated"
				if report.DryRun {
					verb = "would migrate"
				}
				fmt.Fprintf(out, "%s: %s (%d language(s))\n", report.FunctionHash, verb, len(report.Languages))
				return nil
			}

			all, err := migrate.MigrateAll(s, opts)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(out, "migrated %d, skipped %d, failed %d\n", len(all.Migrated), len(all.Skipped), len(all.Failed))
			for h, failErr := range all.Failed {
				fmt.Fprintf(out, "  %s: %v\n", h, failErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what migration would do without writing anything")
	cmd.Flags().BoolVar(&keepV0, "keep-v0", false, "keep the legacy v0 record instead of renaming it to a .bak sibling")
	return cmd
}
