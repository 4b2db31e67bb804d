package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/codepool/pkg/migrate"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [<hash>]",
		Short: "Validate v1 object/mapping integrity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				report, err := migrate.Validate(s, args[0])
				if err != nil {
					return fmt.Errorf("validate: %w", err)
				}
				printValidationReport(out, report)
				if !report.OK {
					return fmt.Errorf("validate: %s failed integrity checks", report.FunctionHash)
				}
				return nil
			}

			all, err := migrate.ValidateAll(s)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			for _, report := range all.Reports {
				printValidationReport(out, report)
			}
			fmt.Fprintf(out, "%d of %d object(s) failed validation\n", all.Failed, len(all.Reports))
			if all.Failed > 0 {
				return fmt.Errorf("validate: %d object(s) failed", all.Failed)
			}
			return nil
		},
	}
}

func printValidationReport(out io.Writer, report *migrate.ValidationReport) {
	if report.OK {
		fmt.Fprintf(out, "ok: %s\n", report.FunctionHash)
		return
	}
	fmt.Fprintf(out, "FAIL: %s\n", report.FunctionHash)
	for _, issue := range report.Issues {
		fmt.Fprintf(out, "  - %s\n", issue)
	}
}
