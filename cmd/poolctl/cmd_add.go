package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/codepool/pkg/normalize"
	"github.com/odvcencio/codepool/pkg/poolcfg"
	"github.com/odvcencio/codepool/pkg/poolhash"
	"github.com/odvcencio/codepool/pkg/poolobj"
	"github.com/odvcencio/codepool/pkg/poolstore"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "add <path>@<lang>",
		Short: "Normalize a function and add it to the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, lang, err := splitHashOrPathAndLang(args[0])
			if err != nil {
				return err
			}

			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("add: read %s: %w", path, err)
			}

			result, err := normalize.Normalize(source, normalize.Options{})
			if err != nil {
				return fmt.Errorf("add: normalize %s: %w", path, err)
			}

			functionHash := poolhash.Function(result.NormalizedCodeNoDocstring)

			s, err := openStore()
			if err != nil {
				return err
			}
			cfg, err := poolcfg.Load(s.Root())
			if err != nil {
				return err
			}

			_, mappingHash, err := s.SaveFunction(poolstore.SaveFunctionInput{
				FunctionHash:   functionHash,
				Language:       lang,
				NormalizedCode: result.NormalizedCode,
				Docstring:      result.Docstring,
				NameMapping:    result.NameMapping,
				NameOrder:      result.NameOrder,
				AliasMapping:   result.AliasMapping,
				Comment:        comment,
				Metadata: poolobj.Metadata{
					Created: nowRFC3339(),
					Author:  poolcfg.Author(cfg),
				},
			})
			if err != nil {
				return fmt.Errorf("add: save function: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "function %s\n", functionHash)
			fmt.Fprintf(out, "mapping  %s (%s)\n", mappingHash, lang)
			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "optional comment attached to this language mapping")
	return cmd
}
