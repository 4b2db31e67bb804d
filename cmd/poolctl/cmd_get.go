package main

import (
	"fmt"

	"github.com/odvcencio/codepool/pkg/denorm"
	"github.com/odvcencio/codepool/pkg/poolobj"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var mappingHash string

	cmd := &cobra.Command{
		Use:   "get <hash>@<lang>",
		Short: "Denormalize a pool function back into readable source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, lang, err := splitHashOrPathAndLang(args[0])
			if err != nil {
				return err
			}

			s, err := openStore()
			if err != nil {
				return err
			}

			obj, err := s.FunctionLoad(hash)
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}

			var mapping *poolobj.Mapping
			if mappingHash != "" {
				mapping, err = s.MappingLoad(hash, lang, mappingHash)
			} else {
				mappingHash, mapping, err = s.LatestMapping(hash, lang)
			}
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}

			source, err := denorm.Denormalize(denorm.Input{
				NormalizedCode: obj.NormalizedCode,
				NameMapping:    mapping.NameMapping,
				AliasMapping:   mapping.AliasMapping,
				Docstring:      mapping.Docstring,
			})
			if err != nil {
				return fmt.Errorf("get: denormalize: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), source)
			return nil
		},
	}

	cmd.Flags().StringVar(&mappingHash, "mapping", "", "specific mapping hash to use (defaults to latest_mapping)")
	return cmd
}
