package main

import (
	"encoding/json"
	"fmt"

	"github.com/odvcencio/codepool/pkg/poolobj"
	"github.com/odvcencio/codepool/pkg/poolstore"
	"github.com/spf13/cobra"
)

func newTranslateCmd() *cobra.Command {
	var docstring, nameMappingJSON, aliasMappingJSON, comment string

	cmd := &cobra.Command{
		Use:   "translate <hash>@<src> <dst>",
		Short: "Add a new-language mapping for an existing function",
		Long: "translate loads the source language's latest mapping as a template, " +
			"then writes a new mapping for the destination language using the " +
			"provided docstring and name-mapping (a JSON object of canonical id " +
			"-> original-language identifier; omit to keep the source mapping's " +
			"identifiers unchanged).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, srcLang, err := splitHashOrPathAndLang(args[0])
			if err != nil {
				return err
			}
			dstLang := args[1]
			if err := poolstore.ValidateLanguageCode(dstLang); err != nil {
				return err
			}
			if docstring == "" {
				return fmt.Errorf("translate: --docstring is required")
			}

			s, err := openStore()
			if err != nil {
				return err
			}

			obj, err := s.FunctionLoad(hash)
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}

			_, srcMapping, err := s.LatestMapping(hash, srcLang)
			if err != nil {
				return fmt.Errorf("translate: load source mapping: %w", err)
			}

			nameMapping := srcMapping.NameMapping
			nameOrder := srcMapping.NameOrder
			if nameMappingJSON != "" {
				var m poolobj.NameMapping
				if err := json.Unmarshal([]byte(nameMappingJSON), &m); err != nil {
					return fmt.Errorf("translate: --name-mapping is not valid JSON: %w", err)
				}
				nameMapping = m
				nameOrder = nil // a user-supplied JSON object carries no order of its own
			}

			aliasMapping := srcMapping.AliasMapping
			if aliasMappingJSON != "" {
				var m poolobj.AliasMapping
				if err := json.Unmarshal([]byte(aliasMappingJSON), &m); err != nil {
					return fmt.Errorf("translate: --alias-mapping is not valid JSON: %w", err)
				}
				aliasMapping = m
			}

			if comment == "" {
				comment = srcMapping.Comment
			}

			_, mappingHash, err := s.SaveFunction(poolstore.SaveFunctionInput{
				FunctionHash:   hash,
				Language:       dstLang,
				NormalizedCode: obj.NormalizedCode,
				Docstring:      docstring,
				NameMapping:    nameMapping,
				NameOrder:      nameOrder,
				AliasMapping:   aliasMapping,
				Comment:        comment,
				Metadata:       obj.Metadata,
			})
			if err != nil {
				return fmt.Errorf("translate: save mapping: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "mapping %s (%s)\n", mappingHash, dstLang)
			return nil
		},
	}

	cmd.Flags().StringVar(&docstring, "docstring", "", "destination-language docstring (required)")
	cmd.Flags().StringVar(&nameMappingJSON, "name-mapping", "", "JSON object: canonical id -> destination-language identifier")
	cmd.Flags().StringVar(&aliasMappingJSON, "alias-mapping", "", "JSON object: referenced function hash -> destination-language alias")
	cmd.Flags().StringVar(&comment, "comment", "", "optional comment for the new mapping")
	return cmd
}
