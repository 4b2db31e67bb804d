package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <hash>",
		Short: "Summarize a pool function: metadata, languages, mapping variants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := args[0]

			s, err := openStore()
			if err != nil {
				return err
			}

			obj, err := s.FunctionLoad(hash)
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "function %s\n", obj.Hash)
			fmt.Fprintf(out, "created  %s\n", obj.Metadata.Created)
			fmt.Fprintf(out, "author   %s\n", obj.Metadata.Author)
			if len(obj.Metadata.Tags) > 0 {
				fmt.Fprintf(out, "tags     %v\n", obj.Metadata.Tags)
			}

			langs, err := s.Languages(hash)
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}
			for _, lang := range langs {
				mappings, err := s.Mappings(hash, lang)
				if err != nil {
					return fmt.Errorf("show: %w", err)
				}
				fmt.Fprintf(out, "\n%s:\n", lang)
				for _, mh := range mappings {
					mapping, err := s.MappingLoad(hash, lang, mh)
					if err != nil {
						return fmt.Errorf("show: %w", err)
					}
					comment := mapping.Comment
					if comment == "" {
						comment = "(no comment)"
					}
					fmt.Fprintf(out, "  %s  %s — %s\n", mh, comment, mapping.Docstring)
				}
			}
			return nil
		},
	}
}
