package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "poolctl",
		Short: "Content-addressed function pool manager",
	}

	root.AddCommand(newAddCmd())
	root.AddCommand(newGetCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newTranslateCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newValidateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
