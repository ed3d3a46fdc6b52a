// Command rentctl runs administrative tasks against the property database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rentctl",
		Short:        "Property Management API administration",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		migrateCmd(),
		createUserCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
