package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "blockfile",
		Short: "Parse and inspect block-structured text documents",
	}

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTagsCmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
