package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/blockfile/lsp"
)

const version = "0.1.0"

func newLSPCmd() *cobra.Command {
	var grammarFile string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := loadRules(grammarFile)
			if err != nil {
				return err
			}
			server := lsp.NewServer(version, rules)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVarP(&grammarFile, "grammar", "g", "", "HCL file overriding the default grammar")

	return cmd
}
