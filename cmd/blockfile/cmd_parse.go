package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/blockfile/blocks"
	"github.com/dhamidi/blockfile/format"
	"github.com/dhamidi/blockfile/grammar"
	"github.com/dhamidi/blockfile/stream"
)

func newParseCmd() *cobra.Command {
	var grammarFile string
	var strict bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a block document and dump it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			rules, err := loadRules(grammarFile)
			if err != nil {
				return err
			}

			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer f.Close()

			st := stream.FromReader(f, filename)
			gen := blocks.NewDocumentGenerator(rules)
			doc, parseErr := blocks.Parse[*blocks.Record, *blocks.Document](filename, st, rules, gen)

			if parseErr != nil {
				fmt.Fprintln(os.Stderr, parseErr)
				if strict {
					return fmt.Errorf("parse %s failed", filename)
				}
			}

			if err := format.NewJSONEncoder(os.Stdout).Encode(doc); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVarP(&grammarFile, "grammar", "g", "", "HCL file overriding the default grammar")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the document has parse errors")

	return cmd
}

func loadRules(grammarFile string) (blocks.Rules, error) {
	if grammarFile == "" {
		return blocks.DefaultRules(), nil
	}
	rules, err := grammar.LoadFile(grammarFile)
	if err != nil {
		return blocks.Rules{}, err
	}
	return rules, nil
}
