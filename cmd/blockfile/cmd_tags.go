package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/blockfile/dispatch"
	"github.com/dhamidi/blockfile/format"
	"github.com/dhamidi/blockfile/tag"
)

func newTagsCmd() *cobra.Command {
	var replacements []string
	var events []string
	var emitEvents bool

	cmd := &cobra.Command{
		Use:   "tags [file]",
		Short: "Run inline tag replacement over a text file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input []byte
			var err error
			if len(args) == 1 {
				input, err = os.ReadFile(args[0])
			} else {
				input, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			config := dispatch.NewConfig(nil)
			for _, def := range replacements {
				pattern, text, ok := strings.Cut(def, "=")
				if !ok {
					return fmt.Errorf("invalid --replace %q, want pattern=text", def)
				}
				if _, err := config.AddReplaceText(pattern, text); err != nil {
					return err
				}
			}
			for _, def := range events {
				pattern, eventType, ok := strings.Cut(def, "=")
				if !ok {
					return fmt.Errorf("invalid --event %q, want pattern=type", def)
				}
				if _, err := config.AddEvent(pattern, eventType); err != nil {
					return err
				}
			}
			config.Lock()

			delims := tag.DefaultDelimiters()
			if emitEvents {
				text, evs := config.ProcessText(string(input), delims, nil)
				fmt.Print(text)
				if err := format.NewEventJSONEncoder(os.Stderr).Encode(evs); err != nil {
					return fmt.Errorf("encode events: %w", err)
				}
				fmt.Fprintln(os.Stderr)
				return nil
			}

			fmt.Print(config.ReplaceText(string(input), delims, nil))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&replacements, "replace", "r", nil, "replace rule pattern=text (repeatable)")
	cmd.Flags().StringArrayVarP(&events, "event", "e", nil, "event rule pattern=type (repeatable)")
	cmd.Flags().BoolVar(&emitEvents, "events", false, "strip event tags from the text and dump events as JSON")

	return cmd
}
