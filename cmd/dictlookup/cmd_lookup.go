package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kanjidict/dictcore/pkg/dictcore/finder"
)

var lookupMode string

var lookupCmd = &cobra.Command{
	Use:   "lookup [text]",
	Short: "Find term dictionary entries for text",
	Long: `Runs the term-finding pipeline (text variants, deinflection, bulk
dictionary lookup, grouping, enrichment, and sorting) over the given
text and prints the resulting entries.

Example:
  dictlookup lookup --db dict.sqlite --config finder.yaml 食べた`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&lookupMode, "mode", "group", "grouping mode: group|merge|split|simple")
}

func runLookup(cmd *cobra.Command, args []string) error {
	text := args[0]
	logger.Info("lookup", zap.String("text", text), zap.String("mode", lookupMode))

	opts, err := finderDefaults.ToFinderOptions()
	if err != nil {
		return fmt.Errorf("finder options: %w", err)
	}

	res, err := eng.FindTerms(cmd.Context(), finder.Mode(lookupMode), text, opts)
	if err != nil {
		return fmt.Errorf("find_terms: %w", err)
	}

	if len(res.Entries) == 0 {
		fmt.Println("No entries found.")
		return nil
	}

	for i, entry := range res.Entries {
		heading(fmt.Sprintf("--- Entry %d ---", i+1))
		for _, hw := range entry.Headwords {
			fmt.Printf("  %s (%s)\n", hw.Term, hw.Reading)
		}
		for _, def := range entry.Definitions {
			fmt.Printf("  [%s]\n", def.Dictionary)
			for _, e := range def.Entries {
				if e.Text != "" {
					fmt.Printf("    - %s\n", e.Text)
				}
			}
		}
		fmt.Println()
	}
	fmt.Printf("original_text_length: %d\n", res.OriginalTextLength)
	return nil
}
