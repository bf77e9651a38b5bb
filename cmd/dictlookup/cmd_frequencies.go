package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kanjidict/dictcore/pkg/dictcore/engine"
)

var frequenciesCmd = &cobra.Command{
	Use:   "frequencies [term[:reading] ...]",
	Short: "Look up frequency-of-use records for one or more terms",
	Long: `Looks up frequency records for the given terms. Append ":reading" to
a term to restrict the result to that reading's frequency variant.

Example:
  dictlookup frequencies --db dict.sqlite --config finder.yaml 猫:ねこ 食べる`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFrequencies,
}

func runFrequencies(cmd *cobra.Command, args []string) error {
	queries := make([]engine.TermFrequencyQuery, len(args))
	for i, arg := range args {
		term, reading, _ := strings.Cut(arg, ":")
		queries[i] = engine.TermFrequencyQuery{Term: term, Reading: reading}
	}
	logger.Info("frequencies", zap.Int("query_count", len(queries)))

	opts, err := finderDefaults.ToFinderOptions()
	if err != nil {
		return fmt.Errorf("finder options: %w", err)
	}

	results, err := eng.GetTermFrequencies(cmd.Context(), queries, opts.EnabledDictionaryMap)
	if err != nil {
		return fmt.Errorf("get_term_frequencies: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No frequency records found.")
		return nil
	}

	for _, r := range results {
		fmt.Printf("%s\t%s\t%s\thas_reading=%v\t%.0f\n", r.Term, r.Reading, r.Dictionary, r.HasReading, r.Frequency)
	}
	return nil
}
