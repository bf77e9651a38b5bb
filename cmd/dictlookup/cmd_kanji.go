package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kanjidict/dictcore/pkg/dictcore/kanji"
)

var kanjiCmd = &cobra.Command{
	Use:   "kanji [text]",
	Short: "Find kanji dictionary entries for each character in text",
	Args:  cobra.ExactArgs(1),
	RunE:  runKanji,
}

func runKanji(cmd *cobra.Command, args []string) error {
	text := args[0]
	logger.Info("kanji", zap.String("text", text))

	opts, err := finderDefaults.ToFinderOptions()
	if err != nil {
		return fmt.Errorf("finder options: %w", err)
	}

	entries, err := eng.FindKanji(cmd.Context(), text, kanji.Options{EnabledDictionaryMap: opts.EnabledDictionaryMap})
	if err != nil {
		return fmt.Errorf("find_kanji: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No kanji entries found.")
		return nil
	}

	for _, entry := range entries {
		heading(fmt.Sprintf("--- %s (%s) ---", entry.Character, entry.Dictionary))
		fmt.Printf("  onyomi:  %v\n", entry.Onyomi)
		fmt.Printf("  kunyomi: %v\n", entry.Kunyomi)
		for _, stat := range entry.Stats {
			fmt.Printf("  %s/%s: %s\n", stat.Category, stat.Name, stat.Value)
		}
		for _, def := range entry.Definitions {
			if def.Text != "" {
				fmt.Printf("  - %s\n", def.Text)
			}
		}
		fmt.Println()
	}
	return nil
}
