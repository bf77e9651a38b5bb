// Command dictlookup is a CLI front end over the dictionary lookup
// engine: term lookups, kanji lookups, frequency queries, and cache
// invalidation against a sqlite-backed dictionary database.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kanjidict/dictcore/pkg/dictcore/config"
	"github.com/kanjidict/dictcore/pkg/dictcore/deinflect"
	"github.com/kanjidict/dictcore/pkg/dictcore/engine"
	"github.com/kanjidict/dictcore/pkg/dictcore/store/sqlite"
	"github.com/kanjidict/dictcore/pkg/dictcore/textvariant"
)

var (
	dbPath     string
	configPath string
	rulesPath  string
	verbose    bool

	logger         *zap.Logger
	eng            *engine.Engine
	finderDefaults *config.FinderDefaults
	color          bool
)

var rootCmd = &cobra.Command{
	Use:   "dictlookup",
	Short: "Look up terms and kanji against a dictionary database",
	Long: `dictlookup is a command-line front end over the dictionary lookup
engine: it resolves text against one or more imported dictionaries,
runs deinflection and entry grouping, and prints the resulting entries.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return fmt.Errorf("--db is required")
		}
		if configPath == "" {
			return fmt.Errorf("--config is required")
		}

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		defaults, err := config.LoadFinderDefaults(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		finderDefaults = defaults

		rules := deinflect.DefaultRules()
		if rulesPath != "" {
			custom, err := config.LoadDeinflectionRules(rulesPath)
			if err != nil {
				return fmt.Errorf("load rules: %w", err)
			}
			rules = custom
		}

		st, err := sqlite.Open(cmd.Context(), dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}

		eng = engine.New(engine.Options{
			Store:             st,
			Logger:            logger,
			DeinflectionRules: rules,
			Transforms:        textvariant.StockTransforms(),
		})
		color = isatty.IsTerminal(os.Stdout.Fd())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if eng != nil {
			_ = eng.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite dictionary database path (required)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "finder configuration YAML path (required)")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "custom deinflection rule YAML path (defaults to the built-in rule table)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(lookupCmd, kanjiCmd, frequenciesCmd, clearCacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// heading prints a section heading, bolded when stdout is a terminal.
func heading(s string) {
	if color {
		fmt.Printf("\033[1m%s\033[0m\n", s)
		return
	}
	fmt.Println(s)
}
