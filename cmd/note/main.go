// Package main provides the note CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"unicode"

	"github.com/matsen/note/internal/config"
	"github.com/matsen/note/internal/logger"
	"github.com/matsen/note/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags
var Version = "dev"

// Persistent flags.
var (
	jsonOutput bool
	dbFlag     string
	verbose    bool
	noColor    bool
)

var (
	cfg *config.Config
	log = zap.NewNop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "note [message]...",
	Short: "Keep short timestamped notes",
	Long: `note keeps short timestamped notes in a local SQLite database.

With no arguments, note lists every note. With arguments that are not a
command, each argument is added as its own note:

  note "buy milk :errand:" "call mom"

Tags are lowercase words between colons, like :work: or :errand:, and can
be searched with 'note tag work'.

A single word that is close to a command name, like "serach", is
rejected rather than saved; use 'note add serach' or 'note -- serach'
to store it anyway.

The database lives at ~/.notes.db unless configured otherwise
(see 'note config').`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runList(cmd, args)
		}
		if cmd.ArgsLenAtDash() != 0 {
			if err := checkMistypedVerb(cmd, args[0]); err != nil {
				return err
			}
		}
		return runAdd(cmd, args)
	},
}

// checkMistypedVerb rejects a bare single word that looks like a misspelled
// command, such as "serach", instead of storing it as a note.
func checkMistypedVerb(cmd *cobra.Command, word string) error {
	if len(word) < minVerbGuessLen || strings.ContainsFunc(word, unicode.IsSpace) {
		return nil
	}
	suggestions := cmd.SuggestionsFor(word)
	if len(suggestions) == 0 {
		return nil
	}
	return fmt.Errorf("%w: unknown command %q (did you mean %s?); use 'note add %s' or 'note -- %s' to store it as a note",
		storage.ErrInvalidInput, word, strings.Join(suggestions, ", "), word, word)
}

// minVerbGuessLen keeps short words like "to" from matching command prefixes.
const minVerbGuessLen = 3

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Path to the notes database (overrides config and NOTE_DB)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.SuggestionsMinimumDistance = 2
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("  note {{.Version}}\n")
}

// setup loads .env and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	log = logger.New(verbose)
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn("ignoring .env", zap.Error(err))
	}
	return nil
}

// loadConfig loads configuration once per process.
func loadConfig() (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := config.Load()
	if err != nil {
		return nil, configError{err}
	}
	if dbFlag != "" {
		c.DBPath = config.ExpandTilde(dbFlag)
	}
	cfg = c
	return cfg, nil
}

// openDatabase opens the note store described by the configuration.
// The caller is responsible for calling Close() on the returned DB.
func openDatabase() (*storage.DB, error) {
	c, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log.Debug("opening database", zap.String("path", c.DBPath))
	return storage.OpenDB(c.DBPath,
		storage.WithLockTimeout(c.LockTimeout),
		storage.WithLockStaleAfter(c.LockStaleAfter),
		storage.WithLogger(log),
	)
}
