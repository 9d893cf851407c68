package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/matsen/note/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a summary of the note database",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(stats)
	}
	printStats(stdout, newStyler(), stats, time.Now())
	return nil
}

// printStats writes the store summary. now anchors the relative times.
func printStats(w io.Writer, s styler, stats *storage.Stats, now time.Time) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", s.style(ansiBold, "database:"), stats.Path)
	fmt.Fprintf(w, "  %s %s\n", s.style(ansiBold, "size:    "), humanize.Bytes(uint64(stats.SizeBytes)))
	fmt.Fprintf(w, "  %s %s (schema %s)\n", s.style(ansiBold, "schema:  "), stats.Namespace, stats.SchemaVersion)
	fmt.Fprintf(w, "  %s %s\n", s.style(ansiBold, "notes:   "), humanize.Comma(int64(stats.Notes)))
	if stats.Notes > 0 {
		fmt.Fprintf(w, "  %s %d..%d\n", s.style(ansiBold, "ids:     "), stats.MinID, stats.MaxID)
	}
	if stats.First != nil {
		fmt.Fprintf(w, "  %s %s\n", s.style(ansiBold, "first:   "), humanize.RelTime(*stats.First, now, "ago", "from now"))
	}
	if stats.Last != nil {
		fmt.Fprintf(w, "  %s %s\n", s.style(ansiBold, "last:    "), humanize.RelTime(*stats.Last, now, "ago", "from now"))
	}
	fmt.Fprintln(w)
}
