package main

import (
	"fmt"
	"io"

	"github.com/matsen/note/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tagsCmd)
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags in use with their note counts",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

func runTags(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.Tags(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(counts)
	}
	printTagCounts(stdout, newStyler(), counts)
	return nil
}

// printTagCounts writes one right-aligned count per tag, most used first.
func printTagCounts(w io.Writer, s styler, counts []storage.TagCount) {
	fmt.Fprintln(w)
	if len(counts) == 0 {
		fmt.Fprintf(w, "  %s\n", s.style(ansiDim, "no tags"))
	}
	width := 1
	if len(counts) > 0 {
		width = len(fmt.Sprint(counts[0].Count))
	}
	for _, tc := range counts {
		fmt.Fprintf(w, "  %*d %s\n", width, tc.Count, s.style(ansiCyan, ":"+tc.Tag+":"))
	}
	fmt.Fprintln(w)
}
