package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCount bool

func init() {
	listCmd.Flags().BoolVar(&listCount, "count", false, "Print only the number of notes")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List all notes",
	Long: `List all notes ordered by id.

This is also what 'note' does with no arguments.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if listCount {
		count, err := db.Count(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(map[string]int{"count": count})
		}
		fmt.Fprintln(stdout, count)
		return nil
	}

	notes, err := db.List(cmd.Context())
	if err != nil {
		return err
	}
	return renderNotes(notes, "no notes yet")
}
