package main

import (
	"github.com/matsen/note/internal/note"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:     "update <id> <text>...",
	Aliases: []string{"u"},
	Short:   "Replace a note's message",
	Long: `Replace the message of a note. The note keeps its id and timestamp.

Examples:
  note update 3 "buy oat milk :errand:"
  note u 3 buy oat milk`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Update(cmd.Context(), id, joinArgs(args[1:]))
	if err != nil {
		return err
	}
	return renderActions([]note.Note{n}, timeFormat(), "updated", ansiYellow)
}
