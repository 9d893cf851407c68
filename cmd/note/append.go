package main

import (
	"github.com/matsen/note/internal/note"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(appendCmd)
}

var appendCmd = &cobra.Command{
	Use:     "append <id> <text>...",
	Aliases: []string{"a"},
	Short:   "Append text to a note",
	Long: `Append text to a note's message, separated by a space.

Example:
  note append 3 :urgent:`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAppend,
}

func runAppend(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Append(cmd.Context(), id, joinArgs(args[1:]))
	if err != nil {
		return err
	}
	return renderActions([]note.Note{n}, timeFormat(), "appended", ansiYellow)
}
