package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:     "search <text>...",
	Aliases: []string{"s", "find", "filter"},
	Short:   "Find notes containing text",
	Long: `Find notes whose message contains the given text, ignoring case.
Multiple arguments are joined with spaces. % and _ match literally.

Examples:
  note search milk
  note s "dentist appointment"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	notes, err := db.Search(cmd.Context(), joinArgs(args))
	if err != nil {
		return err
	}
	return renderNotes(notes, "no matching notes")
}
