package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <message>...",
	Short: "Add one note per argument",
	Long: `Add notes. Each argument becomes its own note; quote a message
that contains spaces.

Examples:
  note add "buy milk :errand:"
  note add "call mom" "book dentist :health:"
  note "same as add"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	notes, err := db.Add(cmd.Context(), args)
	if err != nil {
		return err
	}
	return renderActions(notes, addTimeFormat, "added", ansiGreen)
}
