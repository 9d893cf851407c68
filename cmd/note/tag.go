package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tagCmd)
}

var tagCmd = &cobra.Command{
	Use:     "tag <tag>",
	Aliases: []string{"t"},
	Short:   "Find notes carrying a tag",
	Long: `Find notes carrying a tag. The tag may be given with or without
its colons, so 'note tag work' and 'note tag :work:' are the same.

Only the exact tag matches: 'note tag work' does not match :workout:.`,
	Args: cobra.ExactArgs(1),
	RunE: runTag,
}

func runTag(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	notes, err := db.SearchTag(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return renderNotes(notes, "no notes tagged "+args[0])
}
