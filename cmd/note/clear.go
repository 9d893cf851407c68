package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(clearCmd)
}

var clearCmd = &cobra.Command{
	Use:     "clear",
	Aliases: []string{"reset"},
	Short:   "Delete every note",
	Long: `Delete every note. This cannot be undone; consider
'note export' first.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := db.Clear(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(StatusResponse{Status: "cleared", Removed: removed})
	}
	fmt.Fprintf(stdout, "\n  cleared %s\n\n", pluralize(removed, "note"))
	return nil
}
