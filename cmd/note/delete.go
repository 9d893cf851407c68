package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm", "d"},
	Short:   "Delete notes by id",
	Long: `Delete notes by id. Ids that don't exist are ignored, and the
remaining notes keep their ids; run 'note renumber' to close the gaps.

Examples:
  note delete 3
  note rm 1 4 7
  note rm 1,4,7`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := db.Delete(cmd.Context(), ids)
	if err != nil {
		return err
	}

	if !jsonOutput && len(removed) == 0 {
		fmt.Fprintf(stdout, "\n  %s\n\n", newStyler().style(ansiDim, "no matching notes"))
		return nil
	}
	return renderActions(removed, timeFormat(), "deleted", ansiRed)
}
