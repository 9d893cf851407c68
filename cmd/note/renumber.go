package main

import (
	"fmt"
	"io"

	"github.com/matsen/note/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(renumberCmd)
}

var renumberCmd = &cobra.Command{
	Use:     "renumber",
	Aliases: []string{"rebase"},
	Short:   "Close gaps in note ids",
	Long: `Reassign note ids to 1..N, keeping their order. Only notes whose
id changes are reported. Running it twice in a row changes nothing.`,
	Args: cobra.NoArgs,
	RunE: runRenumber,
}

func runRenumber(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	changes, err := db.Renumber(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(changes)
	}
	printRenumberings(stdout, newStyler(), changes)
	return nil
}

// printRenumberings writes one "old -> new" line per changed id.
func printRenumberings(w io.Writer, s styler, changes []storage.Renumbering) {
	fmt.Fprintln(w)
	if len(changes) == 0 {
		fmt.Fprintf(w, "  %s\n", s.style(ansiDim, "ids already dense"))
	}
	for _, c := range changes {
		fmt.Fprintf(w, "  %s %s %s\n",
			s.style(ansiYellow, fmt.Sprint(c.From)),
			s.style(ansiDim, "->"),
			s.style(ansiGreen, fmt.Sprint(c.To)))
	}
	fmt.Fprintln(w)
}
