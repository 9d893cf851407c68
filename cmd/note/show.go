package main

import (
	"fmt"

	"github.com/matsen/note/internal/clipboard"
	"github.com/matsen/note/internal/note"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var showCopy bool

func init() {
	showCmd.Flags().BoolVarP(&showCopy, "copy", "c", false, "Copy the message to the clipboard")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single note",
	Long: `Show a single note. With --copy the message is also put on the
system clipboard (pbcopy, wl-copy, xclip or xsel).`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if showCopy {
		if err := requireClipboard(clipboard.IsAvailable); err != nil {
			return err
		}
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	if showCopy {
		tool, err := clipboard.Copy(n.Message)
		if err != nil {
			return fmt.Errorf("copying note %d: %w", id, err)
		}
		log.Debug("copied note", zap.Int64("id", id), zap.String("tool", tool))
	}

	if jsonOutput {
		return outputJSON(toViews([]note.Note{n})[0])
	}
	printNotes(stdout, newStyler(), []note.Note{n}, timeFormat(), "")
	if showCopy {
		fmt.Fprintf(stdout, "  %s\n\n", newStyler().style(ansiDim, "( copied )"))
	}
	return nil
}

// requireClipboard fails before any work is done when no clipboard tool
// is installed.
func requireClipboard(available func() bool) error {
	if !available() {
		return fmt.Errorf("--copy: %w (install pbcopy, wl-copy, xclip or xsel)", clipboard.ErrClipboardUnavailable)
	}
	return nil
}
