package main

import (
	"fmt"
	"os"

	"github.com/matsen/note/internal/note"
	"github.com/matsen/note/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import notes from JSONL",
	Long: `Import notes written by 'note export'. Use - to read stdin.

Imported notes keep their timestamps but get fresh ids after the
existing notes, in file order.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	notes, err := readImport(path)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := db.Import(cmd.Context(), notes)
	if err != nil {
		return err
	}
	log.Debug("imported notes", zap.String("path", path), zap.Int("count", len(created)))

	if jsonOutput {
		return outputJSON(ExportResponse{Status: "imported", Count: len(created), Path: path})
	}
	fmt.Fprintf(stdout, "\n  imported %s from %s\n\n", pluralize(len(created), "note"), path)
	return nil
}

func readImport(path string) ([]note.Note, error) {
	if path == "-" {
		return storage.ReadJSONL(os.Stdin)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return storage.ReadJSONLFile(path)
}
