package main

import (
	"fmt"

	"github.com/matsen/note/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export notes as JSONL",
	Long: `Export every note as JSON Lines, one note per line, to a file or
to stdout when no file is given. 'note import' reads the same format.

Examples:
  note export notes.jsonl
  note export > backup.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	notes, err := db.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return storage.WriteJSONL(stdout, notes)
	}

	path := args[0]
	if err := storage.WriteJSONLFile(path, notes); err != nil {
		return err
	}
	log.Debug("exported notes", zap.String("path", path), zap.Int("count", len(notes)))

	if jsonOutput {
		return outputJSON(ExportResponse{Status: "exported", Count: len(notes), Path: path})
	}
	fmt.Fprintf(stdout, "\n  exported %s to %s\n\n", pluralize(len(notes), "note"), path)
	return nil
}

// ExportResponse is the JSON response for export and import.
type ExportResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Path   string `json:"path,omitempty"`
}
