package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matsen/note/internal/note"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadJSONL reads notes from JSONL, one note per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]note.Note, error) {
	var notes []note.Note
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var n note.Note
		if err := json.Unmarshal(line, &n); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		notes = append(notes, n)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading notes: %w", err)
	}

	return notes, nil
}

// ReadJSONLFile reads notes from a JSONL file. A missing file yields no notes.
func ReadJSONLFile(path string) ([]note.Note, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening notes file: %w", err)
	}
	defer f.Close()

	return ReadJSONL(f)
}

// WriteJSONL writes notes as JSONL, one note per line.
func WriteJSONL(w io.Writer, notes []note.Note) error {
	bw := bufio.NewWriter(w)
	for i, n := range notes {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encoding note %d: %w", i, err)
		}

		if _, err := bw.Write(data); err != nil {
			return fmt.Errorf("writing note %d: %w", i, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return bw.Flush()
}

// WriteJSONLFile writes notes to a JSONL file, replacing existing content.
func WriteJSONLFile(path string, notes []note.Note) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating notes file: %w", err)
	}

	if err := WriteJSONL(f, notes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
