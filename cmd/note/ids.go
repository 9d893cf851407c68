package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/note/internal/storage"
)

// parseID parses a note id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: note id must be an integer, got %q", storage.ErrInvalidInput, arg)
	}
	return id, nil
}

// parseIDs parses note id arguments. Commas also separate ids, so
// "note rm 1,2 5" removes three notes.
func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no note ids given", storage.ErrInvalidInput)
	}
	return ids, nil
}
