package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/matsen/note/internal/note"
	"go.uber.org/zap"
)

// selectNoteFields is the column list for note SELECT queries.
const selectNoteFields = `nid, date, message`

// orderNotes is the ordering every listing query uses.
const orderNotes = ` ORDER BY nid, date`

// Renumbering records one id change made by Renumber.
type Renumbering struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// TagCount is a tag and the number of notes carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Stats summarizes the store.
type Stats struct {
	Path          string     `json:"path"`
	Namespace     string     `json:"namespace"`
	SchemaVersion string     `json:"schema_version"`
	Notes         int        `json:"notes"`
	MinID         int64      `json:"min_id,omitempty"`
	MaxID         int64      `json:"max_id,omitempty"`
	First         *time.Time `json:"first,omitempty"`
	Last          *time.Time `json:"last,omitempty"`
	SizeBytes     int64      `json:"size_bytes"`
}

// List returns every note ordered by id.
func (d *DB) List(ctx context.Context) ([]note.Note, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+selectNoteFields+` FROM notes`+orderNotes)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// Get returns the note with the given id.
func (d *DB) Get(ctx context.Context, id int64) (note.Note, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectNoteFields+` FROM notes WHERE nid = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return note.Note{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return note.Note{}, fmt.Errorf("reading note %d: %w", id, err)
	}
	return n, nil
}

// Add creates one note per message, in order. Each note gets the next id
// after the previous insert, and all share one timestamp.
func (d *DB) Add(ctx context.Context, messages []string) ([]note.Note, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no messages to add", ErrInvalidInput)
	}
	for i, msg := range messages {
		if err := note.ValidateMessage(msg); err != nil {
			return nil, fmt.Errorf("%w: message %d: %v", ErrInvalidInput, i+1, err)
		}
	}

	now := d.now().UTC()
	notes := make([]note.Note, len(messages))
	for i, msg := range messages {
		notes[i] = note.Note{Timestamp: now, Message: msg}
	}

	created, err := d.insert(ctx, "adding notes", notes)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("added notes", zap.Int("count", len(created)))
	return created, nil
}

// Import inserts previously exported notes. Ids are freshly assigned in
// input order; timestamps are preserved.
func (d *DB) Import(ctx context.Context, notes []note.Note) ([]note.Note, error) {
	if len(notes) == 0 {
		return []note.Note{}, nil
	}
	now := d.now().UTC()
	toInsert := make([]note.Note, len(notes))
	for i, n := range notes {
		if err := note.ValidateMessage(n.Message); err != nil {
			return nil, fmt.Errorf("%w: note %d: %v", ErrInvalidInput, i+1, err)
		}
		ts := n.Timestamp.UTC()
		if n.Timestamp.IsZero() {
			ts = now
		}
		toInsert[i] = note.Note{Timestamp: ts, Message: n.Message}
	}
	return d.insert(ctx, "importing notes", toInsert)
}

// insert assigns ids and writes notes within one locked transaction.
func (d *DB) insert(ctx context.Context, op string, notes []note.Note) ([]note.Note, error) {
	created := make([]note.Note, 0, len(notes))

	err := d.withWriteTx(ctx, op, func(tx *sql.Tx) error {
		for _, n := range notes {
			var id int64
			if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(nid), 0) + 1 FROM notes`).Scan(&id); err != nil {
				return fmt.Errorf("%s: computing next id: %w", op, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO notes (nid, date, message) VALUES (?, ?, ?)`,
				id, formatTime(n.Timestamp), n.Message,
			); err != nil {
				return fmt.Errorf("%s: inserting note %d: %w", op, id, err)
			}
			n.ID = id
			created = append(created, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes the notes with the given ids and returns them ordered by
// id. Ids that don't exist are ignored.
func (d *DB) Delete(ctx context.Context, ids []int64) ([]note.Note, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []note.Note{}, nil
	}

	inClause, args := idArgs(ids)
	var removed []note.Note

	err := d.withWriteTx(ctx, "deleting notes", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+selectNoteFields+` FROM notes WHERE nid IN (`+inClause+`)`+orderNotes, args...)
		if err != nil {
			return fmt.Errorf("deleting notes: selecting: %w", err)
		}
		removed, err = scanNotes(rows)
		rows.Close()
		if err != nil {
			return fmt.Errorf("deleting notes: %w", err)
		}
		if len(removed) == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE nid IN (`+inClause+`)`, args...); err != nil {
			return fmt.Errorf("deleting notes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Debug("deleted notes", zap.Int("requested", len(ids)), zap.Int("removed", len(removed)))
	return removed, nil
}

// Clear removes every note and returns how many were removed.
func (d *DB) Clear(ctx context.Context) (int, error) {
	var removed int64
	err := d.withWriteTx(ctx, "clearing notes", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM notes`)
		if err != nil {
			return fmt.Errorf("clearing notes: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

// Search returns notes whose message contains substr, ignoring case.
func (d *DB) Search(ctx context.Context, substr string) ([]note.Note, error) {
	// instr rather than LIKE so '%' and '_' in the query match literally.
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+selectNoteFields+` FROM notes WHERE instr(`+lowerFunc+`(message), ?) > 0`+orderNotes,
		strings.ToLower(substr))
	if err != nil {
		return nil, fmt.Errorf("searching notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// SearchTag returns notes containing the delimited tag, e.g. ":work:" for
// tag "work". Surrounding colons in tag are accepted and ignored.
func (d *DB) SearchTag(ctx context.Context, tag string) ([]note.Note, error) {
	token := note.TagToken(tag)
	if token == "" {
		return nil, fmt.Errorf("%w: empty tag", ErrInvalidInput)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+selectNoteFields+` FROM notes WHERE instr(`+lowerFunc+`(message), ?) > 0`+orderNotes,
		token)
	if err != nil {
		return nil, fmt.Errorf("searching tag %s: %w", token, err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// Update replaces the message of note id. The timestamp is unchanged.
func (d *DB) Update(ctx context.Context, id int64, message string) (note.Note, error) {
	if err := note.ValidateMessage(message); err != nil {
		return note.Note{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var updated note.Note
	err := d.withWriteTx(ctx, "updating note", func(tx *sql.Tx) error {
		var err error
		updated, err = updateMessage(ctx, tx, id, message)
		return err
	})
	if err != nil {
		return note.Note{}, err
	}
	return updated, nil
}

// Append adds a space and suffix to the message of note id.
func (d *DB) Append(ctx context.Context, id int64, suffix string) (note.Note, error) {
	if err := note.ValidateMessage(suffix); err != nil {
		return note.Note{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var updated note.Note
	err := d.withWriteTx(ctx, "appending to note", func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT message FROM notes WHERE nid = ?`, id).Scan(&current)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("appending to note %d: %w", id, err)
		}

		updated, err = updateMessage(ctx, tx, id, current+" "+suffix)
		return err
	})
	if err != nil {
		return note.Note{}, err
	}
	return updated, nil
}

func updateMessage(ctx context.Context, tx *sql.Tx, id int64, message string) (note.Note, error) {
	res, err := tx.ExecContext(ctx, `UPDATE notes SET message = ? WHERE nid = ?`, message, id)
	if err != nil {
		return note.Note{}, fmt.Errorf("updating note %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return note.Note{}, fmt.Errorf("updating note %d: %w", id, err)
	}
	if affected == 0 {
		return note.Note{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+selectNoteFields+` FROM notes WHERE nid = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		return note.Note{}, fmt.Errorf("reading updated note %d: %w", id, err)
	}
	return n, nil
}

// Renumber reassigns ids to 1..N in ascending order of the current ids and
// returns the ids that changed. Running it again changes nothing.
func (d *DB) Renumber(ctx context.Context) ([]Renumbering, error) {
	var changes []Renumbering

	err := d.withWriteTx(ctx, "renumbering notes", func(tx *sql.Tx) error {
		ids, err := selectIDs(ctx, tx)
		if err != nil {
			return fmt.Errorf("renumbering notes: %w", err)
		}

		for i, id := range ids {
			if want := int64(i + 1); id != want {
				changes = append(changes, Renumbering{From: id, To: want})
			}
		}
		if len(changes) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `UPDATE notes SET nid = ? WHERE nid = ?`)
		if err != nil {
			return fmt.Errorf("renumbering notes: preparing: %w", err)
		}
		defer stmt.Close()

		// Park every moving note below all current and target ids first,
		// so no step collides with a primary key still in use.
		base := min(ids[0], 1) - 1
		for i, c := range changes {
			if _, err := stmt.ExecContext(ctx, base-int64(i), c.From); err != nil {
				return fmt.Errorf("renumbering note %d: %w", c.From, err)
			}
		}
		for i, c := range changes {
			if _, err := stmt.ExecContext(ctx, c.To, base-int64(i)); err != nil {
				return fmt.Errorf("renumbering note %d to %d: %w", c.From, c.To, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Debug("renumbered notes", zap.Int("changed", len(changes)))
	if changes == nil {
		changes = []Renumbering{}
	}
	return changes, nil
}

// Tags counts the tags used across all notes, most used first.
func (d *DB) Tags(ctx context.Context) ([]TagCount, error) {
	notes, err := d.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, n := range notes {
		for _, tag := range note.Tags(n.Message) {
			counts[tag]++
		}
	}

	tags := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	return tags, nil
}

// Count returns the number of notes.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count)
	return count, err
}

// Stats returns a summary of the store.
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Path: d.path}

	var first, last string
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MIN(nid), 0), COALESCE(MAX(nid), 0),
			COALESCE(MIN(date), ''), COALESCE(MAX(date), '')
		FROM notes`).Scan(&stats.Notes, &stats.MinID, &stats.MaxID, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	if first != "" {
		t, err := parseTime(first)
		if err != nil {
			return nil, fmt.Errorf("parsing first timestamp: %w", err)
		}
		stats.First = &t
	}
	if last != "" {
		t, err := parseTime(last)
		if err != nil {
			return nil, fmt.Errorf("parsing last timestamp: %w", err)
		}
		stats.Last = &t
	}

	if stats.Namespace, err = d.GetMeta(ctx, "namespace"); err != nil {
		return nil, err
	}
	if stats.SchemaVersion, err = d.GetMeta(ctx, "schema_version"); err != nil {
		return nil, err
	}

	// Recent writes may still live in the write-ahead log.
	for _, p := range []string{d.path, d.path + "-wal"} {
		if info, err := os.Stat(p); err == nil {
			stats.SizeBytes += info.Size()
		}
	}
	return stats, nil
}

func selectIDs(ctx context.Context, tx *sql.Tx) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT nid FROM notes ORDER BY nid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (note.Note, error) {
	var n note.Note
	var date string
	if err := s.Scan(&n.ID, &date, &n.Message); err != nil {
		return note.Note{}, err
	}
	ts, err := parseTime(date)
	if err != nil {
		return note.Note{}, fmt.Errorf("parsing timestamp of note %d: %w", n.ID, err)
	}
	n.Timestamp = ts
	return n, nil
}

func scanNotes(rows *sql.Rows) ([]note.Note, error) {
	notes := []note.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// idArgs builds a placeholder list and matching arguments for an IN clause.
func idArgs(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}
