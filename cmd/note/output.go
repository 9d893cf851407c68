package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/matsen/note/internal/config"
	"github.com/matsen/note/internal/note"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Output streams. Colorable writers translate ANSI escapes on Windows.
var (
	stdout io.Writer = colorable.NewColorableStdout()
	stderr io.Writer = colorable.NewColorableStderr()
)

// ANSI styles used in human output.
const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// addTimeFormat is the short time shown when notes are added.
const addTimeFormat = "15:04"

// NoteView is a note as rendered in JSON output, with its derived tags.
type NoteView struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Tags      []string  `json:"tags"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status  string `json:"status"`
	Removed int    `json:"removed,omitempty"`
	Path    string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if jsonOutput {
		outputJSON(ErrorResponse{Error: msg, Code: code})
	} else {
		fmt.Fprintf(stderr, "  note: %s\n", msg)
	}
	os.Exit(code)
}

func toViews(notes []note.Note) []NoteView {
	views := make([]NoteView, len(notes))
	for i, n := range notes {
		tags := note.Tags(n.Message)
		if tags == nil {
			tags = []string{}
		}
		views[i] = NoteView{ID: n.ID, Timestamp: n.Timestamp, Message: n.Message, Tags: tags}
	}
	return views
}

// styler applies ANSI styles when color is enabled.
type styler struct {
	enabled bool
}

func (s styler) style(code, text string) string {
	if !s.enabled || text == "" {
		return text
	}
	return code + text + ansiReset
}

// message renders a note message with its tags highlighted.
func (s styler) message(msg string) string {
	if !s.enabled {
		return msg
	}
	return note.HighlightTags(msg, func(tag string) string {
		return s.style(ansiCyan, tag)
	})
}

// colorEnabled decides whether human output is colored: --no-color and
// NO_COLOR always win, then the configured mode, then TTY detection.
func colorEnabled(mode string, fd uintptr) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newStyler returns the styler for stdout under the current configuration.
func newStyler() styler {
	mode := config.ColorAuto
	if cfg != nil {
		mode = cfg.Color
	}
	return styler{enabled: colorEnabled(mode, os.Stdout.Fd())}
}

func timeFormat() string {
	if cfg != nil && cfg.TimeFormat != "" {
		return cfg.TimeFormat
	}
	return config.DefaultTimeFormat
}

// formatNoteLine renders one note as "  yy.mm.dd HH:MM | id | message".
func formatNoteLine(s styler, n note.Note, layout string) string {
	return fmt.Sprintf("  %s %s %s %s %s",
		s.style(ansiDim, n.Timestamp.Local().Format(layout)),
		s.style(ansiDim, "|"),
		s.style(ansiYellow, fmt.Sprint(n.ID)),
		s.style(ansiDim, "|"),
		s.message(n.Message))
}

// formatActionLine renders a note followed by an action marker such as
// "( added )".
func formatActionLine(s styler, n note.Note, layout, action, color string) string {
	return fmt.Sprintf("%s %s %s",
		formatNoteLine(s, n, layout),
		s.style(ansiDim, "|"),
		s.style(color, "( "+action+" )"))
}

// printNotes writes notes framed by blank lines, or a placeholder if none.
func printNotes(w io.Writer, s styler, notes []note.Note, layout, empty string) {
	fmt.Fprintln(w)
	if len(notes) == 0 {
		fmt.Fprintf(w, "  %s\n", s.style(ansiDim, empty))
	}
	for _, n := range notes {
		fmt.Fprintln(w, formatNoteLine(s, n, layout))
	}
	fmt.Fprintln(w)
}

// printActions writes notes with an action marker, framed by blank lines.
func printActions(w io.Writer, s styler, notes []note.Note, layout, action, color string) {
	fmt.Fprintln(w)
	for _, n := range notes {
		fmt.Fprintln(w, formatActionLine(s, n, layout, action, color))
	}
	fmt.Fprintln(w)
}

// renderNotes prints a note listing in the selected output format.
func renderNotes(notes []note.Note, empty string) error {
	if jsonOutput {
		return outputJSON(toViews(notes))
	}
	printNotes(stdout, newStyler(), notes, timeFormat(), empty)
	return nil
}

// renderActions prints notes changed by a command in the selected format.
func renderActions(notes []note.Note, layout, action, color string) error {
	if jsonOutput {
		return outputJSON(toViews(notes))
	}
	printActions(stdout, newStyler(), notes, layout, action, color)
	return nil
}

// pluralize returns "1 note" or "N notes".
func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// joinArgs joins message words given as separate arguments.
func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
