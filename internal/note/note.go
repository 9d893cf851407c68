// Package note defines the note record and the tag conventions used in
// note messages.
package note

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Note is a single timestamped text entry.
type Note struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// TagDelimiter surrounds a tag inside a message, e.g. ":work:".
const TagDelimiter = ":"

// tagPattern matches one delimited tag. tagSpans drives it by hand so
// that ":a:b:" yields both "a" and "b".
var tagPattern = regexp.MustCompile(`:[a-z]+:`)

// ErrEmptyMessage is returned by ValidateMessage for blank text.
var ErrEmptyMessage = errors.New("message is empty")

// ValidateMessage rejects messages that are empty or only whitespace.
func ValidateMessage(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Tags returns the distinct tag names in msg, without delimiters, in the
// order they first appear.
func Tags(msg string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, loc := range tagSpans(msg) {
		tag := msg[loc[0]+1 : loc[1]-1]
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// NormalizeTag lowercases tag and strips surrounding delimiters and
// whitespace, so ":Work:" and "work" name the same tag.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, TagDelimiter)
	tag = strings.TrimSuffix(tag, TagDelimiter)
	return strings.ToLower(strings.TrimSpace(tag))
}

// TagToken returns the delimited search token for tag, or "" if the
// normalized tag is empty.
func TagToken(tag string) string {
	tag = NormalizeTag(tag)
	if tag == "" {
		return ""
	}
	return TagDelimiter + tag + TagDelimiter
}

// HighlightTags returns msg with every delimited tag replaced by
// wrap(tag), where tag includes its delimiters.
func HighlightTags(msg string, wrap func(string) string) string {
	spans := tagSpans(msg)
	if len(spans) == 0 {
		return msg
	}

	var b strings.Builder
	last := 0
	for _, loc := range spans {
		start := loc[0]
		// Adjacent tags share a delimiter; emit it once, as part of the
		// earlier tag.
		if start < last {
			start = last
		}
		b.WriteString(msg[last:start])
		b.WriteString(wrap(msg[start:loc[1]]))
		last = loc[1]
	}
	b.WriteString(msg[last:])
	return b.String()
}

// tagSpans finds every delimited tag, allowing neighbours to share a colon.
func tagSpans(msg string) [][]int {
	var spans [][]int
	offset := 0
	for offset < len(msg) {
		loc := tagPattern.FindStringIndex(msg[offset:])
		if loc == nil {
			break
		}
		start, end := offset+loc[0], offset+loc[1]
		spans = append(spans, []int{start, end})
		// Resume on the closing colon so it can open the next tag.
		offset = end - 1
	}
	return spans
}
