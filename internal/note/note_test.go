package note

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTags(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want []string
	}{
		{"no tags", "buy milk", nil},
		{"single", "buy milk :errand:", []string{"errand"}},
		{"two separate", ":work: call bob :urgent:", []string{"work", "urgent"}},
		{"shared delimiter", "meeting :work:urgent:", []string{"work", "urgent"}},
		{"duplicate", ":a: and :a: again", []string{"a"}},
		{"uppercase ignored", "see :Work: later", nil},
		{"digits break tag", "version :v2:", nil},
		{"lone colons", "time 10:30: now", nil},
		{"empty between colons", "a :: b", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tags(tt.msg))
		})
	}
}

func TestTagToken(t *testing.T) {
	assert.Equal(t, ":errand:", TagToken("errand"))
	assert.Equal(t, ":errand:", TagToken(":Errand:"))
	assert.Equal(t, "", TagToken("   "))
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage("hello"))
	assert.ErrorIs(t, ValidateMessage(""), ErrEmptyMessage)
	assert.ErrorIs(t, ValidateMessage(" \t\n"), ErrEmptyMessage)
}

func TestHighlightTags(t *testing.T) {
	upper := func(s string) string { return "[" + strings.ToUpper(s) + "]" }

	tests := []struct {
		msg  string
		want string
	}{
		{"plain text", "plain text"},
		{"buy milk :errand:", "buy milk [:ERRAND:]"},
		{":a: x :b:", "[:A:] x [:B:]"},
		{":a:b:", "[:A:][B:]"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, HighlightTags(tt.msg, upper))
		})
	}
}
