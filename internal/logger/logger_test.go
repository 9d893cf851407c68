package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewWithWriter_Levels(t *testing.T) {
	var quiet bytes.Buffer
	log := NewWithWriter(&quiet, false)
	log.Debug("hidden")
	log.Warn("shown", zap.String("path", "/tmp/notes.db"))
	_ = log.Sync()

	assert.NotContains(t, quiet.String(), "hidden")
	assert.Contains(t, quiet.String(), "shown")
	assert.Contains(t, quiet.String(), "WARN")
	assert.Contains(t, quiet.String(), "/tmp/notes.db")

	var verbose bytes.Buffer
	log = NewWithWriter(&verbose, true)
	log.Debug("details")
	_ = log.Sync()

	assert.Contains(t, verbose.String(), "DEBUG")
	assert.Contains(t, verbose.String(), "details")
}
