package main

import (
	"testing"

	"github.com/matsen/note/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []int64
		wantErr bool
	}{
		{name: "single", args: []string{"3"}, want: []int64{3}},
		{name: "several", args: []string{"1", "4", "7"}, want: []int64{1, 4, 7}},
		{name: "comma separated", args: []string{"1,4", "7"}, want: []int64{1, 4, 7}},
		{name: "trailing comma", args: []string{"2,"}, want: []int64{2}},
		{name: "spaces", args: []string{" 5 "}, want: []int64{5}},
		{name: "not a number", args: []string{"abc"}, wantErr: true},
		{name: "float", args: []string{"1.5"}, wantErr: true},
		{name: "one bad among good", args: []string{"1", "x"}, wantErr: true},
		{name: "only commas", args: []string{","}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDs(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, storage.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("forty-two")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	assert.Equal(t, ExitInvalidInput, exitCodeFor(err))
}
