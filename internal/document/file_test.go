package document

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/autoedit/internal/record"
)

func TestFile_ReadMissingIsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "automations.yaml"))

	c, err := f.Read(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Empty(t, c)
}

func TestFile_WriteThenRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "automations.yaml")
	f := NewFile(path)

	c := record.Collection{
		record.Of("id", "abc", "alias", "Morning", "trigger", []any{record.Of("platform", "time", "at", "07:00:00")}),
		record.Of("id", "def", "zeta", 1, "alias", "Evening"),
	}
	require.NoError(t, f.Write(ctx, c))

	got, err := f.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.Less(t, strings.Index(text, "id: abc"), strings.Index(text, "alias: Morning"))
	assert.Less(t, strings.Index(text, "zeta: 1"), strings.Index(text, "alias: Evening"))
}

func TestFile_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "automations.yaml"))

	for i := 0; i < 3; i++ {
		require.NoError(t, f.Write(context.Background(), record.Collection{record.Of("id", "abc")}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "automations.yaml", entries[0].Name())
}

func TestFile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFile(filepath.Join(t.TempDir(), "automations.yaml"))
	_, err := f.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, f.Write(ctx, nil), context.Canceled)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr string
	}{
		{name: "empty", input: "", wantLen: 0},
		{name: "null", input: "~\n", wantLen: 0},
		{name: "empty list", input: "[]\n", wantLen: 0},
		{name: "two records", input: "- id: a\n- alias: b\n", wantLen: 2},
		{name: "mapping root", input: "id: a\n", wantErr: "document root must be a list"},
		{name: "scalar item", input: "- just a string\n", wantErr: "record 0"},
		{name: "broken yaml", input: "- id: [\n", wantErr: "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode([]byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, c, tt.wantLen)
		})
	}
}

func TestEncode_EmptyCollection(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}
