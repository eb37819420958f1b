package music

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanMissingRootIsEmpty(t *testing.T) {
	lib, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, lib.Tracks())
}

func TestScanSkipsUndecodableFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "audio"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "audio", "1.mp3"), []byte("not an mp3"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "audio", "notes.txt"), []byte("x"), 0o644))

	lib, err := Scan(root)
	require.NoError(t, err)
	assert.Empty(t, lib.Tracks())
	assert.Equal(t, []string{"audio/1.mp3"}, lib.Missing([]string{"audio/1.mp3", "https://cdn.example.com/a.mp3"}))
}

func TestLookupNormalizesRefs(t *testing.T) {
	lib := &Library{tracks: map[string]Track{"audio/1.mp3": {Ref: "audio/1.mp3", Seconds: 3}}}

	tr, ok := lib.Lookup("/audio/1.mp3")
	require.True(t, ok)
	assert.Equal(t, 3.0, tr.Seconds)
	_, ok = lib.Lookup("./audio/../audio/1.mp3")
	assert.True(t, ok)
	assert.Empty(t, lib.Missing([]string{"audio/1.mp3"}))
}
