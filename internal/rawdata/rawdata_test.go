package rawdata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesSnapshot(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root)

	payload := map[string]any{"organic_results": []string{"https://www.tiktok.com/@a/video/1?q=x&y=1"}}
	require.NoError(t, w.Save(TypeSearchResult, payload))

	dir := filepath.Join(root, "raw_data", TypeSearchResult)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	name := entries[0].Name()
	assert.True(t, strings.HasPrefix(name, TypeSearchResult+"_"), name)
	assert.True(t, strings.HasSuffix(name, ".json"), name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "organic_results")

	// HTML escaping is off so URLs stay readable.
	assert.Contains(t, string(data), "&y=1")
}

func TestSaveSameSecondSnapshotsDoNotCollide(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root)

	require.NoError(t, w.Save(TypeImageResult, map[string]int{"n": 1}))
	require.NoError(t, w.Save(TypeImageResult, map[string]int{"n": 2}))

	entries, err := os.ReadDir(filepath.Join(root, "raw_data", TypeImageResult))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
