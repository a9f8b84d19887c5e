package setups

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestListEnabled(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "alpha.json", `{
		"name": "alpha",
		"master": "M1",
		"children": ["C1", "C2"],
		"multipliers": {"C2": 2},
		"enabled": true
	}`)
	writeFile(t, dir, "beta.json", `{
		"name": "beta",
		"master": "M2",
		"children": ["C3"],
		"enabled": false
	}`)
	writeFile(t, dir, "broken.json", `{not json`)
	writeFile(t, dir, "nochildren.json", `{
		"name": "gamma",
		"master": "M3",
		"children": [],
		"enabled": true
	}`)
	writeFile(t, dir, "notes.txt", "ignored")

	setups := NewStore(dir).ListEnabled()
	require.Len(t, setups, 1)
	assert.Equal(t, "alpha", setups[0].Name)
	assert.Equal(t, "M1", setups[0].Master)
	assert.Equal(t, []string{"C1", "C2"}, setups[0].Children)
	assert.Equal(t, float64(2), setups[0].Multiplier("C2"))
	assert.Equal(t, float64(1), setups[0].Multiplier("C1"))
}

func TestListEnabledMissingDir(t *testing.T) {
	setups := NewStore(filepath.Join(t.TempDir(), "absent")).ListEnabled()
	assert.Empty(t, setups)
}

func TestListEnabledPicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	assert.Empty(t, store.ListEnabled())

	writeFile(t, dir, "alpha.json", `{"name":"alpha","master":"M1","children":["C1"],"enabled":true}`)
	require.Len(t, store.ListEnabled(), 1)

	writeFile(t, dir, "alpha.json", `{"name":"alpha","master":"M1","children":["C1"],"enabled":false}`)
	assert.Empty(t, store.ListEnabled())
}
