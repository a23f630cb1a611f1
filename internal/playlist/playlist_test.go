package playlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/suykerbuyk/combo-finder/internal/combo"
)

func TestMarshal_Format(t *testing.T) {
	data, err := Marshal([]combo.Combo{{Path: "/replays/Game_1.slp", Start: 10, End: 200}})
	require.NoError(t, err)

	want := `{
  "mode": "queue",
  "replay": "",
  "queue": [
    {
      "path": "/replays/Game_1.slp",
      "startFrame": -113,
      "endFrame": 77
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}

func TestMarshal_EmptyQueue(t *testing.T) {
	data, err := Marshal(nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"queue": []`)
}

func TestParse_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		combos := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) combo.Combo {
			start := rapid.IntRange(0, 20000).Draw(t, "start")
			return combo.Combo{
				Path:  rapid.StringMatching(`[A-Za-z0-9_/ .-]{1,40}`).Draw(t, "path"),
				Start: start,
				End:   start + rapid.IntRange(0, 2000).Draw(t, "len"),
			}
		}), 1, 20).Draw(t, "combos")

		data, err := Marshal(combos)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Parse(data)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, combos, got)
	})
}

func TestParse_NotPlaylist(t *testing.T) {
	for name, doc := range map[string]string{
		"wrong mode":     `{"mode":"normal","queue":[]}`,
		"missing mode":   `{"queue":[]}`,
		"queue object":   `{"mode":"queue","queue":{}}`,
		"missing queue":  `{"mode":"queue"}`,
		"top-level list": `[]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrNotPlaylist)
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte(`{"mode": "queue", "queue": [`))
	var syn *SyntaxError
	require.True(t, errors.As(err, &syn), "got %v", err)
	assert.NotErrorIs(t, err, ErrNotPlaylist)
}

func TestParse_SkipsInvalidEntries(t *testing.T) {
	got, err := Parse([]byte(`{
		"mode": "queue",
		"queue": [
			{"path": "a.slp", "startFrame": -123, "endFrame": 0},
			{"path": 4, "startFrame": 0, "endFrame": 1},
			{"path": "b.slp", "startFrame": "x", "endFrame": 1},
			{"startFrame": 0, "endFrame": 1},
			{"path": "c.slp", "startFrame": 7, "endFrame": 9}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, []combo.Combo{
		{Path: "a.slp", Start: 0, End: 123},
		{Path: "c.slp", Start: 130, End: 132},
	}, got)
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "combos.json")
	combos := []combo.Combo{{Path: "x.slp", Start: 1, End: 2}}

	require.NoError(t, Write(path, combos))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, combos, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWrite_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := Write(filepath.Join(blocker, "combos.json"), nil)
	assert.Error(t, err)
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combos.json")
	first := combo.Combo{Path: "a.slp", Start: 0, End: 10}
	second := combo.Combo{Path: "b.slp", Start: 5, End: 50}

	require.NoError(t, Append(path, []combo.Combo{first}))
	require.NoError(t, Append(path, []combo.Combo{second}))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []combo.Combo{first, second}, got)
}

func TestAppend_SkipsQueued(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combos.json")
	first := combo.Combo{Path: "a.slp", Start: 0, End: 10}
	second := combo.Combo{Path: "a.slp", Start: 200, End: 260}

	require.NoError(t, Append(path, []combo.Combo{first}))
	require.NoError(t, Append(path, []combo.Combo{first, second, second}))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []combo.Combo{first, second}, got)
}

func TestAppend_RefusesForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"mine"}`), 0o644))

	err := Append(path, []combo.Combo{{Path: "a.slp"}})
	assert.ErrorIs(t, err, ErrNotPlaylist)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"mine"}`, string(data))
}
