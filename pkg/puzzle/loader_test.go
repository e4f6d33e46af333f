package puzzle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
  "name": "mini",
  "width": 3,
  "height": 3,
  "clues": [
    {"number": 1, "direction": "across", "text": "Feline pet", "row": 0, "col": 0, "length": 3, "answer": "CAT"},
    {"number": 1, "direction": "down", "text": "Farm animal", "row": 0, "col": 0, "length": 3, "answer": "COW"}
  ]
}`

const validYAML = `name: tiny
width: 2
height: 2
clues:
  - number: 1
    direction: across
    text: Exist
    row: 0
    col: 0
    length: 2
    answer: BE
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mini.json", validJSON)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mini", p.Name)
	assert.Equal(t, 3, p.Width)
	assert.Len(t, p.Clues, 2)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tiny.yaml", validYAML)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", p.Name)
	assert.Equal(t, "BE", p.Clues[0].Answer)
}

func TestLoadDefaultsNameFromFilename(t *testing.T) {
	dir := t.TempDir()
	content := `{"width": 2, "height": 1, "clues": [{"number": 1, "direction": "across", "text": "Exist", "row": 0, "col": 0, "length": 2, "answer": "BE"}]}`
	path := writeFile(t, dir, "monday.json", content)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "monday", p.Name)
}

func TestLoadRejectsInvalidPuzzle(t *testing.T) {
	dir := t.TempDir()
	// Answer length disagrees with declared length.
	content := `{"name": "bad", "width": 3, "height": 1, "clues": [{"number": 1, "direction": "across", "text": "x", "row": 0, "col": 0, "length": 3, "answer": "AB"}]}`
	path := writeFile(t, dir, "bad.json", content)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "puzzle.txt", "not a puzzle")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "beta.json", validJSON)
	writeFile(t, dir, "alpha.yaml", validYAML)
	writeFile(t, dir, "notes.txt", "ignored")

	infos, err := List(dir)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	// Sorted by the puzzle's declared name, not the filename.
	assert.Equal(t, "mini", infos[0].Name)
	assert.Equal(t, filepath.Join(dir, "beta.json"), infos[0].Path)
	assert.Equal(t, "tiny", infos[1].Name)
	assert.Equal(t, filepath.Join(dir, "alpha.yaml"), infos[1].Path)
}

func TestListMissingDir(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestListSkipsUnparseableFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", validJSON)
	writeFile(t, dir, "broken.json", "{not json")

	infos, err := List(dir)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "mini", infos[0].Name)
}
