package main

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"mangaview/internal/clipboard"
	"mangaview/internal/errors"
	"mangaview/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeBook(t *testing.T) string {
	t.Helper()
	return testutils.WriteZip(t, t.TempDir(), "book.zip",
		testutils.Entry{Name: "page10.png", Data: testutils.PNG(t, 4, 4, color.White)},
		testutils.Entry{Name: "page2.png", Data: testutils.PNG(t, 4, 4, color.Black)},
		testutils.Entry{Name: "notes.txt", Data: []byte("skip me")},
	)
}

func useClipboard(t *testing.T, clip clipboard.Writer) {
	t.Helper()
	prev := newClipboard
	newClipboard = func() clipboard.Writer { return clip }
	t.Cleanup(func() { newClipboard = prev })
}

func TestListPrintsPageOrder(t *testing.T) {
	out, err := execute(t, "list", writeBook(t))
	require.NoError(t, err)

	assert.Contains(t, out, "book.zip: 2 pages (3 entries")
	first := bytes.Index([]byte(out), []byte("page2.png"))
	second := bytes.Index([]byte(out), []byte("page10.png"))
	require.Positive(t, first)
	assert.Less(t, first, second)
	assert.NotContains(t, out, "notes.txt")
}

func TestListTypes(t *testing.T) {
	out, err := execute(t, "list", "--types", writeBook(t))
	require.NoError(t, err)
	assert.Contains(t, out, "image/png")
}

func TestListEmptyArchive(t *testing.T) {
	path := testutils.WriteZip(t, t.TempDir(), "empty.zip", testutils.Files("readme.txt")...)
	_, err := execute(t, "list", path)
	require.Error(t, err)
	assert.True(t, errors.IsEmptyArchive(err))
}

func TestListMissingFile(t *testing.T) {
	_, err := execute(t, "list", filepath.Join(t.TempDir(), "missing.zip"))
	require.Error(t, err)
	assert.True(t, errors.IsArchiveError(err))
}

func TestCopyPage(t *testing.T) {
	clip := &clipboard.Memory{}
	useClipboard(t, clip)

	out, err := execute(t, "copy", writeBook(t), "--page", "2")
	require.NoError(t, err)
	assert.Equal(t, "Copied page 2 (page10.png) to clipboard\n", out)
	assert.Equal(t, 1, clip.Writes())
	assert.NotEmpty(t, clip.Image())
}

func TestCopyPageOutOfRange(t *testing.T) {
	clip := &clipboard.Memory{}
	useClipboard(t, clip)

	_, err := execute(t, "copy", writeBook(t), "--page", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
	assert.Zero(t, clip.Writes())
}

func TestCopyClipboardFailure(t *testing.T) {
	useClipboard(t, &clipboard.Memory{Err: os.ErrPermission})

	_, err := execute(t, "copy", writeBook(t))
	require.Error(t, err)
	assert.True(t, errors.IsClipboardError(err))
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thumbnails:\n  mode: sideways\n"), 0o644))

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "list", writeBook(t)})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestTUIRequiresArchive(t *testing.T) {
	_, err := execute(t, "tui")
	assert.Error(t, err)
}
