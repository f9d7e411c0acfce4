package testutils

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Entry describes one member of a test archive.
type Entry struct {
	Name string
	Data []byte
	Dir  bool
	// Unsupported stores the entry with a compression method no reader knows.
	Unsupported bool
	// BadChecksum stores the entry with a CRC that does not match its data.
	BadChecksum bool
}

// BuildZip writes entries, in order, into an in-memory ZIP archive.
func BuildZip(t *testing.T, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		switch {
		case e.Dir:
			_, err := zw.Create(e.Name)
			require.NoError(t, err)
		case e.Unsupported || e.BadChecksum:
			method := zip.Store
			crc := uint32(0)
			if e.Unsupported {
				method = 99
			} else {
				crc = 0xdeadbeef
			}
			w, err := zw.CreateRaw(&zip.FileHeader{
				Name:               e.Name,
				Method:             method,
				CRC32:              crc,
				CompressedSize64:   uint64(len(e.Data)),
				UncompressedSize64: uint64(len(e.Data)),
			})
			require.NoError(t, err)
			_, err = w.Write(e.Data)
			require.NoError(t, err)
		default:
			w, err := zw.Create(e.Name)
			require.NoError(t, err)
			_, err = w.Write(e.Data)
			require.NoError(t, err)
		}
	}

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// Files builds entries named after names whose data is the name itself.
func Files(names ...string) []Entry {
	entries := make([]Entry, len(names))
	for i, n := range names {
		entries[i] = Entry{Name: n, Data: []byte(n)}
	}
	return entries
}

// WriteZip stores an archive built from entries under dir and returns its path.
func WriteZip(t *testing.T, dir, name string, entries ...Entry) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, BuildZip(t, entries...), 0644))
	return path
}

// PNG encodes a w×h image filled with c.
func PNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h, c)))
	return buf.Bytes()
}

// JPEG encodes a w×h image filled with c.
func JPEG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h, c), nil))
	return buf.Bytes()
}

// GIF encodes a w×h image filled with c.
func GIF(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, solid(w, h, c), nil))
	return buf.Bytes()
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
