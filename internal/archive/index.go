// Package archive indexes the image entries of a ZIP archive.
//
// The page order is decided entirely by the numeric sort: the first run of
// decimal digits in each entry name is the page number (0 when absent), and
// entries sharing a number keep their archive enumeration order.
package archive

import (
	"archive/zip"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mangaview/internal/errors"

	"github.com/gobwas/glob"
)

// DefaultExtensions are the image suffixes shown as pages.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

// PageList is the ordered sequence of image entry names.
type PageList []string

// Len returns the number of pages.
func (p PageList) Len() int { return len(p) }

// Valid reports whether i addresses a page.
func (p PageList) Valid(i int) bool { return i >= 0 && i < len(p) }

// Option configures Open.
type Option func(*options)

type options struct {
	extensions []string
}

// WithExtensions replaces the recognized image extensions (without the dot).
func WithExtensions(exts ...string) Option {
	return func(o *options) {
		if len(exts) > 0 {
			o.extensions = exts
		}
	}
}

// Index is the decoded archive plus its page list. It is owned by one viewer.
type Index struct {
	path    string
	raw     []byte
	reader  *zip.Reader
	entries map[string]*zip.File
	pages   PageList
	total   int
}

// Open decodes data as a ZIP archive and builds the page list.
// An archive without images is not an error; the page list is empty.
func Open(data []byte, opts ...Option) (*Index, error) {
	return open("", data, opts...)
}

// OpenFile reads the archive at path and calls Open.
func OpenFile(path string, opts ...Option) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewArchiveError("cannot read archive", path, errors.ArchiveUnreadable, err)
	}
	return open(path, data, opts...)
}

func open(path string, data []byte, opts ...Option) (*Index, error) {
	o := options{extensions: DefaultExtensions}
	for _, opt := range opts {
		opt(&o)
	}

	matcher, err := compileFilter(o.extensions)
	if err != nil {
		return nil, errors.NewConfigError("invalid extension filter", strings.Join(o.extensions, ","), errors.InvalidConfig, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !(stderrors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return nil, errors.NewArchiveError("invalid ZIP archive", path, errors.ArchiveCorrupt, err)
	}

	idx := &Index{
		path:    path,
		raw:     data,
		reader:  zr,
		entries: make(map[string]*zip.File, len(zr.File)),
		total:   len(zr.File),
	}

	// A repeated name keeps its first position but reads the last entry.
	var names []string
	for _, f := range zr.File {
		_, dup := idx.entries[f.Name]
		idx.entries[f.Name] = f
		if !dup && isImageEntry(f, matcher) {
			names = append(names, f.Name)
		}
	}
	idx.pages = SortPages(names)

	return idx, nil
}

// compileFilter builds a matcher like *.{jpg,jpeg,png} for lower-cased names.
func compileFilter(exts []string) (glob.Glob, error) {
	clean := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			clean = append(clean, e)
		}
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("no extensions")
	}
	return glob.Compile("*.{" + strings.Join(clean, ",") + "}")
}

func isImageEntry(f *zip.File, matcher glob.Glob) bool {
	if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
		return false
	}
	return matcher.Match(strings.ToLower(f.Name))
}

// ImageEntryNames returns the ordered page list.
func (x *Index) ImageEntryNames() PageList {
	out := make(PageList, len(x.pages))
	copy(out, x.pages)
	return out
}

// Len returns the number of pages.
func (x *Index) Len() int { return len(x.pages) }

// Entries returns the number of entries in the archive, pages or not.
func (x *Index) Entries() int { return x.total }

// Size returns the archive size in bytes.
func (x *Index) Size() int64 { return int64(len(x.raw)) }

// Path returns the file the archive was read from, if any.
func (x *Index) Path() string { return x.path }

// Raw returns the archive bytes.
func (x *Index) Raw() []byte { return x.raw }

// UncompressedSize returns the declared size of entry name.
func (x *Index) UncompressedSize(name string) (uint64, bool) {
	f, ok := x.entries[name]
	if !ok {
		return 0, false
	}
	return f.UncompressedSize64, true
}

// Entry reads and decompresses one entry.
func (x *Index) Entry(name string) ([]byte, error) {
	f, ok := x.entries[name]
	if !ok {
		return nil, errors.NewPageLoadError("entry not found", name, -1, errors.PageDecodeFailed, nil)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, errors.NewPageLoadError("cannot open entry", name, -1, errors.PageDecodeFailed, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.NewPageLoadError("cannot decode entry", name, -1, errors.PageDecodeFailed, err)
	}
	return data, nil
}
