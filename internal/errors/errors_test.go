package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	// Test creating a new error
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	// Test creating a new formatted error
	err = Newf("formatted %s", "error")
	assert.NotNil(t, err)
	assert.Equal(t, "formatted error", err.Error())

	// Check that the error is an ApplicationError
	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, "formatted error", appErr.Error())
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.NotNil(t, wrappedErr)
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())

	unwrappedErr := Unwrap(wrappedErr)
	assert.Equal(t, origErr, unwrappedErr)

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	// Wrapping nil returns nil
	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())
	assert.True(t, Is(deepWrapped, origErr))
}

func TestArchiveError(t *testing.T) {
	cause := fmt.Errorf("zip: not a valid zip file")
	archiveErr := NewArchiveError("cannot read archive", "/tmp/book.zip", ArchiveCorrupt, cause)

	assert.Equal(t, "cannot read archive: /tmp/book.zip: zip: not a valid zip file", archiveErr.Error())
	assert.Equal(t, "/tmp/book.zip", archiveErr.Path())
	assert.Equal(t, ArchiveCorrupt, archiveErr.Kind())
	assert.True(t, IsArchiveError(archiveErr))
	assert.True(t, IsArchiveError(Wrap(archiveErr, "open")))
	assert.False(t, IsPageLoadError(archiveErr))
	assert.Equal(t, cause, errors.Unwrap(archiveErr))

	noPath := NewArchiveError("cannot read archive", "", ArchiveCorrupt, nil)
	assert.Equal(t, "cannot read archive", noPath.Error())
}

func TestPageLoadError(t *testing.T) {
	pageErr := NewPageLoadError("cannot decode page", "001.png", 0, PageDecodeFailed, errors.New("flate: corrupt input"))
	assert.Equal(t, "cannot decode page: 001.png: flate: corrupt input", pageErr.Error())
	assert.Equal(t, "001.png", pageErr.Name())
	assert.Equal(t, 0, pageErr.Index())
	assert.True(t, IsPageLoadError(pageErr))
	assert.False(t, IsPageOutOfRange(pageErr))

	rangeErr := NewPageLoadError("page out of range", "", 12, PageOutOfRange, nil)
	assert.Equal(t, "page out of range: page 12", rangeErr.Error())
	assert.True(t, IsPageOutOfRange(rangeErr))
}

func TestClipboardError(t *testing.T) {
	clipErr := NewClipboardError("clipboard write denied", ClipboardUnavailable, errors.New("no display"))
	assert.Equal(t, "clipboard write denied: no display", clipErr.Error())
	assert.True(t, IsClipboardError(clipErr))
	assert.True(t, IsClipboardError(ErrNothingToCopy))
	assert.Equal(t, NothingToCopy, ErrNothingToCopy.Kind())
}

func TestEmptyArchiveError(t *testing.T) {
	emptyErr := NewEmptyArchiveError("/tmp/text-only.zip")
	assert.Equal(t, "no images found", emptyErr.Error())
	assert.Equal(t, "/tmp/text-only.zip", emptyErr.Path())
	assert.True(t, IsEmptyArchive(emptyErr))
	assert.True(t, Is(emptyErr, ErrNoImages))
	assert.True(t, Is(Wrap(emptyErr, "open"), ErrNoImages))
	assert.False(t, IsArchiveError(emptyErr))
}

func TestConfigError(t *testing.T) {
	configErr := NewConfigError("invalid value", "thumbnails.mode", InvalidConfig, nil)
	assert.Equal(t, "invalid value: thumbnails.mode", configErr.Error())
	assert.Equal(t, "thumbnails.mode", configErr.Param())
	assert.True(t, IsInvalidConfig(configErr))
	assert.True(t, IsInvalidConfig(ErrInvalidConfig))

	notFound := NewConfigError("config not found", "", ConfigNotFound, nil)
	assert.False(t, IsInvalidConfig(notFound))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "no images found", UserMessage(Wrap(NewEmptyArchiveError("x.zip"), "open")))
	assert.Equal(t, "cannot decode page: 003.jpg",
		UserMessage(NewPageLoadError("cannot decode page", "003.jpg", 2, PageDecodeFailed, nil)))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
}
