// Package errors provides standardized error handling for mangaview.
// It defines the error kinds surfaced by the archive index, the page loader
// and the clipboard, plus helpers for consistent creation and wrapping.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Archive error kinds
	ArchiveUnreadable
	ArchiveCorrupt
	NoImages
	// Page error kinds
	PageOutOfRange
	PageDecodeFailed
	// Clipboard error kinds
	ClipboardUnavailable
	ClipboardWriteFailed
	NothingToCopy
	// Config error kinds
	InvalidConfig
	ConfigNotFound
)

// Common error constants for frequently occurring errors
var (
	ErrNoImages      = NewEmptyArchiveError("")
	ErrNothingToCopy = NewClipboardError("no image to copy", NothingToCopy, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// Message returns the message without the wrapped cause.
func (e *ApplicationError) Message() string {
	return e.msg
}

// ArchiveError represents an archive that cannot be read or parsed
type ArchiveError struct {
	ApplicationError
	path string
}

// NewArchiveError creates a new archive error
func NewArchiveError(msg string, path string, kind ErrorKind, err error) *ArchiveError {
	return &ArchiveError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the archive error message
func (e *ArchiveError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the archive path associated with the error, if any
func (e *ArchiveError) Path() string {
	return e.path
}

// PageLoadError represents a page entry that cannot be loaded
type PageLoadError struct {
	ApplicationError
	name  string
	index int
}

// NewPageLoadError creates a new page load error. index is -1 when the
// error is not tied to a page position.
func NewPageLoadError(msg string, name string, index int, kind ErrorKind, err error) *PageLoadError {
	return &PageLoadError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		name:  name,
		index: index,
	}
}

// Error returns the page load error message
func (e *PageLoadError) Error() string {
	if e.name != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.name, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.name)
	}
	if e.index >= 0 {
		return fmt.Sprintf("%s: page %d", e.ApplicationError.Error(), e.index)
	}
	return e.ApplicationError.Error()
}

// Name returns the entry name associated with the error
func (e *PageLoadError) Name() string {
	return e.name
}

// Index returns the page index associated with the error
func (e *PageLoadError) Index() int {
	return e.index
}

// ClipboardError represents a denied or failed clipboard write
type ClipboardError struct {
	ApplicationError
}

// NewClipboardError creates a new clipboard error
func NewClipboardError(msg string, kind ErrorKind, err error) *ClipboardError {
	return &ClipboardError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
	}
}

// EmptyArchiveError reports an archive without a single displayable image.
// It is informational: the caller shows it to the user instead of crashing.
type EmptyArchiveError struct {
	ApplicationError
	path string
}

// NewEmptyArchiveError creates a new empty archive error
func NewEmptyArchiveError(path string) *EmptyArchiveError {
	return &EmptyArchiveError{
		ApplicationError: ApplicationError{
			msg:  "no images found",
			kind: NoImages,
		},
		path: path,
	}
}

// Path returns the archive path associated with the error, if any
func (e *EmptyArchiveError) Path() string {
	return e.path
}

// Is makes every EmptyArchiveError match ErrNoImages.
func (e *EmptyArchiveError) Is(target error) bool {
	_, ok := target.(*EmptyArchiveError)
	return ok
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// IsArchiveError checks if the error is an archive error
func IsArchiveError(err error) bool {
	var archiveErr *ArchiveError
	return errors.As(err, &archiveErr)
}

// IsPageLoadError checks if the error is a page load error
func IsPageLoadError(err error) bool {
	var pageErr *PageLoadError
	return errors.As(err, &pageErr)
}

// IsPageOutOfRange checks if the error is a page load error for an invalid index
func IsPageOutOfRange(err error) bool {
	var pageErr *PageLoadError
	if errors.As(err, &pageErr) {
		return pageErr.Kind() == PageOutOfRange
	}
	return false
}

// IsClipboardError checks if the error is a clipboard error
func IsClipboardError(err error) bool {
	var clipErr *ClipboardError
	return errors.As(err, &clipErr)
}

// IsEmptyArchive checks if the error reports an archive without images
func IsEmptyArchive(err error) bool {
	var emptyErr *EmptyArchiveError
	return errors.As(err, &emptyErr)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// UserMessage returns the text shown in place of an image for err.
// Application errors show their own message without the wrapped cause.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var emptyErr *EmptyArchiveError
	if errors.As(err, &emptyErr) {
		return emptyErr.Message()
	}
	var archiveErr *ArchiveError
	if errors.As(err, &archiveErr) {
		return archiveErr.Error()
	}
	var pageErr *PageLoadError
	if errors.As(err, &pageErr) {
		return pageErr.Error()
	}
	return err.Error()
}
