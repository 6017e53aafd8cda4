package compare

import (
	"fmt"

	"github.com/panbanda/codesim/pkg/language"
)

// FileAccessError reports an input that could not be read.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// UnsupportedLanguageError reports a file whose extension selects no
// grammar. It matches language.ErrUnsupported with errors.Is.
type UnsupportedLanguageError struct {
	Path      string
	Extension string
}

func (e *UnsupportedLanguageError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("unsupported file type: %s has no extension", e.Path)
	}
	return fmt.Sprintf("unsupported file type: .%s (%s)", e.Extension, e.Path)
}

func (e *UnsupportedLanguageError) Unwrap() error {
	return language.ErrUnsupported
}

func unsupported(path string) *UnsupportedLanguageError {
	return &UnsupportedLanguageError{Path: path, Extension: language.Extension(path)}
}
