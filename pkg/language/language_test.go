package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.c", "c"},
		{"src/app.test.py", "py"},
		{"/abs/path/Main.java", "java"},
		{"Makefile", ""},
		{"trailing.", ""},
		{"dir.d/noext", ""},
		{".hidden", "hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.path))
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		want Tag
	}{
		{"a.c", CFamily},
		{"a.cpp", CFamily},
		{"a.cc", CFamily},
		{"a.cxx", CFamily},
		{"A.CPP", CFamily},
		{"Main.java", Java},
		{"script.py", Python},
		{"header.h", Unsupported},
		{"notes.txt", Unsupported},
		{"README", Unsupported},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.path))
		})
	}
}

func TestCheckPair(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		want    Tag
		wantErr error
	}{
		{"same c", "a.c", "b.c", CFamily, nil},
		{"same python", "x/a.py", "y/b.py", Python, nil},
		{"c vs cpp is a mismatch", "a.c", "b.cpp", Unsupported, ErrExtensionMismatch},
		{"cpp vs py", "a.cpp", "b.py", Unsupported, ErrExtensionMismatch},
		{"case differs literally", "a.cpp", "b.CPP", Unsupported, ErrExtensionMismatch},
		{"same upper-case extension", "A.PY", "B.PY", Python, nil},
		{"both unsupported", "a.txt", "b.txt", Unsupported, ErrUnsupported},
		{"one unsupported", "a.c", "b.txt", Unsupported, ErrUnsupported},
		{"no extension", "a", "b", Unsupported, ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckPair(tt.a, tt.b)
			assert.Equal(t, tt.want, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
