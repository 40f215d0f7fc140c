package mock

import (
	"bytes"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/exp/slices"
)

type MockFile struct {
	*bytes.Buffer
	ReadOnly bool
	Mode     os.FileMode
}

// MockFileSystem implements the FileSystem interface for testing
type MockFileSystem struct {
	Files map[string]*MockFile
}

func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files: make(map[string]*MockFile),
	}
}

func (m *MockFileSystem) ReadFile(filename string) ([]byte, error) {
	if file, ok := m.Files[filename]; ok {
		return bytes.Clone(file.Bytes()), nil
	}
	return nil, &os.PathError{Op: "open", Path: filename, Err: os.ErrNotExist}
}

func (m *MockFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	if file, ok := m.Files[filename]; ok && file.ReadOnly {
		return &os.PathError{Op: "open", Path: filename, Err: os.ErrPermission}
	}
	m.Files[filename] = &MockFile{Buffer: bytes.NewBuffer(bytes.Clone(data)), Mode: perm}
	return nil
}

// DoublestarGlob matches pattern against the stored file names, in sorted order.
func (m *MockFileSystem) DoublestarGlob(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	var matches []string
	for filename := range m.Files {
		matched, err := doublestar.Match(pattern, filename)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, filename)
		}
	}
	slices.Sort(matches)
	return matches, nil
}
