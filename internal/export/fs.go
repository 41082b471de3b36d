package export

import (
	"io/fs"
	"os"
)

// FileSystem is the write side of the exporter.
type FileSystem interface {
	MkdirAll(path string, perm fs.FileMode) error
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

// OSFileSystem writes to the local disk.
type OSFileSystem struct{}

// MkdirAll creates path and its parents. Existing directories are not an error.
func (OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// WriteFile creates or truncates name and writes data to it.
func (OSFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}
