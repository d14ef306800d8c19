package repository

import (
	"io/fs"
	"os"
)

// FileSystem abstracts the staging directory I/O so tests can fail or
// observe individual file operations.
type FileSystem interface {
	// MkdirAll creates the directory and any missing parents.
	MkdirAll(path string, perm fs.FileMode) error

	// ReadFile reads the entire file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// WriteFile writes data to a file with the given permissions.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Rename moves a file from oldpath to newpath.
	Rename(oldpath, newpath string) error

	// Remove removes the named file.
	Remove(name string) error
}

// OSFileSystem is the default implementation backed by the os package.
type OSFileSystem struct{}

func (OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (OSFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (OSFileSystem) Remove(name string) error {
	return os.Remove(name)
}
