package todomark

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// RootManager provides read access to the files below a single directory using os.Root, so
// scanned paths can never escape it.
type RootManager struct {
	path string
}

// NewRootManager creates a new RootManager for the given directory path
func NewRootManager(path string) (*RootManager, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", path, err)
	}

	// Test that we can open the directory as a root
	testRoot, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory as root %s: %w", abs, err)
	}
	_ = testRoot.Close()

	return &RootManager{path: abs}, nil
}

// Path returns the absolute path of the root directory.
func (rm *RootManager) Path() string {
	return rm.path
}

// Abs returns the absolute filesystem path of a root-relative name.
func (rm *RootManager) Abs(name string) string {
	return filepath.Join(rm.path, filepath.FromSlash(name))
}

// withRoot executes a function with a safely opened os.Root
func (rm *RootManager) withRoot(fn func(*os.Root) error) error {
	root, err := os.OpenRoot(rm.path)
	if err != nil {
		return fmt.Errorf("failed to open root: %w", err)
	}
	defer func(root *os.Root) {
		_ = root.Close()
	}(root)

	return fn(root)
}

// ReadFile reads the contents of a file using Root.ReadFile
func (rm *RootManager) ReadFile(filename string) ([]byte, error) {
	var content []byte
	err := rm.withRoot(func(root *os.Root) error {
		var err error
		content, err = root.ReadFile(filepath.FromSlash(filename))
		return err
	})
	return content, err
}

// FileExists checks if a regular file exists using Root.Stat
func (rm *RootManager) FileExists(filename string) bool {
	info, err := rm.Stat(filename)
	return err == nil && info.Mode().IsRegular()
}

// Stat returns file info using Root.Stat
func (rm *RootManager) Stat(filename string) (os.FileInfo, error) {
	var info os.FileInfo
	err := rm.withRoot(func(root *os.Root) error {
		var err error
		info, err = root.Stat(filepath.FromSlash(filename))
		return err
	})
	return info, err
}

// WalkDir walks the directory tree using Root.FS()
func (rm *RootManager) WalkDir(root string, fn fs.WalkDirFunc) error {
	return rm.withRoot(func(osRoot *os.Root) error {
		fsys := osRoot.FS()
		return fs.WalkDir(fsys, root, fn)
	})
}
