// Package filex provides scoped temporary files and directories for
// decrypted media. A TempFile or TempDir owns its on-disk backing and
// removes it on Close/Remove, so callers can defer the release and rely
// on it running on every exit path, client disconnects included.
package filex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// TempFile is a uniquely named temporary file whose lifetime is bounded
// to one operation. The name embeds a random UUID so concurrent requests
// never collide.
type TempFile struct {
	f    *os.File
	path string
}

// NewTempFile creates an exclusive file in dir. ext, when non-empty,
// is appended to the generated name (including its dot, e.g. ".jpg") so
// extension-based tooling keeps working on the plaintext copy.
func NewTempFile(dir string, ext string) (*TempFile, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, uuid.NewString()+ext)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &TempFile{f: f, path: path}, nil
}

// Path returns the on-disk location.
func (t *TempFile) Path() string { return t.path }

// Write implements io.Writer.
func (t *TempFile) Write(p []byte) (int, error) { return t.f.Write(p) }

// Read implements io.Reader.
func (t *TempFile) Read(p []byte) (int, error) { return t.f.Read(p) }

// Seek implements io.Seeker. Callers typically rewind after writing the
// decrypted bytes and before streaming them out.
func (t *TempFile) Seek(offset int64, whence int) (int64, error) {
	return t.f.Seek(offset, whence)
}

// Size reports the current file size.
func (t *TempFile) Size() (int64, error) {
	fi, err := t.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Close closes the handle and removes the file. Safe to call more than
// once; the removal error wins over the close error because a leaked
// plaintext file is the failure that matters.
func (t *TempFile) Close() error {
	if t.f == nil {
		return nil
	}
	closeErr := t.f.Close()
	t.f = nil
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temp file: %w", err)
	}
	return closeErr
}

// TempDir is a uniquely named scratch directory removed as a whole,
// used by operations that produce several temporary files.
type TempDir struct {
	path string
}

// NewTempDir creates a fresh directory under parent.
func NewTempDir(parent string) (*TempDir, error) {
	if err := EnsureDir(parent); err != nil {
		return nil, err
	}
	path := filepath.Join(parent, uuid.NewString())
	if err := os.Mkdir(path, 0o700); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &TempDir{path: path}, nil
}

// Path returns the directory location.
func (d *TempDir) Path() string { return d.path }

// Join returns a path for name inside the directory.
func (d *TempDir) Join(name string) string { return filepath.Join(d.path, name) }

// Remove deletes the directory and everything in it.
func (d *TempDir) Remove() error {
	return os.RemoveAll(d.path)
}
