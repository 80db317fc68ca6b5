package sandbox

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Environment keys read by FromEnv.
const (
	EnvRoot      = "MCPC_FS_ROOT"
	EnvWriteRoot = "MCPC_FS_WRITE_ROOT"
)

// Root performs file operations confined to its read and write roots.
type Root struct {
	read  string
	write string
}

func New(readRoot, writeRoot string) (*Root, error) {
	r, w, err := ResolveRoots(readRoot, writeRoot)
	if err != nil {
		return nil, err
	}
	return &Root{read: r, write: w}, nil
}

// FromEnv builds a Root from MCPC_FS_ROOT and MCPC_FS_WRITE_ROOT.
func FromEnv() (*Root, error) {
	return New(os.Getenv(EnvRoot), os.Getenv(EnvWriteRoot))
}

func (r *Root) ReadRoot() string  { return r.read }
func (r *Root) WriteRoot() string { return r.write }

// ReadFile reads a file addressed relative to the read root.
func (r *Root) ReadFile(relPath string) (string, error) {
	absPath, err := ValidateRelPath(r.read, relPath)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(absPath)
	if err != nil {
		return "", statError(err)
	}
	if fi.IsDir() {
		return "", ToolError{Code: CodeNotAFile, Message: "path is a directory"}
	}
	b, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ListDir returns the sorted, non-recursive entries of a directory relative to the
// read root. Directories carry a trailing "/".
func (r *Root) ListDir(relDir string) ([]string, error) {
	if relDir == "" {
		relDir = "."
	}
	absDir, err := ValidateRelPath(r.read, relDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, statError(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// WriteFile writes content relative to the write root, creating parent directories.
func (r *Root) WriteFile(relPath, content string) error {
	absPath, err := ValidateWritePath(r.write, relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(absPath, []byte(content), 0o644)
}

func statError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ToolError{Code: CodeNotFound, Message: "no such file or directory"}
	}
	return err
}
