// Package sandbox confines file access to a read root and a write root.
package sandbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Error codes carried by ToolError.
const (
	CodeOutside     = "ERR_PATH_OUTSIDE_SANDBOX"
	CodeDeniedRead  = "ERR_DENIED_READ"
	CodeDeniedWrite = "ERR_DENIED_WRITE"
	CodeNotAFile    = "ERR_NOT_A_FILE"
	CodeNotFound    = "ERR_NOT_FOUND"
)

// StateDir is the client's own state directory; tools may neither read nor write it.
const StateDir = ".mcpchat"

// ToolError is a machine-readable error body returned to the model as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool results small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// ResolveRoots returns absolute, symlink-resolved read and write roots. An empty read
// root means the working directory; an empty write root means the read root.
func ResolveRoots(readRoot, writeRoot string) (absRead string, absWrite string, err error) {
	if readRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("getwd: %w", err)
		}
		readRoot = cwd
	}
	if writeRoot == "" {
		writeRoot = readRoot
	}

	readRoot, err = filepath.Abs(readRoot)
	if err != nil {
		return "", "", fmt.Errorf("abs(readRoot): %w", err)
	}
	writeRoot, err = filepath.Abs(writeRoot)
	if err != nil {
		return "", "", fmt.Errorf("abs(writeRoot): %w", err)
	}

	// A root that does not exist yet keeps its absolute form.
	if r, err := filepath.EvalSymlinks(readRoot); err == nil {
		readRoot = r
	}
	if w, err := filepath.EvalSymlinks(writeRoot); err == nil {
		writeRoot = w
	}
	return readRoot, writeRoot, nil
}

// ValidateRelPath resolves relPath against absRoot and returns an absolute path inside
// the sandbox. It rejects absolute inputs, parent traversal and symlink escapes, and
// denies reads under .git/ and .mcpchat/.
func ValidateRelPath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolve(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underDir(rel, ".git") || underDir(rel, StateDir) {
		return "", ToolError{Code: CodeDeniedRead, Message: "reads under .git/ or " + StateDir + "/ are not allowed"}
	}
	return candidate, nil
}

// deniedWriteNames are protected at any depth.
var deniedWriteNames = map[string]bool{"go.mod": true, "go.sum": true}

// ValidateWritePath is ValidateRelPath for writes. On top of the read policy it
// protects module files anywhere in the tree.
func ValidateWritePath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolve(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underDir(rel, ".git") || underDir(rel, StateDir) || deniedWriteNames[filepath.Base(rel)] {
		return "", ToolError{Code: CodeDeniedWrite, Message: "writes to " + filepath.ToSlash(rel) + " are not allowed"}
	}
	if rel == "." {
		return "", ToolError{Code: CodeNotAFile, Message: "path is the sandbox root"}
	}
	return candidate, nil
}

// resolve returns the symlink-resolved candidate and its slash path relative to absRoot.
func resolve(absRoot, relPath string) (string, string, error) {
	if filepath.IsAbs(relPath) {
		return "", "", ToolError{Code: CodeOutside, Message: "absolute paths are not allowed"}
	}
	cleaned := filepath.Clean(relPath)
	candidate := filepath.Join(absRoot, cleaned)

	// Resolve the whole candidate if it exists, else its parent, so a symlinked
	// ancestor cannot hide an escape for a file that does not exist yet.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if resolvedParent, err := filepath.EvalSymlinks(filepath.Dir(candidate)); err == nil {
		candidate = filepath.Join(resolvedParent, filepath.Base(candidate))
	}

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", "", ToolError{Code: CodeOutside, Message: "requested path resolves outside the sandbox root"}
	}
	return candidate, filepath.ToSlash(rel), nil
}

func underDir(rel, dir string) bool {
	return rel == dir || strings.HasPrefix(rel, dir+"/")
}
