package fstools_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/mcp-chat/internal/fstools"
)

func TestEditFile_CreateNew(t *testing.T) {
	root, dir := newSandbox(t)
	out, err := fstools.EditFileDefinition.Function(root, mustJSON(t, fstools.EditFileInput{Path: "new/dir/new.txt", NewStr: "hello"}))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out == "" {
		t.Fatalf("expected non-empty success message")
	}
	data, _ := os.ReadFile(filepath.Join(dir, "new", "dir", "new.txt"))
	if string(data) != "hello" {
		t.Fatalf("unexpected file content: %q", string(data))
	}
}

func TestEditFile_ReplaceOK(t *testing.T) {
	root, dir := newSandbox(t)
	writeFile(t, dir, "a.txt", "abc abc")

	out, err := fstools.EditFileDefinition.Function(root, mustJSON(t, fstools.EditFileInput{Path: "a.txt", OldStr: "abc", NewStr: "XYZ"}))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "OK" {
		t.Fatalf("expected OK, got %q", out)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "a.txt"))
	if string(data) != "XYZ XYZ" {
		t.Fatalf("unexpected file content: %q", string(data))
	}
}

func TestEditFile_Errors(t *testing.T) {
	root, dir := newSandbox(t)
	writeFile(t, dir, "a.txt", "abc")

	cases := []struct {
		name string
		in   fstools.EditFileInput
		want string
	}{
		{"old not found", fstools.EditFileInput{Path: "a.txt", OldStr: "nope", NewStr: "x"}, "old_str not found"},
		{"existing file needs old_str", fstools.EditFileInput{Path: "a.txt", NewStr: "x"}, "old_str must be provided"},
		{"empty path", fstools.EditFileInput{OldStr: "a", NewStr: "b"}, "invalid edit parameters"},
		{"old equals new", fstools.EditFileInput{Path: "a.txt", OldStr: "x", NewStr: "x"}, "invalid edit parameters"},
		{"absolute path", fstools.EditFileInput{Path: filepath.Join(dir, "a.txt"), OldStr: "abc", NewStr: "x"}, "ERR_PATH_OUTSIDE_SANDBOX"},
		{"missing file with old_str", fstools.EditFileInput{Path: "b.txt", OldStr: "abc", NewStr: "x"}, "ERR_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fstools.EditFile(root, mustJSON(t, tc.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got: %v", tc.want, err)
			}
		})
	}
}

func TestEditFile_DenyWrites(t *testing.T) {
	root, dir := newSandbox(t)
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	for _, p := range []string{".git/HEAD", ".mcpchat/events.jsonl"} {
		_, err := fstools.EditFile(root, mustJSON(t, fstools.EditFileInput{Path: p, NewStr: "x"}))
		if err == nil {
			t.Fatalf("expected deny for %s", p)
		}
		// Reads under these directories are denied first.
		if !strings.Contains(err.Error(), "ERR_DENIED_READ") {
			t.Fatalf("expected ERR_DENIED_READ for %s, got: %v", p, err)
		}
	}

	_, err := fstools.EditFile(root, mustJSON(t, fstools.EditFileInput{Path: "go.mod", NewStr: "module x\n"}))
	if err == nil || !strings.Contains(err.Error(), "ERR_DENIED_WRITE") {
		t.Fatalf("expected ERR_DENIED_WRITE for go.mod, got: %v", err)
	}
}
