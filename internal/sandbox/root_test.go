package sandbox_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/petasbytes/mcp-chat/internal/sandbox"
)

func newRoot(t *testing.T) (*sandbox.Root, string) {
	t.Helper()
	dir := t.TempDir()
	r, err := sandbox.New(dir, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, r.ReadRoot()
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	var te sandbox.ToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected ToolError, got %T: %v", err, err)
	}
	if te.Code != code {
		t.Fatalf("unexpected code: got %s want %s", te.Code, code)
	}
}

func TestReadFile_HappyPath(t *testing.T) {
	r, dir := newRoot(t)
	want := "hello world"
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte(want), 0o644); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	got, err := r.ReadFile("a.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != want {
		t.Fatalf("content mismatch: got %q want %q", got, want)
	}
}

func TestReadFile_Errors(t *testing.T) {
	r, dir := newRoot(t)
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, ".mcpchat"), 0o755); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	_, err := r.ReadFile("sub")
	requireCode(t, err, sandbox.CodeNotAFile)

	_, err = r.ReadFile("missing.txt")
	requireCode(t, err, sandbox.CodeNotFound)

	_, err = r.ReadFile(".mcpchat/events.jsonl")
	requireCode(t, err, sandbox.CodeDeniedRead)

	_, err = r.ReadFile("../../x")
	requireCode(t, err, sandbox.CodeOutside)
}

func TestListDir_SortedWithSuffixes(t *testing.T) {
	r, dir := newRoot(t)
	for _, name := range []string{"b.txt", "a.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("prepare: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub", "deeper"), 0o755); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	names, err := r.ListDir("")
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	if want := []string{"a.txt", "b.txt", "sub/"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v want %v", names, want)
	}

	names, err = r.ListDir("sub/deeper")
	if err != nil {
		t.Fatalf("ListDir(sub/deeper): %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty dir, got %v", names)
	}

	_, err = r.ListDir("nope")
	requireCode(t, err, sandbox.CodeNotFound)
}

func TestWriteFile_HappyPathNested(t *testing.T) {
	r, dir := newRoot(t)
	if err := r.WriteFile(filepath.Join("nested", "dir", "out.txt"), "hello"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "nested", "dir", "out.txt"))
	if err != nil {
		t.Fatalf("verify read: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("content mismatch: got %q", string(b))
	}
}

func TestWriteFile_DenyList(t *testing.T) {
	r, _ := newRoot(t)
	requireCode(t, r.WriteFile(".git/HEAD", "ref: refs/heads/main\n"), sandbox.CodeDeniedWrite)
	requireCode(t, r.WriteFile("go.mod", "module x\n"), sandbox.CodeDeniedWrite)
}

func TestSeparateWriteRoot(t *testing.T) {
	readDir := t.TempDir()
	writeDir := t.TempDir()
	r, err := sandbox.New(readDir, writeDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.WriteFile("out.txt", "x"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(filepath.Join(r.WriteRoot(), "out.txt")); err != nil {
		t.Fatalf("file not under write root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(r.ReadRoot(), "out.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file leaked into read root: %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(sandbox.EnvRoot, dir)
	t.Setenv(sandbox.EnvWriteRoot, "")
	r, err := sandbox.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if r.ReadRoot() != r.WriteRoot() {
		t.Fatalf("write root should default to read root: %q vs %q", r.ReadRoot(), r.WriteRoot())
	}
}
