package fstools_test

import (
	"encoding/json"
	"testing"

	"github.com/petasbytes/mcp-chat/internal/fstools"
)

func TestListFiles_NonRecursive_Basic(t *testing.T) {
	root, dir := newSandbox(t)
	writeFile(t, dir, "a.txt", "")
	writeFile(t, dir, "sub/nested.txt", "")

	out, err := fstools.ListFilesDefinition.Function(root, mustJSON(t, fstools.ListFilesInput{}))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	var got []string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON output: %v; raw=%q", err, out)
	}
	set := map[string]struct{}{}
	for _, x := range got {
		set[x] = struct{}{}
	}
	if _, ok := set["a.txt"]; !ok {
		t.Fatalf("missing a.txt; got %v", got)
	}
	if _, ok := set["sub/"]; !ok {
		t.Fatalf("missing sub/; got %v", got)
	}
	if _, ok := set["sub/nested.txt"]; ok {
		t.Fatalf("unexpected nested.txt in non-recursive output; got %v", got)
	}
}

func TestListFiles_InvalidPath_Error(t *testing.T) {
	root, _ := newSandbox(t)
	if _, err := fstools.ListFilesDefinition.Function(root, mustJSON(t, fstools.ListFilesInput{Path: "does/not/exist"})); err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestListFiles_SortingAndPaging(t *testing.T) {
	root, dir := newSandbox(t)
	for _, n := range []string{"c.txt", "a.txt", "b.txt", "z.txt", "m.txt"} {
		writeFile(t, dir, n, "")
	}

	page := func(p, size int) []string {
		t.Helper()
		out, err := fstools.ListFiles(root, mustJSON(t, fstools.ListFilesInput{Page: p, PageSize: size}))
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		var got []string
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		return got
	}

	// Sorted: a,b,c,m,z; pages of two are [a,b], [c,m], [z].
	if got := page(1, 2); len(got) != 2 || got[0] != "a.txt" || got[1] != "b.txt" {
		t.Fatalf("page 1: got %v", got)
	}
	if got := page(3, 2); len(got) != 1 || got[0] != "z.txt" {
		t.Fatalf("page 3: got %v", got)
	}
	if got := page(0, 0); len(got) != 5 {
		t.Fatalf("defaults: got %v", got)
	}

	out, err := fstools.ListFiles(root, mustJSON(t, fstools.ListFilesInput{Page: 4, PageSize: 2}))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "[]" {
		t.Fatalf("want empty page: %q", out)
	}
}
