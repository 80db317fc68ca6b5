package fstools_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/petasbytes/mcp-chat/internal/sandbox"
)

// newSandbox returns a Root over a fresh directory and that directory's resolved path.
func newSandbox(t *testing.T) (*sandbox.Root, string) {
	t.Helper()
	root, err := sandbox.New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("sandbox: %v", err)
	}
	return root, root.ReadRoot()
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("prepare: %v", err)
	}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
