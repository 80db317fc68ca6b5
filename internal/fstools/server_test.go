package fstools_test

import (
	"context"
	"encoding/json"
	"slices"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/petasbytes/mcp-chat/internal/catalog"
	"github.com/petasbytes/mcp-chat/internal/fstools"
	"github.com/petasbytes/mcp-chat/internal/sandbox"
)

func TestRegistry_ToolNames(t *testing.T) {
	var names []string
	for _, d := range fstools.Registry() {
		names = append(names, d.Name)
		if d.InputSchema["type"] != "object" {
			t.Fatalf("%s: want object schema, got %v", d.Name, d.InputSchema["type"])
		}
		for _, key := range []string{"$schema", "$id"} {
			if _, ok := d.InputSchema[key]; ok {
				t.Fatalf("%s: schema should not carry %s", d.Name, key)
			}
		}
	}
	if want := []string{"read_file", "list_files", "edit_file"}; !slices.Equal(names, want) {
		t.Fatalf("names=%v want=%v", names, want)
	}
}

func TestGenerateSchema_RequiredAndDescriptions(t *testing.T) {
	s := fstools.EditFileInputSchema
	req, ok := s["required"].([]any)
	if !ok {
		t.Fatalf("required is %T", s["required"])
	}
	var got []string
	for _, r := range req {
		got = append(got, r.(string))
	}
	slices.Sort(got)
	if want := []string{"new_str", "old_str", "path"}; !slices.Equal(got, want) {
		t.Fatalf("required=%v want=%v", got, want)
	}
	if s["additionalProperties"] != false {
		t.Fatalf("additionalProperties=%v", s["additionalProperties"])
	}
	props, ok := s["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties is %T", s["properties"])
	}
	path, ok := props["path"].(map[string]any)
	if !ok {
		t.Fatalf("path is %T", props["path"])
	}
	if path["type"] != "string" || path["description"] == "" || path["description"] == nil {
		t.Fatalf("unexpected path property: %v", path)
	}

	// every list_files field is optional
	if _, ok := fstools.ListFilesInputSchema["required"]; ok {
		t.Fatalf("list_files should not require fields: %v", fstools.ListFilesInputSchema["required"])
	}
}

// The generated schemas compile and enforce what the tools expect.
func TestGenerateSchema_ValidatesArguments(t *testing.T) {
	var descs []catalog.Descriptor
	for _, d := range fstools.Registry() {
		descs = append(descs, catalog.Descriptor{Name: d.Name, InputSchema: d.InputSchema})
	}
	idx := catalog.NewIndex(descs, nil)

	if err := idx.Validate("read_file", map[string]any{"path": "a.txt", "limit": json.Number("5")}); err != nil {
		t.Fatalf("valid read_file args rejected: %v", err)
	}
	if err := idx.Validate("read_file", map[string]any{}); err == nil {
		t.Fatal("missing path accepted")
	}
	if err := idx.Validate("read_file", map[string]any{"path": "a", "bogus": true}); err == nil {
		t.Fatal("unknown property accepted")
	}
	if err := idx.Validate("list_files", nil); err != nil {
		t.Fatalf("empty list_files args rejected: %v", err)
	}
}

func connect(t *testing.T, root *sandbox.Root) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverT, clientT := mcp.NewInMemoryTransports()
	ss, err := fstools.NewServer(root, "test", nil).Connect(ctx, serverT, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { _ = ss.Close() })

	cs, err := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil).Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callText(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("%s: want 1 content item, got %d", name, len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("%s: content is %T", name, res.Content[0])
	}
	return tc.Text, res.IsError
}

func TestServer_RoundTrip(t *testing.T) {
	root, dir := newSandbox(t)
	writeFile(t, dir, "notes.txt", "alpha beta")
	cs := connect(t, root)

	var listed []string
	for tool, err := range cs.Tools(context.Background(), nil) {
		if err != nil {
			t.Fatalf("tools: %v", err)
		}
		listed = append(listed, tool.Name)
	}
	slices.Sort(listed)
	if want := []string{"edit_file", "list_files", "read_file"}; !slices.Equal(listed, want) {
		t.Fatalf("listed=%v want=%v", listed, want)
	}

	text, isErr := callText(t, cs, "list_files", map[string]any{})
	var entries []string
	if err := json.Unmarshal([]byte(text), &entries); err != nil || isErr {
		t.Fatalf("list_files: isErr=%v text=%q err=%v", isErr, text, err)
	}
	if !slices.Equal(entries, []string{"notes.txt"}) {
		t.Fatalf("entries=%v", entries)
	}

	text, isErr = callText(t, cs, "edit_file", map[string]any{"path": "notes.txt", "old_str": "beta", "new_str": "gamma"})
	if isErr || text != "OK" {
		t.Fatalf("edit_file: isErr=%v text=%q", isErr, text)
	}

	text, isErr = callText(t, cs, "read_file", map[string]any{"path": "notes.txt"})
	if isErr || text != "alpha gamma" {
		t.Fatalf("read_file: isErr=%v text=%q", isErr, text)
	}
}

func TestServer_FailuresAreErrorResults(t *testing.T) {
	root, _ := newSandbox(t)
	cs := connect(t, root)

	cases := []struct {
		tool string
		args map[string]any
		code string
	}{
		{"read_file", map[string]any{"path": "../../etc/passwd"}, sandbox.CodeOutside},
		{"read_file", map[string]any{"path": "missing.txt"}, sandbox.CodeNotFound},
		{"edit_file", map[string]any{"path": "x.txt", "old_str": "same", "new_str": "same"}, fstools.CodeInvalidInput},
		{"edit_file", map[string]any{"path": "go.sum", "old_str": "", "new_str": "x"}, sandbox.CodeDeniedWrite},
	}
	for _, tc := range cases {
		text, isErr := callText(t, cs, tc.tool, tc.args)
		if !isErr {
			t.Fatalf("%s %v: want error result, got %q", tc.tool, tc.args, text)
		}

		var body sandbox.ToolError
		if err := json.Unmarshal([]byte(text), &body); err != nil {
			t.Fatalf("%s %v: body %q: %v", tc.tool, tc.args, text, err)
		}
		if body.Code != tc.code || body.Message == "" {
			t.Fatalf("%s %v: got %+v want code %s", tc.tool, tc.args, body, tc.code)
		}
	}
}
