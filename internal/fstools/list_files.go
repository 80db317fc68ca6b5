package fstools

import (
	"encoding/json"

	"github.com/petasbytes/mcp-chat/internal/sandbox"
)

type ListFilesInput struct {
	Path     string `json:"path,omitempty" jsonschema_description:"Optional relative path to list files from (defaults to current directory)."`
	Page     int    `json:"page,omitempty" jsonschema_description:"1-based page number (default 1)."`
	PageSize int    `json:"page_size,omitempty" jsonschema_description:"Page size (default 200)."`
}

const defaultListFilesPageSize = 200

var ListFilesDefinition = Definition{
	Name:        "list_files",
	Description: "List names of files in a directory within the workspace (non-recursive). Directories end with '/'.",
	InputSchema: ListFilesInputSchema,
	Function:    ListFiles,
}

var ListFilesInputSchema = GenerateSchema[ListFilesInput]()

// ListFiles returns one page of the sorted directory listing as a JSON array of
// names. A page past the end is "[]".
func ListFiles(root *sandbox.Root, input json.RawMessage) (string, error) {
	var in ListFilesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	page := max(in.Page, 1)
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = defaultListFilesPageSize
	}

	names, err := root.ListDir(in.Path)
	if err != nil {
		return "", err
	}

	start := (page - 1) * pageSize
	if start >= len(names) {
		return "[]", nil
	}
	end := min(start+pageSize, len(names))

	b, err := json.Marshal(names[start:end])
	if err != nil {
		return "", err
	}
	return string(b), nil
}
