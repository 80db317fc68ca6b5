package fstools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/petasbytes/mcp-chat/internal/sandbox"
)

type EditFileInput struct {
	Path   string `json:"path" jsonschema_description:"Target relative file path"`
	OldStr string `json:"old_str" jsonschema_description:"Exact text to replace; must be present when editing an existing file."`
	NewStr string `json:"new_str" jsonschema_description:"New text to write or replace old_str with"`
}

var EditFileDefinition = Definition{
	Name: "edit_file",
	Description: `Create or modify a text file addressed by a relative path within the workspace.
When old_str is empty and the file doesn't exist, a new file is created.
When editing an existing file, all occurrences of old_str are replaced with new_str; old_str and new_str must be different.
`,
	InputSchema: EditFileInputSchema,
	Function:    EditFile,
}

var EditFileInputSchema = GenerateSchema[EditFileInput]()

var (
	errInvalidEdit    = errors.New("invalid edit parameters")
	errOldStrRequired = errors.New("old_str must be provided when editing an existing file")
	errOldStrNotFound = errors.New("old_str not found in file")
)

func EditFile(root *sandbox.Root, input json.RawMessage) (string, error) {
	var in EditFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	if in.Path == "" || in.OldStr == in.NewStr {
		return "", errInvalidEdit
	}

	oldContent, readErr := root.ReadFile(in.Path)
	if readErr != nil {
		var te sandbox.ToolError
		if in.OldStr == "" && errors.As(readErr, &te) && te.Code == sandbox.CodeNotFound {
			if err := root.WriteFile(in.Path, in.NewStr); err != nil {
				return "", err
			}
			return fmt.Sprintf("Successfully created file %s", in.Path), nil
		}
		return "", readErr
	}

	// An existing file needs old_str; otherwise the edit is ambiguous.
	if in.OldStr == "" {
		return "", errOldStrRequired
	}
	newContent := strings.ReplaceAll(oldContent, in.OldStr, in.NewStr)
	if newContent == oldContent {
		return "", errOldStrNotFound
	}
	if err := root.WriteFile(in.Path, newContent); err != nil {
		return "", err
	}
	return "OK", nil
}
