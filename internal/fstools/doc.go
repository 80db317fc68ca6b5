// Package fstools exposes sandboxed file tools over MCP.
//
// Includes:
//   - Definition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive a JSON Schema object from a Go struct.
//   - File tools: read_file, list_files (non-recursive), edit_file.
//   - Failures come back as is_error results whose text is {"code","message"}.
package fstools
