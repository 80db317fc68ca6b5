// Package conversation holds the message log exchanged with the model for a single query.
//
// Model:
//   - A Message is a role plus an ordered list of content blocks.
//   - A Block carries exactly one of text, tool_use or tool_result.
//   - The Log is append-only and lives for one query; nothing is persisted.
package conversation
