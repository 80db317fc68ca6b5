// Package runner drives one query through the model and the tool executor.
//
// Invariant:
//   - tool_use blocks and their tool_result blocks stay adjacent in the log, and
//     results are appended in the order the tool_use blocks closed in the stream.
//
// Flow:
//
//	user(text) -> assistant(text?, tool_use...) -> user(tool_result...) -> assistant(text)
//
// With the default of one tool round, tool calls in the follow-up stream are decoded
// and returned as Turn.Pending but never dispatched.
package runner
