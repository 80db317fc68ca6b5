// Package dispatch executes the tool calls requested by the model against the MCP
// executor and turns the replies into tool results for the next request.
//
// Every call runs to completion or failure exactly once; there are no retries.
package dispatch
