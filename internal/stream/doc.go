// Package stream rebuilds assistant content from an incremental event stream.
//
// The decoder is a single-slot accumulator:
//
//	idle -> text(open) -> idle
//	idle -> tool(open, partial JSON buffer) -> idle
//
// Text fragments are written to the sink as they arrive. Tool input fragments are
// concatenated and parsed once the block closes; a tool whose input does not parse
// is dropped and reported, never propagated.
package stream
