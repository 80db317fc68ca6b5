package telemetry

import (
	"context"

	"github.com/petasbytes/mcp-chat/internal/metrics"
)

// EmitQueryFeatures records size features of a user query. The query text itself is
// never written.
func EmitQueryFeatures(ctx context.Context, query string) {
	if !ObserveEnabled() {
		return
	}
	f := metrics.CountFeatures(query)
	EmitTurn(ctx, "query_received", map[string]any{
		"features_version": "1",
		"query": map[string]any{
			"bytes": f.Bytes,
			"runes": f.Runes,
			"words": f.Words,
			"lines": f.Lines,
		},
	})
}
