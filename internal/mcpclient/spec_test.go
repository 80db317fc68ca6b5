package mcpclient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/mcp-chat/internal/mcpclient"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec string
		want mcpclient.Target
	}{
		{"weather.py", mcpclient.Target{Kind: mcpclient.KindCommand, Command: "python", Args: []string{"weather.py"}}},
		{"./servers/Weather.PY", mcpclient.Target{Kind: mcpclient.KindCommand, Command: "python", Args: []string{"./servers/Weather.PY"}}},
		{"build/index.js", mcpclient.Target{Kind: mcpclient.KindCommand, Command: "node", Args: []string{"build/index.js"}}},
		{"stdio://uvx mcp-server-time --local-timezone UTC", mcpclient.Target{Kind: mcpclient.KindCommand, Command: "uvx", Args: []string{"mcp-server-time", "--local-timezone", "UTC"}}},
		{"  fsserver  ", mcpclient.Target{Kind: mcpclient.KindCommand, Command: "fsserver", Args: []string{}}},
		{"python3 -m server.py", mcpclient.Target{Kind: mcpclient.KindCommand, Command: "python3", Args: []string{"-m", "server.py"}}},
		{"http://localhost:8080/mcp", mcpclient.Target{Kind: mcpclient.KindStreamable, Endpoint: "http://localhost:8080/mcp"}},
		{"HTTPS://example.com/mcp", mcpclient.Target{Kind: mcpclient.KindStreamable, Endpoint: "https://example.com/mcp"}},
		{"sse://example.com/sse", mcpclient.Target{Kind: mcpclient.KindSSE, Endpoint: "https://example.com/sse"}},
		{"sse://http://127.0.0.1:9000/sse", mcpclient.Target{Kind: mcpclient.KindSSE, Endpoint: "http://127.0.0.1:9000/sse"}},
		{"http+sse://127.0.0.1:9000/sse", mcpclient.Target{Kind: mcpclient.KindSSE, Endpoint: "http://127.0.0.1:9000/sse"}},
		{"https+stream://example.com/mcp", mcpclient.Target{Kind: mcpclient.KindStreamable, Endpoint: "https://example.com/mcp"}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := mcpclient.ParseSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSpec_Errors(t *testing.T) {
	for _, spec := range []string{"", "   ", "stdio://", "sse://ftp://host/x", "http+carrier-pigeon://host", "http://"} {
		t.Run(spec, func(t *testing.T) {
			_, err := mcpclient.ParseSpec(spec)
			assert.Error(t, err)
		})
	}
	_, err := mcpclient.ParseSpec("")
	assert.ErrorIs(t, err, mcpclient.ErrEmptySpec)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "stdio", mcpclient.KindCommand.String())
	assert.Equal(t, "streamable-http", mcpclient.KindStreamable.String())
	assert.Equal(t, "sse", mcpclient.KindSSE.String())
}
