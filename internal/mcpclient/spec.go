package mcpclient

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind is the transport family a server spec resolves to.
type Kind int

const (
	KindCommand Kind = iota + 1
	KindStreamable
	KindSSE
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "stdio"
	case KindStreamable:
		return "streamable-http"
	case KindSSE:
		return "sse"
	}
	return "unknown"
}

// Target is a parsed server spec.
type Target struct {
	Kind     Kind
	Command  string
	Args     []string
	Endpoint string
}

const (
	stdioPrefix = "stdio://"
	ssePrefix   = "sse://"
)

var ErrEmptySpec = errors.New("server spec is empty")

// ParseSpec resolves a server spec:
//
//	server.py                 python server.py
//	server.js                 node server.js
//	stdio://cmd arg...        cmd arg...
//	sse://host/path           SSE client (https assumed when no scheme)
//	http(s)://host/path       streamable HTTP
//	http+sse://host/path      SSE over http (also https+sse, http+stream)
//	anything else             a command line
func ParseSpec(spec string) (Target, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Target{}, ErrEmptySpec
	}
	lowered := strings.ToLower(spec)

	switch {
	case strings.HasPrefix(lowered, stdioPrefix):
		return commandTarget(spec[len(stdioPrefix):])
	case strings.HasPrefix(lowered, ssePrefix):
		endpoint, err := normalizeHTTPURL(spec[len(ssePrefix):], true)
		if err != nil {
			return Target{}, fmt.Errorf("invalid SSE endpoint: %w", err)
		}
		return Target{Kind: KindSSE, Endpoint: endpoint}, nil
	}

	if t, matched, err := parseHintedHTTP(spec); matched {
		return t, err
	}

	if strings.HasPrefix(lowered, "http://") || strings.HasPrefix(lowered, "https://") {
		endpoint, err := normalizeHTTPURL(spec, false)
		if err != nil {
			return Target{}, fmt.Errorf("invalid HTTP endpoint: %w", err)
		}
		return Target{Kind: KindStreamable, Endpoint: endpoint}, nil
	}

	// A lone script path picks its interpreter from the extension.
	if !strings.ContainsAny(spec, " \t") {
		switch {
		case strings.HasSuffix(lowered, ".py"):
			return Target{Kind: KindCommand, Command: "python", Args: []string{spec}}, nil
		case strings.HasSuffix(lowered, ".js"):
			return Target{Kind: KindCommand, Command: "node", Args: []string{spec}}, nil
		}
	}
	return commandTarget(spec)
}

func commandTarget(line string) (Target, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Target{}, fmt.Errorf("stdio command is empty")
	}
	return Target{Kind: KindCommand, Command: parts[0], Args: parts[1:]}, nil
}

func parseHintedHTTP(spec string) (Target, bool, error) {
	u, err := url.Parse(spec)
	if err != nil || u.Scheme == "" {
		return Target{}, false, nil
	}
	base, hint, ok := strings.Cut(strings.ToLower(u.Scheme), "+")
	if !ok || (base != "http" && base != "https") {
		return Target{}, false, nil
	}
	var kind Kind
	switch hint {
	case "sse":
		kind = KindSSE
	case "stream", "streamable", "http":
		kind = KindStreamable
	default:
		return Target{}, true, fmt.Errorf("unsupported HTTP transport hint %q", hint)
	}
	plain := *u
	plain.Scheme = base
	endpoint, err := normalizeHTTPURL(plain.String(), false)
	if err != nil {
		return Target{}, true, fmt.Errorf("invalid %s endpoint: %w", kind, err)
	}
	return Target{Kind: kind, Endpoint: endpoint}, true, nil
}

func normalizeHTTPURL(raw string, guessScheme bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("endpoint is empty")
	}
	if guessScheme && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	u.Scheme = scheme
	return u.String(), nil
}
