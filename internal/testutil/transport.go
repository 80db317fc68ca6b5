package testutil

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Response is one canned HTTP reply.
type Response struct {
	Status      int
	ContentType string
	Body        string
}

// Stream is a 200 text/event-stream reply.
func Stream(body string) Response {
	return Response{Status: http.StatusOK, ContentType: "text/event-stream", Body: body}
}

// APIError is a JSON error reply in the Messages API shape.
func APIError(status int, kind, message string) Response {
	return Response{
		Status:      status,
		ContentType: "application/json",
		Body:        `{"type":"error","error":{"type":"` + kind + `","message":"` + message + `"}}`,
	}
}

// FakeTransport serves Responses in order and records every request body. Once the
// script runs out it answers 500.
type FakeTransport struct {
	mu        sync.Mutex
	responses []Response
	bodies    [][]byte
	paths     []string
}

func NewFakeTransport(responses ...Response) *FakeTransport {
	return &FakeTransport{responses: responses}
}

func (f *FakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var b []byte
	if req.Body != nil {
		b, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	f.mu.Lock()
	f.bodies = append(f.bodies, b)
	f.paths = append(f.paths, req.URL.Path)
	r := APIError(http.StatusInternalServerError, "api_error", "no scripted response")
	if len(f.responses) > 0 {
		r = f.responses[0]
		f.responses = f.responses[1:]
	}
	f.mu.Unlock()

	resp := &http.Response{
		StatusCode: r.Status,
		Status:     http.StatusText(r.Status),
		Body:       io.NopCloser(bytes.NewReader([]byte(r.Body))),
		Header:     make(http.Header),
		Request:    req,
	}
	ct := r.ContentType
	if ct == "" {
		ct = "application/json"
	}
	resp.Header.Set("Content-Type", ct)
	if strings.HasPrefix(ct, "text/event-stream") {
		resp.ContentLength = -1
	} else {
		resp.ContentLength = int64(len(r.Body))
	}
	return resp, nil
}

func (f *FakeTransport) Client() *http.Client { return &http.Client{Transport: f} }

// Bodies returns the captured request bodies in order.
func (f *FakeTransport) Bodies() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.bodies))
	copy(out, f.bodies)
	return out
}

func (f *FakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bodies)
}

func (f *FakeTransport) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

// ServeHTTP answers from the same script, for code that can only be given a base URL.
func (f *FakeTransport) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	resp, _ := f.RoundTrip(req)
	defer resp.Body.Close()
	w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
