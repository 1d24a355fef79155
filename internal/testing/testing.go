// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// Upstream is an httptest server that records every request it receives.
//
// Handlers are keyed by a routing value extracted from the request, by default the URL path.
// Last.fm routes on the "method" query parameter; see [NewLastFMUpstream].
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	key      func(*http.Request) string
	handlers map[string]http.HandlerFunc
	requests []*http.Request
	hits     map[string]int
}

// NewUpstream starts an Upstream keyed by URL path and closes it when the test ends.
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()
	return newUpstream(t, func(r *http.Request) string { return r.URL.Path })
}

// NewLastFMUpstream starts an Upstream keyed by the Last.fm "method" parameter.
func NewLastFMUpstream(t *testing.T) *Upstream {
	t.Helper()
	return newUpstream(t, func(r *http.Request) string { return r.URL.Query().Get("method") })
}

func newUpstream(t *testing.T, key func(*http.Request) string) *Upstream {
	u := &Upstream{
		key:      key,
		handlers: map[string]http.HandlerFunc{},
		hits:     map[string]int{},
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	k := u.key(r)

	u.mu.Lock()
	u.requests = append(u.requests, r.Clone(context.Background()))
	u.hits[k]++
	h, ok := u.handlers[k]
	u.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// Handle registers h for key.
func (u *Upstream) Handle(key string, h http.HandlerFunc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.handlers[key] = h
}

// JSON registers a handler that answers key with status and v encoded as JSON.
func (u *Upstream) JSON(key string, status int, v any) {
	u.Handle(key, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	})
}

// Raw registers a handler that answers key with status and body verbatim.
func (u *Upstream) Raw(key string, status int, body string) {
	u.Handle(key, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

// Hits returns how many requests matched key.
func (u *Upstream) Hits(key string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[key]
}

// Total returns the number of requests received.
func (u *Upstream) Total() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.requests)
}

// Requests returns copies of the received requests in arrival order.
func (u *Upstream) Requests() []*http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]*http.Request(nil), u.requests...)
}

// Last returns the most recent request, or nil.
func (u *Upstream) Last() *http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.requests) == 0 {
		return nil
	}
	return u.requests[len(u.requests)-1]
}

// StubResolver answers image and preview lookups from fixed values and counts calls.
//
// An empty value means "no result".
type StubResolver struct {
	Image      string
	PreviewURL string

	mu           sync.Mutex
	imageCalls   int
	previewCalls int
	queries      []string
}

func (s *StubResolver) CoverImage(ctx context.Context, artist, track string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageCalls++
	s.queries = append(s.queries, artist+"|"+track)
	return s.Image, s.Image != ""
}

func (s *StubResolver) Preview(ctx context.Context, query string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewCalls++
	s.queries = append(s.queries, query)
	return s.PreviewURL, s.PreviewURL != ""
}

// ImageCalls returns the number of CoverImage calls.
func (s *StubResolver) ImageCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageCalls
}

// PreviewCalls returns the number of Preview calls.
func (s *StubResolver) PreviewCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewCalls
}

// Queries returns the lookups received, "artist|track" for images and the raw query for previews.
func (s *StubResolver) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
