// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/hmx/internal/routes"
)

// FakeAPI is an httptest server standing in for the holiday-manager API.
//
// Handlers are keyed by "METHOD /path"; unmatched requests get a 404 with an {"error"} body.
type FakeAPI struct {
	*httptest.Server
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	calls    []string
	bodies   map[string][]string
}

// NewFakeAPI starts a [FakeAPI] that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{handlers: make(map[string]http.HandlerFunc), bodies: make(map[string][]string)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.bodies[key] = append(f.bodies[key], string(body))
	h, ok := f.handlers[key]
	f.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, `{"error":"no route for `+key+`"}`)
		return
	}
	h(w, r)
}

// Handle registers h for method and path.
func (f *FakeAPI) Handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = h
}

// Respond registers a fixed JSON response. An empty body sends no content.
func (f *FakeAPI) Respond(method, path string, status int, body string) {
	f.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Count returns how many requests hit method and path.
func (f *FakeAPI) Count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, n := method+" "+path, 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

// Calls returns every request as "METHOD /path" in arrival order.
func (f *FakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// LastBody returns the most recent request body sent to method and path.
func (f *FakeAPI) LastBody(method, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	bodies := f.bodies[method+" "+path]
	if len(bodies) == 0 {
		return ""
	}
	return bodies[len(bodies)-1]
}

// WriteJSON writes status and body with a JSON content type.
func WriteJSON(w http.ResponseWriter, status int, body string) {
	if body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// RecordingNavigator is a [routes.Navigator] that remembers every move.
type RecordingNavigator struct {
	mu       sync.Mutex
	Routes   []routes.Route
	Replaced []bool
}

func (n *RecordingNavigator) Navigate(to routes.Route, replace bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Routes = append(n.Routes, to)
	n.Replaced = append(n.Replaced, replace)
}

// Last returns the latest navigation, or "" when none happened.
func (n *RecordingNavigator) Last() (routes.Route, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Routes) == 0 {
		return "", false
	}
	return n.Routes[len(n.Routes)-1], n.Replaced[len(n.Replaced)-1]
}

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

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
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
