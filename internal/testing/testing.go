// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tapedeck/internal/models"
)

// FakeProvider is a scripted music provider that records every call.
//
// Matches maps an entry query ("artist title") to a catalog id; entries without a match resolve to nothing.
type FakeProvider struct {
	Matches     map[string]string
	ResolveErrs map[string]error
	CreateErr   error
	AddErr      error
	Added       *int // overrides the count returned by AddTracks

	// Hold, when set, blocks Resolve until it is closed. Entered receives once per Resolve call.
	Hold    chan struct{}
	Entered chan struct{}

	mu           sync.Mutex
	ResolveCalls []models.TrackRequest
	CreateCalls  []string
	AddCalls     [][]models.ResolvedTrack
	created      int
}

func (f *FakeProvider) Name() string { return "fake" }

func (f *FakeProvider) Resolve(ctx context.Context, entry models.TrackRequest, cred models.Credential) (*models.ResolvedTrack, error) {
	f.mu.Lock()
	f.ResolveCalls = append(f.ResolveCalls, entry)
	f.mu.Unlock()

	if f.Entered != nil {
		f.Entered <- struct{}{}
	}
	if f.Hold != nil {
		<-f.Hold
	}

	if err, ok := f.ResolveErrs[entry.Query()]; ok {
		return nil, err
	}
	if id, ok := f.Matches[entry.Query()]; ok {
		return &models.ResolvedTrack{CatalogID: id, Kind: models.KindSong}, nil
	}
	return nil, nil
}

func (f *FakeProvider) CreatePlaylist(ctx context.Context, name, description string, cred models.Credential) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateCalls = append(f.CreateCalls, name)
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	f.created++
	return fmt.Sprintf("pl-%d", f.created), nil
}

func (f *FakeProvider) AddTracks(ctx context.Context, playlistID string, tracks []models.ResolvedTrack, cred models.Credential) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.AddCalls = append(f.AddCalls, append([]models.ResolvedTrack(nil), tracks...))
	if f.AddErr != nil {
		return 0, f.AddErr
	}
	if f.Added != nil {
		return *f.Added, nil
	}
	return len(tracks), nil
}

// CredentialFunc adapts a function to a credential provider.
type CredentialFunc func(ctx context.Context) (models.Credential, error)

func (f CredentialFunc) GetCredential(ctx context.Context) (models.Credential, error) {
	return f(ctx)
}

// CountingPacer never waits and counts calls.
type CountingPacer struct {
	Waits int
}

func (p *CountingPacer) Wait(context.Context) error {
	p.Waits++
	return nil
}

// Event is one recorded analytics event.
type Event struct {
	Name  string
	Props map[string]any
}

// RecordingSink stores emitted events, optionally failing every call with Err.
type RecordingSink struct {
	Err    error
	mu     sync.Mutex
	Events []Event
}

func (r *RecordingSink) Emit(ctx context.Context, event string, props map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Event{Name: event, Props: props})
	return r.Err
}

// Names returns the recorded event names in order.
func (r *RecordingSink) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.Events))
	for i, e := range r.Events {
		names[i] = e.Name
	}
	return names
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
