// package services defines the [MusicProvider] capability interface and its HTTP-backed variants
//
// Apple Music (REST catalog), YouTube Music (backend resolver + proxy), Spotify (Web API)
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const (
	DefaultSearchTimeout = 12 * time.Second
	DefaultCommitTimeout = 20 * time.Second
)

// MusicProvider is the capability set the exporter needs from a destination service.
//
// A nil [models.ResolvedTrack] with a nil error from Resolve means "not found".
type MusicProvider interface {
	// Resolve maps one entry to a catalog identifier using a single free-text search for the top result.
	// Fails with [shared.ErrAuth] on 401/403 and [shared.ErrTransientSearch] on anything else.
	Resolve(ctx context.Context, entry models.TrackRequest, cred models.Credential) (*models.ResolvedTrack, error)

	// CreatePlaylist creates an empty playlist container and returns its id.
	// Failures wrap [shared.ErrCreate]. Not idempotent.
	CreatePlaylist(ctx context.Context, name, description string, cred models.Credential) (string, error)

	// AddTracks appends tracks to the playlist in one batch and returns the number added.
	// Failures wrap [shared.ErrCommit] and report zero added.
	AddTracks(ctx context.Context, playlistID string, tracks []models.ResolvedTrack, cred models.Credential) (int, error)

	// Name returns the name of the service (e.g., "Apple Music", "YouTube Music")
	Name() string
}

// CredentialProvider issues the service credential used by a [MusicProvider] for one export.
type CredentialProvider interface {
	GetCredential(ctx context.Context) (models.Credential, error)
}

// StaticCredentials serves a fixed credential read from configuration.
type StaticCredentials struct {
	Credential models.Credential
}

// GetCredential returns the configured credential, failing with [shared.ErrMissingCredentials] when it is empty.
func (s StaticCredentials) GetCredential(context.Context) (models.Credential, error) {
	if s.Credential.ServiceToken == "" {
		return models.Credential{}, shared.ErrMissingCredentials
	}
	return s.Credential, nil
}

// Timeouts bounds individual provider calls.
type Timeouts struct {
	Search time.Duration
	Commit time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Search <= 0 {
		t.Search = DefaultSearchTimeout
	}
	if t.Commit <= 0 {
		t.Commit = DefaultCommitTimeout
	}
	return t
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// searchStatusError classifies a non-2xx search response.
func searchStatusError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrAuth, status)
	default:
		return fmt.Errorf("%w: status %d", shared.ErrTransientSearch, status)
	}
}

// bearerClient wraps base so every request carries the credential as a Bearer token.
func bearerClient(base *http.Client, cred models.Credential) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.ServiceToken, TokenType: "Bearer"})
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: base.Transport},
		Timeout:   base.Timeout,
	}
}

// doRequest sends body (JSON-encoded when non-nil) and returns the raw response.
func doRequest(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body any) (*APIResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}, nil
}

func defaultClient(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}
