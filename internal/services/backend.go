// Backend proxy client: developer tokens, YouTube resolution, playlist generation and analytics
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

const (
	defaultBackendURL     = "http://localhost:8000"
	defaultBackendTimeout = 15 * time.Second
)

// BackendService talks to the TapeDeck backend. It issues Apple Music developer tokens, so it is
// also the [CredentialProvider] for the Apple variant.
type BackendService struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	anonUserID string
	sessionID  string
}

// NewBackendService creates a backend client. Empty values fall back to defaults.
func NewBackendService(baseURL string, timeout time.Duration, client *http.Client) *BackendService {
	if baseURL == "" {
		baseURL = defaultBackendURL
	}
	if timeout <= 0 {
		timeout = defaultBackendTimeout
	}

	return &BackendService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: defaultClient(client),
		anonUserID: shared.GenerateID(),
		sessionID:  shared.GenerateID(),
	}
}

// Get performs a GET request to the specified path and returns the raw response.
func (b *BackendService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return doRequest(ctx, b.httpClient, http.MethodGet, b.baseURL+path, nil, nil)
}

// Post performs a POST request with body encoded as JSON and returns the raw response.
func (b *BackendService) Post(ctx context.Context, path string, body any) (*APIResponse, error) {
	return doRequest(ctx, b.httpClient, http.MethodPost, b.baseURL+path, nil, body)
}

// GetCredential fetches a fresh developer token and storefront. Every call hits the backend.
//
// Unreachable backends, non-2xx responses and malformed payloads all wrap [shared.ErrAuthBackend].
func (b *BackendService) GetCredential(ctx context.Context) (models.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.Get(ctx, "/v1/apple/dev-token")
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %v", shared.ErrAuthBackend, err)
	}
	if !resp.OK() {
		return models.Credential{}, fmt.Errorf("%w: status %d", shared.ErrAuthBackend, resp.StatusCode)
	}

	var cred models.Credential
	if err := json.Unmarshal(resp.Body, &cred); err != nil {
		return models.Credential{}, fmt.Errorf("%w: malformed payload: %v", shared.ErrAuthBackend, err)
	}
	if cred.ServiceToken == "" {
		return models.Credential{}, fmt.Errorf("%w: payload has no token", shared.ErrAuthBackend)
	}

	return cred, nil
}

// SimulateRequest describes a generated playlist.
type SimulateRequest struct {
	Date         string `json:"date"`
	Genre        string `json:"genre"`
	Hours        int    `json:"hours"`
	RepeatGapMin int    `json:"repeat_gap_min,omitempty"`
	Seed         *int   `json:"seed,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// Simulate asks the backend for a period-accurate playlist.
func (b *BackendService) Simulate(ctx context.Context, req SimulateRequest) ([]models.GeneratedTrack, error) {
	if req.Date == "" || req.Genre == "" {
		return nil, fmt.Errorf("%w: date and genre are required", shared.ErrMissingArgument)
	}
	if req.Hours <= 0 {
		return nil, fmt.Errorf("%w: hours must be positive", shared.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.Post(ctx, "/v1/simulate", req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: simulate returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var out struct {
		Tracks []models.GeneratedTrack `json:"tracks"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode simulate response: %w", err)
	}
	return out.Tracks, nil
}

// resolveVideo asks the backend resolver for the top YouTube video id of one entry.
// An empty string means no match.
func (b *BackendService) resolveVideo(ctx context.Context, entry models.TrackRequest) (string, error) {
	body := map[string]any{
		"tracks": []models.TrackRequest{entry},
		"limit":  1,
	}

	resp, err := b.Post(ctx, "/v1/yt/resolve", body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrTransientSearch, err)
	}
	if err := searchStatusError(resp.StatusCode); err != nil {
		return "", err
	}
	if !gjson.ValidBytes(resp.Body) {
		return "", fmt.Errorf("%w: invalid resolver response", shared.ErrTransientSearch)
	}

	return gjson.GetBytes(resp.Body, "ids.0").String(), nil
}

// Emit posts one analytics event. Delivery is best-effort: callers log and continue on error.
func (b *BackendService) Emit(ctx context.Context, event string, props map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	payload := map[string]any{
		"v":            1,
		"event":        event,
		"ts":           time.Now().UTC().Format(time.RFC3339),
		"anon_user_id": b.anonUserID,
		"session_id":   b.sessionID,
		"props":        props,
	}

	resp, err := b.Post(ctx, "/v1/events", payload)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: events returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
	return nil
}
