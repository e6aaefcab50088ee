// YouTube Music implementation of [MusicProvider]
//
// Resolution goes through the backend resolver; playlist writes go through the ytmusicapi proxy,
// which receives the auth file path via the X-Auth-File header.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

const defaultYTBaseURL string = "http://localhost:8080"

// YouTubeService implements [MusicProvider] for YouTube Music.
//
// The [models.Credential] service token carries the auth file path.
type YouTubeService struct {
	baseURL    string
	backend    *BackendService
	timeouts   Timeouts
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(proxyURL string, backend *BackendService, timeouts Timeouts, client *http.Client) *YouTubeService {
	if proxyURL == "" {
		proxyURL = defaultYTBaseURL
	}

	return &YouTubeService{
		baseURL:    strings.TrimRight(proxyURL, "/"),
		backend:    backend,
		timeouts:   timeouts.withDefaults(),
		httpClient: defaultClient(client),
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

func (y *YouTubeService) headers(cred models.Credential) map[string]string {
	if cred.ServiceToken == "" {
		return nil
	}
	return map[string]string{"X-Auth-File": cred.ServiceToken}
}

// Resolve returns the top video for the entry.
//
// Calls POST /v1/yt/resolve on the backend with limit 1.
func (y *YouTubeService) Resolve(ctx context.Context, entry models.TrackRequest, _ models.Credential) (*models.ResolvedTrack, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeouts.Search)
	defer cancel()

	id, err := y.backend.resolveVideo(ctx, entry)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	return &models.ResolvedTrack{CatalogID: id, Kind: models.KindVideo}, nil
}

// CreatePlaylist creates a private playlist.
//
// Calls POST /api/playlists on the proxy.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name, description string, cred models.Credential) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeouts.Commit)
	defer cancel()

	body := struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		PrivacyStatus string `json:"privacy_status"`
	}{
		Title:         name,
		Description:   description,
		PrivacyStatus: "PRIVATE",
	}

	resp, err := doRequest(ctx, y.httpClient, http.MethodPost, y.baseURL+"/api/playlists", y.headers(cred), body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCreate, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: %s", shared.ErrCreate, proxyDetail(resp))
	}

	id := gjson.GetBytes(resp.Body, "playlist_id").String()
	if id == "" {
		return "", fmt.Errorf("%w: response has no playlist_id", shared.ErrCreate)
	}
	return id, nil
}

// AddTracks adds all videos in one request.
//
// Calls POST /api/playlists/{id}/items on the proxy.
func (y *YouTubeService) AddTracks(ctx context.Context, playlistID string, tracks []models.ResolvedTrack, cred models.Credential) (int, error) {
	if len(tracks) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, y.timeouts.Commit)
	defer cancel()

	body := map[string][]string{
		"video_ids": lo.Map(tracks, func(t models.ResolvedTrack, _ int) string { return t.CatalogID }),
	}
	endpoint := fmt.Sprintf("%s/api/playlists/%s/items", y.baseURL, url.PathEscape(playlistID))

	resp, err := doRequest(ctx, y.httpClient, http.MethodPost, endpoint, y.headers(cred), body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrCommit, err)
	}
	if !resp.OK() {
		return 0, fmt.Errorf("%w: %s", shared.ErrCommit, proxyDetail(resp))
	}
	return len(tracks), nil
}

// proxyDetail extracts the FastAPI "detail" message, falling back to the status code.
func proxyDetail(resp *APIResponse) string {
	if detail := gjson.GetBytes(resp.Body, "detail").String(); detail != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, detail)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
