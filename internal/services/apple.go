// Apple Music REST implementation of [MusicProvider]
//
// Catalog search and library playlist endpoints, see https://developer.apple.com/documentation/applemusicapi
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

const (
	defaultAppleBaseURL    = "https://api.music.apple.com"
	defaultAppleStorefront = "us"
	musicUserTokenHeader   = "Music-User-Token"
)

// AppleMusicService implements [MusicProvider] against the Apple Music API.
//
// The developer token comes from the [models.Credential]; the optional user token authorizes library writes.
type AppleMusicService struct {
	baseURL    string
	userToken  string
	timeouts   Timeouts
	httpClient *http.Client
}

// NewAppleMusicService creates a new Apple Music service instance.
func NewAppleMusicService(baseURL, userToken string, timeouts Timeouts, client *http.Client) *AppleMusicService {
	if baseURL == "" {
		baseURL = defaultAppleBaseURL
	}

	return &AppleMusicService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userToken:  userToken,
		timeouts:   timeouts.withDefaults(),
		httpClient: defaultClient(client),
	}
}

// Name returns the service name.
func (a *AppleMusicService) Name() string {
	return "Apple Music"
}

func (a *AppleMusicService) headers() map[string]string {
	if a.userToken == "" {
		return nil
	}
	return map[string]string{musicUserTokenHeader: a.userToken}
}

// Resolve searches the storefront catalog for the top song matching "artist title".
//
// Calls GET /v1/catalog/{storefront}/search?term=...&limit=1&types=songs
func (a *AppleMusicService) Resolve(ctx context.Context, entry models.TrackRequest, cred models.Credential) (*models.ResolvedTrack, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeouts.Search)
	defer cancel()

	storefront := cred.Storefront
	if storefront == "" {
		storefront = defaultAppleStorefront
	}

	query := url.Values{}
	query.Set("term", entry.Query())
	query.Set("limit", "1")
	query.Set("types", "songs")
	endpoint := fmt.Sprintf("%s/v1/catalog/%s/search?%s", a.baseURL, url.PathEscape(storefront), query.Encode())

	resp, err := doRequest(ctx, bearerClient(a.httpClient, cred), http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransientSearch, err)
	}
	if err := searchStatusError(resp.StatusCode); err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, fmt.Errorf("%w: invalid search response", shared.ErrTransientSearch)
	}

	id := gjson.GetBytes(resp.Body, "results.songs.data.0.id").String()
	if id == "" {
		return nil, nil
	}
	return &models.ResolvedTrack{CatalogID: id, Kind: models.KindSong}, nil
}

// CreatePlaylist creates an empty library playlist.
//
// Calls POST /v1/me/library/playlists
func (a *AppleMusicService) CreatePlaylist(ctx context.Context, name, description string, cred models.Credential) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeouts.Commit)
	defer cancel()

	body := map[string]any{
		"attributes": map[string]string{"name": name, "description": description},
	}

	resp, err := doRequest(ctx, bearerClient(a.httpClient, cred), http.MethodPost, a.baseURL+"/v1/me/library/playlists", a.headers(), body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCreate, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: status %d", shared.ErrCreate, resp.StatusCode)
	}

	id := gjson.GetBytes(resp.Body, "data.0.id").String()
	if id == "" {
		return "", fmt.Errorf("%w: response has no playlist id", shared.ErrCreate)
	}
	return id, nil
}

// AddTracks appends all tracks in one request. A 2xx response counts every submitted id as added.
//
// Calls POST /v1/me/library/playlists/{id}/tracks
func (a *AppleMusicService) AddTracks(ctx context.Context, playlistID string, tracks []models.ResolvedTrack, cred models.Credential) (int, error) {
	if len(tracks) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeouts.Commit)
	defer cancel()

	body := map[string]any{
		"data": lo.Map(tracks, func(t models.ResolvedTrack, _ int) map[string]string {
			return map[string]string{"id": t.CatalogID, "type": t.Kind.String()}
		}),
	}
	endpoint := fmt.Sprintf("%s/v1/me/library/playlists/%s/tracks", a.baseURL, url.PathEscape(playlistID))

	resp, err := doRequest(ctx, bearerClient(a.httpClient, cred), http.MethodPost, endpoint, a.headers(), body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrCommit, err)
	}
	if !resp.OK() {
		return 0, fmt.Errorf("%w: status %d", shared.ErrCommit, resp.StatusCode)
	}
	return len(tracks), nil
}
