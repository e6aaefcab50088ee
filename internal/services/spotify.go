// Spotify Web API implementation of [MusicProvider]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
)

const (
	defaultSpotifyBaseURL = "https://api.spotify.com/v1/"
	spotifyBatchSize      = 100
)

// SpotifyService implements [MusicProvider] with the zmb3 Spotify client.
//
// The [models.Credential] service token is a user access token with playlist-modify scope.
type SpotifyService struct {
	baseURL    string
	timeouts   Timeouts
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service instance.
func NewSpotifyService(baseURL string, timeouts Timeouts, client *http.Client) *SpotifyService {
	if baseURL == "" {
		baseURL = defaultSpotifyBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &SpotifyService{
		baseURL:    baseURL,
		timeouts:   timeouts.withDefaults(),
		httpClient: defaultClient(client),
	}
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

func (s *SpotifyService) client(cred models.Credential) *spotify.Client {
	return spotify.New(bearerClient(s.httpClient, cred), spotify.WithBaseURL(s.baseURL))
}

// spotifyStatus returns the HTTP status carried by a Spotify API error, or 0.
func spotifyStatus(err error) int {
	var se spotify.Error
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// Resolve returns the top track for "artist title".
func (s *SpotifyService) Resolve(ctx context.Context, entry models.TrackRequest, cred models.Credential) (*models.ResolvedTrack, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Search)
	defer cancel()

	res, err := s.client(cred).Search(ctx, entry.Query(), spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		if status := spotifyStatus(err); status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %v", shared.ErrAuth, err)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrTransientSearch, err)
	}

	if res.Tracks == nil || len(res.Tracks.Tracks) == 0 {
		return nil, nil
	}
	return &models.ResolvedTrack{CatalogID: string(res.Tracks.Tracks[0].ID), Kind: models.KindSong}, nil
}

// CreatePlaylist creates a private playlist owned by the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, cred models.Credential) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Commit)
	defer cancel()

	client := s.client(cred)
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get current user: %v", shared.ErrCreate, err)
	}

	playlist, err := client.CreatePlaylistForUser(ctx, user.ID, name, description, false, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCreate, err)
	}
	return string(playlist.ID), nil
}

// AddTracks adds tracks in chunks of 100, the Web API maximum per request. Any failed chunk fails the
// whole commit with zero added.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, tracks []models.ResolvedTrack, cred models.Credential) (int, error) {
	if len(tracks) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Commit)
	defer cancel()

	client := s.client(cred)
	ids := lo.Map(tracks, func(t models.ResolvedTrack, _ int) spotify.ID { return spotify.ID(t.CatalogID) })
	for _, chunk := range lo.Chunk(ids, spotifyBatchSize) {
		if _, err := client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), chunk...); err != nil {
			return 0, fmt.Errorf("%w: %v", shared.ErrCommit, err)
		}
	}
	return len(tracks), nil
}
