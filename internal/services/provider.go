package services

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
)

const (
	ProviderApple   = "apple"
	ProviderYouTube = "youtube"
	ProviderSpotify = "spotify"
)

// NewProvider builds the configured [MusicProvider] variant with its [CredentialProvider].
//
// Apple credentials come from the backend dev-token endpoint; YouTube and Spotify use static config values.
func NewProvider(cfg *shared.Config, backend *BackendService, client *http.Client) (MusicProvider, CredentialProvider, error) {
	timeouts := Timeouts{Search: cfg.Export.SearchTimeout, Commit: cfg.Export.CommitTimeout}

	switch cfg.Provider.Name {
	case ProviderApple:
		return NewAppleMusicService(cfg.Apple.APIURL, cfg.Apple.UserToken, timeouts, client), backend, nil
	case ProviderYouTube:
		creds := StaticCredentials{Credential: models.Credential{ServiceToken: cfg.YouTube.AuthFile}}
		return NewYouTubeService(cfg.YouTube.ProxyURL, backend, timeouts, client), creds, nil
	case ProviderSpotify:
		creds := StaticCredentials{Credential: models.Credential{ServiceToken: cfg.Spotify.AccessToken}}
		return NewSpotifyService("", timeouts, client), creds, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", shared.ErrUnknownProvider, cfg.Provider.Name)
	}
}
