// Package services defines the [MusicProvider] interface for destination music services and implements it
// for Apple Music, YouTube Music and Spotify.
//
// # Provider Interface
//
// A provider resolves one (artist, title) entry to a catalog id, creates an empty playlist and appends
// resolved ids in a single batch. The variant is chosen once at startup by [NewProvider] so the exporter never
// branches on provider type.
//
// # Apple Music Implementation
//
// [AppleMusicService] calls the catalog search and library playlist endpoints with the developer token from
// [BackendService.GetCredential] as a Bearer header (via [oauth2.Transport]). The optional Music-User-Token
// header authorizes library writes.
//
// # YouTube Music Implementation
//
// [YouTubeService] resolves videos through the backend resolver and writes playlists through the FastAPI
// proxy wrapping ytmusicapi. The auth_file path is sent via X-Auth-File header on each request.
//
// # Spotify Implementation
//
// [SpotifyService] wraps the zmb3 client with a static user access token. Commits are chunked at 100 ids.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAuth] : search returned 401/403, the export must stop
//   - [shared.ErrTransientSearch] : network failure, timeout or non-auth error status for one entry
//   - [shared.ErrCreate] : playlist container could not be created
//   - [shared.ErrCommit] : batch add failed, nothing is counted as added
//   - [shared.ErrAuthBackend] : developer token could not be fetched
//
// No call is retried.
package services
