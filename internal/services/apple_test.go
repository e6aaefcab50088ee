package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
)

var appleCred = models.Credential{ServiceToken: "dev-token", Storefront: "gb"}

func searchBody(ids ...string) map[string]any {
	data := make([]map[string]any, len(ids))
	for i, id := range ids {
		data[i] = map[string]any{"id": id, "type": "songs"}
	}
	return map[string]any{"results": map[string]any{"songs": map[string]any{"data": data}}}
}

func TestAppleMusicService(t *testing.T) {
	t.Run("NewAppleMusicService", func(t *testing.T) {
		svc := NewAppleMusicService("", "", Timeouts{}, nil)
		if svc.baseURL != defaultAppleBaseURL {
			t.Errorf("expected baseURL %s, got %s", defaultAppleBaseURL, svc.baseURL)
		}
		if svc.timeouts.Search != DefaultSearchTimeout || svc.timeouts.Commit != DefaultCommitTimeout {
			t.Errorf("expected default timeouts, got %+v", svc.timeouts)
		}
		if svc.Name() != "Apple Music" {
			t.Errorf("unexpected name %s", svc.Name())
		}
	})

	t.Run("Resolve", func(t *testing.T) {
		t.Run("Returns First Match", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/catalog/gb/search" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("term") != "Queen Bohemian Rhapsody" {
					t.Errorf("expected concatenated term, got %q", q.Get("term"))
				}
				if q.Get("limit") != "1" || q.Get("types") != "songs" {
					t.Errorf("unexpected query %v", q)
				}
				if auth := r.Header.Get("Authorization"); auth != "Bearer dev-token" {
					t.Errorf("expected bearer header, got %q", auth)
				}
				json.NewEncoder(w).Encode(searchBody("1440806041", "999"))
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL, "", Timeouts{}, nil)
			track, err := svc.Resolve(context.Background(), models.TrackRequest{Artist: "Queen", Title: "Bohemian Rhapsody"}, appleCred)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track == nil || track.CatalogID != "1440806041" || track.Kind != models.KindSong {
				t.Errorf("unexpected track %+v", track)
			}
		})

		t.Run("Empty Results Is Not Found", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"results":{}}`))
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL, "", Timeouts{}, nil)
			track, err := svc.Resolve(context.Background(), models.TrackRequest{Artist: "Unknown Artist", Title: "Unknown Song"}, appleCred)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track != nil {
				t.Errorf("expected nil track, got %+v", track)
			}
		})

		t.Run("Default Storefront", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/catalog/us/search" {
					t.Errorf("expected us storefront, got %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(searchBody())
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL, "", Timeouts{}, nil)
			if _, err := svc.Resolve(context.Background(), models.TrackRequest{Artist: "a", Title: "b"}, models.Credential{ServiceToken: "t"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		tests := []struct {
			name   string
			status int
			body   string
			want   error
		}{
			{name: "Unauthorized", status: http.StatusUnauthorized, want: shared.ErrAuth},
			{name: "Forbidden", status: http.StatusForbidden, want: shared.ErrAuth},
			{name: "Server Error", status: http.StatusServiceUnavailable, want: shared.ErrTransientSearch},
			{name: "Rate Limited", status: http.StatusTooManyRequests, want: shared.ErrTransientSearch},
			{name: "Invalid JSON", status: http.StatusOK, body: "not json", want: shared.ErrTransientSearch},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
				}))
				defer server.Close()

				svc := NewAppleMusicService(server.URL, "", Timeouts{}, nil)
				_, err := svc.Resolve(context.Background(), models.TrackRequest{Artist: "a", Title: "b"}, appleCred)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}

		t.Run("Timeout Is Transient", func(t *testing.T) {
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer server.Close()
			defer close(release)

			svc := NewAppleMusicService(server.URL, "", Timeouts{Search: 20 * time.Millisecond}, nil)
			_, err := svc.Resolve(context.Background(), models.TrackRequest{Artist: "a", Title: "b"}, appleCred)
			if !errors.Is(err, shared.ErrTransientSearch) {
				t.Errorf("expected ErrTransientSearch, got %v", err)
			}
		})
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		t.Run("Returns Playlist ID", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/v1/me/library/playlists" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if r.Header.Get("Music-User-Token") != "user-token" {
					t.Errorf("expected music user token header")
				}

				var body struct {
					Attributes struct {
						Name        string `json:"name"`
						Description string `json:"description"`
					} `json:"attributes"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				if body.Attributes.Name != "Live Aid" || body.Attributes.Description != "Created with TapeDeck" {
					t.Errorf("unexpected attributes %+v", body.Attributes)
				}

				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"data":[{"id":"p.abc123"}]}`))
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL, "user-token", Timeouts{}, nil)
			id, err := svc.CreatePlaylist(context.Background(), "Live Aid", "Created with TapeDeck", appleCred)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if id != "p.abc123" {
				t.Errorf("expected p.abc123, got %s", id)
			}
		})

		t.Run("Failure", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL, "", Timeouts{}, nil)
			if _, err := svc.CreatePlaylist(context.Background(), "x", "", appleCred); !errors.Is(err, shared.ErrCreate) {
				t.Errorf("expected ErrCreate, got %v", err)
			}
		})

		t.Run("Missing ID", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data":[]}`))
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL, "", Timeouts{}, nil)
			if _, err := svc.CreatePlaylist(context.Background(), "x", "", appleCred); !errors.Is(err, shared.ErrCreate) {
				t.Errorf("expected ErrCreate, got %v", err)
			}
		})
	})

	t.Run("AddTracks", func(t *testing.T) {
		t.Run("Single Batch", func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				if r.URL.Path != "/v1/me/library/playlists/p.abc/tracks" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}

				var body struct {
					Data []struct {
						ID   string `json:"id"`
						Type string `json:"type"`
					} `json:"data"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				if len(body.Data) != 2 || body.Data[0].ID != "1" || body.Data[1].ID != "2" || body.Data[0].Type != "songs" {
					t.Errorf("unexpected body %+v", body)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL, "", Timeouts{}, nil)
			tracks := []models.ResolvedTrack{{CatalogID: "1"}, {CatalogID: "2"}}
			added, err := svc.AddTracks(context.Background(), "p.abc", tracks, appleCred)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if added != 2 || calls != 1 {
				t.Errorf("expected 2 added in 1 call, got %d in %d", added, calls)
			}
		})

		t.Run("Failure Counts Zero", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			}))
			defer server.Close()

			svc := NewAppleMusicService(server.URL, "", Timeouts{}, nil)
			added, err := svc.AddTracks(context.Background(), "p.abc", []models.ResolvedTrack{{CatalogID: "1"}}, appleCred)
			if !errors.Is(err, shared.ErrCommit) {
				t.Errorf("expected ErrCommit, got %v", err)
			}
			if added != 0 {
				t.Errorf("expected 0 added, got %d", added)
			}
		})
	})
}
