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
	tu "github.com/desertthunder/tapedeck/internal/testing"
)

func TestBackendService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Empty Values", func(t *testing.T) {
			srv := NewBackendService("", 0, nil)

			if srv.baseURL != defaultBackendURL {
				t.Errorf("expected default baseURL %s, got %s", defaultBackendURL, srv.baseURL)
			}
			if srv.timeout != defaultBackendTimeout {
				t.Errorf("expected default timeout, got %v", srv.timeout)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			if srv := NewBackendService("http://example.com/", time.Second, nil); srv.baseURL != "http://example.com" {
				t.Errorf("expected trimmed baseURL, got %s", srv.baseURL)
			}
		})

		t.Run("Distinct Session IDs", func(t *testing.T) {
			a, b := NewBackendService("", 0, nil), NewBackendService("", 0, nil)
			if a.sessionID == b.sessionID {
				t.Error("expected each backend client to get its own session id")
			}
		})
	})

	t.Run("GetCredential", func(t *testing.T) {
		t.Run("Returns Token And Storefront", func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				if r.Method != http.MethodGet || r.URL.Path != "/v1/apple/dev-token" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if auth := r.Header.Get("Authorization"); auth != "" {
					t.Errorf("dev-token request should not carry auth, got %q", auth)
				}
				json.NewEncoder(w).Encode(map[string]string{"token": "dev-token", "storefront": "gb"})
			}))
			defer server.Close()

			srv := NewBackendService(server.URL, time.Second, nil)
			for range 2 {
				cred, err := srv.GetCredential(context.Background())
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if cred.ServiceToken != "dev-token" || cred.Storefront != "gb" {
					t.Errorf("unexpected credential %+v", cred)
				}
			}

			if calls != 2 {
				t.Errorf("expected a fresh fetch per call, got %d requests", calls)
			}
		})

		tests := []struct {
			name    string
			handler http.HandlerFunc
		}{
			{
				name: "Server Error",
				handler: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusBadGateway)
				},
			},
			{
				name: "Malformed Payload",
				handler: func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte("<html>oops</html>"))
				},
			},
			{
				name: "Missing Token",
				handler: func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(`{"storefront":"us"}`))
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(tt.handler)
				defer server.Close()

				_, err := NewBackendService(server.URL, time.Second, nil).GetCredential(context.Background())
				if !errors.Is(err, shared.ErrAuthBackend) {
					t.Errorf("expected ErrAuthBackend, got %v", err)
				}
			})
		}

		t.Run("Unreachable Backend", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			_, err := NewBackendService("http://backend.invalid", time.Second, client).GetCredential(context.Background())
			if !errors.Is(err, shared.ErrAuthBackend) {
				t.Errorf("expected ErrAuthBackend, got %v", err)
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
			_, err := NewBackendService("http://backend.invalid", time.Second, client).GetCredential(context.Background())
			if !errors.Is(err, shared.ErrAuthBackend) {
				t.Errorf("expected ErrAuthBackend, got %v", err)
			}
		})
	})

	t.Run("Simulate", func(t *testing.T) {
		t.Run("Decodes Tracks", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/v1/simulate" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}

				var req SimulateRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Fatalf("failed to decode request: %v", err)
				}
				if req.Date != "1985-07-13" || req.Genre != "rock" || req.Hours != 2 {
					t.Errorf("unexpected request body %+v", req)
				}

				json.NewEncoder(w).Encode(map[string]any{
					"tracks": []map[string]any{
						{"timestamp": "00:00", "artist": "Queen", "title": "Radio Ga Ga", "source_rank": 1},
						{"timestamp": "00:04", "artist": "U2", "title": "Bad", "source_rank": 2},
					},
				})
			}))
			defer server.Close()

			srv := NewBackendService(server.URL, time.Second, nil)
			tracks, err := srv.Simulate(context.Background(), SimulateRequest{Date: "1985-07-13", Genre: "rock", Hours: 2})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(tracks))
			}
			if tracks[0].Request() != (models.TrackRequest{Artist: "Queen", Title: "Radio Ga Ga"}) {
				t.Errorf("unexpected first track %+v", tracks[0])
			}
			if tracks[1].SourceRank != 2 {
				t.Errorf("expected source rank 2, got %d", tracks[1].SourceRank)
			}
		})

		t.Run("Validates Arguments", func(t *testing.T) {
			srv := NewBackendService("http://backend.invalid", time.Second, nil)
			if _, err := srv.Simulate(context.Background(), SimulateRequest{Genre: "rock", Hours: 1}); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
			if _, err := srv.Simulate(context.Background(), SimulateRequest{Date: "1985-07-13", Genre: "rock"}); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			_, err := NewBackendService(server.URL, time.Second, nil).Simulate(context.Background(), SimulateRequest{Date: "1985-07-13", Genre: "rock", Hours: 1})
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("Emit", func(t *testing.T) {
		var got map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/events" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		srv := NewBackendService(server.URL, time.Second, nil)
		if err := srv.Emit(context.Background(), "export_attempt", map[string]any{"count": 3}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got["event"] != "export_attempt" {
			t.Errorf("expected event export_attempt, got %v", got["event"])
		}
		if got["session_id"] != srv.sessionID || got["anon_user_id"] != srv.anonUserID {
			t.Errorf("expected session identifiers in payload, got %v", got)
		}
		if props, ok := got["props"].(map[string]any); !ok || props["count"] != float64(3) {
			t.Errorf("unexpected props %v", got["props"])
		}
	})
}
