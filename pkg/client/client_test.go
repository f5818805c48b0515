package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Arnav139/bigads-console/pkg/domain"
)

// memSessions is an in-memory SessionStore for tests.
type memSessions struct {
	mu      sync.Mutex
	sess    domain.Session
	cleared int
}

func (m *memSessions) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.Token
}

func (m *memSessions) Set(s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = s
	return nil
}

func (m *memSessions) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = domain.Session{}
	m.cleared++
	return nil
}

func newTestClient(t *testing.T, url string, sessions SessionStore, onExpired func()) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:          url,
		Sessions:         sessions,
		OnSessionExpired: onExpired,
		Logger:           zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"data": []domain.Game{}}) //nolint:errcheck
	}))
	defer srv.Close()

	sessions := &memSessions{sess: domain.Session{Token: "tok-123"}}
	c := newTestClient(t, srv.URL, sessions, nil)

	if _, err := c.ListGames(context.Background(), GameFilterAll); err != nil {
		t.Fatalf("ListGames() error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestNoTokenNoHeader(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode(map[string]any{"data": []domain.Game{}}) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &memSessions{}, nil)
	if _, err := c.ListGames(context.Background(), GameFilterAll); err != nil {
		t.Fatalf("ListGames() error: %v", err)
	}
	if hadAuth {
		t.Error("unauthenticated request carried an Authorization header")
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "token expired", "message": "whatever the backend says"}) //nolint:errcheck
	}))
	defer srv.Close()

	sessions := &memSessions{sess: domain.Session{
		Token:         "stale",
		WalletAddress: "0xw",
		User:          domain.UserData{UserID: "1"},
	}}
	notified := 0
	c := newTestClient(t, srv.URL, sessions, func() { notified++ })

	_, err := c.ListEvents(context.Background())
	if err == nil {
		t.Fatal("expected error on 401 response")
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("IsStatus(err, 401) = false, err = %v", err)
	}
	// Fixed message wins regardless of the body content.
	if !strings.Contains(err.Error(), SessionExpiredMessage) {
		t.Errorf("error = %q, want it to contain %q", err, SessionExpiredMessage)
	}
	if sessions.cleared != 1 {
		t.Errorf("session cleared %d times, want 1", sessions.cleared)
	}
	if tok := sessions.Token(); tok != "" {
		t.Errorf("token after 401 = %q, want empty", tok)
	}
	if notified != 1 {
		t.Errorf("expiry notification fired %d times, want 1", notified)
	}
}

func TestRegisterUserPersistsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/registerUser" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		if body["maAddress"] != "0xwallet" || body["appId"] != "app1" || body["deviceId"] != "dev1" {
			t.Errorf("unexpected register body: %v", body)
		}
		json.NewEncoder(w).Encode(RegisterUserResponse{ //nolint:errcheck
			Message: "registered",
			Data: domain.UserData{
				UserID: "134", AppID: "app1", DeviceID: "dev1",
				SmartAccountAddress: "0xsa", Role: "user",
			},
			Token: "fresh-token",
		})
	}))
	defer srv.Close()

	sessions := &memSessions{}
	c := newTestClient(t, srv.URL, sessions, nil)

	resp, err := c.RegisterUser(context.Background(), "app1", "dev1", "0xwallet")
	if err != nil {
		t.Fatalf("RegisterUser() error: %v", err)
	}
	if resp.Token != "fresh-token" {
		t.Errorf("Token = %q, want %q", resp.Token, "fresh-token")
	}
	if got := sessions.Token(); got != "fresh-token" {
		t.Errorf("persisted token = %q, want %q", got, "fresh-token")
	}
	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	if sessions.sess.WalletAddress != "0xwallet" || sessions.sess.User.UserID != "134" {
		t.Errorf("persisted session = %+v, want wallet+identity together", sessions.sess)
	}
}

func TestListGamesFilterSelectsEndpoint(t *testing.T) {
	tests := []struct {
		filter   GameFilter
		wantPath string
	}{
		{GameFilterAll, "/user/game"},
		{GameFilterMine, "/user/my-game"},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				json.NewEncoder(w).Encode(map[string]any{"data": []domain.Game{{ID: 42, Name: "Racer"}}}) //nolint:errcheck
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, &memSessions{}, nil)
			games, err := c.ListGames(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ListGames(%q) error: %v", tt.filter, err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if len(games) != 1 || games[0].ID != 42 {
				t.Errorf("games = %+v, want one game with ID 42", games)
			}
		})
	}
}

func TestSendEventCarriesGameAuthHeader(t *testing.T) {
	var gotHeader, gotAuth string
	var gotBody SendEventRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("game_authorization_token")
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody) //nolint:errcheck
		json.NewEncoder(w).Encode(SendEventResponse{Message: "event recorded"}) //nolint:errcheck
	}))
	defer srv.Close()

	sessions := &memSessions{sess: domain.Session{Token: "bearer-tok"}}
	c := newTestClient(t, srv.URL, sessions, nil)

	req := SendEventRequest{
		EventID: "evt-42", GameID: 42,
		WalletAddress: "0xw", AppID: "app1", DeviceID: "dev1",
	}
	resp, err := c.SendEvent(context.Background(), req, "game-auth-tok")
	if err != nil {
		t.Fatalf("SendEvent() error: %v", err)
	}
	if resp.Message != "event recorded" {
		t.Errorf("Message = %q, want %q", resp.Message, "event recorded")
	}
	if gotHeader != "game-auth-tok" {
		t.Errorf("game_authorization_token = %q, want %q", gotHeader, "game-auth-tok")
	}
	if gotAuth != "Bearer bearer-tok" {
		t.Errorf("Authorization = %q, want bearer from session", gotAuth)
	}
	if gotBody != req {
		t.Errorf("body = %+v, want %+v", gotBody, req)
	}
}

func TestWithTokenOverridesStore(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(GameTokenResponse{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &memSessions{}, nil)
	if _, err := c.WithToken("override").GameToken(context.Background(), 7); err != nil {
		t.Fatalf("GameToken() error: %v", err)
	}
	if gotAuth != "Bearer override" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer override")
	}
}

func TestStructuredErrorNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"error":   "Registration Error",
			"message": "game name already taken",
			"details": "choose a different name",
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &memSessions{}, nil)
	_, err := c.RegisterGame(context.Background(), RegisterGameRequest{Name: "Racer"})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an *APIError", err)
	}
	if apiErr.Kind != "Registration Error" || apiErr.Message != "game name already taken" || apiErr.Details != "choose a different name" {
		t.Errorf("normalized = %+v, want backend fields carried through", apiErr)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	bodies := [][]byte{
		[]byte(`{"error":"boom","message":"it broke","details":"badly"}`),
		[]byte(`{"message":"no kind"}`),
		[]byte(`plain text failure`),
		nil,
	}
	for _, body := range bodies {
		first := Normalize(http.StatusBadRequest, body)
		second := Normalize(http.StatusBadRequest, body)
		if *first != *second {
			t.Errorf("Normalize not idempotent for %q: %+v vs %+v", body, first, second)
		}
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	got := Normalize(http.StatusBadGateway, nil)
	if got.Kind != "request failed" {
		t.Errorf("Kind = %q, want fallback", got.Kind)
	}
	if got.Message != http.StatusText(http.StatusBadGateway) {
		t.Errorf("Message = %q, want status text", got.Message)
	}
	if got.Details != "Status: 502" {
		t.Errorf("Details = %q, want %q", got.Details, "Status: 502")
	}
}
