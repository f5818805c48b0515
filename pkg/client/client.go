// Package client is the single point of contact with the BigAds backend.
// Every request goes through one JSON façade that attaches the session's
// bearer token on the way out and watches for session expiry on the way back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Arnav139/bigads-console/pkg/domain"
)

// maxErrorBody bounds how much of an error response is read for normalization.
const maxErrorBody = 1 << 20

// SessionStore is the session state the client reads on every request and
// clears when the backend reports an expired token. Only RegisterUser sets it.
type SessionStore interface {
	Token() string
	Set(domain.Session) error
	Clear() error
}

// Config holds client configuration.
type Config struct {
	BaseURL  string
	Sessions SessionStore
	// OnSessionExpired runs after a 401 has cleared the session store, so the
	// UI can surface the re-auth prompt. Optional.
	OnSessionExpired func()
	HTTPClient       *http.Client
	Logger           zerolog.Logger
}

// Client is the BigAds API client.
type Client struct {
	baseURL    string
	sessions   SessionStore
	onExpired  func()
	httpClient *http.Client
	log        zerolog.Logger

	// tokenOverride, when set, wins over the session store for this instance.
	// Used by the fire flow's fallback credential path; see WithToken.
	tokenOverride string
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("client.New: BaseURL is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("client.New: Sessions is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		sessions:   cfg.Sessions,
		onExpired:  cfg.OnSessionExpired,
		httpClient: httpClient,
		log:        cfg.Logger,
	}, nil
}

// WithToken returns a shallow copy of the client whose requests carry the
// given bearer token instead of whatever the session store holds. The copy
// shares the store, so 401 interception still clears the real session.
func (c *Client) WithToken(token string) *Client {
	copied := *c
	copied.tokenOverride = token
	return &copied
}

// =============================================================================
// Users & registration
// =============================================================================

// RegisterUserResponse is the payload returned by /user/registerUser.
type RegisterUserResponse struct {
	Message string          `json:"message"`
	Data    domain.UserData `json:"data"`
	Token   string          `json:"token"`
}

// RegisterUser registers a wallet with the backend and, on success, persists
// the returned bearer token and identity as the current session. This is the
// only operation that sets the session; everything else just reads it.
func (c *Client) RegisterUser(ctx context.Context, appID, deviceID, walletAddress string) (*RegisterUserResponse, error) {
	body := map[string]string{
		"appId":     appID,
		"deviceId":  deviceID,
		"maAddress": walletAddress,
	}

	var resp RegisterUserResponse
	if err := c.post(ctx, "/user/registerUser", body, &resp); err != nil {
		return nil, fmt.Errorf("client.RegisterUser: %w", err)
	}

	if resp.Token != "" {
		sess := domain.Session{
			Token:         resp.Token,
			WalletAddress: walletAddress,
			User:          resp.Data,
		}
		if err := c.sessions.Set(sess); err != nil {
			return nil, fmt.Errorf("client.RegisterUser: persist session: %w", err)
		}
	}
	return &resp, nil
}

// CreatorRequestResponse wraps a creator-role request record.
type CreatorRequestResponse struct {
	Message string                `json:"message"`
	Data    domain.CreatorRequest `json:"data"`
}

// RequestCreator applies for the creator role for the given wallet address.
func (c *Client) RequestCreator(ctx context.Context, maAddress string) (*CreatorRequestResponse, error) {
	var resp CreatorRequestResponse
	if err := c.post(ctx, "/user/requestCreator", map[string]string{"maAddress": maAddress}, &resp); err != nil {
		return nil, fmt.Errorf("client.RequestCreator: %w", err)
	}
	return &resp, nil
}

// CreatorRequestStatus fetches the given user's creator-request state.
func (c *Client) CreatorRequestStatus(ctx context.Context, userID string) (*domain.CreatorRequest, error) {
	var resp struct {
		Data domain.CreatorRequest `json:"data"`
	}
	if err := c.get(ctx, "/user/creator-request-status/"+url.PathEscape(userID), &resp); err != nil {
		return nil, fmt.Errorf("client.CreatorRequestStatus: %w", err)
	}
	return &resp.Data, nil
}

// =============================================================================
// Games & events
// =============================================================================

// GameFilter selects which games to list.
type GameFilter string

// GameFilterAll lists every game; GameFilterMine restricts server-side to
// games the caller created.
const (
	GameFilterAll  GameFilter = "all"
	GameFilterMine GameFilter = "mine"
)

// ListGames fetches games. The filter selects the endpoint; the restriction
// itself happens on the backend.
func (c *Client) ListGames(ctx context.Context, filter GameFilter) ([]domain.Game, error) {
	endpoint := "/user/game"
	if filter == GameFilterMine {
		endpoint = "/user/my-game"
	}

	var resp struct {
		Data []domain.Game `json:"data"`
	}
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("client.ListGames: %w", err)
	}
	return resp.Data, nil
}

// ListEvents fetches every fireable event across games.
func (c *Client) ListEvents(ctx context.Context) ([]domain.GameEvent, error) {
	var resp struct {
		Data []domain.GameEvent `json:"data"`
	}
	if err := c.get(ctx, "/user/events", &resp); err != nil {
		return nil, fmt.Errorf("client.ListEvents: %w", err)
	}
	return resp.Data, nil
}

// RegisterGameEvent declares one event type on a new game.
type RegisterGameEvent struct {
	EventType string `json:"eventType"`
}

// RegisterGameRequest is the payload for registering a new game.
type RegisterGameRequest struct {
	Name          string              `json:"name"`
	Type          string              `json:"type"`
	Description   string              `json:"description"`
	Events        []RegisterGameEvent `json:"events"`
	WalletAddress string              `json:"wallet_address"`
}

// RegisteredEvent is an event id assigned by the backend during registration.
type RegisteredEvent struct {
	GameID    int    `json:"gameId"`
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
}

// RegisterGameResponse is the payload returned by /creator/registerGame.
type RegisterGameResponse struct {
	Message string `json:"message"`
	Data    struct {
		Game      domain.Game       `json:"game"`
		Events    []RegisteredEvent `json:"events"`
		GameToken string            `json:"Gametoken"`
	} `json:"data"`
}

// RegisterGame registers a new game with its event types.
func (c *Client) RegisterGame(ctx context.Context, req RegisterGameRequest) (*RegisterGameResponse, error) {
	var resp RegisterGameResponse
	if err := c.post(ctx, "/creator/registerGame", req, &resp); err != nil {
		return nil, fmt.Errorf("client.RegisterGame: %w", err)
	}
	return &resp, nil
}

// =============================================================================
// Event firing
// =============================================================================

// GameTokenResponse wraps the short-lived, game-scoped authorization token.
// The token field can legitimately be absent on an otherwise-200 response;
// callers must treat that as a failure distinct from a transport error.
type GameTokenResponse struct {
	Data struct {
		GameToken string `json:"gameToken"`
	} `json:"data"`
}

// GameToken requests a fresh authorization token for one game. Tokens are
// single-use by convention: fetched immediately before a submission, never
// cached across submissions.
func (c *Client) GameToken(ctx context.Context, gameID int) (*GameTokenResponse, error) {
	var resp GameTokenResponse
	if err := c.post(ctx, "/creator/gameToken", map[string]int{"gameId": gameID}, &resp); err != nil {
		return nil, fmt.Errorf("client.GameToken: %w", err)
	}
	return &resp, nil
}

// SendEventRequest is the payload for firing an event.
type SendEventRequest struct {
	EventID       string `json:"eventId"`
	GameID        int    `json:"gameId"`
	WalletAddress string `json:"wallet_address"`
	AppID         string `json:"appId"`
	DeviceID      string `json:"deviceId"`
}

// SendEventResponse is the payload returned by /user/sendEvents.
type SendEventResponse struct {
	Message string `json:"message"`
}

// SendEvent submits a fired event. The game authorization token travels in
// its own header next to the bearer token.
func (c *Client) SendEvent(ctx context.Context, req SendEventRequest, gameAuthToken string) (*SendEventResponse, error) {
	var resp SendEventResponse
	headers := map[string]string{"game_authorization_token": gameAuthToken}
	if err := c.doRequest(ctx, http.MethodPost, "/user/sendEvents", req, &resp, headers); err != nil {
		return nil, fmt.Errorf("client.SendEvent: %w", err)
	}
	return &resp, nil
}

// =============================================================================
// Transactions
// =============================================================================

// ListTransactions fetches the full transaction history for display/export.
func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := c.get(ctx, "/user/transactions", &resp); err != nil {
		return nil, fmt.Errorf("client.ListTransactions: %w", err)
	}
	return resp.Transactions, nil
}

// TransactionsByEvent fetches the transactions recorded for one event.
func (c *Client) TransactionsByEvent(ctx context.Context, eventID string) ([]domain.Transaction, error) {
	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := c.get(ctx, "/user/event/transaction/"+url.PathEscape(eventID), &resp); err != nil {
		return nil, fmt.Errorf("client.TransactionsByEvent: %w", err)
	}
	return resp.Transactions, nil
}

// =============================================================================
// Admin
// =============================================================================

// PendingRequests lists creator requests awaiting an admin decision.
func (c *Client) PendingRequests(ctx context.Context) ([]domain.CreatorRequest, error) {
	var resp struct {
		Data []domain.CreatorRequest `json:"data"`
	}
	if err := c.get(ctx, "/admin/PendingRequests", &resp); err != nil {
		return nil, fmt.Errorf("client.PendingRequests: %w", err)
	}
	return resp.Data, nil
}

// ApproveCreatorRequest records an admin decision on a creator request.
func (c *Client) ApproveCreatorRequest(ctx context.Context, maAddress string, decision domain.ResponseType) error {
	path := "/admin/creator-requests/" + url.PathEscape(maAddress) + "/approve"
	body := map[string]string{"responseType": string(decision)}
	if err := c.doRequest(ctx, http.MethodPatch, path, body, nil, nil); err != nil {
		return fmt.Errorf("client.ApproveCreatorRequest: %w", err)
	}
	return nil
}

// =============================================================================
// Transport
// =============================================================================

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out, nil)
}

// doRequest issues one request with the two cross-cutting behaviors applied:
// the bearer token is attached when one exists, and a 401 response clears the
// session store before the failure is propagated. No request is ever retried
// here; retry policy belongs to the caller.
func (c *Client) doRequest(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	token := c.tokenOverride
	if token == "" {
		token = c.sessions.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Str("method", method).Str("path", path).Err(err).Msg("request failed")
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request")

	if resp.StatusCode == http.StatusUnauthorized {
		return c.expireSession(path)
	}

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return &APIError{Status: resp.StatusCode, Kind: "request failed", Message: fmt.Sprintf("read body: %v", readErr)}
		}
		return Normalize(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// expireSession is the one place the client mutates the session store. The
// clear happens synchronously before the error is returned so that nothing
// else observes the dead token.
func (c *Client) expireSession(path string) error {
	if err := c.sessions.Clear(); err != nil {
		c.log.Error().Str("path", path).Err(err).Msg("clear expired session")
	} else {
		c.log.Warn().Str("path", path).Msg("session expired, cleared")
	}
	if c.onExpired != nil {
		c.onExpired()
	}
	return &APIError{
		Status:  http.StatusUnauthorized,
		Kind:    "Unauthorized",
		Message: SessionExpiredMessage,
	}
}
