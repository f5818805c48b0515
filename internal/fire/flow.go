// Package fire orchestrates the multi-step event-firing flow: check the
// session, capture credentials when there is none, fetch a fresh game-scoped
// authorization token, and submit the event. One flow instance backs one
// firing surface (an events panel) and allows a single in-flight fire at a
// time; independent surfaces use independent flows.
package fire

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Arnav139/bigads-console/pkg/client"
	"github.com/Arnav139/bigads-console/pkg/domain"
)

// State is where a flow instance currently stands.
type State int

// Flow states. Terminal outcomes return the flow to StateIdle, releasing the
// one-at-a-time lock for the surface.
const (
	StateIdle State = iota
	StateCheckingSession
	StateAwaitingCredentials
	StateFetchingAuthorization
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCheckingSession:
		return "checking-session"
	case StateAwaitingCredentials:
		return "awaiting-credentials"
	case StateFetchingAuthorization:
		return "fetching-authorization"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// insufficientFundsPhrase is the one backend failure surfaced verbatim; see
// the smart-wallet funding error in the events backend.
const insufficientFundsPhrase = "Your smart wallet does not have funds to send transaction"

// GenericFailureMessage is shown for any fire failure that is not the
// insufficient-funds case.
const GenericFailureMessage = "An error occurred while firing the event"

// SuccessMessage is shown when the backend acknowledges without a message.
const SuccessMessage = "Event fired successfully!"

var (
	// ErrFireInFlight rejects a fire while another is active on this surface.
	ErrFireInFlight = errors.New("another event fire is in flight")
	// ErrAuthorizationTokenMissing marks a 200 gameToken response whose token
	// field was absent; distinct from a transport failure.
	ErrAuthorizationTokenMissing = errors.New("game authorization token is missing")
	// ErrNoPendingFire rejects Submit/Cancel when nothing awaits credentials.
	ErrNoPendingFire = errors.New("no fire awaiting credentials")
)

// API is the slice of the backend client the flow drives.
type API interface {
	GameToken(ctx context.Context, gameID int) (*client.GameTokenResponse, error)
	SendEvent(ctx context.Context, req client.SendEventRequest, gameAuthToken string) (*client.SendEventResponse, error)
}

// Sessions is the read side of the session store.
type Sessions interface {
	Current() domain.Session
}

// Config wires a flow instance.
type Config struct {
	API      API
	Sessions Sessions
	// FallbackAPI, when non-nil, handles the credentials-captured path while
	// the store still has no token (a pre-authorized test-fixture client,
	// never a hardcoded secret). Nil means such fires go out unauthenticated
	// and the backend decides.
	FallbackAPI API
}

// Result is the outcome of a fire attempt.
type Result struct {
	// NeedsCredentials is true when the flow stopped to capture appId and
	// deviceId from the user. No backend call has been made yet.
	NeedsCredentials bool
	// Message is the user-facing success text.
	Message string
}

// Flow is the state machine for one firing surface.
type Flow struct {
	api      API
	fallback API
	sessions Sessions

	mu      sync.Mutex
	state   State
	eventID string
	gameID  int
}

// New creates a flow for one firing surface.
func New(cfg Config) *Flow {
	return &Flow{
		api:      cfg.API,
		fallback: cfg.FallbackAPI,
		sessions: cfg.Sessions,
	}
}

// State reports the flow's current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Active returns the event id currently being fired and whether one is.
func (f *Flow) Active() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eventID, f.state != StateIdle
}

// Fire attempts to fire one event. While a fire is in flight on this surface,
// any further Fire call — for the same or a different event — returns
// ErrFireInFlight. When no session exists, Fire returns a Result with
// NeedsCredentials set and the flow suspends in StateAwaitingCredentials
// until Submit or Cancel; no backend call is made in that case.
func (f *Flow) Fire(ctx context.Context, eventID string, gameID int) (*Result, error) {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return nil, ErrFireInFlight
	}
	f.state = StateCheckingSession
	f.eventID = eventID
	f.gameID = gameID
	f.mu.Unlock()

	sess := f.sessions.Current()
	if !sess.Authenticated() {
		f.setState(StateAwaitingCredentials)
		return &Result{NeedsCredentials: true}, nil
	}

	return f.run(ctx, f.api, sess.WalletAddress, sess.User.AppID, sess.User.DeviceID)
}

// Submit resumes a flow suspended in StateAwaitingCredentials with the
// credentials the user typed. If the store gained a token in the meantime it
// is used; otherwise the fallback client (when configured) carries the fire.
func (f *Flow) Submit(ctx context.Context, appID, deviceID string) (*Result, error) {
	f.mu.Lock()
	if f.state != StateAwaitingCredentials {
		f.mu.Unlock()
		return nil, ErrNoPendingFire
	}
	f.mu.Unlock()

	sess := f.sessions.Current()
	api := f.api
	if !sess.Authenticated() && f.fallback != nil {
		api = f.fallback
	}
	return f.run(ctx, api, sess.WalletAddress, appID, deviceID)
}

// Cancel aborts a flow suspended in StateAwaitingCredentials. Nothing has
// touched the backend at that point, so there is no partial state to undo.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingCredentials {
		return ErrNoPendingFire
	}
	f.reset()
	return nil
}

// run executes fetching-authorization then submitting. The authorization
// token is fetched fresh here, inside the instance, so a submission can never
// reuse a token from an earlier attempt.
func (f *Flow) run(ctx context.Context, api API, walletAddress, appID, deviceID string) (_ *Result, err error) {
	f.mu.Lock()
	eventID, gameID := f.eventID, f.gameID
	f.mu.Unlock()

	// Terminal states always release the surface.
	defer func() {
		f.mu.Lock()
		f.reset()
		f.mu.Unlock()
	}()

	f.setState(StateFetchingAuthorization)
	tokenResp, err := api.GameToken(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fire %s: %w", eventID, err)
	}
	gameAuthToken := tokenResp.Data.GameToken
	if gameAuthToken == "" {
		return nil, fmt.Errorf("fire %s: %w", eventID, ErrAuthorizationTokenMissing)
	}

	f.setState(StateSubmitting)
	resp, err := api.SendEvent(ctx, client.SendEventRequest{
		EventID:       eventID,
		GameID:        gameID,
		WalletAddress: walletAddress,
		AppID:         appID,
		DeviceID:      deviceID,
	}, gameAuthToken)
	if err != nil {
		return nil, fmt.Errorf("fire %s: %w", eventID, err)
	}

	message := resp.Message
	if message == "" {
		message = SuccessMessage
	}
	return &Result{Message: message}, nil
}

// FailureMessage maps a fire error to the notification text the user sees.
// The insufficient-funds backend message is surfaced as-is; everything else
// collapses to a generic failure.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	if strings.Contains(err.Error(), insufficientFundsPhrase) {
		return insufficientFundsPhrase
	}
	return GenericFailureMessage
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// reset returns the flow to idle. Caller holds f.mu.
func (f *Flow) reset() {
	f.state = StateIdle
	f.eventID = ""
	f.gameID = 0
}
