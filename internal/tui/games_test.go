package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Arnav139/bigads-console/internal/fire"
	"github.com/Arnav139/bigads-console/pkg/client"
	"github.com/Arnav139/bigads-console/pkg/domain"
)

// stubAPI satisfies fire.API with canned responses.
type stubAPI struct {
	token   string
	message string
}

func (s stubAPI) GameToken(_ context.Context, _ int) (*client.GameTokenResponse, error) {
	var resp client.GameTokenResponse
	resp.Data.GameToken = s.token
	return &resp, nil
}

func (s stubAPI) SendEvent(_ context.Context, _ client.SendEventRequest, _ string) (*client.SendEventResponse, error) {
	return &client.SendEventResponse{Message: s.message}, nil
}

// stubSessions satisfies fire.Sessions with a fixed session.
type stubSessions struct{ sess domain.Session }

func (s stubSessions) Current() domain.Session { return s.sess }

func authedStubSessions() stubSessions {
	return stubSessions{sess: domain.Session{
		Token:         "tok",
		WalletAddress: "0xwallet",
		User:          domain.UserData{AppID: "app1", DeviceID: "dev1"},
	}}
}

func newTestGamesModel(sessions fire.Sessions) gamesModel {
	flow := fire.New(fire.Config{
		API:      stubAPI{token: "game-auth"},
		Sessions: sessions,
	})
	m := newGamesModel(nil, flow, sessions)
	m.width = 80
	m.height = 24
	m.loading = false
	return m
}

func makeTestGame(id int, name, account string) domain.Game {
	return domain.Game{
		ID:                  id,
		GameID:              "game-" + name,
		SmartAccountAddress: account,
		Name:                name,
		Type:                "arcade",
	}
}

func TestGamesListRendersNames(t *testing.T) {
	m := newTestGamesModel(authedStubSessions())
	games := []domain.Game{
		makeTestGame(1, "Sky Racer", "0xaaa"),
		makeTestGame(2, "Dungeon Run", "0xbbb"),
	}
	m, _ = m.Update(gamesLoadedMsg{games: games})

	view := m.View()
	if !strings.Contains(view, "Sky Racer") {
		t.Errorf("expected game name in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Dungeon Run") {
		t.Errorf("expected second game name in view, got:\n%s", view)
	}
}

func TestGamesWalletChainPartition(t *testing.T) {
	m := newTestGamesModel(authedStubSessions()) // 0x wallet
	games := []domain.Game{
		makeTestGame(1, "EvmGame", "0xaaa"),
		makeTestGame(2, "DiamGame", "GDXWALLET"),
	}
	m, _ = m.Update(gamesLoadedMsg{games: games})

	view := m.View()
	if !strings.Contains(view, "EvmGame") {
		t.Errorf("expected 0x game visible for 0x wallet, got:\n%s", view)
	}
	if strings.Contains(view, "DiamGame") {
		t.Errorf("expected non-0x game hidden for 0x wallet, got:\n%s", view)
	}
}

func TestGamesNoSessionShowsAllGames(t *testing.T) {
	m := newTestGamesModel(stubSessions{})
	games := []domain.Game{
		makeTestGame(1, "EvmGame", "0xaaa"),
		makeTestGame(2, "DiamGame", "GDXWALLET"),
	}
	m, _ = m.Update(gamesLoadedMsg{games: games})

	visible := m.visible()
	if len(visible) != 2 {
		t.Errorf("expected 2 visible games with no wallet, got %d", len(visible))
	}
}

func TestGamesFilterToggleReloads(t *testing.T) {
	m := newTestGamesModel(authedStubSessions())
	m, _ = m.Update(gamesLoadedMsg{games: []domain.Game{makeTestGame(1, "G", "0xa")}})

	if m.filter != client.GameFilterAll {
		t.Fatalf("expected initial filter=all, got %q", m.filter)
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	if m.filter != client.GameFilterMine {
		t.Errorf("expected filter=mine after 'm', got %q", m.filter)
	}
	if cmd == nil {
		t.Error("expected toggle to return a reload command, got nil")
	}
}

func TestGamesEventsOverlayOpensOnEnter(t *testing.T) {
	m := newTestGamesModel(authedStubSessions())
	g := makeTestGame(1, "Sky Racer", "0xaaa")
	g.Events = []domain.GameEvent{
		{EventID: "evt-1", EventType: "level_up", Description: "Player leveled up"},
	}
	m, _ = m.Update(gamesLoadedMsg{games: []domain.Game{g}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.eventsOpen {
		t.Fatal("expected eventsOpen=true after enter")
	}

	view := m.View()
	if !strings.Contains(view, "level_up") {
		t.Errorf("expected event type in overlay, got:\n%s", view)
	}
	if !strings.Contains(view, "evt-1") {
		t.Errorf("expected event id in overlay, got:\n%s", view)
	}
}

func TestGamesFireReportsSuccess(t *testing.T) {
	m := newTestGamesModel(authedStubSessions())
	g := makeTestGame(42, "Sky Racer", "0xaaa")
	g.Events = []domain.GameEvent{{EventID: "evt-42", EventType: "level_up"}}
	m, _ = m.Update(gamesLoadedMsg{games: []domain.Game{g}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	if cmd == nil {
		t.Fatal("expected fire to return a command, got nil")
	}

	msg, ok := cmd().(fireResultMsg)
	if !ok {
		t.Fatalf("expected fireResultMsg, got %T", cmd())
	}
	if msg.err != nil {
		t.Fatalf("unexpected fire error: %v", msg.err)
	}
	m, _ = m.Update(msg)
	if m.statusMsg != fire.SuccessMessage {
		t.Errorf("expected success message %q, got %q", fire.SuccessMessage, m.statusMsg)
	}
}

func TestGamesFireWithoutSessionOpensCredentialsForm(t *testing.T) {
	m := newTestGamesModel(stubSessions{})
	g := makeTestGame(1, "Sky Racer", "0xaaa")
	g.Events = []domain.GameEvent{{EventID: "evt-1", EventType: "level_up"}}
	m, _ = m.Update(gamesLoadedMsg{games: []domain.Game{g}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	if cmd == nil {
		t.Fatal("expected fire to return a command, got nil")
	}
	msg, ok := cmd().(fireResultMsg)
	if !ok {
		t.Fatalf("expected fireResultMsg, got %T", cmd())
	}
	if msg.result == nil || !msg.result.NeedsCredentials {
		t.Fatal("expected NeedsCredentials result with no session")
	}

	m, _ = m.Update(msg)
	if !m.credsOpen {
		t.Fatal("expected credentials form open")
	}
	view := m.View()
	if !strings.Contains(view, "appId") || !strings.Contains(view, "deviceId") {
		t.Errorf("expected appId/deviceId fields in form, got:\n%s", view)
	}
}

func TestGamesCredentialsEscCancelsPendingFire(t *testing.T) {
	m := newTestGamesModel(stubSessions{})
	g := makeTestGame(1, "Sky Racer", "0xaaa")
	g.Events = []domain.GameEvent{{EventID: "evt-1", EventType: "level_up"}}
	m, _ = m.Update(gamesLoadedMsg{games: []domain.Game{g}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	m, _ = m.Update(cmd())
	if !m.credsOpen {
		t.Fatal("expected credentials form open")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.credsOpen {
		t.Error("expected credentials form closed after esc")
	}
	if m.flow.State() != fire.StateIdle {
		t.Errorf("expected flow back to idle, got %v", m.flow.State())
	}
}

func TestGamesCredentialsSubmitFires(t *testing.T) {
	m := newTestGamesModel(stubSessions{})
	g := makeTestGame(1, "Sky Racer", "0xaaa")
	g.Events = []domain.GameEvent{{EventID: "evt-1", EventType: "level_up"}}
	m, _ = m.Update(gamesLoadedMsg{games: []domain.Game{g}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	m, _ = m.Update(cmd())

	m.credsForm[credsFieldAppID] = "app1"
	m.credsForm[credsFieldDeviceID] = "dev1"
	m.credsFocus = credsFieldDeviceID
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected submit to return a command, got nil")
	}
	msg, ok := cmd().(fireResultMsg)
	if !ok {
		t.Fatalf("expected fireResultMsg, got %T", cmd())
	}
	if msg.err != nil {
		t.Fatalf("unexpected submit error: %v", msg.err)
	}
	m, _ = m.Update(msg)
	if m.credsOpen {
		t.Error("expected credentials form closed after successful fire")
	}
}

func TestGamesEventTransactionsPeek(t *testing.T) {
	m := newTestGamesModel(authedStubSessions())
	g := makeTestGame(1, "Sky Racer", "0xaaa")
	g.Events = []domain.GameEvent{
		{EventID: "evt-1", EventType: "level_up"},
		{EventID: "evt-2", EventType: "boss_kill"},
	}
	m, _ = m.Update(gamesLoadedMsg{games: []domain.Game{g}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if cmd == nil {
		t.Fatal("expected 't' to return a load command, got nil")
	}
	if m.eventTxsFor != "evt-1" {
		t.Fatalf("expected eventTxsFor=evt-1, got %q", m.eventTxsFor)
	}

	hash := "0x" + strings.Repeat("ab", 32)
	m, _ = m.Update(eventTxsLoadedMsg{
		eventID: "evt-1",
		txs:     []domain.Transaction{{Hash: hash, Chain: domain.ChainPolygon}},
	})
	view := m.View()
	if !strings.Contains(view, domain.ShortHash(hash)) {
		t.Errorf("expected shortened hash in overlay, got:\n%s", view)
	}
	if !strings.Contains(view, string(domain.ChainPolygon)) {
		t.Errorf("expected chain label in overlay, got:\n%s", view)
	}

	// Moving the cursor discards the peek for the previous event.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.eventTxsFor != "" || m.eventTxs != nil {
		t.Error("expected event transactions cleared on cursor move")
	}
}

func TestGamesEmptyListShowsNoGamesFound(t *testing.T) {
	m := newTestGamesModel(authedStubSessions())
	m, _ = m.Update(gamesLoadedMsg{games: []domain.Game{}})

	view := m.View()
	if !strings.Contains(view, "no games found") {
		t.Errorf("expected 'no games found' in view, got:\n%s", view)
	}
}

func TestGamesNavigation(t *testing.T) {
	m := newTestGamesModel(authedStubSessions())
	games := []domain.Game{
		makeTestGame(1, "One", "0xa"),
		makeTestGame(2, "Two", "0xb"),
		makeTestGame(3, "Three", "0xc"),
	}
	m, _ = m.Update(gamesLoadedMsg{games: games})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.cursor != 1 {
		t.Errorf("expected cursor=1 after j, got %d", m.cursor)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	if m.cursor != 0 {
		t.Errorf("expected cursor=0 after k, got %d", m.cursor)
	}
}
