package domain

import (
	"strings"
	"time"
)

// Game is a game registered on the BigAds backend. The numeric ID is the
// backend's row id and the one the gameToken/sendEvents endpoints expect;
// GameID is the public identifier shown on cards.
type Game struct {
	ID                  int         `json:"id"`
	CreatorID           int         `json:"createrId"` // backend key is misspelled
	GameID              string      `json:"gameId"`
	SmartAccountAddress string      `json:"gameSaAddress"`
	Name                string      `json:"name"`
	Type                string      `json:"type"`
	Description         string      `json:"description"`
	CreatedAt           time.Time   `json:"createdAt"`
	Events              []GameEvent `json:"events,omitempty"`
	UsersPlayed         int         `json:"usersPlayed,omitempty"`
	TransactionCount    int         `json:"transactionCount,omitempty"`
}

// GameRef is the nested game summary carried inside events and transactions.
type GameRef struct {
	GameID      string `json:"gameId"`
	Name        string `json:"Gamename"`
	Type        string `json:"Gametype"`
	Description string `json:"description"`
}

// SameAddressKind reports whether a wallet and a game smart account live on
// the same kind of chain. EVM addresses are 0x-prefixed, Diamante addresses
// are not; a wallet can only fire events against games of its own kind.
func SameAddressKind(wallet, account string) bool {
	return strings.HasPrefix(wallet, "0x") == strings.HasPrefix(account, "0x")
}
