package domain

import "time"

// Chain identifies the network a transaction was recorded on.
type Chain string

// The two chains the backend writes to.
const (
	ChainPolygon  Chain = "Polygon"
	ChainDiamante Chain = "Diamante"
)

// Chains lists the known chains in display order.
var Chains = []Chain{ChainPolygon, ChainDiamante}

// ValidChain returns true if the given chain is one the backend records on.
func ValidChain(c Chain) bool {
	for _, known := range Chains {
		if c == known {
			return true
		}
	}
	return false
}

// TxUser is the player a transaction was recorded for.
type TxUser struct {
	UserID              string `json:"userId"`
	WalletAddress       string `json:"walletAddress"`
	SmartAccountAddress string `json:"saAddress"`
}

// TxEvent is the event summary nested in a transaction.
type TxEvent struct {
	EventID     string `json:"eventId"`
	EventType   string `json:"eventType"`
	Description string `json:"eventdescription"`
}

// Transaction is an on-chain record of a fired event. Read-only in this
// client; there is no mutation path.
type Transaction struct {
	Hash      string    `json:"transactionHash"`
	Chain     Chain     `json:"transactionChain"`
	Amount    string    `json:"amount,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	User      TxUser    `json:"user"`
	Event     TxEvent   `json:"event"`
	Game      GameRef   `json:"game"`
}

// ShortHash renders a transaction hash as first14…last14 for table display.
func ShortHash(hash string) string {
	if len(hash) <= 31 {
		return hash
	}
	return hash[:14] + "…" + hash[len(hash)-14:]
}
