package domain

// GameEvent is a fireable in-game event. Events are immutable once fetched;
// firing one records a transaction on the backend, it never mutates the event.
type GameEvent struct {
	EventID     string  `json:"eventId"`
	EventType   string  `json:"eventType"`
	Description string  `json:"eventdescription"`
	Game        GameRef `json:"game"`
}
