package domain

// UserData is the identity the backend returns on registration.
type UserData struct {
	UserID              string `json:"userId"`
	AppID               string `json:"appId"`
	DeviceID            string `json:"deviceId"`
	SmartAccountAddress string `json:"saAddress"`
	Role                string `json:"role"`
}

// Session is the client-side authentication state: the bearer token plus the
// identity it was issued for. Sessions are set and cleared wholesale — token
// and identity always travel together, never field-patched.
type Session struct {
	Token         string   `json:"token"`
	WalletAddress string   `json:"walletAddress"`
	User          UserData `json:"user"`
}

// Authenticated returns true if the session carries a bearer token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Admin roles may approve or reject creator requests.
const RoleAdmin = "admin"

// IsAdmin returns true if the session's user holds the admin role.
func (s Session) IsAdmin() bool {
	return s.User.Role == RoleAdmin
}
