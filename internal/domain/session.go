package domain

type SessionID string

// SessionInfo is what the client needs to join a session.
type SessionInfo struct {
	ID           SessionID `json:"id"`
	Topic        string    `json:"topic"`
	Name         string    `json:"name"`
	Password     string    `json:"-"`
	Signature    string    `json:"-"`
	GroupSession bool      `json:"groupSession"`
}
