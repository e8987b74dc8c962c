package core

import "github.com/dkeye/VideoClient/internal/domain"

// Notification is one event from the session engine's stream.
type Notification interface {
	Kind() string
}

type ConnectionState string

const (
	StateConnecting   ConnectionState = "Connecting"
	StateConnected    ConnectionState = "Connected"
	StateReconnecting ConnectionState = "Reconnecting"
	StateClosed       ConnectionState = "Closed"
)

// Reconnect and close reasons carried by ConnectionChange.Reason.
const (
	ReasonFailover          = "failover"
	ReasonJoinSubsession    = "join subsession"
	ReasonMoveToSubsession  = "move to subsession"
	ReasonBackToMainSession = "back to main session"
	ReasonEndedByHost       = "ended by host"
)

// ResultSuccess is the media-capability result that means "enabled".
const ResultSuccess = "success"

type ConnectionChange struct {
	State          ConnectionState `json:"state"`
	Reason         string          `json:"reason,omitempty"`
	SubsessionName string          `json:"subsessionName,omitempty"`
}

type MediaCapabilityChange struct {
	Channel   domain.Channel   `json:"type"`
	Direction domain.Direction `json:"action"`
	Result    string           `json:"result"`
}

// RosterChange carries the full participant list; it replaces, never merges.
type RosterChange struct {
	Participants []domain.Participant `json:"participants"`
}

type ActiveVideoChange struct {
	UserID domain.UserID `json:"userId"`
}

// DialoutChange and MergedAudio are accepted for completeness and only logged.
type DialoutChange struct {
	Code int `json:"code"`
}

type MergedAudio struct {
	Status string `json:"status"`
}

func (ConnectionChange) Kind() string      { return "connection-change" }
func (MediaCapabilityChange) Kind() string { return "media-sdk-change" }
func (RosterChange) Kind() string          { return "roster-change" }
func (ActiveVideoChange) Kind() string     { return "video-active-change" }
func (DialoutChange) Kind() string         { return "dialout-state-change" }
func (MergedAudio) Kind() string           { return "merged-audio" }

// Enabled maps the engine's result string onto the capability flag.
func (m MediaCapabilityChange) Enabled() bool { return m.Result == ResultSuccess }
