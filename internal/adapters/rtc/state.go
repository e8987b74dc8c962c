package rtc

import (
	"github.com/dkeye/VideoClient/internal/core"
	"github.com/pion/webrtc/v4"
)

// ConnectionChangeFor maps a peer connection state onto the session's
// connection notification. The second result is false for states that carry
// no session meaning. Closing the session is left to the bridge, so a failed
// peer is reported as a failover the bridge can recover with a new offer.
func ConnectionChangeFor(s webrtc.PeerConnectionState) (core.ConnectionChange, bool) {
	switch s {
	case webrtc.PeerConnectionStateNew, webrtc.PeerConnectionStateConnecting:
		return core.ConnectionChange{State: core.StateConnecting}, true
	case webrtc.PeerConnectionStateConnected:
		return core.ConnectionChange{State: core.StateConnected}, true
	case webrtc.PeerConnectionStateDisconnected, webrtc.PeerConnectionStateFailed:
		return core.ConnectionChange{State: core.StateReconnecting, Reason: core.ReasonFailover}, true
	default:
		return core.ConnectionChange{}, false
	}
}
