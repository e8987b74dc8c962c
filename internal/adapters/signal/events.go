package signal

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/VideoClient/internal/core"
)

// decodeNotification turns an event frame payload into a notification.
// Unknown event names return (nil, nil).
func decodeNotification(name string, payload []byte) (core.Notification, error) {
	var n core.Notification
	switch name {
	case "connection-change":
		var v core.ConnectionChange
		if err := unmarshalPayload(payload, &v); err != nil {
			return nil, err
		}
		n = v
	case "media-sdk-change":
		var v core.MediaCapabilityChange
		if err := unmarshalPayload(payload, &v); err != nil {
			return nil, err
		}
		n = v
	case "user-updated", "roster-change":
		var v core.RosterChange
		if err := unmarshalPayload(payload, &v); err != nil {
			return nil, err
		}
		n = v
	case "video-active-change":
		var v core.ActiveVideoChange
		if err := unmarshalPayload(payload, &v); err != nil {
			return nil, err
		}
		n = v
	case "dialout-state-change":
		var v core.DialoutChange
		if err := unmarshalPayload(payload, &v); err != nil {
			return nil, err
		}
		n = v
	case "merged-audio":
		var v core.MergedAudio
		if err := unmarshalPayload(payload, &v); err != nil {
			return nil, err
		}
		n = v
	default:
		return nil, nil
	}
	return n, nil
}

func unmarshalPayload(payload []byte, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("bad payload: %w", err)
	}
	return nil
}
