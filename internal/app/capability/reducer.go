// Package capability tracks which media channels can currently encode and decode.
package capability

import (
	"strings"

	"github.com/dkeye/VideoClient/internal/domain"
)

const resetTag = "reset-media"

// Action is a single reducer input: either one leaf set, or a full reset.
type Action struct {
	Channel   domain.Channel
	Direction domain.Direction
	Enabled   bool
	reset     bool
}

// Reset restores the default all-false snapshot.
var Reset = Action{reset: true}

// Set flips exactly one channel/direction leaf.
func Set(ch domain.Channel, dir domain.Direction, enabled bool) Action {
	return Action{Channel: ch, Direction: dir, Enabled: enabled}
}

// FromTag builds an action from a "{channel}-{direction}" tag.
// Malformed tags yield an action that Apply ignores.
func FromTag(tag string, enabled bool) Action {
	if tag == resetTag {
		return Reset
	}
	ch, dir, _ := strings.Cut(tag, "-")
	return Set(domain.Channel(ch), domain.Direction(dir), enabled)
}

// Tag is the "{channel}-{direction}" name of a, or "reset-media".
func (a Action) Tag() string {
	if a.reset {
		return resetTag
	}
	return string(a.Channel) + "-" + string(a.Direction)
}

// Apply is the pure transition function. Unknown channel/direction pairs return s unchanged.
func Apply(s domain.Capabilities, a Action) domain.Capabilities {
	if a.reset {
		return domain.Capabilities{}
	}
	var leaf *domain.CodecState
	switch a.Channel {
	case domain.ChannelAudio:
		leaf = &s.Audio
	case domain.ChannelVideo:
		leaf = &s.Video
	case domain.ChannelShare:
		leaf = &s.Share
	default:
		return s
	}
	switch a.Direction {
	case domain.DirectionEncode:
		leaf.Encode = a.Enabled
	case domain.DirectionDecode:
		leaf.Decode = a.Enabled
	}
	return s
}
