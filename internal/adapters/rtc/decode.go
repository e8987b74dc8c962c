package rtc

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
	"github.com/pion/rtp"
	"github.com/rs/zerolog/log"
)

// PacketReader returns the next RTP packet of a remote track.
type PacketReader func() (*rtp.Packet, error)

// DecodeTracker counts the decoding tracks of each channel. A channel reports
// decode success when its first track starts decoding and decode failure only
// when its last decoding track ends.
type DecodeTracker struct {
	mu     sync.Mutex
	active map[domain.Channel]int
	emit   Emit
}

func NewDecodeTracker(emit Emit) *DecodeTracker {
	return &DecodeTracker{active: make(map[domain.Channel]int), emit: emit}
}

func (d *DecodeTracker) started(channel domain.Channel) {
	d.mu.Lock()
	d.active[channel]++
	first := d.active[channel] == 1
	d.mu.Unlock()
	if first {
		d.emit(decodeChange(channel, core.ResultSuccess))
	}
}

func (d *DecodeTracker) stopped(channel domain.Channel) {
	d.mu.Lock()
	if d.active[channel] > 0 {
		d.active[channel]--
	}
	last := d.active[channel] == 0
	d.mu.Unlock()
	if last {
		d.emit(decodeChange(channel, "fail"))
	}
}

// Decoding returns how many tracks of channel are currently decoding.
func (d *DecodeTracker) Decoding(channel domain.Channel) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active[channel]
}

// WatchDecode drains one remote track. Its first packet with a payload counts
// the track as decoding in d until the track ends.
func WatchDecode(ctx context.Context, channel domain.Channel, read PacketReader, d *DecodeTracker) {
	logger := log.With().Str("module", "rtc").Str("channel", string(channel)).Logger()
	decoding := false
	packets := 0

	defer func() {
		logger.Debug().Int("packets", packets).Msg("track watch stopped")
		if decoding {
			d.stopped(channel)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		pkt, err := read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn().Err(err).Msg("read RTP error, stopping")
			}
			return
		}
		packets++
		if decoding || len(pkt.Payload) == 0 {
			continue
		}
		decoding = true
		logger.Info().Uint32("ssrc", pkt.SSRC).Uint16("seq", pkt.SequenceNumber).Msg("first media packet")
		d.started(channel)
	}
}

func decodeChange(channel domain.Channel, result string) core.MediaCapabilityChange {
	return core.MediaCapabilityChange{
		Channel:   channel,
		Direction: domain.DirectionDecode,
		Result:    result,
	}
}
