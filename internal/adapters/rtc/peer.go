package rtc

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Emit delivers a notification into the engine's event stream.
type Emit func(core.Notification)

// Peer is the receive-only media leg of a joined session. It does not carry
// media to the UI; it reports transport state and decode readiness.
type Peer struct {
	pc     *webrtc.PeerConnection
	sid    domain.SessionID
	emit   Emit
	decode *DecodeTracker
	cancel context.CancelFunc

	mu    sync.Mutex
	onICE func(webrtc.ICECandidateInit)

	closing   atomic.Bool
	closeOnce sync.Once
}

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

func NewPeer(cfg webrtc.Configuration, sid domain.SessionID, emit Emit) (*Peer, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	p := &Peer{pc: pc, sid: sid, emit: emit}
	p.decode = NewDecodeTracker(p.notify)
	return p, nil
}

func (p *Peer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("sid", string(p.sid)).Str("peer_connection_state", s.String()).Msg("Peer state")
		if change, ok := ConnectionChangeFor(s); ok {
			p.notify(change)
		}
		if s == webrtc.PeerConnectionStateClosed {
			cancel()
		}
	})

	p.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		p.mu.Lock()
		fn := p.onICE
		p.mu.Unlock()
		if cand != nil && fn != nil {
			fn(cand.ToJSON())
		}
	})

	p.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		log.Info().
			Str("module", "rtc").
			Str("sid", string(p.sid)).
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("OnTrack received")

		channel, ok := channelFor(track.Kind())
		if !ok {
			return
		}
		read := func() (*rtp.Packet, error) {
			pkt, _, err := track.ReadRTP()
			return pkt, err
		}
		go WatchDecode(ctx, channel, read, p.decode)
	})

	return nil
}

func (p *Peer) ApplyOfferAndCreateAnswer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if err := p.pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}

	gatherComplete := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	<-gatherComplete

	return p.pc.LocalDescription(), nil
}

func (p *Peer) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return p.pc.AddICECandidate(ci)
}

func (p *Peer) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	p.mu.Lock()
	p.onICE = fn
	p.mu.Unlock()
}

// notify drops everything once Close has started; the session layer reports
// its own closing.
func (p *Peer) notify(n core.Notification) {
	if p.closing.Load() {
		return
	}
	p.emit(n)
}

func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		p.closing.Store(true)
		if p.cancel != nil {
			p.cancel()
		}
		if err := p.pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "rtc").Str("sid", string(p.sid)).Msg("close error")
			return
		}
		log.Info().Str("module", "rtc").Str("sid", string(p.sid)).Msg("closed")
	})
}

func channelFor(kind webrtc.RTPCodecType) (domain.Channel, bool) {
	switch kind {
	case webrtc.RTPCodecTypeAudio:
		return domain.ChannelAudio, true
	case webrtc.RTPCodecTypeVideo:
		return domain.ChannelVideo, true
	default:
		return "", false
	}
}
