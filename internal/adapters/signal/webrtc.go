package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/VideoClient/internal/adapters/rtc"
	"github.com/pion/webrtc/v4"
)

func (e *Engine) sendCandidate(ci webrtc.ICECandidateInit) {
	resp := struct {
		Type          string `json:"type"`
		Candidate     string `json:"candidate"`
		SDPMid        string `json:"sdpMid,omitempty"`
		SDPMLineIndex uint16 `json:"sdpMLineIndex,omitempty"`
	}{
		Type:      "candidate",
		Candidate: ci.Candidate,
	}
	if ci.SDPMid != nil {
		resp.SDPMid = *ci.SDPMid
	}
	if ci.SDPMLineIndex != nil {
		resp.SDPMLineIndex = *ci.SDPMLineIndex
	}
	_ = e.sendJSON(resp)
}

// handleOffer replaces the media peer with one answering the bridge's offer.
func (e *Engine) handleOffer(ctx context.Context, data []byte) {
	type offerPayload struct {
		Type string `json:"type"`
		SDP  string `json:"sdp"`
	}
	var p offerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		e.logger.Error().Err(err).Msg("bad offer payload")
		return
	}

	peer, err := rtc.NewPeer(e.opts.WebRTC, e.opts.SessionID, e.emit)
	if err != nil {
		e.logger.Error().Err(err).Msg("webrtc new pc")
		return
	}
	peer.OnICECandidate(e.sendCandidate)

	if err = peer.Start(ctx); err != nil {
		e.logger.Error().Err(err).Msg("webrtc start")
		peer.Close()
		return
	}

	offer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  p.SDP,
	}
	answer, err := peer.ApplyOfferAndCreateAnswer(offer)
	if err != nil {
		e.logger.Error().Err(err).Msg("webrtc apply offer")
		peer.Close()
		return
	}

	e.peerMu.Lock()
	old := e.peer
	e.peer = peer
	e.peerMu.Unlock()
	if old != nil {
		old.Close()
	}

	_ = e.sendJSON(map[string]string{
		"type": "answer",
		"sdp":  answer.SDP,
	})
}

func (e *Engine) handleCandidate(data []byte) {
	type candidatePayload struct {
		Type          string `json:"type"`
		Candidate     string `json:"candidate"`
		SDPMid        string `json:"sdpMid"`
		SDPMLineIndex uint16 `json:"sdpMLineIndex"`
	}
	var p candidatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		e.logger.Error().Err(err).Msg("bad candidate payload")
		return
	}

	cand := webrtc.ICECandidateInit{
		Candidate: p.Candidate,
	}
	if p.SDPMid != "" {
		cand.SDPMid = &p.SDPMid
	}
	cand.SDPMLineIndex = &p.SDPMLineIndex

	e.peerMu.Lock()
	peer := e.peer
	e.peerMu.Unlock()
	if peer == nil {
		e.logger.Warn().Msg("candidate: no media peer")
		return
	}
	if err := peer.AddICECandidate(cand); err != nil {
		e.logger.Error().Err(err).Msg("add ice candidate")
	}
}

func (e *Engine) closePeer() {
	e.peerMu.Lock()
	peer := e.peer
	e.peer = nil
	e.peerMu.Unlock()
	if peer != nil {
		peer.Close()
	}
}
