// Package connection drives the session lifecycle and the loading UI derived from it.
package connection

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/VideoClient/internal/app/capability"
	"github.com/dkeye/VideoClient/internal/app/observe"
	"github.com/dkeye/VideoClient/internal/core"
)

type Phase string

const (
	PhaseClosed     Phase = "closed"
	PhaseConnecting Phase = "connecting"
	PhaseConnected  Phase = "connected"
)

// Loading texts shown while the session is not usable.
const (
	TextJoining      = "Joining the session..."
	TextFailover     = "Session disconnected, trying to reconnect"
	TextBackToMain   = "Returning to main session..."
	TextReconnecting = "Reconnecting..."
	TextHostEnded    = "This meeting has been ended by host"
)

// State is the user-facing view of the connection.
type State struct {
	Phase              Phase  `json:"phase"`
	Loading            bool   `json:"loading"`
	StatusText         string `json:"statusText"`
	FailoverInProgress bool   `json:"failoverInProgress"`
}

// Transition is published after every accepted connection change. Change is
// zero for updates the client makes on its own, such as a finished join.
type Transition struct {
	From   State
	To     State
	Change core.ConnectionChange
}

// Machine is owned by the session loop goroutine.
type Machine struct {
	state     State
	caps      *capability.Store
	toast     core.Toaster
	onClose   core.SessionCloseFunc
	closeOnce sync.Once
	listeners observe.Listeners[Transition]
}

func NewMachine(caps *capability.Store, toast core.Toaster, onClose core.SessionCloseFunc) *Machine {
	return &Machine{
		state:   State{Phase: PhaseClosed},
		caps:    caps,
		toast:   toast,
		onClose: onClose,
	}
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Subscribe(fn func(Transition)) func() {
	return m.listeners.Subscribe(fn)
}

// BeginJoin enters the loading state for the initial join.
func (m *Machine) BeginJoin() {
	m.set(State{Phase: PhaseConnecting, Loading: true, StatusText: TextJoining}, core.ConnectionChange{State: core.StateConnecting})
}

// JoinSucceeded clears loading once the engine accepted the join. The phase
// only moves to connected on the engine's own Connected notification, and a
// failover that started meanwhile keeps its loading text.
func (m *Machine) JoinSucceeded() {
	if m.state.FailoverInProgress {
		log.Info().Str("module", "app.connection").Msg("joined during failover, loading kept")
		return
	}
	next := m.state
	next.Loading = false
	next.StatusText = ""
	m.set(next, core.ConnectionChange{})
}

// JoinFailed reports a rejected join. It is not retried here.
func (m *Machine) JoinFailed(reason string) {
	log.Error().Str("module", "app.connection").Str("reason", reason).Msg("join failed")
	m.toast.Error(reason)
	m.set(State{Phase: PhaseClosed}, core.ConnectionChange{State: core.StateClosed, Reason: reason})
	m.closeSession()
}

// Handle applies one connection-change notification.
func (m *Machine) Handle(ch core.ConnectionChange) {
	switch ch.State {
	case core.StateConnecting:
		next := m.state
		next.Phase = PhaseConnecting
		m.set(next, ch)
	case core.StateReconnecting:
		if m.state.Phase == PhaseClosed {
			log.Warn().Str("module", "app.connection").Str("reason", ch.Reason).Msg("reconnecting while closed, ignored")
			return
		}
		m.set(State{
			Phase:              PhaseConnecting,
			Loading:            true,
			StatusText:         reconnectText(ch),
			FailoverInProgress: true,
		}, ch)
	case core.StateConnected:
		next := m.state
		next.Phase = PhaseConnected
		if next.FailoverInProgress {
			next.Loading = false
			next.StatusText = ""
			next.FailoverInProgress = false
		}
		m.set(next, ch)
	case core.StateClosed:
		m.caps.Dispatch(capability.Reset)
		m.set(State{Phase: PhaseClosed}, ch)
		if ch.Reason == core.ReasonEndedByHost {
			m.toast.Warning(TextHostEnded)
			m.closeSession()
		}
	default:
		log.Warn().Str("module", "app.connection").Str("state", string(ch.State)).Msg("unknown connection state")
	}
}

func (m *Machine) set(next State, ch core.ConnectionChange) {
	prev := m.state
	m.state = next
	log.Info().
		Str("module", "app.connection").
		Str("from", string(prev.Phase)).
		Str("to", string(next.Phase)).
		Str("reason", ch.Reason).
		Bool("loading", next.Loading).
		Msg("connection transition")
	m.listeners.Notify(Transition{From: prev, To: next, Change: ch})
}

func (m *Machine) closeSession() {
	m.closeOnce.Do(func() {
		if m.onClose != nil {
			m.onClose()
		}
	})
}

func reconnectText(ch core.ConnectionChange) string {
	switch ch.Reason {
	case core.ReasonFailover:
		return TextFailover
	case core.ReasonJoinSubsession, core.ReasonMoveToSubsession:
		return "Joining " + ch.SubsessionName + "..."
	case core.ReasonBackToMainSession:
		return TextBackToMain
	default:
		return TextReconnecting
	}
}
