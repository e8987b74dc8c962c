package orch_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/VideoClient/internal/app/connection"
	"github.com/dkeye/VideoClient/internal/app/layout"
	"github.com/dkeye/VideoClient/internal/app/orch"
	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
)

type fakeStream struct {
	mu       sync.Mutex
	calls    []string
	multi    bool
	activeID domain.UserID
}

func (s *fakeStream) record(format string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
	return nil
}

func (s *fakeStream) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeStream) RenderVideo(_ core.Surface, u domain.UserID, p domain.Placement, _ core.VideoQuality) error {
	return s.record("bind(%d,%d,%d)", u, p.Width, p.Height)
}

func (s *fakeStream) StopRenderVideo(_ core.Surface, u domain.UserID) error {
	return s.record("unbind(%d)", u)
}

func (s *fakeStream) AdjustRenderedVideoPosition(_ core.Surface, u domain.UserID, p domain.Placement) error {
	return s.record("reposition(%d,%d,%d)", u, p.Width, p.Height)
}

func (s *fakeStream) UpdateVideoCanvasDimension(_ core.Surface, g domain.Geometry) error {
	return s.record("canvas(%d,%d)", g.Width, g.Height)
}

func (s *fakeStream) IsSupportMultipleVideos() bool { return s.multi }
func (s *fakeStream) ActiveVideoID() domain.UserID  { return s.activeID }

type fakeEngine struct {
	events   chan core.Notification
	joinErr  error
	joinGate chan struct{}
	stream   *fakeStream

	mu       sync.Mutex
	joined   bool
	initOpts core.InitOptions
	left     []bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{events: make(chan core.Notification, 32), stream: &fakeStream{}}
}

func (e *fakeEngine) Init(_ context.Context, opts core.InitOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initOpts = opts
	return nil
}

func (e *fakeEngine) Join(context.Context, domain.SessionInfo) error {
	if e.joinGate != nil {
		<-e.joinGate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.joinErr != nil {
		return e.joinErr
	}
	e.joined = true
	return nil
}

func (e *fakeEngine) Leave(_ context.Context, end bool) error {
	e.mu.Lock()
	e.left = append(e.left, end)
	e.mu.Unlock()
	e.events <- core.ConnectionChange{State: core.StateClosed}
	return nil
}

func (e *fakeEngine) MediaStream() core.MediaStream {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.joined {
		return nil
	}
	return e.stream
}

func (e *fakeEngine) Events() <-chan core.Notification { return e.events }
func (e *fakeEngine) Close() error                     { close(e.events); return nil }

type toaster struct {
	mu       sync.Mutex
	errors   []string
	warnings []string
}

func (t *toaster) Error(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors = append(t.errors, msg)
}

func (t *toaster) Warning(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.warnings = append(t.warnings, msg)
}

type harness struct {
	o       *orch.Orchestrator
	engine  *fakeEngine
	toast   *toaster
	closes  *counter
	cancel  context.CancelFunc
	runDone chan error
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() { c.mu.Lock(); c.n++; c.mu.Unlock() }
func (c *counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func start(t *testing.T, engine *fakeEngine, info domain.SessionInfo) *harness {
	t.Helper()
	h := &harness{engine: engine, toast: &toaster{}, closes: &counter{}, runDone: make(chan error, 1)}
	h.o = orch.New(orch.Options{
		Info:    info,
		Surface: "video-canvas",
		Quality: core.Video360P,
	}, engine, h.toast, h.closes.inc)
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.runDone <- h.o.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.runDone
	})
	return h
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

func TestJoinBindAndSwap(t *testing.T) {
	engine := newFakeEngine()
	h := start(t, engine, domain.SessionInfo{Topic: "standup", Name: "ann"})

	eventually(t, func() bool { return h.o.Status().Layout != "" }, "joined")
	assert.Equal(t, connection.PhaseConnecting, h.o.Status().Connection.Phase)
	engine.events <- core.ConnectionChange{State: core.StateConnected}
	engine.events <- core.RosterChange{Participants: []domain.Participant{{UserID: 1, VideoOn: true}, {UserID: 2, VideoOn: true}}}
	engine.events <- core.ActiveVideoChange{UserID: 1}
	engine.events <- core.MediaCapabilityChange{Channel: domain.ChannelVideo, Direction: domain.DirectionDecode, Result: "success"}

	eventually(t, func() bool { return h.o.Status().Binding.UserID == 1 }, "bound to 1")
	engine.events <- core.ActiveVideoChange{UserID: 2}
	eventually(t, func() bool { return h.o.Status().Binding.UserID == 2 }, "bound to 2")

	assert.Equal(t, []string{"bind(1,800,600)", "unbind(1)", "bind(2,800,600)"}, engine.stream.Calls())
	st := h.o.Status()
	assert.Equal(t, layout.SingleFocus, st.Layout)
	assert.NotEmpty(t, st.SessionID)
	assert.Len(t, st.Participants, 2)
	assert.False(t, st.Connection.Loading)
}

func TestResizeRepositions(t *testing.T) {
	engine := newFakeEngine()
	h := start(t, engine, domain.SessionInfo{Topic: "t"})

	engine.events <- core.ConnectionChange{State: core.StateConnected}
	engine.events <- core.RosterChange{Participants: []domain.Participant{{UserID: 7, VideoOn: true}}}
	engine.events <- core.ActiveVideoChange{UserID: 7}
	engine.events <- core.MediaCapabilityChange{Channel: domain.ChannelVideo, Direction: domain.DirectionDecode, Result: "success"}
	eventually(t, func() bool { return h.o.Status().Binding.UserID == 7 }, "bound")

	require.NoError(t, h.o.ObserveSurface(context.Background(), 1280, 720))
	require.NoError(t, h.o.ObserveSurface(context.Background(), 1280, 720))
	eventually(t, func() bool { return h.o.Status().Geometry.Width == 1280 }, "resized")

	assert.Equal(t, []string{"bind(7,800,600)", "canvas(1280,720)", "reposition(7,1280,720)"}, engine.stream.Calls())
}

func TestHostEndedClosesOnceAndUnbinds(t *testing.T) {
	engine := newFakeEngine()
	h := start(t, engine, domain.SessionInfo{Topic: "t"})

	engine.events <- core.ConnectionChange{State: core.StateConnected}
	engine.events <- core.RosterChange{Participants: []domain.Participant{{UserID: 3, VideoOn: true}}}
	engine.events <- core.ActiveVideoChange{UserID: 3}
	engine.events <- core.MediaCapabilityChange{Channel: domain.ChannelVideo, Direction: domain.DirectionDecode, Result: "success"}
	eventually(t, func() bool { return h.o.Status().Binding.UserID == 3 }, "bound")

	engine.events <- core.ConnectionChange{State: core.StateClosed, Reason: core.ReasonEndedByHost}
	engine.events <- core.ConnectionChange{State: core.StateClosed, Reason: core.ReasonEndedByHost}
	eventually(t, func() bool { return h.closes.get() == 1 && h.o.Status().Binding.UserID == 0 }, "closed")

	st := h.o.Status()
	assert.Equal(t, domain.Capabilities{}, st.Capabilities)
	assert.Equal(t, connection.PhaseClosed, st.Connection.Phase)
	assert.Equal(t, "unbind(3)", engine.stream.Calls()[len(engine.stream.Calls())-1])
	eventually(t, func() bool {
		h.toast.mu.Lock()
		defer h.toast.mu.Unlock()
		return len(h.toast.warnings) == 2
	}, "warned")
	assert.Equal(t, 1, h.closes.get())
}

func TestJoinRejected(t *testing.T) {
	engine := newFakeEngine()
	engine.joinErr = &core.JoinError{Reason: "Invalid signature"}
	h := start(t, engine, domain.SessionInfo{Topic: "t"})

	eventually(t, func() bool { return h.closes.get() == 1 }, "session closed")
	h.toast.mu.Lock()
	assert.Equal(t, []string{"Invalid signature"}, h.toast.errors)
	h.toast.mu.Unlock()
	assert.False(t, h.o.Status().Connection.Loading)
}

func TestGroupSessionInitOptions(t *testing.T) {
	engine := newFakeEngine()
	h := start(t, engine, domain.SessionInfo{Topic: "t", GroupSession: true})
	eventually(t, func() bool { return h.o.Status().Layout != "" }, "layout chosen")

	engine.mu.Lock()
	assert.True(t, engine.initOpts.EnforceVirtualBackground)
	engine.mu.Unlock()
	assert.Equal(t, layout.IsolationFallback, h.o.Status().Layout)
}

func TestInitialActiveVideoSeededFromStream(t *testing.T) {
	engine := newFakeEngine()
	engine.stream.activeID = 9
	engine.stream.multi = true
	h := start(t, engine, domain.SessionInfo{Topic: "t"})

	engine.events <- core.RosterChange{Participants: []domain.Participant{{UserID: 9, VideoOn: true}}}
	engine.events <- core.MediaCapabilityChange{Channel: domain.ChannelVideo, Direction: domain.DirectionDecode, Result: "success"}
	engine.events <- core.ConnectionChange{State: core.StateConnected}

	eventually(t, func() bool { return h.o.Status().Binding.UserID == 9 }, "seeded")
	assert.Equal(t, layout.Gallery, h.o.Status().Layout)
}

func TestLeaveAndTeardown(t *testing.T) {
	engine := newFakeEngine()
	h := start(t, engine, domain.SessionInfo{Topic: "t"})
	engine.events <- core.ConnectionChange{State: core.StateConnected}
	eventually(t, func() bool { return h.o.Status().Connection.Phase == connection.PhaseConnected }, "connected")

	require.NoError(t, h.o.Leave(context.Background(), true))
	eventually(t, func() bool { return h.o.Status().Connection.Phase == connection.PhaseClosed }, "closed")
	engine.mu.Lock()
	assert.Equal(t, []bool{true}, engine.left)
	engine.mu.Unlock()

	require.NoError(t, engine.Close())
	assert.ErrorIs(t, <-h.runDone, core.ErrClosed)
	h.runDone <- nil

	h.o.Teardown()
	assert.True(t, h.o.Status().TornDown)
	assert.ErrorIs(t, h.o.Post(context.Background(), func() {}), core.ErrClosed)
}

func TestNoRenderBeforeConnectedAfterFailover(t *testing.T) {
	engine := newFakeEngine()
	engine.joinGate = make(chan struct{})
	h := start(t, engine, domain.SessionInfo{Topic: "t"})

	engine.events <- core.ConnectionChange{State: core.StateReconnecting, Reason: core.ReasonFailover}
	eventually(t, func() bool { return h.o.Status().Connection.FailoverInProgress }, "failover")
	close(engine.joinGate)
	eventually(t, func() bool { return h.o.Status().Layout != "" }, "joined")

	engine.events <- core.RosterChange{Participants: []domain.Participant{{UserID: 1, VideoOn: true}}}
	engine.events <- core.ActiveVideoChange{UserID: 1}
	engine.events <- core.MediaCapabilityChange{Channel: domain.ChannelVideo, Direction: domain.DirectionDecode, Result: "success"}
	eventually(t, func() bool {
		st := h.o.Status()
		return st.ActiveUserID == 1 && st.Capabilities.Video.Decode && len(st.Participants) == 1
	}, "state applied")

	st := h.o.Status()
	assert.Equal(t, connection.PhaseConnecting, st.Connection.Phase)
	assert.True(t, st.Connection.Loading)
	assert.True(t, st.Connection.FailoverInProgress)
	assert.Empty(t, engine.stream.Calls())

	engine.events <- core.ConnectionChange{State: core.StateConnected}
	eventually(t, func() bool { return h.o.Status().Binding.UserID == 1 }, "bound after connected")
	assert.Equal(t, []string{"bind(1,800,600)"}, engine.stream.Calls())
	assert.False(t, h.o.Status().Connection.Loading)
}

func TestLeaveIsProcessedWhileRunning(t *testing.T) {
	engine := newFakeEngine()
	h := start(t, engine, domain.SessionInfo{Topic: "t"})
	engine.events <- core.ConnectionChange{State: core.StateConnected}
	engine.events <- core.RosterChange{Participants: []domain.Participant{{UserID: 4, VideoOn: true}}}
	engine.events <- core.ActiveVideoChange{UserID: 4}
	engine.events <- core.MediaCapabilityChange{Channel: domain.ChannelVideo, Direction: domain.DirectionDecode, Result: "success"}
	eventually(t, func() bool { return h.o.Status().Binding.UserID == 4 }, "bound")

	select {
	case <-h.o.Closed():
		t.Fatal("closed before leave")
	default:
	}

	require.NoError(t, h.o.Leave(context.Background(), false))
	select {
	case <-h.o.Closed():
	case <-time.After(2 * time.Second):
		t.Fatal("leave not processed")
	}

	st := h.o.Status()
	assert.False(t, st.TornDown)
	assert.Equal(t, connection.PhaseClosed, st.Connection.Phase)
	assert.Equal(t, "unbind(4)", engine.stream.Calls()[len(engine.stream.Calls())-1])
}
