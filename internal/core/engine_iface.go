package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/VideoClient/internal/domain"
)

var (
	ErrNotJoined = errors.New("session not joined")
	ErrClosed    = errors.New("engine closed")
)

// JoinError is a rejected join; Reason is what the engine reported.
type JoinError struct {
	Reason string
}

func (e *JoinError) Error() string { return fmt.Sprintf("join rejected: %s", e.Reason) }

// InitOptions are passed to the engine before joining.
type InitOptions struct {
	Language                 string `json:"language"`
	Region                   string `json:"region"`
	PatchJsMedia             bool   `json:"patchJsMedia"`
	EnforceMultipleVideos    bool   `json:"enforceMultipleVideos"`
	EnforceVirtualBackground bool   `json:"enforceVirtualBackground"`
	StayAwake                bool   `json:"stayAwake"`
}

// SessionEngine is the external collaborator that owns transport, codecs and devices.
// Events is closed when the engine shuts down.
type SessionEngine interface {
	Init(ctx context.Context, opts InitOptions) error
	Join(ctx context.Context, info domain.SessionInfo) error
	Leave(ctx context.Context, end bool) error
	// MediaStream returns nil until a join has succeeded.
	MediaStream() MediaStream
	Events() <-chan Notification
	Close() error
}
