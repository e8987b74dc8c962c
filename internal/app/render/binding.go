// Package render decides which participant's video is drawn on the active-video surface.
package render

import (
	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
)

// Binding is what is currently rendered where. A zero UserID means nothing is bound.
type Binding struct {
	UserID    domain.UserID    `json:"userId"`
	Surface   core.Surface     `json:"surface"`
	Placement domain.Placement `json:"placement"`
}

func (b Binding) Bound() bool { return b.UserID != 0 }

type Op string

const (
	OpBind       Op = "bind"
	OpUnbind     Op = "unbind"
	OpReposition Op = "reposition"
)

// Command is one render operation that was issued to the stream.
type Command struct {
	Op        Op
	UserID    domain.UserID
	Placement domain.Placement
}

// Input is everything one evaluation cycle looks at.
type Input struct {
	Active           *domain.Participant
	DecodeReady      bool
	Geometry         domain.Geometry
	PreviousGeometry domain.Geometry
}
