// Package layout picks the composition mode for the session's video area.
package layout

import "github.com/dkeye/VideoClient/internal/core"

type Mode string

const (
	Gallery           Mode = "gallery"
	SingleFocus       Mode = "single-focus"
	IsolationFallback Mode = "isolation-fallback"
)

// Environment answers the host capability questions the policy depends on.
type Environment struct {
	MultiVideoCapable   bool
	CrossOriginIsolated bool
	GroupSession        bool
}

type Policy interface {
	Select(env Environment) Mode
}

// SimplePolicy prefers gallery, then the isolation fallback for group sessions
// that cannot decode in parallel, then a single focused video.
type SimplePolicy struct{}

func (SimplePolicy) Select(env Environment) Mode {
	return Select(env.MultiVideoCapable, env.CrossOriginIsolated, env.GroupSession)
}

func Select(multiVideoCapable, crossOriginIsolated, isGroupSession bool) Mode {
	switch {
	case multiVideoCapable:
		return Gallery
	case isGroupSession && !crossOriginIsolated:
		return IsolationFallback
	default:
		return SingleFocus
	}
}

// NeedsIsolationFallback reports whether the engine must be initialised with
// per-surface isolation enforced.
func NeedsIsolationFallback(crossOriginIsolated, isGroupSession bool) bool {
	return isGroupSession && !crossOriginIsolated
}

// InitOptions derives the engine init options from the host environment.
func InitOptions(crossOriginIsolated, isGroupSession bool) core.InitOptions {
	return core.InitOptions{
		Language:                 "en-US",
		Region:                   "Global",
		PatchJsMedia:             true,
		EnforceMultipleVideos:    true,
		EnforceVirtualBackground: NeedsIsolationFallback(crossOriginIsolated, isGroupSession),
		StayAwake:                true,
	}
}
