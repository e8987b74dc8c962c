package core

import (
	"fmt"

	"github.com/dkeye/VideoClient/internal/domain"
)

// Surface names a rendering surface (a video canvas). Empty means unavailable.
type Surface string

// VideoQuality is the resolution hint passed with a render command.
type VideoQuality int

const (
	Video90P VideoQuality = iota
	Video180P
	Video360P
	Video720P
	Video1080P
)

var qualityNames = map[string]VideoQuality{
	"90p":   Video90P,
	"180p":  Video180P,
	"360p":  Video360P,
	"720p":  Video720P,
	"1080p": Video1080P,
}

// ParseVideoQuality accepts "90p".."1080p".
func ParseVideoQuality(s string) (VideoQuality, error) {
	q, ok := qualityNames[s]
	if !ok {
		return Video360P, fmt.Errorf("unknown video quality %q", s)
	}
	return q, nil
}

func (q VideoQuality) String() string {
	for name, v := range qualityNames {
		if v == q {
			return name
		}
	}
	return "unknown"
}

// Renderer draws decoded participant video onto surfaces.
type Renderer interface {
	RenderVideo(s Surface, user domain.UserID, p domain.Placement, q VideoQuality) error
	StopRenderVideo(s Surface, user domain.UserID) error
	AdjustRenderedVideoPosition(s Surface, user domain.UserID, p domain.Placement) error
}

// CanvasResizer is told about container size changes of a surface.
type CanvasResizer interface {
	UpdateVideoCanvasDimension(s Surface, g domain.Geometry) error
}

// MediaStream is the live media handle published once the session is joined.
type MediaStream interface {
	Renderer
	CanvasResizer
	IsSupportMultipleVideos() bool
	ActiveVideoID() domain.UserID
}
