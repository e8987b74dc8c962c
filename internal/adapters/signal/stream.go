package signal

import (
	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
)

// mediaStream forwards render commands to the bridge. Commands are not
// acknowledged synchronously; only a local send failure is returned.
type mediaStream struct {
	engine   *Engine
	multi    bool
	activeID domain.UserID
}

func placementPayload(s core.Surface, user domain.UserID, p domain.Placement) map[string]any {
	return map[string]any{
		"surface": s,
		"userId":  user,
		"width":   p.Width,
		"height":  p.Height,
		"x":       p.X,
		"y":       p.Y,
	}
}

func (m *mediaStream) RenderVideo(s core.Surface, user domain.UserID, p domain.Placement, q core.VideoQuality) error {
	payload := placementPayload(s, user, p)
	payload["quality"] = q.String()
	return m.engine.send("render-video", "", payload)
}

func (m *mediaStream) StopRenderVideo(s core.Surface, user domain.UserID) error {
	return m.engine.send("stop-render-video", "", map[string]any{
		"surface": s,
		"userId":  user,
	})
}

func (m *mediaStream) AdjustRenderedVideoPosition(s core.Surface, user domain.UserID, p domain.Placement) error {
	return m.engine.send("adjust-render-position", "", placementPayload(s, user, p))
}

func (m *mediaStream) UpdateVideoCanvasDimension(s core.Surface, g domain.Geometry) error {
	return m.engine.send("update-canvas-dimension", "", map[string]any{
		"surface": s,
		"width":   g.Width,
		"height":  g.Height,
	})
}

func (m *mediaStream) IsSupportMultipleVideos() bool { return m.multi }

func (m *mediaStream) ActiveVideoID() domain.UserID { return m.activeID }
