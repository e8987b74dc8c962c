package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/VideoClient/internal/app/capability"
	"github.com/dkeye/VideoClient/internal/app/geometry"
	"github.com/dkeye/VideoClient/internal/app/render"
	"github.com/dkeye/VideoClient/internal/app/roster"
	"github.com/dkeye/VideoClient/internal/domain"
)

func TestFeedScenarioSpeakerSwap(t *testing.T) {
	caps := capability.NewStore()
	people := roster.NewCache()
	tracker := geometry.NewTracker(surface, domain.DefaultGeometry)
	c, r := attached()
	feed := render.Watch(c, caps, people, tracker)
	defer feed.Stop()

	people.Replace([]domain.Participant{{UserID: 1, VideoOn: true}, {UserID: 2, VideoOn: true}})
	feed.SetActive(1)
	assert.Empty(t, r.calls)

	caps.Dispatch(capability.Set(domain.ChannelVideo, domain.DirectionDecode, true))
	assert.Equal(t, []string{"bind(1,800,600)"}, r.calls)

	feed.SetActive(2)
	assert.Equal(t, []string{"bind(1,800,600)", "unbind(1)", "bind(2,800,600)"}, r.calls)

	tracker.Observe(1024, 576)
	assert.Equal(t, "reposition(2,1024,576)", r.calls[len(r.calls)-1])

	people.Replace([]domain.Participant{{UserID: 1, VideoOn: true}, {UserID: 2, VideoOn: true, DisplayName: "renamed"}})
	assert.Len(t, r.calls, 4)

	people.Replace([]domain.Participant{{UserID: 1, VideoOn: true}, {UserID: 2}})
	assert.Equal(t, "unbind(2)", r.calls[len(r.calls)-1])
}

func TestFeedStopUnsubscribes(t *testing.T) {
	caps := capability.NewStore()
	people := roster.NewCache()
	tracker := geometry.NewTracker(surface, domain.DefaultGeometry)
	c, r := attached()
	feed := render.Watch(c, caps, people, tracker)
	feed.Stop()
	feed.Stop()

	people.Replace([]domain.Participant{{UserID: 1, VideoOn: true}})
	caps.Dispatch(capability.Set(domain.ChannelVideo, domain.DirectionDecode, true))
	assert.Empty(t, r.calls)
}
