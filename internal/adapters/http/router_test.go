package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkeye/VideoClient/internal/app/orch"
	"github.com/dkeye/VideoClient/internal/config"
	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	status   orch.Status
	resized  []domain.Geometry
	leaves   []bool
	leaveErr error
}

func (f *fakeSession) Status() orch.Status { return f.status }

func (f *fakeSession) ObserveSurface(_ context.Context, w, h int) error {
	f.resized = append(f.resized, domain.Geometry{Width: w, Height: h})
	return nil
}

func (f *fakeSession) Leave(_ context.Context, end bool) error {
	f.leaves = append(f.leaves, end)
	return f.leaveErr
}

func setup(t *testing.T) (*fakeSession, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sess := &fakeSession{status: orch.Status{
		SessionID:    "s1",
		Topic:        "standup",
		ActiveUserID: 7,
		Participants: []domain.Participant{{UserID: 7, DisplayName: "ann", VideoOn: true}},
	}}
	return sess, SetupRouter(&config.Config{Mode: "test", Secret: "secret"}, sess)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatus(t *testing.T) {
	_, r := setup(t)
	w := do(r, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got orch.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "standup", got.Topic)
	assert.Equal(t, domain.UserID(7), got.ActiveUserID)
	assert.NotEmpty(t, w.Result().Cookies(), "viewer session cookie")
}

func TestRoster(t *testing.T) {
	_, r := setup(t)
	w := do(r, http.MethodGet, "/api/roster", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		ActiveUserID domain.UserID        `json:"activeUserId"`
		Participants []domain.Participant `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.UserID(7), got.ActiveUserID)
	require.Len(t, got.Participants, 1)
	assert.True(t, got.Participants[0].VideoOn)
}

func TestSurface(t *testing.T) {
	sess, r := setup(t)

	assert.Equal(t, http.StatusAccepted, do(r, http.MethodPost, "/api/surface", `{"width":1280,"height":720}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/surface", `{"width":0,"height":720}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/surface", `nope`).Code)
	assert.Equal(t, []domain.Geometry{{Width: 1280, Height: 720}}, sess.resized)
}

func TestLeave(t *testing.T) {
	sess, r := setup(t)

	assert.Equal(t, http.StatusAccepted, do(r, http.MethodPost, "/api/leave", "").Code)
	assert.Equal(t, http.StatusAccepted, do(r, http.MethodPost, "/api/leave", `{"end":true}`).Code)
	assert.Equal(t, []bool{false, true}, sess.leaves)

	sess.leaveErr = core.ErrNotJoined
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/api/leave", "").Code)
}
