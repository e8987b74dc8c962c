package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/VideoClient/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	sess Session
}

type surfaceRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type leaveRequest struct {
	End bool `json:"end"`
}

func (h *handlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.sess.Status())
}

func (h *handlers) roster(c *gin.Context) {
	st := h.sess.Status()
	c.JSON(http.StatusOK, gin.H{
		"activeUserId": st.ActiveUserID,
		"participants": st.Participants,
	})
}

func (h *handlers) surface(c *gin.Context) {
	var req surfaceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Width <= 0 || req.Height <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid surface size"})
		return
	}
	if err := h.sess.ObserveSurface(c.Request.Context(), req.Width, req.Height); err != nil {
		writeSessionError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *handlers) leave(c *gin.Context) {
	var req leaveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
	}
	log.Info().
		Str("module", "adapters.http").
		Str("viewer", c.GetString(viewerKey)).
		Bool("end", req.End).
		Msg("leave requested")
	if err := h.sess.Leave(c.Request.Context(), req.End); err != nil {
		writeSessionError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNotJoined):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Msg("session request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
