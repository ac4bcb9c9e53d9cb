package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TrackView 为当前会话计一次浏览（每个会话只计一次），返回全站浏览次数。
func (a *API) TrackView(c *gin.Context) {
	c.JSON(http.StatusOK, a.views.Track(c.Request.Context(), newViewFlag(c)))
}

// StreamViews 以 Server-Sent Events 推送浏览次数，先发送当前值，之后每次变化推送一次。
func (a *API) StreamViews(c *gin.Context) {
	updates, unsubscribe := a.views.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("views", a.views.Current(c.Request.Context()))
	c.Writer.Flush()

	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			return
		case count, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("views", gin.H{"count": count})
			c.Writer.Flush()
		}
	}
}
