package daemon

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UCSIG/attiny85-time-switch/pkg/version"
)

func getConfig(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, operatingInfo(conf))
}

func getState(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, orch.Snapshot())
}

func getCalibration(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, calInfo)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// getEvents streams controller events as SSE until the client goes away.
func getEvents(c *gin.Context) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
