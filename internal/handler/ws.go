package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clipcap/log"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// local tool, same-machine clients only
		return true
	},
}

const wsWriteWait = 10 * time.Second

// TaskEvents streams a task's progress events over a websocket until the
// client disconnects. Events arrive in milestone order; the connection stays
// open after completion so late watchers still see the final event flow.
func (h *Handler) TaskEvents(c *gin.Context) {
	taskId := c.Query("taskId")
	if taskId == "" {
		c.String(http.StatusBadRequest, "taskId is required")
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("TaskEvents upgrade err", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := h.Service.Hub.Subscribe(taskId)
	defer cancel()

	// drain client frames so close/ping handling keeps working
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.GetLogger().Warn("TaskEvents write err", zap.String("taskId", taskId), zap.Error(err))
				return
			}
		case <-done:
			return
		}
	}
}
