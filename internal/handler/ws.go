package handler

import (
	"github.com/gin-gonic/gin"

	"auctionhouse/internal/notify"
)

type WSHandler struct {
	Hub *notify.Hub
}

func (h *WSHandler) Register(r *gin.Engine) {
	r.GET("/api/ws", func(c *gin.Context) {
		h.Hub.Serve(c.Writer, c.Request)
	})
}
