package handler

import (
	"github.com/gin-gonic/gin"

	"auctionhouse/internal/client/subgraph"
)

type SubgraphHandler struct {
	Client *subgraph.Client
}

func (h *SubgraphHandler) Register(r *gin.Engine) {
	r.GET("/api/subgraph/domains", h.domains)
}

func (h *SubgraphHandler) domains(c *gin.Context) {
	domains, err := h.Client.ListDomains(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, gin.H{"domains": domains})
}
