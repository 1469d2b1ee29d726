package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auctionhouse/internal/service"
)

type ListingHandler struct {
	Service *service.AuctionService
	Auction *AuctionHandler
}

func (h *ListingHandler) Register(r *gin.Engine) {
	r.POST("/api/listing", h.create)
}

type listingRequest struct {
	AuctionID       string `json:"auctionId" form:"auctionId"`
	TokenID         string `json:"tokenId" form:"tokenId"`
	DomainID        string `json:"domainId" form:"domainId"`
	ReservePriceEth string `json:"reservePriceEth" form:"reservePriceEth"`
}

func (h *ListingHandler) create(c *gin.Context) {
	var req listingRequest
	if err := bindFlexible(c, &req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	result, err := h.Service.Activate(c.Request.Context(), service.ListingInput{
		AuctionID:       req.AuctionID,
		TokenID:         req.TokenID,
		DomainID:        req.DomainID,
		ReservePriceEth: req.ReservePriceEth,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, gin.H{
		"auction":  h.Auction.view(result.Auction, time.Now().UTC()),
		"listing":  result.Listing,
		"prepared": result.Prepared,
	})
}
