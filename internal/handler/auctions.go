package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auctionhouse/internal/models"
	"auctionhouse/internal/pricing"
	"auctionhouse/internal/service"
)

type AuctionHandler struct {
	Service    *service.AuctionService
	Settlement *service.SettlementService
	Expiry     *service.ExpiryService
	Curve      pricing.Curve
	Logger     *zap.Logger
}

func (h *AuctionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/auctions")
	group.GET("", h.list)
	group.POST("", h.create)
	group.POST("/settle-expired", h.settleExpired)
	group.GET("/:id", h.get)
	group.POST("/:id/commit", h.commit)
	group.POST("/:id/reveal", h.reveal)
	group.POST("/:id/predict", h.predict)
	group.POST("/:id/settle", h.settle)
}

// auctionView decorates the stored auction with display-grade fields: the
// reserve in decimal ETH and the decayed current price.
type auctionView struct {
	models.Auction
	ReservePriceEth string        `json:"reservePriceEth"`
	CurrentPrice    pricing.Quote `json:"currentPrice"`
}

func (h *AuctionHandler) view(a *models.Auction, now time.Time) auctionView {
	return auctionView{
		Auction:         *a,
		ReservePriceEth: pricing.FormatEth(a.ReservePriceWei),
		CurrentPrice:    h.Curve.QuoteAuction(a, now),
	}
}

func (h *AuctionHandler) views(items []models.Auction, now time.Time) []auctionView {
	out := make([]auctionView, 0, len(items))
	for i := range items {
		out = append(out, h.view(&items[i], now))
	}
	return out
}

func (h *AuctionHandler) list(c *gin.Context) {
	auctions, err := h.Service.ListAuctions(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, gin.H{"auctions": h.views(auctions, time.Now().UTC())})
}

type createAuctionRequest struct {
	TokenID         string `json:"tokenId" form:"tokenId"`
	DomainID        string `json:"domainId" form:"domainId"`
	ReservePriceEth string `json:"reservePriceEth" form:"reservePriceEth"`
	StartsAt        string `json:"startsAt" form:"startsAt"`
	EndsAt          string `json:"endsAt" form:"endsAt"`
	DecayMode       string `json:"decayMode" form:"decayMode"`
}

func (h *AuctionHandler) create(c *gin.Context) {
	var req createAuctionRequest
	if err := bindFlexible(c, &req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	auction, err := h.Service.CreateAuction(c.Request.Context(), service.CreateAuctionInput{
		TokenID:         req.TokenID,
		DomainID:        req.DomainID,
		ReservePriceEth: req.ReservePriceEth,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		DecayMode:       req.DecayMode,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, gin.H{"auction": h.view(auction, time.Now().UTC())})
}

func (h *AuctionHandler) get(c *gin.Context) {
	auction, err := h.Service.GetAuction(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, gin.H{"auction": h.view(auction, time.Now().UTC())})
}

type commitBidRequest struct {
	Bidder    string `json:"bidder" form:"bidder"`
	AmountEth string `json:"amountEth" form:"amountEth"`
}

func (h *AuctionHandler) commit(c *gin.Context) {
	var req commitBidRequest
	if err := bindFlexible(c, &req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	bid, err := h.Service.CommitBid(c.Request.Context(), service.CommitBidInput{
		AuctionID: c.Param("id"),
		Bidder:    req.Bidder,
		AmountEth: req.AmountEth,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, gin.H{"bid": bid})
}

type revealBidRequest struct {
	Bidder string `json:"bidder" form:"bidder"`
	Proof  string `json:"proof" form:"proof"`
}

func (h *AuctionHandler) reveal(c *gin.Context) {
	var req revealBidRequest
	if err := bindFlexible(c, &req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	err := h.Service.Reveal(c.Request.Context(), service.RevealInput{
		AuctionID: c.Param("id"),
		Bidder:    req.Bidder,
		Proof:     req.Proof,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, nil)
}

type predictRequest struct {
	UserID   string   `json:"userId" form:"userId"`
	PriceEth *float64 `json:"priceEth" form:"priceEth"`
	Time     string   `json:"time" form:"time"`
}

func (h *AuctionHandler) predict(c *gin.Context) {
	var req predictRequest
	if err := bindFlexible(c, &req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	event, err := h.Service.Predict(c.Request.Context(), service.PredictInput{
		AuctionID: c.Param("id"),
		UserID:    req.UserID,
		PriceEth:  req.PriceEth,
		Time:      req.Time,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, gin.H{"prediction": event})
}

type settleRequest struct {
	TxHash string `json:"txHash" form:"txHash"`
}

func (h *AuctionHandler) settle(c *gin.Context) {
	var req settleRequest
	if err := bindFlexible(c, &req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	var txHash *string
	if req.TxHash != "" {
		txHash = &req.TxHash
	}
	result, err := h.Settlement.Settle(c.Request.Context(), c.Param("id"), service.SettleOptions{TxHash: txHash})
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, gin.H{"auction": h.view(result.Auction, time.Now().UTC())})
}

func (h *AuctionHandler) settleExpired(c *gin.Context) {
	settled, err := h.Expiry.RunOnce(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	if h.Logger != nil && len(settled) > 0 {
		h.Logger.Info("manual settle-expired pass", zap.Int("count", len(settled)))
	}
	Ok(c, gin.H{"count": len(settled), "settled": settled})
}
