package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBindFlexibleJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/auctions", strings.NewReader(`{"tokenId":"7","reservePriceEth":"1.5"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req createAuctionRequest
	if err := bindFlexible(c, &req); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if req.TokenID != "7" || req.ReservePriceEth != "1.5" {
		t.Fatalf("bound = %+v", req)
	}
}

func TestBindFlexibleForm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/auctions", strings.NewReader("tokenId=7&reservePriceEth=1.5"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var req createAuctionRequest
	if err := bindFlexible(c, &req); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if req.TokenID != "7" || req.ReservePriceEth != "1.5" {
		t.Fatalf("bound = %+v", req)
	}
}

func TestBindFlexibleEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/auctions/a1/settle", nil)

	var req settleRequest
	if err := bindFlexible(c, &req); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if req.TxHash != "" {
		t.Fatalf("expected zero value, got %+v", req)
	}
}

func TestBindFlexibleBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/auctions", strings.NewReader(`{"tokenId":`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req createAuctionRequest
	if err := bindFlexible(c, &req); err == nil {
		t.Fatalf("expected error for truncated JSON")
	}
}
