package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"auctionhouse/internal/models"
)

// ErrAuctionSettled is returned by writes that would move a SETTLED auction
// backward. SETTLED is terminal; no store operation may leave it.
var ErrAuctionSettled = errors.New("auction already settled")

// Repository is the persistence boundary for auctions, bids and the
// append-only event log. The store's atomic update semantics on the auction
// status column are the only serialization primitive the engine relies on.
type Repository interface {
	CreateAuction(ctx context.Context, item *models.Auction) error
	// GetAuction loads one auction with its bids and events, newest events last.
	GetAuction(ctx context.Context, id string) (*models.Auction, error)
	ListAuctions(ctx context.Context, params ListAuctionsParams) ([]models.Auction, error)
	// FindAuctionByAsset resolves the most recent auction for a token or
	// domain id; either may be empty.
	FindAuctionByAsset(ctx context.Context, tokenID, domainID string) (*models.Auction, error)
	// ActivateAuction flips an auction to ACTIVE with a fresh reserve price.
	// A SETTLED auction is never reactivated: the call fails with
	// ErrAuctionSettled instead.
	ActivateAuction(ctx context.Context, id string, reservePriceWei decimal.Decimal, txHash *string) error
	// MarkAuctionSettled performs the guarded ACTIVE/DRAFT -> SETTLED
	// transition. It reports false when the auction was already SETTLED, which
	// callers must treat as "somebody else won the race": skip fee capture and
	// scoring. txHash, when non-nil, replaces the stored hash.
	MarkAuctionSettled(ctx context.Context, id string, txHash *string) (bool, error)
	// ListExpiredActiveAuctions returns ACTIVE auctions whose end time is at
	// or before now, bids preloaded.
	ListExpiredActiveAuctions(ctx context.Context, now time.Time) ([]models.Auction, error)

	CreateBid(ctx context.Context, item *models.Bid) error
	ListBidsByAuctionID(ctx context.Context, auctionID string) ([]models.Bid, error)

	// AppendEvent inserts an event log row. Rows are never updated or deleted.
	AppendEvent(ctx context.Context, item *models.EventLog) error
	ListEventsByType(ctx context.Context, auctionID, eventType string) ([]models.EventLog, error)
	CountEventsByType(ctx context.Context, auctionID, eventType string) (int64, error)
}

type ListAuctionsParams struct {
	Limit   int
	Offset  int
	Status  *string
	OrderBy string
	Asc     *bool
}
