package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bid is a committed bid. Rows are immutable once created; reveals are
// recorded separately as BID_REVEAL events.
type Bid struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	AuctionID string `gorm:"type:varchar(36);not null;index" json:"auctionId"`

	// Lower-cased address string.
	Bidder    string          `gorm:"type:varchar(64);not null" json:"bidder"`
	AmountWei decimal.Decimal `gorm:"type:numeric(78,0);not null" json:"amountWei"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"createdAt"`
}

func (Bid) TableName() string {
	return "bids"
}
