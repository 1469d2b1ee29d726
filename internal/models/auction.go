package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AuctionStatusDraft   = "DRAFT"
	AuctionStatusActive  = "ACTIVE"
	AuctionStatusSettled = "SETTLED"
)

const (
	DecayModeLinear      = "linear"
	DecayModeExponential = "exponential"
	DecayModeSigmoid     = "sigmoid"
)

// Auction is a Dutch-auction listing for a tokenized domain. Status moves
// DRAFT -> ACTIVE -> SETTLED and never backward; SETTLED is terminal.
type Auction struct {
	ID       string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	TokenID  *string `gorm:"type:varchar(100);index" json:"tokenId"`
	DomainID *string `gorm:"type:varchar(100);index" json:"domainId"`

	// Wei, arbitrary precision. numeric(78,0) covers the full uint256 range.
	ReservePriceWei decimal.Decimal `gorm:"type:numeric(78,0);not null" json:"reservePriceWei"`

	Status    string     `gorm:"type:varchar(10);not null;default:'DRAFT';index" json:"status"`
	StartsAt  *time.Time `gorm:"type:timestamptz" json:"startsAt"`
	EndsAt    *time.Time `gorm:"type:timestamptz;index" json:"endsAt"`
	DecayMode *string    `gorm:"type:varchar(20)" json:"decayMode"`
	TxHash    *string    `gorm:"type:varchar(100)" json:"txHash"`

	Bids   []Bid      `gorm:"foreignKey:AuctionID" json:"bids,omitempty"`
	Events []EventLog `gorm:"foreignKey:AuctionID" json:"events,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updatedAt"`
}

func (Auction) TableName() string {
	return "auctions"
}
