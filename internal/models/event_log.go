package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventBidCommit        = "BID_COMMIT"
	EventBidReveal        = "BID_REVEAL"
	EventPrediction       = "PREDICTION"
	EventPredictionScored = "PREDICTION_SCORED"
	EventListingCreated   = "LISTING_CREATED"
	EventAuctionSettled   = "AUCTION_SETTLED"
	EventFeeCaptured      = "FEE_CAPTURED"
	EventAutoSettled      = "AUTO_SETTLED"
)

// EventLog is the append-only audit record per auction. Rows are never
// updated or deleted; predictions and their scores live here as typed rows
// rather than in dedicated tables.
type EventLog struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	AuctionID string `gorm:"type:varchar(36);not null;index" json:"auctionId"`

	Type    string         `gorm:"type:varchar(30);not null;index" json:"type"`
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	TxHash  *string        `gorm:"type:varchar(100)" json:"txHash"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"createdAt"`
}

func (EventLog) TableName() string {
	return "event_logs"
}
