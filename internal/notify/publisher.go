package notify

import "context"

// Actions carried on the live update channel.
const (
	ActionListed              = "listed"
	ActionBidCommit           = "bid_commit"
	ActionRevealed            = "revealed"
	ActionPredictionSubmitted = "prediction_submitted"
	ActionSettled             = "settled"
	ActionPredictionScored    = "prediction_scored"
)

// Event is one state-change notification. Delivery is best-effort and
// unordered across subscribers; clients that miss an event catch up on their
// next poll.
type Event struct {
	AuctionID string         `json:"auctionId"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
}

// Publisher fans out state-change events to live observers. Implementations
// must never block the caller and must never surface delivery failures.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Noop is the Publisher for contexts without live subscribers.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
