package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"auctionhouse/internal/config"
	"auctionhouse/internal/models"
	"auctionhouse/internal/notify"
	"auctionhouse/internal/pricing"
	"auctionhouse/internal/repository"
)

// SettlementService drives the settle pipeline in a fixed order: guarded
// status flip, settle event, fee capture, prediction scoring, notifications.
// The status flip is the serialization point; re-settling an already SETTLED
// auction is a no-op for fees and scores.
type SettlementService struct {
	Repo   repository.Repository
	Fees   config.FeesConfig
	Notify notify.Publisher
	Logger *zap.Logger

	// Clock is overridable in tests; defaults to time.Now UTC.
	Clock func() time.Time
}

type SettleOptions struct {
	TxHash *string
	// Auto marks a scheduler-driven settlement and appends the AUTO_SETTLED
	// marker alongside AUCTION_SETTLED.
	Auto bool
}

type SettleResult struct {
	Auction *models.Auction
	// Settled reports whether this call won the transition and ran fee
	// capture and scoring. False means the auction was already SETTLED.
	Settled bool
}

type feeCapturedPayload struct {
	FeeBps         int64  `json:"feeBps"`
	PoolBps        int64  `json:"poolBps"`
	SettlePriceWei string `json:"settlePriceWei"`
	FeeWei         string `json:"feeWei"`
	PoolWei        string `json:"poolWei"`
}

func (s *SettlementService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

func (s *SettlementService) feeBps() int64 {
	if s.Fees.FeeBps > 0 {
		return s.Fees.FeeBps
	}
	return 300
}

func (s *SettlementService) poolBps() int64 {
	if s.Fees.PoolBps > 0 {
		return s.Fees.PoolBps
	}
	return 2000
}

// Settle runs the settlement pipeline for one auction. Storage failures on
// primary writes abort and surface; scoring failures are logged and swallowed
// so a scoring bug never blocks settlement.
func (s *SettlementService) Settle(ctx context.Context, auctionID string, opts SettleOptions) (*SettleResult, error) {
	won, err := s.Repo.MarkAuctionSettled(ctx, auctionID, opts.TxHash)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("auction %s: %w", auctionID, ErrNotFound)
		}
		return nil, fmt.Errorf("mark settled: %w", err)
	}
	if !won {
		// Lost the race (or a repeat call): whoever flipped the status owns
		// fee capture and scoring.
		if s.Logger != nil {
			s.Logger.Info("auction already settled, skipping fee capture", zap.String("auction_id", auctionID))
		}
		auction, err := s.Repo.GetAuction(ctx, auctionID)
		if err != nil {
			if isRecordNotFound(err) {
				return nil, fmt.Errorf("auction %s: %w", auctionID, ErrNotFound)
			}
			return nil, err
		}
		return &SettleResult{Auction: auction, Settled: false}, nil
	}

	now := s.now()

	settledEvent := &models.EventLog{
		ID:        uuid.NewString(),
		AuctionID: auctionID,
		Type:      models.EventAuctionSettled,
		TxHash:    opts.TxHash,
		CreatedAt: now,
	}
	if err := s.Repo.AppendEvent(ctx, settledEvent); err != nil {
		return nil, fmt.Errorf("append settled event: %w", err)
	}
	if opts.Auto {
		marker := &models.EventLog{
			ID:        uuid.NewString(),
			AuctionID: auctionID,
			Type:      models.EventAutoSettled,
			CreatedAt: now,
		}
		if err := s.Repo.AppendEvent(ctx, marker); err != nil {
			return nil, fmt.Errorf("append auto-settled event: %w", err)
		}
	}

	bids, err := s.Repo.ListBidsByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	settlePriceWei := winningBidAmount(bids)

	if err := s.captureFee(ctx, auctionID, settlePriceWei, now); err != nil {
		return nil, err
	}

	if err := s.scorePredictions(ctx, auctionID, settlePriceWei, now); err != nil {
		// Never fatal: settlement stands even when scoring misbehaves.
		if s.Logger != nil {
			s.Logger.Warn("prediction scoring failed", zap.String("auction_id", auctionID), zap.Error(err))
		}
	}

	auction, err := s.Repo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("reload auction: %w", err)
	}

	s.publish(ctx, notify.Event{
		AuctionID: auctionID,
		Action:    notify.ActionSettled,
		Details:   map[string]any{"status": auction.Status},
	})

	return &SettleResult{Auction: auction, Settled: true}, nil
}

// winningBidAmount picks the highest committed bid amount; the first maximal
// bid encountered wins ties. Reveal state is not consulted.
func winningBidAmount(bids []models.Bid) decimal.Decimal {
	settle := decimal.Zero
	for _, b := range bids {
		if b.AmountWei.GreaterThan(settle) {
			settle = b.AmountWei
		}
	}
	return settle
}

func (s *SettlementService) captureFee(ctx context.Context, auctionID string, settlePriceWei decimal.Decimal, now time.Time) error {
	tenThousand := decimal.NewFromInt(10000)
	feeWei := settlePriceWei.Mul(decimal.NewFromInt(s.feeBps())).Div(tenThousand).Floor()
	poolWei := feeWei.Mul(decimal.NewFromInt(s.poolBps())).Div(tenThousand).Floor()

	payload, err := json.Marshal(feeCapturedPayload{
		FeeBps:         s.feeBps(),
		PoolBps:        s.poolBps(),
		SettlePriceWei: settlePriceWei.String(),
		FeeWei:         feeWei.String(),
		PoolWei:        poolWei.String(),
	})
	if err != nil {
		return fmt.Errorf("marshal fee payload: %w", err)
	}
	event := &models.EventLog{
		ID:        uuid.NewString(),
		AuctionID: auctionID,
		Type:      models.EventFeeCaptured,
		Payload:   datatypes.JSON(payload),
		CreatedAt: now,
	}
	if err := s.Repo.AppendEvent(ctx, event); err != nil {
		return fmt.Errorf("append fee event: %w", err)
	}
	return nil
}

func (s *SettlementService) scorePredictions(ctx context.Context, auctionID string, settlePriceWei decimal.Decimal, now time.Time) error {
	events, err := s.Repo.ListEventsByType(ctx, auctionID, models.EventPrediction)
	if err != nil {
		return fmt.Errorf("list predictions: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	preds := make([]Prediction, 0, len(events))
	for _, ev := range events {
		preds = append(preds, decodePrediction(ev.Payload))
	}

	actualPriceEth := pricing.WeiToEth(settlePriceWei)
	scores := ScorePredictions(preds, actualPriceEth, now)

	for _, sc := range scores {
		payload, err := json.Marshal(predictionScoredPayload{
			UserID: sc.UserID,
			Score:  sc.Score,
			Components: predictionScoreComponents{
				PriceScore: sc.PriceScore,
				TimeScore:  sc.TimeScore,
			},
		})
		if err != nil {
			return fmt.Errorf("marshal score payload: %w", err)
		}
		event := &models.EventLog{
			ID:        uuid.NewString(),
			AuctionID: auctionID,
			Type:      models.EventPredictionScored,
			Payload:   datatypes.JSON(payload),
			CreatedAt: now,
		}
		if err := s.Repo.AppendEvent(ctx, event); err != nil {
			return fmt.Errorf("append score event: %w", err)
		}
		s.publish(ctx, notify.Event{
			AuctionID: auctionID,
			Action:    notify.ActionPredictionScored,
			Details:   map[string]any{"userId": sc.UserID, "score": sc.Score},
		})
	}
	return nil
}

func (s *SettlementService) publish(ctx context.Context, ev notify.Event) {
	if s.Notify == nil {
		return
	}
	s.Notify.Publish(ctx, ev)
}
