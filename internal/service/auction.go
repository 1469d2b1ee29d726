package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"auctionhouse/internal/client/orderbook"
	"auctionhouse/internal/models"
	"auctionhouse/internal/notify"
	"auctionhouse/internal/pricing"
	"auctionhouse/internal/repository"
)

// AuctionService covers the auction lifecycle short of settlement: create,
// list, activate/list on-chain, commit, reveal, predict.
type AuctionService struct {
	Repo      repository.Repository
	Orderbook *orderbook.Client
	Notify    notify.Publisher
	Logger    *zap.Logger

	Clock func() time.Time
}

func (s *AuctionService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

type CreateAuctionInput struct {
	TokenID         string
	DomainID        string
	ReservePriceEth string
	StartsAt        string
	EndsAt          string
	DecayMode       string
}

func (s *AuctionService) CreateAuction(ctx context.Context, in CreateAuctionInput) (*models.Auction, error) {
	if strings.TrimSpace(in.ReservePriceEth) == "" {
		return nil, fmt.Errorf("reservePriceEth required: %w", ErrValidation)
	}
	if strings.TrimSpace(in.TokenID) == "" && strings.TrimSpace(in.DomainID) == "" {
		return nil, fmt.Errorf("tokenId or domainId required: %w", ErrValidation)
	}
	reserveWei, err := pricing.ParseEth(in.ReservePriceEth)
	if err != nil {
		return nil, fmt.Errorf("invalid reservePriceEth: %w", ErrInvalidAmount)
	}
	startsAt, err := parseOptionalTime(in.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("invalid startsAt: %w", ErrValidation)
	}
	endsAt, err := parseOptionalTime(in.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("invalid endsAt: %w", ErrValidation)
	}
	if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
		return nil, fmt.Errorf("endsAt before startsAt: %w", ErrValidation)
	}

	auction := &models.Auction{
		ID:              uuid.NewString(),
		TokenID:         optionalString(in.TokenID),
		DomainID:        optionalString(in.DomainID),
		ReservePriceWei: reserveWei,
		Status:          models.AuctionStatusDraft,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		DecayMode:       optionalString(strings.ToLower(strings.TrimSpace(in.DecayMode))),
		CreatedAt:       s.now(),
	}
	if err := s.Repo.CreateAuction(ctx, auction); err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}
	return auction, nil
}

func (s *AuctionService) ListAuctions(ctx context.Context) ([]models.Auction, error) {
	return s.Repo.ListAuctions(ctx, repository.ListAuctionsParams{})
}

func (s *AuctionService) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	auction, err := s.Repo.GetAuction(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("auction %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return auction, nil
}

type ListingInput struct {
	AuctionID       string
	TokenID         string
	DomainID        string
	ReservePriceEth string
}

type ListingResult struct {
	Auction *models.Auction
	Listing *orderbook.Listing
	// Prepared is true when the on-chain call was skipped (offline mode).
	Prepared bool
}

// Activate lists an auction for sale: optional on-chain listing through the
// orderbook client, then ACTIVE status plus a LISTING_CREATED event. An
// unknown auction id (or asset without an auction) falls back to creating a
// fresh ACTIVE auction.
func (s *AuctionService) Activate(ctx context.Context, in ListingInput) (*ListingResult, error) {
	if strings.TrimSpace(in.ReservePriceEth) == "" {
		return nil, fmt.Errorf("reservePriceEth required: %w", ErrValidation)
	}
	if strings.TrimSpace(in.AuctionID) == "" && strings.TrimSpace(in.TokenID) == "" && strings.TrimSpace(in.DomainID) == "" {
		return nil, fmt.Errorf("auctionId or tokenId/domainId required: %w", ErrValidation)
	}
	reserveWei, err := pricing.ParseEth(in.ReservePriceEth)
	if err != nil {
		return nil, fmt.Errorf("invalid reservePriceEth: %w", ErrInvalidAmount)
	}

	var listing *orderbook.Listing
	if s.Orderbook != nil && !s.Orderbook.Offline() {
		listing, err = s.Orderbook.CreateDutchAuction(ctx, in.TokenID, in.DomainID, reserveWei)
		if err != nil {
			return nil, fmt.Errorf("orderbook listing: %w", err)
		}
	}
	var txHash *string
	if listing != nil && listing.TxHash != "" {
		txHash = &listing.TxHash
	}

	existing, err := s.resolveListingTarget(ctx, in)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == models.AuctionStatusSettled {
		// SETTLED is terminal. An explicit id is a caller error; an asset
		// lookup falls through to a fresh auction for the same asset.
		if strings.TrimSpace(in.AuctionID) != "" {
			return nil, fmt.Errorf("auction %s already settled: %w", existing.ID, ErrValidation)
		}
		existing = nil
	}

	var auction *models.Auction
	if existing != nil {
		if err := s.Repo.ActivateAuction(ctx, existing.ID, reserveWei, txHash); err != nil {
			if errors.Is(err, repository.ErrAuctionSettled) {
				return nil, fmt.Errorf("auction %s already settled: %w", existing.ID, ErrValidation)
			}
			return nil, fmt.Errorf("activate auction: %w", err)
		}
		auction, err = s.Repo.GetAuction(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
	} else {
		auction = &models.Auction{
			ID:              uuid.NewString(),
			TokenID:         optionalString(in.TokenID),
			DomainID:        optionalString(in.DomainID),
			ReservePriceWei: reserveWei,
			Status:          models.AuctionStatusActive,
			TxHash:          txHash,
			CreatedAt:       s.now(),
		}
		if err := s.Repo.CreateAuction(ctx, auction); err != nil {
			return nil, fmt.Errorf("create auction: %w", err)
		}
	}

	var payload datatypes.JSON
	if listing != nil {
		if raw, err := json.Marshal(listing); err == nil {
			payload = datatypes.JSON(raw)
		}
	}
	event := &models.EventLog{
		ID:        uuid.NewString(),
		AuctionID: auction.ID,
		Type:      models.EventListingCreated,
		Payload:   payload,
		TxHash:    txHash,
		CreatedAt: s.now(),
	}
	if err := s.Repo.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("append listing event: %w", err)
	}

	s.publish(ctx, notify.Event{
		AuctionID: auction.ID,
		Action:    notify.ActionListed,
		Details:   map[string]any{"status": models.AuctionStatusActive},
	})

	return &ListingResult{
		Auction:  auction,
		Listing:  listing,
		Prepared: listing == nil,
	}, nil
}

func (s *AuctionService) resolveListingTarget(ctx context.Context, in ListingInput) (*models.Auction, error) {
	if id := strings.TrimSpace(in.AuctionID); id != "" {
		auction, err := s.Repo.GetAuction(ctx, id)
		if err != nil {
			if isRecordNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return auction, nil
	}
	auction, err := s.Repo.FindAuctionByAsset(ctx, in.TokenID, in.DomainID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return auction, nil
}

type CommitBidInput struct {
	AuctionID string
	Bidder    string
	AmountEth string
}

func (s *AuctionService) CommitBid(ctx context.Context, in CommitBidInput) (*models.Bid, error) {
	if strings.TrimSpace(in.Bidder) == "" {
		return nil, fmt.Errorf("bidder required: %w", ErrValidation)
	}
	if strings.TrimSpace(in.AmountEth) == "" {
		return nil, fmt.Errorf("amountEth required: %w", ErrValidation)
	}
	if _, err := s.GetAuction(ctx, in.AuctionID); err != nil {
		return nil, err
	}
	amountWei, err := pricing.ParseEth(in.AmountEth)
	if err != nil {
		return nil, fmt.Errorf("invalid amountEth: %w", ErrInvalidAmount)
	}

	bid := &models.Bid{
		ID:        uuid.NewString(),
		AuctionID: in.AuctionID,
		Bidder:    strings.ToLower(strings.TrimSpace(in.Bidder)),
		AmountWei: amountWei,
		CreatedAt: s.now(),
	}
	if err := s.Repo.CreateBid(ctx, bid); err != nil {
		return nil, fmt.Errorf("create bid: %w", err)
	}

	payload, _ := json.Marshal(map[string]any{
		"bidder":    in.Bidder,
		"amountEth": in.AmountEth,
	})
	event := &models.EventLog{
		ID:        uuid.NewString(),
		AuctionID: in.AuctionID,
		Type:      models.EventBidCommit,
		Payload:   datatypes.JSON(payload),
		CreatedAt: s.now(),
	}
	if err := s.Repo.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("append commit event: %w", err)
	}

	s.publish(ctx, notify.Event{
		AuctionID: in.AuctionID,
		Action:    notify.ActionBidCommit,
		Details:   map[string]any{"bidder": in.Bidder, "amountEth": in.AmountEth},
	})
	return bid, nil
}

type RevealInput struct {
	AuctionID string
	Bidder    string
	Proof     string
}

func (s *AuctionService) Reveal(ctx context.Context, in RevealInput) error {
	if _, err := s.GetAuction(ctx, in.AuctionID); err != nil {
		return err
	}
	payload, _ := json.Marshal(map[string]any{
		"bidder": in.Bidder,
		"proof":  in.Proof,
	})
	event := &models.EventLog{
		ID:        uuid.NewString(),
		AuctionID: in.AuctionID,
		Type:      models.EventBidReveal,
		Payload:   datatypes.JSON(payload),
		CreatedAt: s.now(),
	}
	if err := s.Repo.AppendEvent(ctx, event); err != nil {
		return fmt.Errorf("append reveal event: %w", err)
	}
	s.publish(ctx, notify.Event{
		AuctionID: in.AuctionID,
		Action:    notify.ActionRevealed,
		Details:   map[string]any{"bidder": in.Bidder},
	})
	return nil
}

type PredictInput struct {
	AuctionID string
	UserID    string
	PriceEth  *float64
	Time      string
}

// Predict records a price/time prediction for an ACTIVE auction. At least one
// of price or time must be present; an unparsable time is dropped from the
// stored payload but does not fail the call when a price is present.
func (s *AuctionService) Predict(ctx context.Context, in PredictInput) (*models.EventLog, error) {
	auction, err := s.GetAuction(ctx, in.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != models.AuctionStatusActive {
		return nil, fmt.Errorf("predictions allowed only for ACTIVE auctions: %w", ErrValidation)
	}
	if in.PriceEth == nil && strings.TrimSpace(in.Time) == "" {
		return nil, fmt.Errorf("provide priceEth and/or time: %w", ErrValidation)
	}

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = "anon"
	}

	var payload predictionPayload
	payload.UserID = userID
	payload.Predict.PriceEth = in.PriceEth
	if raw := strings.TrimSpace(in.Time); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			iso := ts.UTC().Format(time.RFC3339)
			payload.Predict.Time = &iso
		}
	}
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal prediction: %w", err)
	}

	event := &models.EventLog{
		ID:        uuid.NewString(),
		AuctionID: in.AuctionID,
		Type:      models.EventPrediction,
		Payload:   datatypes.JSON(rawPayload),
		CreatedAt: s.now(),
	}
	if err := s.Repo.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("append prediction event: %w", err)
	}

	s.publish(ctx, notify.Event{
		AuctionID: in.AuctionID,
		Action:    notify.ActionPredictionSubmitted,
		Details:   map[string]any{"userId": userID},
	})
	return event, nil
}

func (s *AuctionService) publish(ctx context.Context, ev notify.Event) {
	if s.Notify == nil {
		return
	}
	s.Notify.Publish(ctx, ev)
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			utc := ts.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("unparsable time %q", raw)
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
