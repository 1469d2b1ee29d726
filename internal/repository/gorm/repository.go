package gormrepository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"auctionhouse/internal/models"
	"auctionhouse/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- auctions ----------------------------------------------------------------

func (s *Store) CreateAuction(ctx context.Context, item *models.Auction) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Auction
	err := s.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListAuctions(ctx context.Context, params repository.ListAuctionsParams) ([]models.Auction, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Auction{}).
		Preload("Bids", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") })
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Auction
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) FindAuctionByAsset(ctx context.Context, tokenID, domainID string) (*models.Auction, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	tokenID = strings.TrimSpace(tokenID)
	domainID = strings.TrimSpace(domainID)
	if tokenID == "" && domainID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	query := s.db.WithContext(ctx).Model(&models.Auction{})
	switch {
	case tokenID != "" && domainID != "":
		query = query.Where("token_id = ? OR domain_id = ?", tokenID, domainID)
	case tokenID != "":
		query = query.Where("token_id = ?", tokenID)
	default:
		query = query.Where("domain_id = ?", domainID)
	}
	var item models.Auction
	if err := query.Order("created_at desc").First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ActivateAuction carries the same status predicate as MarkAuctionSettled so
// a SETTLED row can never move backward to ACTIVE.
func (s *Store) ActivateAuction(ctx context.Context, id string, reservePriceWei decimal.Decimal, txHash *string) error {
	if s == nil || s.db == nil {
		return nil
	}
	updates := map[string]any{
		"status":            models.AuctionStatusActive,
		"reserve_price_wei": reservePriceWei,
	}
	if txHash != nil {
		updates["tx_hash"] = *txHash
	}
	res := s.db.WithContext(ctx).Model(&models.Auction{}).
		Where("id = ?", id).
		Where("status <> ?", models.AuctionStatusSettled).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// Distinguish "already settled" from "no such auction".
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Auction{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return repository.ErrAuctionSettled
}

// MarkAuctionSettled is the serialization point for the settlement pipeline:
// the status predicate makes concurrent callers race on a single row update,
// and exactly one observes RowsAffected == 1.
func (s *Store) MarkAuctionSettled(ctx context.Context, id string, txHash *string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	updates := map[string]any{"status": models.AuctionStatusSettled}
	if txHash != nil && strings.TrimSpace(*txHash) != "" {
		updates["tx_hash"] = strings.TrimSpace(*txHash)
	}
	res := s.db.WithContext(ctx).Model(&models.Auction{}).
		Where("id = ?", id).
		Where("status <> ?", models.AuctionStatusSettled).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// Distinguish "already settled" from "no such auction".
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Auction{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}

func (s *Store) ListExpiredActiveAuctions(ctx context.Context, now time.Time) ([]models.Auction, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	var items []models.Auction
	err := s.db.WithContext(ctx).Model(&models.Auction{}).
		Preload("Bids").
		Where("status = ?", models.AuctionStatusActive).
		Where("ends_at IS NOT NULL").
		Where("ends_at <= ?", now).
		Order("ends_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- bids --------------------------------------------------------------------

func (s *Store) CreateBid(ctx context.Context, item *models.Bid) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListBidsByAuctionID(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Bid
	err := s.db.WithContext(ctx).Model(&models.Bid{}).
		Where("auction_id = ?", auctionID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- event log ---------------------------------------------------------------

func (s *Store) AppendEvent(ctx context.Context, item *models.EventLog) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListEventsByType(ctx context.Context, auctionID, eventType string) ([]models.EventLog, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.EventLog
	err := s.db.WithContext(ctx).Model(&models.EventLog{}).
		Where("auction_id = ?", auctionID).
		Where("type = ?", eventType).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountEventsByType(ctx context.Context, auctionID, eventType string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.EventLog{}).
		Where("auction_id = ?", auctionID).
		Where("type = ?", eventType).
		Count(&count).Error
	return count, err
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
