package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"auctionhouse/internal/models"
	"auctionhouse/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// MarkAuctionSettled holds the mutex across check-and-set so the settle race
// behaves like the store's guarded UPDATE.
type stubRepo struct {
	mu       sync.Mutex
	auctions map[string]*models.Auction
	bids     map[string][]models.Bid
	events   map[string][]models.EventLog
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		auctions: map[string]*models.Auction{},
		bids:     map[string][]models.Bid{},
		events:   map[string][]models.EventLog{},
	}
}

func (s *stubRepo) CreateAuction(ctx context.Context, item *models.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.auctions[item.ID] = &cp
	return nil
}

func (s *stubRepo) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	cp.Bids = append([]models.Bid(nil), s.bids[id]...)
	cp.Events = append([]models.EventLog(nil), s.events[id]...)
	return &cp, nil
}

func (s *stubRepo) ListAuctions(ctx context.Context, params repository.ListAuctionsParams) ([]models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		if params.Status != nil && a.Status != *params.Status {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubRepo) FindAuctionByAsset(ctx context.Context, tokenID, domainID string) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.Auction
	for _, a := range s.auctions {
		match := false
		if tokenID != "" && a.TokenID != nil && *a.TokenID == tokenID {
			match = true
		}
		if domainID != "" && a.DomainID != nil && *a.DomainID == domainID {
			match = true
		}
		if !match {
			continue
		}
		if found == nil || a.CreatedAt.After(found.CreatedAt) {
			found = a
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *found
	return &cp, nil
}

func (s *stubRepo) ActivateAuction(ctx context.Context, id string, reservePriceWei decimal.Decimal, txHash *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if a.Status == models.AuctionStatusSettled {
		return repository.ErrAuctionSettled
	}
	a.Status = models.AuctionStatusActive
	a.ReservePriceWei = reservePriceWei
	if txHash != nil {
		a.TxHash = txHash
	}
	return nil
}

func (s *stubRepo) MarkAuctionSettled(ctx context.Context, id string, txHash *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if a.Status == models.AuctionStatusSettled {
		return false, nil
	}
	a.Status = models.AuctionStatusSettled
	if txHash != nil {
		a.TxHash = txHash
	}
	return true, nil
}

func (s *stubRepo) ListExpiredActiveAuctions(ctx context.Context, now time.Time) ([]models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Auction
	for _, a := range s.auctions {
		if a.Status != models.AuctionStatusActive || a.EndsAt == nil {
			continue
		}
		if a.EndsAt.After(now) {
			continue
		}
		cp := *a
		cp.Bids = append([]models.Bid(nil), s.bids[a.ID]...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CreateBid(ctx context.Context, item *models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids[item.AuctionID] = append(s.bids[item.AuctionID], *item)
	return nil
}

func (s *stubRepo) ListBidsByAuctionID(ctx context.Context, auctionID string) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Bid(nil), s.bids[auctionID]...), nil
}

func (s *stubRepo) AppendEvent(ctx context.Context, item *models.EventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[item.AuctionID] = append(s.events[item.AuctionID], *item)
	return nil
}

func (s *stubRepo) ListEventsByType(ctx context.Context, auctionID, eventType string) ([]models.EventLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.EventLog
	for _, ev := range s.events[auctionID] {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *stubRepo) CountEventsByType(ctx context.Context, auctionID, eventType string) (int64, error) {
	events, _ := s.ListEventsByType(ctx, auctionID, eventType)
	return int64(len(events)), nil
}
