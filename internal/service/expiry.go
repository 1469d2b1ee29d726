package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"auctionhouse/internal/repository"
)

// ExpiryService settles ACTIVE auctions whose end time has passed. It is
// registered on the cron runner by the process entry point and also backs the
// manual settle-expired API call; the guarded status flip inside the
// settlement pipeline keeps overlapping passes from double-processing.
type ExpiryService struct {
	Repo       repository.Repository
	Settlement *SettlementService
	Logger     *zap.Logger

	Clock func() time.Time
}

func (s *ExpiryService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

// RunOnce settles every expired ACTIVE auction and returns the ids this pass
// actually settled. One auction failing does not abort the batch.
func (s *ExpiryService) RunOnce(ctx context.Context) ([]string, error) {
	expired, err := s.Repo.ListExpiredActiveAuctions(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	settled := make([]string, 0, len(expired))
	for _, a := range expired {
		result, err := s.Settlement.Settle(ctx, a.ID, SettleOptions{Auto: true})
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("auto settle failed", zap.String("auction_id", a.ID), zap.Error(err))
			}
			continue
		}
		if result.Settled {
			settled = append(settled, a.ID)
		}
	}
	if s.Logger != nil && len(settled) > 0 {
		s.Logger.Info("auto-settled expired auctions", zap.Int("count", len(settled)))
	}
	return settled, nil
}
