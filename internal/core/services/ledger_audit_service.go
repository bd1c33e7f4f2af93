package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"storefront/internal/adapters/persistence/repositories"
	"storefront/internal/core/domain"

	"github.com/robfig/cron/v3"
)

// LedgerAuditService periodically reports refresh token counts.
// It only reads: ledger rows are kept for audit and never pruned.
type LedgerAuditService struct {
	tokens   repositories.RefreshTokenRepository
	schedule string
	cron     *cron.Cron
	now      func() time.Time
}

// NewLedgerAuditService creates an audit job for the given cron schedule (e.g. "@daily")
func NewLedgerAuditService(tokens repositories.RefreshTokenRepository, schedule string) *LedgerAuditService {
	return &LedgerAuditService{
		tokens:   tokens,
		schedule: schedule,
		cron:     cron.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the job and starts the scheduler
func (s *LedgerAuditService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := s.RunOnce(ctx); err != nil {
			log.Printf("❌ Ledger audit failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid ledger audit schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	log.Printf("🚀 LedgerAuditService started (%s)", s.schedule)
	return nil
}

// Stop waits for a running audit to finish
func (s *LedgerAuditService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 LedgerAuditService stopped")
}

// RunOnce counts ledger rows by state and logs the result
func (s *LedgerAuditService) RunOnce(ctx context.Context) (*domain.LedgerStats, error) {
	stats, err := s.tokens.CountByState(ctx, s.now())
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Refresh token ledger: active=%d expired=%d revoked=%d",
		stats.Active, stats.Expired, stats.Revoked)
	return stats, nil
}
