package affiliate

import (
	"context"
	"fmt"
	"sync"

	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/rs/zerolog"
)

// BackfillReport counts what one run did.
type BackfillReport struct {
	Scanned  int `json:"scanned"`
	Repaired int `json:"repaired"`
	Failed   int `json:"failed"`
}

// BackfillRecorder receives the number of repaired identifiers.
type BackfillRecorder interface {
	AddBackfilled(n int)
}

// Backfill replaces every affiliate identifier that does not match the
// AFF-XXXXXXXX format. Reads never repair rows; this job does.
type Backfill struct {
	svc      *Service
	log      zerolog.Logger
	recorder BackfillRecorder
	mu       sync.Mutex
}

func NewBackfill(svc *Service, recorder BackfillRecorder, log zerolog.Logger) *Backfill {
	return &Backfill{svc: svc, recorder: recorder, log: log.With().Str("job", "affiliate_backfill").Logger()}
}

// Run scans all affiliates once. Concurrent calls are serialised.
func (b *Backfill) Run(ctx context.Context) (BackfillReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var report BackfillReport
	all, err := b.svc.store.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("list affiliates: %w", err)
	}
	for _, a := range all {
		report.Scanned++
		if utils.IsValidAffiliateID(a.AffiliateID) {
			continue
		}
		newID, err := b.svc.freeID(ctx)
		if err != nil {
			return report, fmt.Errorf("repair affiliate %d: %w", a.ID, err)
		}
		if err := b.svc.store.ReassignID(ctx, a.ID, a.AffiliateID, newID); err != nil {
			report.Failed++
			b.log.Warn().Err(err).Uint("affiliate", a.ID).Str("old_id", a.AffiliateID).Msg("affiliate id repair failed")
			continue
		}
		report.Repaired++
		b.log.Info().Uint("affiliate", a.ID).Str("old_id", a.AffiliateID).Str("new_id", newID).Msg("affiliate id repaired")
	}
	if b.recorder != nil && report.Repaired > 0 {
		b.recorder.AddBackfilled(report.Repaired)
	}
	return report, nil
}

// RunLogged is Run for the scheduler, which has nowhere to return errors.
func (b *Backfill) RunLogged() {
	report, err := b.Run(context.Background())
	if err != nil {
		b.log.Error().Err(err).Msg("affiliate backfill failed")
		return
	}
	b.log.Info().Int("scanned", report.Scanned).Int("repaired", report.Repaired).Int("failed", report.Failed).Msg("affiliate backfill finished")
}
