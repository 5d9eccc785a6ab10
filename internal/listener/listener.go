package listener

import (
	"context"
	"path/filepath"
	"time"

	"github.com/labstack/gommon/log"

	"registrar/internal/config"
	"registrar/internal/connectors"
	"registrar/internal/pipeline"
	"registrar/internal/registry"
	"registrar/internal/storage"
	"registrar/internal/util"
)

// Service runs the periodic sync loop: pull all tabs, then refresh the
// expiring-documents workbook when auto export is on.
type Service struct {
	db     *storage.DB
	cfg    config.Config
	source connectors.GridSource
	cache  *registry.Cache
}

func NewService(db *storage.DB, cfg config.Config, source connectors.GridSource, cache *registry.Cache) *Service {
	return &Service{db: db, cfg: cfg, source: source, cache: cache}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			log.Errorf("poller cycle error: %v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.SyncIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	syncService := registry.NewSyncService(s.db, s.cache, s.source)
	result, err := syncService.SyncAll(ctx)
	if err != nil {
		return err
	}
	for _, failure := range result.Failed {
		log.Warnf("sheet skipped: %s", util.Truncate(failure, 200))
	}

	if s.cfg.PollerAutoExport {
		if err := s.exportExpiring(); err != nil {
			return err
		}
	}

	log.Infof("poller cycle done synced=%d failed=%d", result.Synced, len(result.Failed))
	return nil
}

func (s *Service) exportExpiring() error {
	readService := registry.NewService(s.db, s.cache, s.cfg.SyncFanOut)
	rows, err := readService.ExpiringDocuments()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	outputPath := filepath.Join(s.cfg.OutputDir, "poller", "expiring-documents.xlsx")
	return pipeline.ExportExpiringToXLSX(rows, outputPath)
}
