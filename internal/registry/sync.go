package registry

import (
	"context"
	"fmt"
	"time"

	"registrar/internal/connectors"
	"registrar/internal/pipeline"
	"registrar/internal/storage"
)

// SyncService pulls every company tab from a grid source, runs the
// scanner over it and replaces the stored aggregate.
type SyncService struct {
	db     *storage.DB
	cache  *Cache
	source connectors.GridSource
}

func NewSyncService(db *storage.DB, cache *Cache, source connectors.GridSource) *SyncService {
	return &SyncService{db: db, cache: cache, source: source}
}

type SyncResult struct {
	Synced int
	Failed []string
}

// SyncAll processes each tab independently. One bad tab lands in Failed
// and the rest still sync; the whole run fails only when the source
// itself cannot be read.
func (s *SyncService) SyncAll(ctx context.Context) (SyncResult, error) {
	names, err := s.source.ListSheets(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{}
	for _, name := range names {
		if err := s.syncOne(ctx, name); err != nil {
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		result.Synced++
	}

	s.cache.InvalidateAll()
	_ = s.db.SetMetadata("registry.last_sync", time.Now().UTC().Format(time.RFC3339))
	return result, nil
}

// SyncOne refreshes a single company tab.
func (s *SyncService) SyncOne(ctx context.Context, sheetName string) error {
	if err := s.syncOne(ctx, sheetName); err != nil {
		return err
	}
	s.cache.Invalidate(sheetName)
	return nil
}

func (s *SyncService) syncOne(ctx context.Context, sheetName string) error {
	grid, err := s.source.GetGrid(ctx, sheetName)
	if err != nil {
		return err
	}
	company := pipeline.ParseGrid(sheetName, grid)
	return s.db.UpsertCompany(company)
}
