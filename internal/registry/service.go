package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"registrar/internal"
	"registrar/internal/pipeline"
	"registrar/internal/storage"
)

// Service is the read side of the registry: listings, single-company
// lookups through the cache, and the expiring-documents report.
type Service struct {
	db     *storage.DB
	cache  *Cache
	fanOut int
	now    func() time.Time
}

func NewService(db *storage.DB, cache *Cache, fanOut int) *Service {
	if fanOut <= 0 {
		fanOut = 8
	}
	return &Service{db: db, cache: cache, fanOut: fanOut, now: time.Now}
}

// GetCompany reads through the cache. Writes elsewhere must invalidate.
func (s *Service) GetCompany(sheetName string) (internal.Company, error) {
	if company, ok := s.cache.Get(sheetName); ok {
		return company, nil
	}

	company, err := s.db.GetCompany(sheetName)
	if err != nil {
		return internal.Company{}, err
	}
	s.cache.Set(sheetName, company)
	return company, nil
}

// ListSummaries builds one row per company, fanning reads out over a
// bounded worker set. A failed read yields a placeholder row with Err set
// and never disturbs its siblings.
func (s *Service) ListSummaries() ([]internal.CompanySummary, error) {
	names, err := s.db.ListSheetNames()
	if err != nil {
		return nil, err
	}

	summaries := make([]internal.CompanySummary, len(names))
	sem := make(chan struct{}, s.fanOut)
	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			company, err := s.GetCompany(name)
			if err != nil {
				summaries[i] = internal.CompanySummary{SheetName: name, NameTH: name, Err: true}
				return
			}
			summaries[i] = internal.CompanySummary{
				SheetName:          company.SheetName,
				NameTH:             company.NameTH,
				NameEN:             company.NameEN,
				RegistrationNumber: company.RegistrationNumber,
				RegisteredCapital:  company.RegisteredCapital,
				DirectorCount:      company.DirectorCount,
				ShareholderCount:   len(company.Shareholders),
				DocumentCount:      len(company.Documents),
			}
		}(i, name)
	}
	wg.Wait()

	return summaries, nil
}

// ExpiringDocuments collects every document that is expired or inside the
// 30-day window, most urgent first. Companies that fail to load are
// skipped rather than failing the report.
func (s *Service) ExpiringDocuments() ([]internal.ExpiringDocument, error) {
	names, err := s.db.ListSheetNames()
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := []internal.ExpiringDocument{}
	for _, name := range names {
		company, err := s.GetCompany(name)
		if err != nil {
			continue
		}
		for _, doc := range company.Documents {
			status := pipeline.ClassifyExpiry(doc.ExpiryDate, now)
			if !pipeline.NeedsAttention(status) {
				continue
			}
			out = append(out, internal.ExpiringDocument{
				SheetName:    company.SheetName,
				CompanyName:  company.NameTH,
				DocumentName: doc.Name,
				ExpiryDate:   doc.ExpiryDate,
				Status:       status,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return pipeline.StatusRank(out[i].Status) < pipeline.StatusRank(out[j].Status)
	})
	return out, nil
}

// DocumentExpiryStatus classifies one named document. The name matches
// exactly first, then by containment in either direction.
func (s *Service) DocumentExpiryStatus(sheetName, docName string) (internal.ExpiryStatus, error) {
	company, err := s.GetCompany(sheetName)
	if err != nil {
		return "", err
	}

	doc, err := FindDocument(company.Documents, docName)
	if err != nil {
		return "", err
	}
	return pipeline.ClassifyExpiry(doc.ExpiryDate, s.now()), nil
}

// FindDocument resolves a possibly stamped document name against a
// collection: exact, then substring either way, in stored order.
func FindDocument(docs []internal.Document, name string) (internal.Document, error) {
	needle := strings.TrimSpace(name)
	for _, doc := range docs {
		if doc.Name == needle {
			return doc, nil
		}
	}
	for _, doc := range docs {
		if strings.Contains(doc.Name, needle) || strings.Contains(needle, doc.Name) {
			return doc, nil
		}
	}
	return internal.Document{}, fmt.Errorf("%w: %s", storage.ErrDocumentNotFound, name)
}

// IsNotFound reports whether err is a missing-company or missing-document
// condition rather than a storage failure.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrCompanyNotFound) || errors.Is(err, storage.ErrDocumentNotFound)
}
