package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"registrar/internal"
	"registrar/internal/util"
)

// ErrDocumentNotFound is returned when no document matches the requested
// name, exactly or fuzzily.
var ErrDocumentNotFound = errors.New("document not found")

type docRow struct {
	id   int64
	name string
	url  string
}

// findDocument matches by exact name first, then by containment in either
// direction. Stamped names like "ใบอนุญาต (01/02/2026)" still match their
// bare form this way.
func findDocument(tx *sql.Tx, companyID int64, name string) (docRow, error) {
	rows, err := tx.Query(`
SELECT id, name, url FROM documents WHERE company_id = ? ORDER BY id
`, companyID)
	if err != nil {
		return docRow{}, err
	}
	defer rows.Close()

	var all []docRow
	for rows.Next() {
		var doc docRow
		if err := rows.Scan(&doc.id, &doc.name, &doc.url); err != nil {
			return docRow{}, err
		}
		all = append(all, doc)
	}
	if err := rows.Err(); err != nil {
		return docRow{}, err
	}

	needle := strings.TrimSpace(name)
	for _, doc := range all {
		if doc.name == needle {
			return doc, nil
		}
	}
	for _, doc := range all {
		if strings.Contains(doc.name, needle) || strings.Contains(needle, doc.name) {
			return doc, nil
		}
	}
	return docRow{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
}

// AddDocument appends a document stamped with the day it was filed.
func (d *DB) AddDocument(sheetName string, doc internal.Document, now time.Time) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := d.companyID(tx, sheetName)
	if err != nil {
		return err
	}

	stamp := util.DateStamp(now)
	name := fmt.Sprintf("%s (%s)", strings.TrimSpace(doc.Name), stamp)
	fileID, url := splitLink(doc.URL)

	if _, err := tx.Exec(`
INSERT INTO documents (company_id, name, type, file_id, url, updated_date, expiry_date)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, id, name, nullable(doc.Type), fileID, url, stamp, doc.ExpiryDate); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateDocumentLink re-points an existing document at a new link,
// refreshing its stamp. The previous link is returned for the change log.
func (d *DB) UpdateDocumentLink(sheetName, docName, link, expiryDate string, now time.Time) (string, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := d.companyID(tx, sheetName)
	if err != nil {
		return "", err
	}
	doc, err := findDocument(tx, id, docName)
	if err != nil {
		return "", err
	}

	stamp := util.DateStamp(now)
	base := doc.name
	if i := strings.LastIndex(base, " ("); i >= 0 && strings.HasSuffix(base, ")") {
		base = base[:i]
	}
	fileID, url := splitLink(link)

	if _, err := tx.Exec(`
UPDATE documents SET name = ?, file_id = ?, url = ?, updated_date = ?, expiry_date = ? WHERE id = ?
`, fmt.Sprintf("%s (%s)", base, stamp), fileID, url, stamp, expiryDate, doc.id); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return doc.url, nil
}

// UpdateDocumentExpiry sets only the expiry date, leaving the link alone.
func (d *DB) UpdateDocumentExpiry(sheetName, docName, expiryDate string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := d.companyID(tx, sheetName)
	if err != nil {
		return err
	}
	doc, err := findDocument(tx, id, docName)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`
UPDATE documents SET expiry_date = ? WHERE id = ?
`, expiryDate, doc.id); err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveDocument deletes by exact name only. Removal is destructive, so it
// never falls back to fuzzy matching.
func (d *DB) RemoveDocument(sheetName, docName string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := d.companyID(tx, sheetName)
	if err != nil {
		return err
	}

	result, err := tx.Exec(`
DELETE FROM documents WHERE company_id = ? AND name = ?
`, id, strings.TrimSpace(docName))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, docName)
	}

	return tx.Commit()
}

func splitLink(link string) (fileID, url string) {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" {
		return "", ""
	}
	fileID = util.ExtractFileID(trimmed)
	if strings.HasPrefix(trimmed, "http") {
		url = trimmed
	}
	return fileID, url
}

// AppendVersion records one field change in the audit log.
func (d *DB) AppendVersion(entry internal.VersionEntry) error {
	_, err := d.conn.Exec(`
INSERT INTO version_history (timestamp, company_sheet, field_changed, old_value, new_value, changed_by)
VALUES (?, ?, ?, ?, ?, ?)
`, entry.Timestamp, entry.SheetName, entry.Field, entry.OldValue, entry.NewValue, entry.ChangedBy)
	return err
}

// ListVersions returns the change log for one company, newest first.
func (d *DB) ListVersions(sheetName string, limit int) ([]internal.VersionEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.Query(`
SELECT timestamp, company_sheet, field_changed, old_value, new_value, changed_by
FROM version_history WHERE company_sheet = ? ORDER BY id DESC LIMIT ?
`, sheetName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.VersionEntry{}
	for rows.Next() {
		var entry internal.VersionEntry
		if err := rows.Scan(&entry.Timestamp, &entry.SheetName, &entry.Field,
			&entry.OldValue, &entry.NewValue, &entry.ChangedBy); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
