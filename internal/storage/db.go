package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"registrar/internal"
	"registrar/internal/util"
)

// ErrCompanyNotFound is returned when a sheet key has no backing record.
// Field-level parse failures are never errors; a missing record always is.
var ErrCompanyNotFound = errors.New("company not found")

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS companies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sheet_name TEXT NOT NULL UNIQUE,
  data_date TEXT NOT NULL DEFAULT '',
  company_name_th TEXT NOT NULL DEFAULT '',
  company_name_en TEXT NOT NULL DEFAULT '',
  registration_number TEXT NOT NULL DEFAULT '',
  director_count INTEGER NOT NULL DEFAULT 0,
  authorized_signatory TEXT NOT NULL DEFAULT '',
  registered_capital REAL NOT NULL DEFAULT 0,
  capital_text TEXT NOT NULL DEFAULT '',
  total_shares REAL NOT NULL DEFAULT 0,
  par_value REAL NOT NULL DEFAULT 100,
  paid_up_shares REAL NOT NULL DEFAULT 0,
  paid_up_amount REAL NOT NULL DEFAULT 0,
  head_office_address TEXT NOT NULL DEFAULT '',
  objectives TEXT NOT NULL DEFAULT '',
  seal_file_id TEXT NOT NULL DEFAULT '',
  seal_url TEXT NOT NULL DEFAULT '',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_companies_sheet_name ON companies(sheet_name);

CREATE TABLE IF NOT EXISTS directors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_id INTEGER NOT NULL,
  sort_order INTEGER NOT NULL,
  name TEXT NOT NULL,
  position TEXT,
  FOREIGN KEY(company_id) REFERENCES companies(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_directors_company ON directors(company_id);

CREATE TABLE IF NOT EXISTS shareholders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_id INTEGER NOT NULL,
  sort_order INTEGER NOT NULL,
  name TEXT NOT NULL,
  shares REAL NOT NULL DEFAULT 0,
  percentage REAL,
  FOREIGN KEY(company_id) REFERENCES companies(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_shareholders_company ON shareholders(company_id);

CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  type TEXT,
  file_id TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  updated_date TEXT NOT NULL DEFAULT '',
  expiry_date TEXT NOT NULL DEFAULT '',
  FOREIGN KEY(company_id) REFERENCES companies(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_documents_company ON documents(company_id);

CREATE TABLE IF NOT EXISTS version_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp TEXT NOT NULL,
  company_sheet TEXT NOT NULL,
  field_changed TEXT NOT NULL,
  old_value TEXT NOT NULL DEFAULT '',
  new_value TEXT NOT NULL DEFAULT '',
  changed_by TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_versions_company ON version_history(company_sheet);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) companyID(tx *sql.Tx, sheetName string) (int64, error) {
	query := func(q string, args ...any) *sql.Row {
		if tx != nil {
			return tx.QueryRow(q, args...)
		}
		return d.conn.QueryRow(q, args...)
	}

	var id int64
	err := query(`SELECT id FROM companies WHERE sheet_name = ?`, sheetName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrCompanyNotFound, sheetName)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListSheetNames returns every company key in name order.
func (d *DB) ListSheetNames() ([]string, error) {
	rows, err := d.conn.Query(`SELECT sheet_name FROM companies ORDER BY sheet_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// GetCompany maps the pre-shaped relational columns straight onto the
// Company record. No scanning happens on this path.
func (d *DB) GetCompany(sheetName string) (internal.Company, error) {
	var c internal.Company
	var id int64
	err := d.conn.QueryRow(`
SELECT id, sheet_name, data_date, company_name_th, company_name_en, registration_number,
       director_count, authorized_signatory, registered_capital, capital_text,
       total_shares, par_value, paid_up_shares, paid_up_amount,
       head_office_address, objectives, seal_file_id, seal_url
FROM companies WHERE sheet_name = ?
`, sheetName).Scan(
		&id, &c.SheetName, &c.DataDate, &c.NameTH, &c.NameEN, &c.RegistrationNumber,
		&c.DirectorCount, &c.AuthorizedSignatory, &c.RegisteredCapital, &c.CapitalText,
		&c.ShareBreakdown.TotalShares, &c.ShareBreakdown.ParValue,
		&c.ShareBreakdown.PaidUpShares, &c.ShareBreakdown.PaidUpAmount,
		&c.HeadOfficeAddress, &c.Objectives, &c.SealFileID, &c.SealURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return internal.Company{}, fmt.Errorf("%w: %s", ErrCompanyNotFound, sheetName)
	}
	if err != nil {
		return internal.Company{}, err
	}

	if c.NameTH == "" {
		c.NameTH = c.SheetName
	}

	c.Directors, err = d.listDirectors(id)
	if err != nil {
		return internal.Company{}, err
	}
	if c.DirectorCount == 0 {
		c.DirectorCount = len(c.Directors)
	}
	c.Shareholders, err = d.listShareholders(id)
	if err != nil {
		return internal.Company{}, err
	}
	c.Documents, err = d.listDocuments(id)
	if err != nil {
		return internal.Company{}, err
	}

	return c, nil
}

func (d *DB) listDirectors(companyID int64) ([]internal.Director, error) {
	rows, err := d.conn.Query(`
SELECT name, position FROM directors WHERE company_id = ? ORDER BY sort_order
`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.Director{}
	for rows.Next() {
		var dir internal.Director
		var position sql.NullString
		if err := rows.Scan(&dir.Name, &position); err != nil {
			return nil, err
		}
		dir.Position = position.String
		out = append(out, dir)
	}
	return out, rows.Err()
}

func (d *DB) listShareholders(companyID int64) ([]internal.Shareholder, error) {
	rows, err := d.conn.Query(`
SELECT sort_order, name, shares, percentage FROM shareholders WHERE company_id = ? ORDER BY sort_order
`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.Shareholder{}
	for rows.Next() {
		var sh internal.Shareholder
		var percentage sql.NullFloat64
		if err := rows.Scan(&sh.Order, &sh.Name, &sh.Shares, &percentage); err != nil {
			return nil, err
		}
		if percentage.Valid {
			sh.Percentage = util.FloatPtr(percentage.Float64)
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (d *DB) listDocuments(companyID int64) ([]internal.Document, error) {
	rows, err := d.conn.Query(`
SELECT name, type, file_id, url, updated_date, expiry_date FROM documents WHERE company_id = ? ORDER BY id
`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.Document{}
	for rows.Next() {
		var doc internal.Document
		var docType sql.NullString
		if err := rows.Scan(&doc.Name, &docType, &doc.FileID, &doc.URL, &doc.UpdatedDate, &doc.ExpiryDate); err != nil {
			return nil, err
		}
		doc.Type = docType.String
		out = append(out, doc)
	}
	return out, rows.Err()
}

// CreateCompany inserts an empty record stamped with today's date.
func (d *DB) CreateCompany(sheetName string, now time.Time) error {
	_, err := d.conn.Exec(`
INSERT INTO companies (sheet_name, data_date) VALUES (?, ?)
`, sheetName, util.DateStamp(now))
	return err
}

func (d *DB) DeleteCompany(sheetName string) error {
	result, err := d.conn.Exec(`DELETE FROM companies WHERE sheet_name = ?`, sheetName)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrCompanyNotFound, sheetName)
	}
	return nil
}

// UpsertCompany writes a full aggregate in one transaction. Child
// collections are replaced wholesale, never patched.
func (d *DB) UpsertCompany(c internal.Company) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
INSERT INTO companies (
  sheet_name, data_date, company_name_th, company_name_en, registration_number,
  director_count, authorized_signatory, registered_capital, capital_text,
  total_shares, par_value, paid_up_shares, paid_up_amount,
  head_office_address, objectives, seal_file_id, seal_url
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(sheet_name) DO UPDATE SET
  data_date=excluded.data_date,
  company_name_th=excluded.company_name_th,
  company_name_en=excluded.company_name_en,
  registration_number=excluded.registration_number,
  director_count=excluded.director_count,
  authorized_signatory=excluded.authorized_signatory,
  registered_capital=excluded.registered_capital,
  capital_text=excluded.capital_text,
  total_shares=excluded.total_shares,
  par_value=excluded.par_value,
  paid_up_shares=excluded.paid_up_shares,
  paid_up_amount=excluded.paid_up_amount,
  head_office_address=excluded.head_office_address,
  objectives=excluded.objectives,
  seal_file_id=excluded.seal_file_id,
  seal_url=excluded.seal_url,
  updatedAt=CURRENT_TIMESTAMP
`,
		c.SheetName, c.DataDate, c.NameTH, c.NameEN, c.RegistrationNumber,
		c.DirectorCount, c.AuthorizedSignatory, c.RegisteredCapital, c.CapitalText,
		c.ShareBreakdown.TotalShares, c.ShareBreakdown.ParValue,
		c.ShareBreakdown.PaidUpShares, c.ShareBreakdown.PaidUpAmount,
		c.HeadOfficeAddress, c.Objectives, c.SealFileID, c.SealURL,
	); err != nil {
		return err
	}

	id, err := d.companyID(tx, c.SheetName)
	if err != nil {
		return err
	}

	if err := replaceDirectors(tx, id, c.Directors); err != nil {
		return err
	}
	if err := replaceShareholders(tx, id, c.Shareholders); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE company_id = ?`, id); err != nil {
		return err
	}
	for _, doc := range c.Documents {
		if _, err := tx.Exec(`
INSERT INTO documents (company_id, name, type, file_id, url, updated_date, expiry_date)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, id, doc.Name, nullable(doc.Type), doc.FileID, doc.URL, doc.UpdatedDate, doc.ExpiryDate); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func replaceDirectors(tx *sql.Tx, companyID int64, directors []internal.Director) error {
	if _, err := tx.Exec(`DELETE FROM directors WHERE company_id = ?`, companyID); err != nil {
		return err
	}
	for i, dir := range directors {
		if _, err := tx.Exec(`
INSERT INTO directors (company_id, sort_order, name, position) VALUES (?, ?, ?, ?)
`, companyID, i+1, dir.Name, nullable(dir.Position)); err != nil {
			return err
		}
	}
	return nil
}

func replaceShareholders(tx *sql.Tx, companyID int64, shareholders []internal.Shareholder) error {
	if _, err := tx.Exec(`DELETE FROM shareholders WHERE company_id = ?`, companyID); err != nil {
		return err
	}
	for i, sh := range shareholders {
		order := sh.Order
		if order == 0 {
			order = i + 1
		}
		var percentage any
		if sh.Percentage != nil {
			percentage = *sh.Percentage
		}
		if _, err := tx.Exec(`
INSERT INTO shareholders (company_id, sort_order, name, shares, percentage) VALUES (?, ?, ?, ?, ?)
`, companyID, order, sh.Name, sh.Shares, percentage); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceDirectors swaps the whole collection and refreshes the count.
func (d *DB) ReplaceDirectors(sheetName string, directors []internal.Director) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := d.companyID(tx, sheetName)
	if err != nil {
		return err
	}
	if err := replaceDirectors(tx, id, directors); err != nil {
		return err
	}
	if _, err := tx.Exec(`
UPDATE companies SET director_count = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, len(directors), id); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *DB) ReplaceShareholders(sheetName string, shareholders []internal.Shareholder) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := d.companyID(tx, sheetName)
	if err != nil {
		return err
	}
	if err := replaceShareholders(tx, id, shareholders); err != nil {
		return err
	}

	return tx.Commit()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
