package storage

import (
	"fmt"
	"strings"

	"registrar/internal/util"
)

// fieldColumn binds a sheet label to its storage column. The slice is
// ordered longest-label-first within each family so that containment
// matching never lets a short label shadow a compound one.
type fieldColumn struct {
	label  string
	column string
}

var fieldColumns = []fieldColumn{
	{"ณ วันที่", "data_date"},
	{"ชื่อบริษัท", "company_name_th"},
	{"ชื่อภาษาอังกฤษ", "company_name_en"},
	{"Company Name", "company_name_en"},
	{"เลขทะเบียนนิติบุคคล", "registration_number"},
	{"เลขทะเบียน", "registration_number"},
	{"จำนวนกรรมการ", "director_count"},
	{"อำนาจกรรมการ", "authorized_signatory"},
	{"ทุนจดทะเบียน", "capital_text"},
	{"จำนวนหุ้น", "total_shares"},
	{"หุ้นทั้งหมด", "total_shares"},
	{"มูลค่าหุ้นละ", "par_value"},
	{"มูลค่าที่ตราไว้", "par_value"},
	{"ทุนชำระแล้ว", "paid_up_amount"},
	{"ชำระแล้ว", "paid_up_amount"},
	{"ที่ตั้งสำนักงานใหญ่", "head_office_address"},
	{"ที่อยู่", "head_office_address"},
	{"วัตถุประสงค์", "objectives"},
	{"หมายเหตุ", "notes"},
}

var numericColumns = map[string]bool{
	"director_count": true,
	"total_shares":   true,
	"par_value":      true,
	"paid_up_amount": true,
}

// ResolveColumn maps a field label to its column: exact match first, then
// containment in either direction, in declaration order.
func ResolveColumn(label string) (string, bool) {
	trimmed := strings.TrimSpace(label)
	for _, fc := range fieldColumns {
		if fc.label == trimmed {
			return fc.column, true
		}
	}
	for _, fc := range fieldColumns {
		if strings.Contains(trimmed, fc.label) || strings.Contains(fc.label, trimmed) {
			return fc.column, true
		}
	}
	return "", false
}

// UpdateCompanyField writes one labelled field and returns the value it
// replaced. Updating the capital text also refreshes the numeric capital
// when the text parses to a positive amount.
func (d *DB) UpdateCompanyField(sheetName, label, value string) (string, error) {
	column, ok := ResolveColumn(label)
	if !ok {
		return "", fmt.Errorf("no column for field label %q", label)
	}
	if column == "notes" {
		// Notes live only on the sheet; nothing to persist.
		return "", fmt.Errorf("field %q is not stored", label)
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := d.companyID(tx, sheetName)
	if err != nil {
		return "", err
	}

	var oldValue string
	if err := tx.QueryRow(
		fmt.Sprintf(`SELECT CAST(%s AS TEXT) FROM companies WHERE id = ?`, column), id,
	).Scan(&oldValue); err != nil {
		return "", err
	}

	var stored any = value
	if numericColumns[column] {
		stored = util.ParseNumber(value)
	}
	if _, err := tx.Exec(
		fmt.Sprintf(`UPDATE companies SET %s = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, column),
		stored, id,
	); err != nil {
		return "", err
	}

	if column == "capital_text" {
		if amount := util.ParseNumber(value); amount > 0 {
			if _, err := tx.Exec(
				`UPDATE companies SET registered_capital = ? WHERE id = ?`, amount, id,
			); err != nil {
				return "", err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return oldValue, nil
}

// UpdateSeal splits a pasted link into the stored id or external URL.
func (d *DB) UpdateSeal(sheetName, link string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := d.companyID(tx, sheetName)
	if err != nil {
		return err
	}

	fileID, url := "", ""
	if util.IsExternalURL(link) {
		url = link
	} else {
		fileID = util.ExtractFileID(link)
	}
	if _, err := tx.Exec(`
UPDATE companies SET seal_file_id = ?, seal_url = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, fileID, url, id); err != nil {
		return err
	}

	return tx.Commit()
}
