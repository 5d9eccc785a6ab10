package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"registrar/internal"
	"registrar/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleCompany() internal.Company {
	pct := 60.0
	return internal.Company{
		SheetName:          "TestCo",
		DataDate:           "01/02/2026",
		NameTH:             "บริษัท ทดสอบ จำกัด",
		NameEN:             "Test Co., Ltd.",
		RegistrationNumber: "0105500000001",
		DirectorCount:      2,
		Directors: []internal.Director{
			{Name: "นายสมชาย ใจดี", Position: "กรรมการผู้จัดการ"},
			{Name: "นางสาวสมหญิง รักเรียน"},
		},
		AuthorizedSignatory: "กรรมการสองคนลงลายมือชื่อร่วมกัน",
		RegisteredCapital:   1000000,
		CapitalText:         "1,000,000 บาท",
		ShareBreakdown: internal.ShareBreakdown{
			TotalShares: 10000, ParValue: 100, PaidUpShares: 10000, PaidUpAmount: 1000000,
		},
		Shareholders: []internal.Shareholder{
			{Order: 1, Name: "นายสมชาย ใจดี", Shares: 6000, Percentage: &pct},
			{Order: 2, Name: "นางสาวสมหญิง รักเรียน", Shares: 4000},
		},
		Documents: []internal.Document{
			{Name: "หนังสือรับรอง (01/01/2026)", FileID: "abc123", URL: "https://drive.google.com/file/d/abc123/view", ExpiryDate: "01/06/2026"},
		},
	}
}

func TestUpsertAndGetCompany(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertCompany(sampleCompany()); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetCompany("TestCo")
	if err != nil {
		t.Fatal(err)
	}
	if got.NameTH != "บริษัท ทดสอบ จำกัด" || got.RegisteredCapital != 1000000 {
		t.Fatalf("company=%+v", got)
	}
	if len(got.Directors) != 2 || got.Directors[0].Position != "กรรมการผู้จัดการ" {
		t.Fatalf("directors=%+v", got.Directors)
	}
	if len(got.Shareholders) != 2 {
		t.Fatalf("shareholders=%+v", got.Shareholders)
	}
	if got.Shareholders[0].Percentage == nil || *got.Shareholders[0].Percentage != 60 {
		t.Fatalf("pct=%v", got.Shareholders[0].Percentage)
	}
	if got.Shareholders[1].Percentage != nil {
		t.Fatal("nil percentage not preserved")
	}
	if len(got.Documents) != 1 || got.Documents[0].FileID != "abc123" {
		t.Fatalf("documents=%+v", got.Documents)
	}
}

func TestUpsertReplacesChildren(t *testing.T) {
	db := openTestDB(t)

	c := sampleCompany()
	if err := db.UpsertCompany(c); err != nil {
		t.Fatal(err)
	}

	c.Directors = c.Directors[:1]
	c.Shareholders = nil
	if err := db.UpsertCompany(c); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetCompany("TestCo")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Directors) != 1 || len(got.Shareholders) != 0 {
		t.Fatalf("children not replaced: %+v", got)
	}
}

func TestGetCompanyNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetCompany("Missing")
	if !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestUpdateCompanyField(t *testing.T) {
	db := openTestDB(t)
	if err := db.UpsertCompany(sampleCompany()); err != nil {
		t.Fatal(err)
	}

	oldValue, err := db.UpdateCompanyField("TestCo", "ทุนจดทะเบียน", "2,000,000 บาท")
	if err != nil {
		t.Fatal(err)
	}
	if oldValue != "1,000,000 บาท" {
		t.Fatalf("oldValue=%q", oldValue)
	}

	got, err := db.GetCompany("TestCo")
	if err != nil {
		t.Fatal(err)
	}
	if got.CapitalText != "2,000,000 บาท" {
		t.Fatalf("capitalText=%q", got.CapitalText)
	}
	// Capital text carries the numeric column with it.
	if got.RegisteredCapital != 2000000 {
		t.Fatalf("registeredCapital=%v", got.RegisteredCapital)
	}
}

func TestUpdateCompanyFieldFuzzyLabel(t *testing.T) {
	db := openTestDB(t)
	if err := db.UpsertCompany(sampleCompany()); err != nil {
		t.Fatal(err)
	}

	// A longer phrasing containing a known label still resolves.
	if _, err := db.UpdateCompanyField("TestCo", "ที่ตั้งสำนักงานใหญ่ (ปัจจุบัน)", "456 ถนนพระราม 4"); err != nil {
		t.Fatal(err)
	}
	got, _ := db.GetCompany("TestCo")
	if got.HeadOfficeAddress != "456 ถนนพระราม 4" {
		t.Fatalf("address=%q", got.HeadOfficeAddress)
	}
}

func TestReplaceDirectorsRefreshesCount(t *testing.T) {
	db := openTestDB(t)
	if err := db.UpsertCompany(sampleCompany()); err != nil {
		t.Fatal(err)
	}

	err := db.ReplaceDirectors("TestCo", []internal.Director{
		{Name: "นายหนึ่ง"}, {Name: "นายสอง"}, {Name: "นายสาม"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := db.GetCompany("TestCo")
	if len(got.Directors) != 3 || got.DirectorCount != 3 {
		t.Fatalf("directors=%d count=%d", len(got.Directors), got.DirectorCount)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	db := openTestDB(t)
	if err := db.UpsertCompany(sampleCompany()); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, time.February, 1, 12, 0, 0, 0, util.Bangkok)

	err := db.AddDocument("TestCo", internal.Document{
		Name: "ใบอนุญาต", URL: "https://drive.google.com/file/d/lic789/view", ExpiryDate: "01/03/2026",
	}, now)
	if err != nil {
		t.Fatal(err)
	}

	got, _ := db.GetCompany("TestCo")
	if len(got.Documents) != 2 {
		t.Fatalf("documents=%+v", got.Documents)
	}
	added := got.Documents[1]
	if added.Name != "ใบอนุญาต (01/02/2026)" {
		t.Fatalf("stamped name=%q", added.Name)
	}
	if added.FileID != "lic789" || added.UpdatedDate != "01/02/2026" {
		t.Fatalf("added=%+v", added)
	}

	// Fuzzy lookup by the bare name re-points the stamped record.
	later := now.AddDate(0, 1, 0)
	oldLink, err := db.UpdateDocumentLink("TestCo", "ใบอนุญาต", "https://drive.google.com/file/d/lic999/view", "01/09/2026", later)
	if err != nil {
		t.Fatal(err)
	}
	if oldLink != "https://drive.google.com/file/d/lic789/view" {
		t.Fatalf("oldLink=%q", oldLink)
	}

	got, _ = db.GetCompany("TestCo")
	updated := got.Documents[1]
	if updated.FileID != "lic999" || updated.Name != "ใบอนุญาต (01/03/2026)" {
		t.Fatalf("updated=%+v", updated)
	}
	if updated.ExpiryDate != "01/09/2026" {
		t.Fatalf("expiry=%q", updated.ExpiryDate)
	}

	if err := db.UpdateDocumentExpiry("TestCo", "ใบอนุญาต", "01/12/2026"); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetCompany("TestCo")
	if got.Documents[1].ExpiryDate != "01/12/2026" {
		t.Fatalf("expiry=%q", got.Documents[1].ExpiryDate)
	}

	// Removal matches exactly, so the bare name misses the stamped record.
	if err := db.RemoveDocument("TestCo", "ใบอนุญาต"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("err=%v", err)
	}
	if err := db.RemoveDocument("TestCo", "ใบอนุญาต (01/03/2026)"); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetCompany("TestCo")
	if len(got.Documents) != 1 {
		t.Fatalf("documents=%+v", got.Documents)
	}
}

func TestUpdateSeal(t *testing.T) {
	db := openTestDB(t)
	if err := db.UpsertCompany(sampleCompany()); err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateSeal("TestCo", "https://drive.google.com/file/d/seal1/view"); err != nil {
		t.Fatal(err)
	}
	got, _ := db.GetCompany("TestCo")
	if got.SealFileID != "seal1" || got.SealURL != "" {
		t.Fatalf("seal=%+v", got)
	}

	if err := db.UpdateSeal("TestCo", "https://example.com/seal.png"); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetCompany("TestCo")
	if got.SealFileID != "" || got.SealURL != "https://example.com/seal.png" {
		t.Fatalf("seal=%+v", got)
	}
}

func TestVersionHistory(t *testing.T) {
	db := openTestDB(t)

	for _, field := range []string{"ทุนจดทะเบียน", "ที่อยู่"} {
		err := db.AppendVersion(internal.VersionEntry{
			Timestamp: "2026-02-01T12:00:00",
			SheetName: "TestCo",
			Field:     field,
			OldValue:  "a",
			NewValue:  "b",
			ChangedBy: "test",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	entries, err := db.ListVersions("TestCo", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries=%+v", entries)
	}
	// Newest first.
	if entries[0].Field != "ที่อยู่" {
		t.Fatalf("order=%+v", entries)
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	if v, err := db.GetMetadata("registry.last_sync"); err != nil || v != "" {
		t.Fatalf("v=%q err=%v", v, err)
	}
	if err := db.SetMetadata("registry.last_sync", "2026-02-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("registry.last_sync", "2026-02-02T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMetadata("registry.last_sync")
	if err != nil || v != "2026-02-02T00:00:00Z" {
		t.Fatalf("v=%q err=%v", v, err)
	}
}

func TestResolveColumn(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"ทุนจดทะเบียน", "capital_text"},
		{"เลขทะเบียน", "registration_number"},
		{"เลขทะเบียนนิติบุคคล", "registration_number"},
		{"ทุนชำระแล้ว", "paid_up_amount"},
		{"Company Name", "company_name_en"},
	}
	for _, c := range cases {
		got, ok := ResolveColumn(c.label)
		if !ok || got != c.want {
			t.Fatalf("ResolveColumn(%q)=%q,%v want %q", c.label, got, ok, c.want)
		}
	}
	if _, ok := ResolveColumn("ไม่มีฟิลด์นี้"); ok {
		t.Fatal("unknown label resolved")
	}
}
