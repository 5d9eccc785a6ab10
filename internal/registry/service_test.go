package registry

import (
	"path/filepath"
	"testing"
	"time"

	"registrar/internal"
	"registrar/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedCompany(t *testing.T, db *storage.DB, sheetName string, docs []internal.Document) {
	t.Helper()
	err := db.UpsertCompany(internal.Company{
		SheetName: sheetName,
		NameTH:    "บริษัท " + sheetName + " จำกัด",
		Directors: []internal.Director{{Name: "นายทดสอบ"}},
		Documents: docs,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCacheTTL(t *testing.T) {
	cache := NewCache(5 * time.Minute)
	at := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return at }

	cache.Set("A", internal.Company{SheetName: "A"})
	if _, ok := cache.Get("A"); !ok {
		t.Fatal("fresh entry missed")
	}

	at = at.Add(4 * time.Minute)
	if _, ok := cache.Get("A"); !ok {
		t.Fatal("entry expired early")
	}

	at = at.Add(2 * time.Minute)
	if _, ok := cache.Get("A"); ok {
		t.Fatal("stale entry served")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Set("A", internal.Company{SheetName: "A"})
	cache.Set("B", internal.Company{SheetName: "B"})

	cache.Invalidate("A")
	if _, ok := cache.Get("A"); ok {
		t.Fatal("A survived invalidation")
	}
	if _, ok := cache.Get("B"); !ok {
		t.Fatal("B dropped")
	}

	cache.InvalidateAll()
	if _, ok := cache.Get("B"); ok {
		t.Fatal("B survived full invalidation")
	}
}

func TestGetCompanyUsesCache(t *testing.T) {
	db := openTestDB(t)
	seedCompany(t, db, "CacheCo", nil)

	cache := NewCache(time.Hour)
	svc := NewService(db, cache, 4)

	first, err := svc.GetCompany("CacheCo")
	if err != nil {
		t.Fatal(err)
	}

	// A direct write without invalidation is invisible until the TTL runs out.
	if _, err := db.UpdateCompanyField("CacheCo", "ชื่อบริษัท", "เปลี่ยนชื่อแล้ว"); err != nil {
		t.Fatal(err)
	}
	second, err := svc.GetCompany("CacheCo")
	if err != nil {
		t.Fatal(err)
	}
	if second.NameTH != first.NameTH {
		t.Fatalf("cache bypassed: %q", second.NameTH)
	}

	cache.Invalidate("CacheCo")
	third, err := svc.GetCompany("CacheCo")
	if err != nil {
		t.Fatal(err)
	}
	if third.NameTH != "เปลี่ยนชื่อแล้ว" {
		t.Fatalf("nameTH=%q", third.NameTH)
	}
}

func TestListSummaries(t *testing.T) {
	db := openTestDB(t)
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		seedCompany(t, db, name, nil)
	}

	svc := NewService(db, NewCache(time.Hour), 2)
	summaries, err := svc.ListSummaries()
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 3 {
		t.Fatalf("summaries=%+v", summaries)
	}
	// Listing order follows the store, not goroutine completion.
	for i, want := range []string{"Alpha", "Beta", "Gamma"} {
		if summaries[i].SheetName != want {
			t.Fatalf("order[%d]=%q", i, summaries[i].SheetName)
		}
		if summaries[i].Err {
			t.Fatalf("unexpected error row: %+v", summaries[i])
		}
		if summaries[i].DirectorCount != 1 {
			t.Fatalf("directorCount=%d", summaries[i].DirectorCount)
		}
	}
}

func TestExpiringDocuments(t *testing.T) {
	db := openTestDB(t)
	seedCompany(t, db, "DocCo", []internal.Document{
		{Name: "หมดอายุแล้ว", FileID: "a", ExpiryDate: "01/01/2020"},
		{Name: "ยังไม่หมด", FileID: "b", ExpiryDate: "01/01/2999"},
		{Name: "ไม่มีวันที่", FileID: "c"},
	})

	svc := NewService(db, NewCache(time.Hour), 2)
	rows, err := svc.ExpiringDocuments()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows=%+v", rows)
	}
	if rows[0].DocumentName != "หมดอายุแล้ว" || rows[0].Status != internal.ExpiryExpired {
		t.Fatalf("row=%+v", rows[0])
	}
}

func TestExpiringDocumentsSortedByUrgency(t *testing.T) {
	db := openTestDB(t)
	soon := internal.Document{Name: "ใกล้หมด", FileID: "a"}
	soon.ExpiryDate = timeInDays(20)
	urgent := internal.Document{Name: "ด่วน", FileID: "b"}
	urgent.ExpiryDate = timeInDays(3)
	seedCompany(t, db, "SortCo", []internal.Document{soon, urgent})

	svc := NewService(db, NewCache(time.Hour), 2)
	rows, err := svc.ExpiringDocuments()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%+v", rows)
	}
	if rows[0].DocumentName != "ด่วน" || rows[1].DocumentName != "ใกล้หมด" {
		t.Fatalf("order=%+v", rows)
	}
}

func timeInDays(days int) string {
	t := time.Now().AddDate(0, 0, days)
	return t.Format("02/01/2006")
}

func TestFindDocument(t *testing.T) {
	docs := []internal.Document{
		{Name: "หนังสือรับรอง (01/01/2026)"},
		{Name: "ใบอนุญาต"},
	}

	if doc, err := FindDocument(docs, "ใบอนุญาต"); err != nil || doc.Name != "ใบอนุญาต" {
		t.Fatalf("exact: %+v %v", doc, err)
	}
	if doc, err := FindDocument(docs, "หนังสือรับรอง"); err != nil || doc.Name != "หนังสือรับรอง (01/01/2026)" {
		t.Fatalf("needle in stored: %+v %v", doc, err)
	}
	if doc, err := FindDocument(docs, "ใบอนุญาต (ฉบับเก่า)"); err != nil || doc.Name != "ใบอนุญาต" {
		t.Fatalf("stored in needle: %+v %v", doc, err)
	}
	if _, err := FindDocument(docs, "ไม่มีเอกสารนี้"); !IsNotFound(err) {
		t.Fatalf("err=%v", err)
	}
}

func TestDocumentExpiryStatus(t *testing.T) {
	db := openTestDB(t)
	seedCompany(t, db, "StatusCo", []internal.Document{
		{Name: "หนังสือรับรอง (01/01/2026)", FileID: "a", ExpiryDate: "01/01/2020"},
	})

	svc := NewService(db, NewCache(time.Hour), 2)
	status, err := svc.DocumentExpiryStatus("StatusCo", "หนังสือรับรอง")
	if err != nil {
		t.Fatal(err)
	}
	if status != internal.ExpiryExpired {
		t.Fatalf("status=%q", status)
	}

	if _, err := svc.DocumentExpiryStatus("Missing", "x"); !IsNotFound(err) {
		t.Fatalf("err=%v", err)
	}
}
