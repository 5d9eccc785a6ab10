package pipeline

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func mkWorkbook(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			_ = f.SetSheetName(f.GetSheetName(0), name)
			first = false
		} else {
			_, _ = f.NewSheet(name)
		}
		for r, row := range rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				_ = f.SetCellValue(name, cell, v)
			}
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestGridsFromWorkbook(t *testing.T) {
	blob := mkWorkbook(t, map[string][][]any{
		"CompanyA":     {{"ชื่อบริษัท", "บริษัท เอ จำกัด"}},
		"_permissions": {{"user", "role"}},
	})

	grids, names, err := GridsFromWorkbook(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "CompanyA" {
		t.Fatalf("names=%v", names)
	}
	if _, ok := grids["_permissions"]; ok {
		t.Fatal("internal sheet not skipped")
	}

	c := ParseGrid("CompanyA", grids["CompanyA"])
	if c.NameTH != "บริษัท เอ จำกัด" {
		t.Fatalf("nameTH=%q", c.NameTH)
	}
}

func TestGridFromHTML(t *testing.T) {
	html := `<html><body><table>
<tr><th>ชื่อบริษัท</th><th>บริษัท บี จำกัด</th></tr>
<tr><td>ทุนจดทะเบียน</td><td>2,000,000 บาท</td></tr>
</table></body></html>`

	rows, err := GridFromHTML(html)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%v", rows)
	}

	c := ParseGrid("CompanyB", rows)
	if c.NameTH != "บริษัท บี จำกัด" || c.RegisteredCapital != 2000000 {
		t.Fatalf("parsed=%+v", c)
	}
}
