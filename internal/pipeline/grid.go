package pipeline

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"registrar/internal/util"
)

// GridsFromWorkbook reads an XLSX workbook where each tab holds one
// company's grid. Internal tabs (underscore prefix) are skipped. Tab order
// is preserved in the returned name list.
func GridsFromWorkbook(content []byte) (map[string][][]string, []string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	grids := map[string][][]string{}
	names := []string{}
	for _, sheet := range f.GetSheetList() {
		if util.IsInternalSheet(sheet) {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		grids[sheet] = rows
		names = append(names, sheet)
	}

	return grids, names, nil
}

// GridFromHTML converts the first table of an exported HTML page into a
// cell grid, for one-off parses of registry pages saved from a browser.
func GridFromHTML(html string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	out := [][]string{}
	doc.Find("table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			out = append(out, cells)
		}
	})

	return out, nil
}
