package pipeline

import (
	"fmt"
	"os"

	"registrar/internal"
)

// ParseCompanyFromInput runs the scanner over a single local file for
// one-off inspection, without touching the store.
func ParseCompanyFromInput(inputType, path, sheetName string) (internal.Company, error) {
	switch inputType {
	case "xlsx":
		blob, err := os.ReadFile(path)
		if err != nil {
			return internal.Company{}, err
		}
		grids, names, err := GridsFromWorkbook(blob)
		if err != nil {
			return internal.Company{}, err
		}
		if sheetName == "" && len(names) > 0 {
			sheetName = names[0]
		}
		rows, ok := grids[sheetName]
		if !ok {
			return internal.Company{}, fmt.Errorf("workbook has no sheet %q", sheetName)
		}
		return ParseGrid(sheetName, rows), nil
	case "html":
		blob, err := os.ReadFile(path)
		if err != nil {
			return internal.Company{}, err
		}
		rows, err := GridFromHTML(string(blob))
		if err != nil {
			return internal.Company{}, err
		}
		return ParseGrid(sheetName, rows), nil
	default:
		return internal.Company{}, fmt.Errorf("unsupported input type: %s", inputType)
	}
}
