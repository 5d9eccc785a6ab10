package pipeline

import (
	"regexp"
	"strings"

	"registrar/internal"
	"registrar/internal/util"
)

var (
	bareNumberPattern    = regexp.MustCompile(`^\d+$`)
	ordinalPattern       = regexp.MustCompile(`^\d+\.?$`)
	ordinalPrefixPattern = regexp.MustCompile(`^\d+\.?\s*`)
)

// ParseGrid scans an ordered grid of cells into a Company record. Every
// field degrades to its zero value when its label is absent; the scan never
// fails. The display name falls back to the sheet key.
func ParseGrid(sheetName string, rows [][]string) internal.Company {
	directors := scanDirectors(rows)
	directorCount := len(directors)
	if directorCount == 0 {
		directorCount = int(util.ParseNumber(findValue(rows, labelsDirectorCount, 1)))
	}

	capitalText := findValue(rows, labelsCapital, 1)

	sealRaw := findValue(rows, labelsSeal, 1)
	sealFileID, sealURL := "", ""
	if util.IsExternalURL(sealRaw) {
		sealURL = sealRaw
	} else {
		sealFileID = util.ExtractFileID(sealRaw)
	}

	nameTH := findValue(rows, labelsNameTH, 1)
	if nameTH == "" {
		nameTH = sheetName
	}

	return internal.Company{
		SheetName:           sheetName,
		DataDate:            findValue(rows, labelsDataDate, 1),
		NameTH:              nameTH,
		NameEN:              findValue(rows, labelsNameEN, 1),
		RegistrationNumber:  findValue(rows, labelsRegistration, 1),
		DirectorCount:       directorCount,
		Directors:           directors,
		AuthorizedSignatory: findValue(rows, labelsSignatory, 1),
		RegisteredCapital:   util.ParseNumber(capitalText),
		CapitalText:         capitalText,
		ShareBreakdown:      scanShareBreakdown(rows),
		HeadOfficeAddress:   findValue(rows, labelsAddress, 1),
		Objectives:          findValue(rows, labelsObjectives, 1),
		SealFileID:          sealFileID,
		SealURL:             sealURL,
		Shareholders:        scanShareholders(rows),
		Documents:           scanDocuments(rows),
	}
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// findValue probes each label over the whole grid before trying the next,
// so a specific label anywhere beats a loose one earlier in the sheet.
// The value sits at a fixed column offset from the label cell.
func findValue(rows [][]string, labels []string, colOffset int) string {
	for _, label := range labels {
		for _, row := range rows {
			if matchesLabel(cellAt(row, 0), label) {
				return cellAt(row, colOffset)
			}
		}
	}
	return ""
}

func findSectionRow(rows [][]string, label string) int {
	for i, row := range rows {
		if matchesLabel(cellAt(row, 0), label) {
			return i
		}
	}
	return -1
}

// findDirectorsRow is stricter than findSectionRow: compound labels that
// contain the directors word but mean something else must not open the
// section.
func findDirectorsRow(rows [][]string) int {
	for i, row := range rows {
		cell := cellAt(row, 0)
		if !strings.Contains(cell, labelDirectors) {
			continue
		}
		excluded := false
		for _, ex := range directorExclusions {
			if strings.Contains(cell, ex) {
				excluded = true
				break
			}
		}
		if !excluded {
			return i
		}
	}
	return -1
}

func looksLikeName(cell string) bool {
	if cell == "" || cell == "-" {
		return false
	}
	if len([]rune(cell)) <= 2 {
		return false
	}
	return !bareNumberPattern.MatchString(cell)
}

func stripOrdinal(name string) string {
	return strings.TrimSpace(ordinalPrefixPattern.ReplaceAllString(name, ""))
}

func scanDirectors(rows [][]string) []internal.Director {
	out := []internal.Director{}
	start := findDirectorsRow(rows)
	if start < 0 {
		return out
	}

	// The first director may sit on the label row itself, unless the value
	// cell holds a bare count.
	if first := cellAt(rows[start], 1); first != "" && !bareNumberPattern.MatchString(first) {
		out = append(out, internal.Director{
			Name:     stripOrdinal(first),
			Position: cellAt(rows[start], 2),
		})
	}

	for i := start + 1; i < len(rows); i++ {
		lead := cellAt(rows[i], 0)
		if isTerminator(lead, labelDirectors) {
			break
		}

		name := ""
		switch {
		case ordinalPattern.MatchString(lead), lead == "", lead == "-":
			name = cellAt(rows[i], 1)
		case looksLikeName(lead):
			name = cellAt(rows[i], 1)
			if name == "" {
				name = lead
			}
		}
		if name == "" || name == "-" {
			continue
		}

		out = append(out, internal.Director{
			Name:     stripOrdinal(name),
			Position: cellAt(rows[i], 2),
		})
	}
	return out
}

func scanShareBreakdown(rows [][]string) internal.ShareBreakdown {
	totalShares := util.ParseNumber(findValue(rows, labelsTotalShares, 1))
	parValue := util.ParseNumber(findValue(rows, labelsParValue, 1))
	if parValue == 0 {
		parValue = 100 // baht, the customary par value when the sheet omits it
	}
	paidUpAmount := util.ParseNumber(findValue(rows, labelsPaidUp, 1))
	if paidUpAmount == 0 {
		paidUpAmount = totalShares * parValue
	}

	return internal.ShareBreakdown{
		TotalShares:  totalShares,
		ParValue:     parValue,
		PaidUpShares: totalShares,
		PaidUpAmount: paidUpAmount,
	}
}

func scanShareholders(rows [][]string) []internal.Shareholder {
	out := []internal.Shareholder{}
	start := findSectionRow(rows, labelShareholders)
	if start < 0 {
		return out
	}

	i := start + 1
	if i < len(rows) && strings.Contains(cellAt(rows[i], 0), labelOrderHeader) {
		i++ // column-header row
	}

	order := 1
	for ; i < len(rows); i++ {
		lead := cellAt(rows[i], 0)
		if isTerminator(lead, labelShareholders) {
			break
		}

		name := cellAt(rows[i], 1)
		if name == "" {
			name = lead
		}
		if name == "" || name == "-" || name == labelOrderHeader || name == labelNameHeader {
			continue
		}

		// Percentage is whatever cell carries '%'; the share count is the
		// largest other number in the row, tolerating extra numeric columns.
		// Known fragile on rows with several large numbers.
		percentage, shares := 0.0, 0.0
		for c := 2; c < len(rows[i]); c++ {
			cell := cellAt(rows[i], c)
			if cell == "" || cell == "-" || cell == ratioHeaderCell {
				continue
			}
			if strings.Contains(cell, "%") {
				percentage = util.ParseNumber(cell)
				continue
			}
			if num := util.ParseNumber(cell); num > shares {
				shares = num
			}
		}

		if shares == 0 && percentage == 0 && len([]rune(name)) <= 1 {
			continue
		}

		sh := internal.Shareholder{
			Order:  order,
			Name:   stripOrdinal(name),
			Shares: shares,
		}
		if percentage > 0 {
			sh.Percentage = util.FloatPtr(percentage)
		}
		out = append(out, sh)
		order++
	}

	derivePercentages(out)
	return out
}

// derivePercentages fills ratios from share counts when the sheet supplied
// none. A zero total leaves all percentages unset.
func derivePercentages(shareholders []internal.Shareholder) {
	total := 0.0
	for _, s := range shareholders {
		if s.Percentage != nil {
			return
		}
		total += s.Shares
	}
	if total == 0 {
		return
	}
	for i := range shareholders {
		shareholders[i].Percentage = util.FloatPtr(util.RoundPercent(shareholders[i].Shares / total * 100))
	}
}

func scanDocuments(rows [][]string) []internal.Document {
	out := []internal.Document{}
	start := findSectionRow(rows, labelDocuments)
	if start < 0 {
		return out
	}

	for i := start + 1; i < len(rows); i++ {
		lead := cellAt(rows[i], 0)
		if strings.HasPrefix(lead, internalPrefix) || matchesLabel(lead, labelNotes) {
			break
		}

		// First populated cell is the name; link, update date and expiry
		// follow it in order.
		nameIdx := 0
		name := lead
		if name == "" {
			nameIdx = 1
			name = cellAt(rows[i], 1)
		}
		if name == "" || name == "-" {
			continue
		}
		if strings.Contains(lead, labelOrderHeader) || name == labelNameHeader {
			continue // column-header row
		}

		link := cellAt(rows[i], nameIdx+1)
		updated := cellAt(rows[i], nameIdx+2)
		expiry := cellAt(rows[i], nameIdx+3)

		fileID := util.ExtractFileID(link)
		if fileID == "" && link == "" {
			continue
		}

		doc := internal.Document{
			Name:   stripOrdinal(name),
			FileID: fileID,
		}
		if strings.HasPrefix(link, "http") {
			doc.URL = link
		}
		if updated != "" && !strings.HasPrefix(updated, "http") {
			doc.UpdatedDate = updated
		}
		if expiry != "" && !strings.HasPrefix(expiry, "http") {
			doc.ExpiryDate = expiry
		}
		out = append(out, doc)
	}
	return out
}
