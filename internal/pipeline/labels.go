package pipeline

import "strings"

// Label sets for scalar fields, probed in priority order: the most specific
// phrasing first, looser fallbacks after. Changing the order changes what
// ambiguous sheets extract, so additions go at the end of a set.
var (
	labelsDataDate      = []string{"ณ วันที่", "วันที่"}
	labelsNameTH        = []string{"ชื่อบริษัท"}
	labelsNameEN        = []string{"Company Name", "ชื่อภาษาอังกฤษ"}
	labelsRegistration  = []string{"เลขทะเบียนนิติบุคคล", "เลขทะเบียน"}
	labelsDirectorCount = []string{"จำนวนกรรมการ"}
	labelsSignatory     = []string{"อำนาจกรรมการ"}
	labelsCapital       = []string{"ทุนจดทะเบียน"}
	labelsTotalShares   = []string{"จำนวนหุ้น", "หุ้นทั้งหมด"}
	labelsParValue      = []string{"มูลค่าหุ้นละ", "มูลค่าที่ตราไว้"}
	labelsPaidUp        = []string{"ชำระแล้ว", "ทุนชำระแล้ว"}
	labelsAddress       = []string{"ที่ตั้งสำนักงานใหญ่", "ที่อยู่"}
	labelsObjectives    = []string{"วัตถุประสงค์"}
	labelsSeal          = []string{"ตราประทับ"}
)

const (
	labelDirectors    = "กรรมการ"
	labelShareholders = "ผู้ถือหุ้น"
	labelDocuments    = "เอกสาร"
	labelNotes        = "หมายเหตุ"
	labelOrderHeader  = "ลำดับ"
	labelNameHeader   = "ชื่อ"
	ratioHeaderCell   = "คิดเป็นอัตราส่วน"
	internalPrefix    = "_"
)

// directorExclusions guard the directors locator against compound labels
// that merely contain the word ("จำนวนกรรมการ" count, "อำนาจกรรมการ" authority).
var directorExclusions = []string{"จำนวน", "อำนาจ"}

// sectionTerminators end a sub-scan when one appears in a row's leading
// cell. An explicit set, not a "looks like a header" guess.
var sectionTerminators = []string{
	labelDirectors, labelShareholders, labelDocuments,
	"ตราประทับ", "วัตถุ", "ที่ตั้ง", "หมายเหตุ",
	"อำนาจ", "ทุน", "จำนวน", "มูลค่า", "ชำระ",
}

func matchesLabel(cell, label string) bool {
	return cell == label || strings.Contains(cell, label)
}

// isTerminator reports whether cell opens a different section than the one
// being scanned (ownLabel is never its own terminator).
func isTerminator(cell, ownLabel string) bool {
	if cell == "" {
		return false
	}
	for _, term := range sectionTerminators {
		if term == ownLabel {
			continue
		}
		if strings.Contains(cell, term) {
			return true
		}
	}
	return false
}
