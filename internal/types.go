package internal

// Director of a company. Position is free text ("กรรมการ", "กรรมการผู้จัดการ").
type Director struct {
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
}

// Shareholder with its 1-based source ordering. Percentage is nil when the
// sheet carried no ratio column and none could be derived.
type Shareholder struct {
	Order      int      `json:"order"`
	Name       string   `json:"name"`
	Shares     float64  `json:"shares"`
	Percentage *float64 `json:"percentage,omitempty"`
}

type ShareBreakdown struct {
	TotalShares  float64 `json:"totalShares"`
	ParValue     float64 `json:"parValue"`
	PaidUpShares float64 `json:"paidUpShares"`
	PaidUpAmount float64 `json:"paidUpAmount"`
}

// Document owned by a company. FileID is the bare file-host id when the link
// matched a recognized pattern; URL keeps the raw link either way.
type Document struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	FileID      string `json:"fileId"`
	URL         string `json:"url,omitempty"`
	UpdatedDate string `json:"updatedDate,omitempty"`
	ExpiryDate  string `json:"expiryDate,omitempty"`
}

// Company is the aggregate root. SheetName is the unique key; NameTH falls
// back to it when no explicit name was extracted.
type Company struct {
	SheetName           string         `json:"sheetName"`
	DataDate            string         `json:"dataDate"`
	NameTH              string         `json:"companyNameTh"`
	NameEN              string         `json:"companyNameEn"`
	RegistrationNumber  string         `json:"registrationNumber"`
	DirectorCount       int            `json:"directorCount"`
	Directors           []Director     `json:"directors"`
	AuthorizedSignatory string         `json:"authorizedSignatory"`
	RegisteredCapital   float64        `json:"registeredCapital"`
	CapitalText         string         `json:"capitalText"`
	ShareBreakdown      ShareBreakdown `json:"shareBreakdown"`
	HeadOfficeAddress   string         `json:"headOfficeAddress"`
	Objectives          string         `json:"objectives"`
	SealFileID          string         `json:"sealFileId"`
	SealURL             string         `json:"sealUrl"`
	Shareholders        []Shareholder  `json:"shareholders"`
	Documents           []Document     `json:"documents"`
}

type ExpiryStatus string

const (
	ExpiryExpired  ExpiryStatus = "expired"
	ExpiryWithin7  ExpiryStatus = "expiring-7d"
	ExpiryWithin30 ExpiryStatus = "expiring-30d"
	ExpiryOK       ExpiryStatus = "ok"
	ExpiryUnknown  ExpiryStatus = "unknown"
)

// CompanySummary is one row of a bulk listing. Err marks a company whose
// extraction failed; siblings are unaffected.
type CompanySummary struct {
	SheetName          string  `json:"sheetName"`
	NameTH             string  `json:"companyNameTh"`
	NameEN             string  `json:"companyNameEn,omitempty"`
	RegistrationNumber string  `json:"registrationNumber,omitempty"`
	RegisteredCapital  float64 `json:"registeredCapital,omitempty"`
	DirectorCount      int     `json:"directorCount"`
	ShareholderCount   int     `json:"shareholderCount"`
	DocumentCount      int     `json:"documentCount"`
	Err                bool    `json:"error,omitempty"`
}

type ExpiringDocument struct {
	SheetName    string       `json:"sheetName"`
	CompanyName  string       `json:"companyNameTh"`
	DocumentName string       `json:"docName"`
	ExpiryDate   string       `json:"expiryDate"`
	Status       ExpiryStatus `json:"status"`
}

type VersionEntry struct {
	Timestamp string `json:"timestamp"`
	SheetName string `json:"companySheet"`
	Field     string `json:"fieldChanged"`
	OldValue  string `json:"oldValue"`
	NewValue  string `json:"newValue"`
	ChangedBy string `json:"changedBy"`
}
