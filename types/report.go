package types

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

type ValidationStatus string

const (
	ValidationPass    ValidationStatus = "PASS"
	ValidationFail    ValidationStatus = "FAIL"
	ValidationWarning ValidationStatus = "WARNING"
)

// Finding is a single observation produced while validating a PDF.
type Finding struct {
	Severity       Severity `json:"severity"`
	Category       string   `json:"category"`
	Code           string   `json:"code"`
	Message        string   `json:"message"`
	Location       string   `json:"location"`
	Recommendation string   `json:"recommendation,omitempty"`
}

type FileInfo struct {
	Filename     string `json:"filename"`
	SizeBytes    int64  `json:"size_bytes"`
	PDFVersion   string `json:"pdf_version,omitempty"`
	PageCount    int    `json:"page_count"`
	ModifiedDate string `json:"modified_date,omitempty"`
	CreatedDate  string `json:"created_date,omitempty"`
}

// DocumentInfo carries the optional PDF Info dictionary fields. Absence of
// any field is not an error.
type DocumentInfo struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Producer string `json:"producer,omitempty"`
	Creator  string `json:"creator,omitempty"`
}

type ValidationSummary struct {
	CriticalErrors int `json:"critical_errors"`
	Errors         int `json:"errors"`
	Warnings       int `json:"warnings"`
	Info           int `json:"info"`
}

// ValidationReport is the result of one validation call. It is never merged
// across files.
type ValidationReport struct {
	Status   ValidationStatus  `json:"validation_status"`
	FileInfo *FileInfo         `json:"file_info,omitempty"`
	Metadata DocumentInfo      `json:"metadata"`
	Findings []Finding         `json:"findings"`
	Summary  ValidationSummary `json:"summary"`
}

// Tally recomputes the summary counts from the findings and derives the
// status: FAIL when any ERROR or CRITICAL finding exists, PASS otherwise.
func (r *ValidationReport) Tally() {
	summary := ValidationSummary{}
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityCritical:
			summary.CriticalErrors++
		case SeverityError:
			summary.Errors++
		case SeverityWarning:
			summary.Warnings++
		case SeverityInfo:
			summary.Info++
		}
	}
	r.Summary = summary
	if summary.CriticalErrors > 0 || summary.Errors > 0 {
		r.Status = ValidationFail
	} else {
		r.Status = ValidationPass
	}
}
