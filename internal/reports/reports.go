// Package reports serves the static report catalog with its filters, the
// plain-text download and the spreadsheet export.
package reports

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotFound is returned for an unknown report id
var ErrNotFound = errors.New("report not found")

// AllValues disables a type or status filter
const AllValues = "all"

// Report is one catalog entry
type Report struct {
	ID          string `json:"id"`
	PatientName string `json:"patientName"`
	PatientID   string `json:"patientId"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Physician   string `json:"physician"`
}

// Seed returns the report catalog
func Seed() []Report {
	return []Report{
		{ID: "REP001", PatientName: "John Doe", PatientID: "P101", Type: "Discharge Summary", Date: "2025-05-10", Status: "Completed", Physician: "Dr. Smith"},
		{ID: "REP002", PatientName: "Jane Smith", PatientID: "P102", Type: "Progress Note", Date: "2025-05-12", Status: "Pending Review", Physician: "Dr. Emily Jones"},
		{ID: "REP003", PatientName: "Robert Johnson", PatientID: "P103", Type: "Sepsis Alert Report", Date: "2025-05-08", Status: "Completed", Physician: "Dr. Brown"},
		{ID: "REP004", PatientName: "Emily White", PatientID: "P104", Type: "Consultation Note", Date: "2025-05-11", Status: "Generated", Physician: "Dr. Davis"},
		{ID: "REP005", PatientName: "John Doe", PatientID: "P101", Type: "Lab Results Summary", Date: "2025-05-09", Status: "Completed", Physician: "Lab System"},
	}
}

// Query narrows the catalog. Type and Status match exactly unless empty or "all".
type Query struct {
	Search string
	Type   string
	Status string
}

// Facets are the selectable filter values, "all" first
type Facets struct {
	Types    []string `json:"types"`
	Statuses []string `json:"statuses"`
}

// Catalog is a read-only set of reports
type Catalog struct {
	reports []Report
}

// NewCatalog creates a catalog over reports
func NewCatalog(reports []Report) *Catalog {
	return &Catalog{reports: reports}
}

// List returns the reports matching q
func (c *Catalog) List(q Query) []Report {
	return Filter(c.reports, q)
}

// Get returns report id
func (c *Catalog) Get(id string) (Report, error) {
	for _, r := range c.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return Report{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Facets returns the distinct types and statuses in catalog order
func (c *Catalog) Facets() Facets {
	return FacetsOf(c.reports)
}

// Filter keeps reports whose patient name, patient id or type contains the
// search text, ignoring case, and that match the type and status filters
func Filter(reports []Report, q Query) []Report {
	search := strings.ToLower(q.Search)
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.PatientName), search) &&
			!strings.Contains(strings.ToLower(r.PatientID), search) &&
			!strings.Contains(strings.ToLower(r.Type), search) {
			continue
		}
		if !matchesFacet(q.Type, r.Type) || !matchesFacet(q.Status, r.Status) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesFacet(want, got string) bool {
	return want == "" || want == AllValues || want == got
}

// FacetsOf collects "all" followed by the distinct types and statuses
func FacetsOf(reports []Report) Facets {
	f := Facets{Types: []string{AllValues}, Statuses: []string{AllValues}}
	seenType := map[string]bool{}
	seenStatus := map[string]bool{}
	for _, r := range reports {
		if !seenType[r.Type] {
			seenType[r.Type] = true
			f.Types = append(f.Types, r.Type)
		}
		if !seenStatus[r.Status] {
			seenStatus[r.Status] = true
			f.Statuses = append(f.Statuses, r.Status)
		}
	}
	return f
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName is the download name of the text rendering of r
func FileName(r Report) string {
	return fmt.Sprintf("%s_%s_%s.txt", whitespaceRun.ReplaceAllString(r.Type, "_"), r.PatientID, r.Date)
}

// Render returns the plain-text report body
func Render(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report ID: %s\n", r.ID)
	fmt.Fprintf(&b, "Patient: %s (%s)\n", r.PatientName, r.PatientID)
	fmt.Fprintf(&b, "Type: %s\n", r.Type)
	fmt.Fprintf(&b, "Date: %s\n", r.Date)
	fmt.Fprintf(&b, "Physician: %s\n", r.Physician)
	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	b.WriteString("\nThis is a simulated report content.")
	return b.String()
}
