package reports

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reportIDs(rs []Report) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	seed := Seed()

	tests := []struct {
		name     string
		query    Query
		expected []string
	}{
		{"no filters", Query{}, []string{"REP001", "REP002", "REP003", "REP004", "REP005"}},
		{"all keyword", Query{Type: "all", Status: "all"}, []string{"REP001", "REP002", "REP003", "REP004", "REP005"}},
		{"search name case-insensitive", Query{Search: "JOHN DOE"}, []string{"REP001", "REP005"}},
		{"search patient id", Query{Search: "p103"}, []string{"REP003"}},
		{"search type", Query{Search: "note"}, []string{"REP002", "REP004"}},
		{"exact status", Query{Status: "Completed"}, []string{"REP001", "REP003", "REP005"}},
		{"status is exact not containment", Query{Status: "complete"}, []string{}},
		{"type and search", Query{Search: "john", Type: "Lab Results Summary"}, []string{"REP005"}},
		{"search misses physician", Query{Search: "Dr. Brown"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, reportIDs(Filter(seed, tt.query)))
		})
	}
}

func TestFacets(t *testing.T) {
	f := NewCatalog(Seed()).Facets()

	assert.Equal(t, []string{"all", "Discharge Summary", "Progress Note", "Sepsis Alert Report", "Consultation Note", "Lab Results Summary"}, f.Types)
	assert.Equal(t, []string{"all", "Completed", "Pending Review", "Generated"}, f.Statuses)
}

func TestCatalog_Get(t *testing.T) {
	c := NewCatalog(Seed())

	r, err := c.Get("REP004")
	require.NoError(t, err)
	assert.Equal(t, "Emily White", r.PatientName)

	_, err = c.Get("REP999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenderAndFileName(t *testing.T) {
	r := Seed()[2]

	expected := "Report ID: REP003\n" +
		"Patient: Robert Johnson (P103)\n" +
		"Type: Sepsis Alert Report\n" +
		"Date: 2025-05-08\n" +
		"Physician: Dr. Brown\n" +
		"Status: Completed\n" +
		"\n" +
		"This is a simulated report content."
	assert.Equal(t, expected, Render(r))
	assert.Equal(t, "Sepsis_Alert_Report_P103_2025-05-08.txt", FileName(r))

	r.Type = "Odd   Spacing\tType"
	assert.Equal(t, "Odd_Spacing_Type_P103_2025-05-08.txt", FileName(r))
}

func TestExport(t *testing.T) {
	data, err := Export(Filter(Seed(), Query{Status: "Completed"}))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{exportSheet}, f.GetSheetList())

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"REP001", "John Doe", "P101", "Discharge Summary", "2025-05-10", "Completed", "Dr. Smith"}, rows[1])
	assert.Equal(t, "REP005", rows[3][0])
}

func TestExport_Empty(t *testing.T) {
	data, err := Export(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
