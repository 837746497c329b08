// Package analytics computes the population and per-patient risk views and
// the model prediction trend series.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNotFound is returned for an unknown analytics patient id
var ErrNotFound = errors.New("analytics patient not found")

// Risk score cut-offs
const (
	HighRiskScore   = 75
	MediumRiskScore = 50
)

// Patient is one row of the analytics cohort
type Patient struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Age             int     `json:"age"`
	Condition       string  `json:"condition"`
	RiskScore       int     `json:"riskScore"`
	ReadmissionRisk string  `json:"readmissionRisk"`
	LengthOfStay    int     `json:"lengthOfStay"`
	SepsisRisk      float64 `json:"sepsisRisk"`
}

// RiskDistribution counts patients per risk band
type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// ConditionCount is one bar of the condition breakdown
type ConditionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyRisk is one point of the ICU-average sepsis risk series
type DailyRisk struct {
	Date    string  `json:"date"`
	AvgRisk float64 `json:"avgRisk"`
}

// Detail is the per-patient panel
type Detail struct {
	Patient
	SepsisPercent int    `json:"sepsisPercent"`
	Insight       string `json:"insight"`
}

// Overview is the full analytics view
type Overview struct {
	TotalPatients    int              `json:"totalPatients"`
	AverageRiskScore int              `json:"averageRiskScore"`
	HighRiskPatients int              `json:"highRiskPatients"`
	HighRiskPercent  int              `json:"highRiskPercent"`
	AverageStay      float64          `json:"averageLengthOfStay"`
	Distribution     RiskDistribution `json:"riskDistribution"`
	Conditions       []ConditionCount `json:"conditions"`
	SepsisTrend      []DailyRisk      `json:"sepsisTrend"`
	Selected         Detail           `json:"selected"`
}

// conditionLabel pairs a chart label with the condition it counts
type conditionLabel struct {
	label     string
	condition string
}

var conditionLabels = []conditionLabel{
	{"Pneumonia", "Pneumonia"},
	{"Heart Failure", "Heart Failure"},
	{"Sepsis", "Sepsis"},
	{"Asthma", "Asthma Exacerbation"},
	{"COPD", "COPD"},
	{"Appendicitis", "Appendicitis"},
}

// Seed returns the analytics cohort
func Seed() []Patient {
	return []Patient{
		{ID: "P101", Name: "John Doe", Age: 45, Condition: "Pneumonia", RiskScore: 65, ReadmissionRisk: "Medium", LengthOfStay: 7, SepsisRisk: 0.3},
		{ID: "P102", Name: "Jane Smith", Age: 62, Condition: "Heart Failure", RiskScore: 85, ReadmissionRisk: "High", LengthOfStay: 12, SepsisRisk: 0.7},
		{ID: "P103", Name: "Robert Johnson", Age: 50, Condition: "Sepsis", RiskScore: 75, ReadmissionRisk: "High", LengthOfStay: 10, SepsisRisk: 0.9},
		{ID: "P104", Name: "Emily White", Age: 33, Condition: "Asthma Exacerbation", RiskScore: 40, ReadmissionRisk: "Low", LengthOfStay: 3, SepsisRisk: 0.1},
		{ID: "P105", Name: "Michael Brown", Age: 78, Condition: "COPD", RiskScore: 90, ReadmissionRisk: "Very High", LengthOfStay: 15, SepsisRisk: 0.6},
		{ID: "P106", Name: "Sarah Davis", Age: 29, Condition: "Appendicitis", RiskScore: 20, ReadmissionRisk: "Low", LengthOfStay: 2, SepsisRisk: 0.05},
	}
}

// SepsisTrend is the static weekly ICU-average sepsis risk
func SepsisTrend() []DailyRisk {
	return []DailyRisk{
		{"Mon", 0.4}, {"Tue", 0.45}, {"Wed", 0.38}, {"Thu", 0.5},
		{"Fri", 0.55}, {"Sat", 0.42}, {"Sun", 0.47},
	}
}

// Distribute buckets patients by risk score
func Distribute(cohort []Patient) RiskDistribution {
	var d RiskDistribution
	for _, p := range cohort {
		switch {
		case p.RiskScore >= HighRiskScore:
			d.High++
		case p.RiskScore >= MediumRiskScore:
			d.Medium++
		default:
			d.Low++
		}
	}
	return d
}

// Conditions counts patients per known condition, dropping empty bars
func Conditions(cohort []Patient) []ConditionCount {
	out := make([]ConditionCount, 0, len(conditionLabels))
	for _, cl := range conditionLabels {
		n := 0
		for _, p := range cohort {
			if p.Condition == cl.condition {
				n++
			}
		}
		if n > 0 {
			out = append(out, ConditionCount{Name: cl.label, Count: n})
		}
	}
	return out
}

// Insight is the narrative sentence of the per-patient panel
func Insight(p Patient) string {
	return fmt.Sprintf("Patient %s shows a %s risk of readmission within 30 days. "+
		"The current sepsis prediction score is %d%%. "+
		"Monitoring of key indicators is recommended.",
		p.Name, strings.ToLower(p.ReadmissionRisk), percent(p.SepsisRisk))
}

func percent(f float64) int {
	return int(math.Round(f * 100))
}

// Analyzer serves the analytics view over a fixed cohort
type Analyzer struct {
	cohort []Patient
}

// NewAnalyzer creates an analyzer over cohort, which must not be empty
func NewAnalyzer(cohort []Patient) *Analyzer {
	return &Analyzer{cohort: cohort}
}

// Cohort returns the analytics patients
func (a *Analyzer) Cohort() []Patient {
	out := make([]Patient, len(a.cohort))
	copy(out, a.cohort)
	return out
}

// Detail returns the panel for patient id; an empty id selects the first
func (a *Analyzer) Detail(id string) (Detail, error) {
	if id == "" {
		return detailOf(a.cohort[0]), nil
	}
	for _, p := range a.cohort {
		if p.ID == id {
			return detailOf(p), nil
		}
	}
	return Detail{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func detailOf(p Patient) Detail {
	return Detail{Patient: p, SepsisPercent: percent(p.SepsisRisk), Insight: Insight(p)}
}

// Overview computes the population tiles and the detail for patient id
func (a *Analyzer) Overview(id string) (Overview, error) {
	detail, err := a.Detail(id)
	if err != nil {
		return Overview{}, err
	}

	total := len(a.cohort)
	riskSum, staySum := 0, 0
	for _, p := range a.cohort {
		riskSum += p.RiskScore
		staySum += p.LengthOfStay
	}
	dist := Distribute(a.cohort)

	return Overview{
		TotalPatients:    total,
		AverageRiskScore: int(math.Round(float64(riskSum) / float64(total))),
		HighRiskPatients: dist.High,
		HighRiskPercent:  int(math.Round(float64(dist.High) / float64(total) * 100)),
		AverageStay:      math.Round(float64(staySum)/float64(total)*10) / 10,
		Distribution:     dist,
		Conditions:       Conditions(a.cohort),
		SepsisTrend:      SepsisTrend(),
		Selected:         detail,
	}, nil
}
