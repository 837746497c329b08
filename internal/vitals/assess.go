package vitals

import "stealthcompany.com/icudash/internal/patients"

// Trend is the direction shown next to a vital
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

const stableLabel = "Stable"

// Indicator is one monitoring card
type Indicator struct {
	Vital      string      `json:"vital"`
	Title      string      `json:"title"`
	Value      interface{} `json:"value"`
	Unit       string      `json:"unit"`
	Trend      Trend       `json:"trend"`
	TrendLabel string      `json:"trendLabel"`
	Alert      string      `json:"alert,omitempty"`
}

// Assessment is the monitoring header and cards for one patient
type Assessment struct {
	PatientID  string          `json:"patientId"`
	Name       string          `json:"name"`
	Status     patients.Status `json:"status"`
	Message    string          `json:"message"`
	Indicators []Indicator     `json:"indicators"`
}

// Assess derives the trend and alert of every vital of p
func Assess(p patients.Patient) Assessment {
	v := p.Vitals

	msg := "Patient " + p.Name + " is currently " + string(p.Status) + "."
	if p.Status == patients.StatusCritical {
		msg += " Immediate attention may be required."
	}

	return Assessment{
		PatientID: p.ID,
		Name:      p.Name,
		Status:    p.Status,
		Message:   msg,
		Indicators: []Indicator{
			heartRateIndicator(v.HeartRate, p.Status),
			{
				Vital:      "bloodPressure",
				Title:      "Blood Pressure",
				Value:      v.BloodPressure,
				Unit:       "mmHg",
				Trend:      TrendStable,
				TrendLabel: stableLabel,
			},
			temperatureIndicator(v.Temperature),
			oxygenIndicator(v.OxygenSaturation),
			respiratoryIndicator(v.RespiratoryRate),
		},
	}
}

func heartRateIndicator(hr int, status patients.Status) Indicator {
	ind := Indicator{Vital: "heartRate", Title: "Heart Rate", Value: hr, Unit: "bpm", Trend: TrendStable, TrendLabel: stableLabel}
	switch {
	case hr > 85:
		ind.Trend, ind.TrendLabel = TrendUp, "+5 bpm last hr"
	case hr < 65:
		ind.Trend, ind.TrendLabel = TrendDown, "-3 bpm last hr"
	}
	if status == patients.StatusCritical && hr > 90 {
		ind.Alert = "High Heart Rate"
	}
	return ind
}

func temperatureIndicator(temp float64) Indicator {
	ind := Indicator{Vital: "temperature", Title: "Temperature", Value: temp, Unit: "°C", Trend: TrendStable, TrendLabel: stableLabel}
	switch {
	case temp > 37.5:
		ind.Trend, ind.TrendLabel = TrendUp, "+0.2°C last hr"
	case temp < 36.0:
		ind.Trend = TrendDown
	}
	if temp > 38.0 {
		ind.Alert = "Slight Fever"
	}
	return ind
}

func oxygenIndicator(spo2 int) Indicator {
	ind := Indicator{Vital: "oxygenSaturation", Title: "Oxygen Saturation", Value: spo2, Unit: "%", Trend: TrendStable, TrendLabel: stableLabel}
	if spo2 < 94 {
		ind.Trend, ind.TrendLabel, ind.Alert = TrendDown, "-1% last hr", "Low SpO2"
	}
	return ind
}

func respiratoryIndicator(rr int) Indicator {
	ind := Indicator{Vital: "respiratoryRate", Title: "Respiratory Rate", Value: rr, Unit: "bpm", Trend: TrendStable, TrendLabel: stableLabel}
	switch {
	case rr > 20:
		ind.Trend, ind.TrendLabel = TrendUp, "+2 bpm last hr"
	case rr < 12:
		ind.Trend = TrendDown
	}
	if rr > 22 {
		ind.Alert = "High RR"
	}
	return ind
}
