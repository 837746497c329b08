package patients

// Status is the clinical status of a patient
type Status string

const (
	StatusStable    Status = "Stable"
	StatusImproving Status = "Improving"
	StatusCritical  Status = "Critical"
)

// Statuses lists every status in display order
var Statuses = []Status{StatusStable, StatusImproving, StatusCritical}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusStable, StatusImproving, StatusCritical:
		return true
	}
	return false
}

// Vitals is the latest recorded vitals of a patient
type Vitals struct {
	HeartRate        int     `json:"heartRate"`
	BloodPressure    string  `json:"bloodPressure"`
	Temperature      float64 `json:"temperature"`
	OxygenSaturation int     `json:"oxygenSaturation"`
	RespiratoryRate  int     `json:"respiratoryRate"`
}

// Patient is one entry of the persisted patient list
type Patient struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Condition  string `json:"condition"`
	Status     Status `json:"status"`
	LastUpdate string `json:"lastUpdate"`
	Vitals     Vitals `json:"vitals"`
}

// NewPatient is the add-patient form. Empty vitals take their defaults.
type NewPatient struct {
	ID        string      `json:"id,omitempty"`
	Name      string      `json:"name"`
	Age       int         `json:"age"`
	Condition string      `json:"condition"`
	Status    Status      `json:"status,omitempty"`
	Vitals    VitalsInput `json:"vitals"`
}

// VitalsInput is the vitals part of the add-patient form
type VitalsInput struct {
	HeartRate        int     `json:"heartRate,omitempty"`
	BloodPressure    string  `json:"bloodPressure,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	OxygenSaturation int     `json:"oxygenSaturation,omitempty"`
	RespiratoryRate  int     `json:"respiratoryRate,omitempty"`
}

// Summary is the dashboard tile data over the patient list
type Summary struct {
	Total    int                `json:"total"`
	ByStatus map[Status]int     `json:"byStatus"`
	Percent  map[Status]float64 `json:"percent"`
}
