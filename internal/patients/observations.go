package patients

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/records"
	"stealthcompany.com/icudash/internal/storage"
)

// ErrMissingPatientID is returned when an observation has no patient id
var ErrMissingPatientID = errors.New("Patient ID is required")

// Observation is one manual data-entry record. Values are kept as typed.
type Observation struct {
	ID               int64     `json:"id"`
	PatientID        string    `json:"patientId"`
	Age              string    `json:"age"`
	Temperature      string    `json:"temperature"`
	HeartRate        string    `json:"heartRate"`
	BloodPressure    string    `json:"bloodPressure"`
	OxygenSaturation string    `json:"oxygenSaturation"`
	Timestamp        time.Time `json:"timestamp"`
}

// ObservationLog appends manual entries under storage.KeyObservations
type ObservationLog struct {
	list *records.List[Observation]
	now  func() time.Time
}

// NewObservationLog creates the observation log over store
func NewObservationLog(store storage.Store) *ObservationLog {
	return &ObservationLog{
		list: records.NewList[Observation](store, storage.KeyObservations),
		now:  time.Now,
	}
}

// List returns all recorded observations, oldest first
func (l *ObservationLog) List(ctx context.Context) ([]Observation, error) {
	return l.list.Load(ctx)
}

// Record stamps the observation with its id and timestamp and appends it
func (l *ObservationLog) Record(ctx context.Context, obs Observation) (Observation, error) {
	if strings.TrimSpace(obs.PatientID) == "" {
		return Observation{}, ErrMissingPatientID
	}
	now := l.now().UTC()
	obs.ID = now.UnixMilli()
	obs.Timestamp = now

	if _, err := l.list.Append(ctx, obs); err != nil {
		return Observation{}, err
	}

	log.Info().
		Str("patient_id", obs.PatientID).
		Int64("observation_id", obs.ID).
		Msg("Patient data recorded")

	return obs, nil
}
