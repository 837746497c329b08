// Package patients manages the persisted patient list and the selected
// patient snapshot.
package patients

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/records"
	"stealthcompany.com/icudash/internal/storage"
)

var (
	// ErrValidation is returned by Add when a required field is missing
	ErrValidation = errors.New("Please fill in all required fields.")
	// ErrNotFound is returned for an unknown patient id
	ErrNotFound = errors.New("patient not found")
)

const (
	defaultBloodPressure = "N/A"
	newPatientUpdate     = "Just now"
)

// Service reads and mutates the patient list
type Service struct {
	list     *records.List[Patient]
	selected *records.Value[Vitals]

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Service
type Option func(*Service)

// WithRand sets the id generator source
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// NewService creates a patient service over store
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		list:     records.NewSeededList(store, storage.KeyPatientList, SeedPatients()),
		selected: records.NewValue[Vitals](store, storage.KeySelectedPatient),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the stored patient list, seeding it when missing or empty
func (s *Service) List(ctx context.Context) ([]Patient, error) {
	return s.list.Load(ctx)
}

// Search returns the patients matching query
func (s *Service) Search(ctx context.Context, query string) ([]Patient, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, query), nil
}

// Get returns the first patient with id
func (s *Service) Get(ctx context.Context, id string) (Patient, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Patient{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return Patient{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Add validates the form, appends exactly one patient and persists the list.
// Ids are not checked for uniqueness.
func (s *Service) Add(ctx context.Context, in NewPatient) (Patient, error) {
	if strings.TrimSpace(in.Name) == "" || in.Age == 0 || strings.TrimSpace(in.Condition) == "" {
		return Patient{}, ErrValidation
	}
	status := in.Status
	if status == "" {
		status = StatusStable
	}
	if !status.Valid() {
		return Patient{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	p := Patient{
		ID:         in.ID,
		Name:       in.Name,
		Age:        in.Age,
		Condition:  in.Condition,
		Status:     status,
		LastUpdate: newPatientUpdate,
		Vitals: Vitals{
			HeartRate:        in.Vitals.HeartRate,
			BloodPressure:    in.Vitals.BloodPressure,
			Temperature:      in.Vitals.Temperature,
			OxygenSaturation: in.Vitals.OxygenSaturation,
			RespiratoryRate:  in.Vitals.RespiratoryRate,
		},
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	if p.Vitals.BloodPressure == "" {
		p.Vitals.BloodPressure = defaultBloodPressure
	}

	if _, err := s.list.Append(ctx, p); err != nil {
		return Patient{}, err
	}

	log.Info().
		Str("patient_id", p.ID).
		Str("status", string(p.Status)).
		Msg("Patient added")

	return p, nil
}

// Select stores the vitals of patient id as the selected-patient snapshot
func (s *Service) Select(ctx context.Context, id string) (Patient, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Patient{}, err
	}
	if err := s.selected.Save(ctx, p.Vitals); err != nil {
		return Patient{}, err
	}

	log.Debug().
		Str("patient_id", p.ID).
		Msg("Patient selected")

	return p, nil
}

// Selected returns the selected-patient snapshot
func (s *Service) Selected(ctx context.Context) (Vitals, bool, error) {
	return s.selected.Load(ctx)
}

// Summarize counts the stored patients per status
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(all), nil
}

func (s *Service) newID() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return fmt.Sprintf("P%d", 100+s.rng.Intn(900))
}

// Filter keeps patients whose name, id or condition contains query,
// ignoring case. An empty query keeps everything.
func Filter(patients []Patient, query string) []Patient {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Patient, 0, len(patients))
	for _, p := range patients {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.ID), q) ||
			strings.Contains(strings.ToLower(p.Condition), q) {
			out = append(out, p)
		}
	}
	return out
}

// Summarize counts patients per status with percentages to one decimal
func Summarize(patients []Patient) Summary {
	sum := Summary{
		Total:    len(patients),
		ByStatus: make(map[Status]int, len(Statuses)),
		Percent:  make(map[Status]float64, len(Statuses)),
	}
	for _, st := range Statuses {
		sum.ByStatus[st] = 0
		sum.Percent[st] = 0
	}
	for _, p := range patients {
		sum.ByStatus[p.Status]++
	}
	if sum.Total == 0 {
		return sum
	}
	for st, n := range sum.ByStatus {
		sum.Percent[st] = math.Round(float64(n)*1000/float64(sum.Total)) / 10
	}
	return sum
}
