// Package uploads simulates file upload jobs with timer-driven progress.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/metrics"
)

const (
	// DefaultStepInterval is the delay between progress steps
	DefaultStepInterval = 300 * time.Millisecond
	// ProgressStep is how much progress advances per step
	ProgressStep = 5
	// DefaultRetention is how long a finished job stays queryable
	DefaultRetention = 10 * time.Minute
)

var (
	// ErrNoFiles is returned when an upload has no files
	ErrNoFiles = errors.New("Please select files first")
	// ErrNotFound is returned for an unknown job or file id
	ErrNotFound = errors.New("upload not found")
	// ErrClosed is returned once the manager has shut down
	ErrClosed = errors.New("upload manager closed")
)

// FileStatus is the state of one queued file
type FileStatus string

const (
	FilePending   FileStatus = "pending"
	FileCompleted FileStatus = "completed"
	FileError     FileStatus = "error"
)

// JobStatus is the state of an upload job
type JobStatus string

const (
	JobUploading JobStatus = "uploading"
	JobCompleted JobStatus = "completed"
	JobCancelled JobStatus = "cancelled"
)

// FileInput describes a file to upload
type FileInput struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// File is a queued file
type File struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Size     int64      `json:"size"`
	Type     string     `json:"type"`
	Progress int        `json:"progress"`
	Status   FileStatus `json:"status"`
}

// Job is one upload of a batch of files
type Job struct {
	ID         string     `json:"id"`
	Status     JobStatus  `json:"status"`
	Progress   int        `json:"progress"`
	Files      []File     `json:"files"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

func (j *Job) finish(status JobStatus, at time.Time) {
	j.Status = status
	j.FinishedAt = &at
}

func (j *Job) clone() Job {
	out := *j
	out.Files = make([]File, len(j.Files))
	copy(out.Files, j.Files)
	if j.FinishedAt != nil {
		at := *j.FinishedAt
		out.FinishedAt = &at
	}
	return out
}

// Manager runs upload jobs
type Manager struct {
	mu        sync.Mutex
	jobs      map[string]*Job
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closed    bool
}

// Option configures a Manager
type Option func(*Manager)

// WithStepInterval overrides DefaultStepInterval
func WithStepInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// WithRetention overrides DefaultRetention
func WithRetention(d time.Duration) Option {
	return func(m *Manager) { m.retention = d }
}

// WithClock overrides the time source used for job timestamps
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an upload manager
func NewManager(opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		jobs:      make(map[string]*Job),
		interval:  DefaultStepInterval,
		retention: DefaultRetention,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start queues files as pending and starts advancing the job
func (m *Manager) Start(files []FileInput) (Job, error) {
	if len(files) == 0 {
		metrics.RecordUploadJob("rejected")
		return Job{}, ErrNoFiles
	}

	job := &Job{
		ID:        uuid.NewString(),
		Status:    JobUploading,
		Files:     make([]File, 0, len(files)),
		CreatedAt: m.now().UTC(),
	}
	for _, f := range files {
		job.Files = append(job.Files, File{
			ID:     uuid.NewString(),
			Name:   f.Name,
			Size:   f.Size,
			Type:   f.Type,
			Status: FilePending,
		})
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Job{}, ErrClosed
	}
	m.prune()
	m.jobs[job.ID] = job
	snapshot := job.clone()
	m.wg.Add(1)
	m.mu.Unlock()

	log.Info().Str("job_id", job.ID).Int("files", len(files)).Msgf("%d file(s) added to upload queue", len(files))

	go m.run(job.ID)
	return snapshot, nil
}

func (m *Manager) run(id string) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			m.mu.Lock()
			job, ok := m.jobs[id]
			cancelled := ok && job.Status == JobUploading
			if cancelled {
				job.finish(JobCancelled, m.now().UTC())
			}
			m.mu.Unlock()
			if cancelled {
				metrics.RecordUploadJob("cancelled")
				log.Warn().Str("job_id", id).Msg("Upload cancelled")
			}
			return
		case <-ticker.C:
			if m.step(id) {
				return
			}
		}
	}
}

// step advances job id and reports whether it has finished
func (m *Manager) step(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok || job.Status != JobUploading {
		return true
	}
	job.Progress += ProgressStep
	if job.Progress < 100 {
		return false
	}

	job.Progress = 100
	job.finish(JobCompleted, m.now().UTC())
	for i := range job.Files {
		job.Files[i].Progress = 100
		job.Files[i].Status = FileCompleted
	}
	metrics.RecordUploadJob("completed")
	log.Info().Str("job_id", id).Msgf("Successfully uploaded %d file(s)", len(job.Files))
	return true
}

// prune forgets jobs finished longer than the retention ago; m.mu must be held
func (m *Manager) prune() {
	cutoff := m.now().Add(-m.retention)
	for id, job := range m.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}

// Get returns a snapshot of job id
func (m *Manager) Get(id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return job.clone(), nil
}

// RemoveFile drops a file from job id. Removing the last file of a running
// job cancels it, and the job is forgotten.
func (m *Manager) RemoveFile(id, fileID string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	idx := -1
	for i, f := range job.Files {
		if f.ID == fileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Job{}, fmt.Errorf("%w: file %s", ErrNotFound, fileID)
	}

	job.Files = append(job.Files[:idx], job.Files[idx+1:]...)
	if len(job.Files) > 0 {
		return job.clone(), nil
	}

	if job.Status == JobUploading {
		job.finish(JobCancelled, m.now().UTC())
		metrics.RecordUploadJob("cancelled")
		log.Info().Str("job_id", id).Msg("Upload cancelled, no files left")
	}
	delete(m.jobs, id)
	return job.clone(), nil
}

// Close cancels running jobs and waits for them to stop
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}
