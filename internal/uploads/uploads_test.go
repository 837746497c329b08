package uploads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, m *Manager, id string, want JobStatus) Job {
	t.Helper()
	var job Job
	require.Eventually(t, func() bool {
		got, err := m.Get(id)
		if err != nil {
			return false
		}
		job = got
		return got.Status == want
	}, 2*time.Second, 2*time.Millisecond)
	return job
}

func TestManager_Start(t *testing.T) {
	m := NewManager(WithStepInterval(time.Millisecond))
	defer m.Close()

	job, err := m.Start([]FileInput{
		{Name: "vitals.csv", Size: 2048, Type: "text/csv"},
		{Name: "labs.json", Size: 512, Type: "application/json"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, JobUploading, job.Status)
	require.Len(t, job.Files, 2)
	for _, f := range job.Files {
		assert.Equal(t, FilePending, f.Status)
		assert.Equal(t, 0, f.Progress)
	}

	done := waitForStatus(t, m, job.ID, JobCompleted)
	assert.Equal(t, 100, done.Progress)
	for _, f := range done.Files {
		assert.Equal(t, FileCompleted, f.Status)
		assert.Equal(t, 100, f.Progress)
	}
}

func TestManager_StartEmpty(t *testing.T) {
	m := NewManager()
	defer m.Close()

	_, err := m.Start(nil)
	assert.ErrorIs(t, err, ErrNoFiles)
	assert.Equal(t, "Please select files first", err.Error())
}

func TestManager_ProgressAdvancesInSteps(t *testing.T) {
	m := NewManager(WithStepInterval(time.Hour))
	defer m.Close()

	job, err := m.Start([]FileInput{{Name: "a.csv"}})
	require.NoError(t, err)

	for i := 1; i <= 19; i++ {
		assert.False(t, m.step(job.ID))
		got, err := m.Get(job.ID)
		require.NoError(t, err)
		assert.Equal(t, i*ProgressStep, got.Progress)
		assert.Equal(t, FilePending, got.Files[0].Status)
	}
	assert.True(t, m.step(job.ID))

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, got.Status)
}

func TestManager_RemoveFile(t *testing.T) {
	m := NewManager(WithStepInterval(time.Hour))
	defer m.Close()

	job, err := m.Start([]FileInput{{Name: "a.csv"}, {Name: "b.csv"}})
	require.NoError(t, err)

	updated, err := m.RemoveFile(job.ID, job.Files[0].ID)
	require.NoError(t, err)
	require.Len(t, updated.Files, 1)
	assert.Equal(t, "b.csv", updated.Files[0].Name)

	_, err = m.RemoveFile(job.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.RemoveFile("missing", job.Files[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_Close(t *testing.T) {
	m := NewManager(WithStepInterval(time.Hour))

	job, err := m.Start([]FileInput{{Name: "a.csv"}})
	require.NoError(t, err)

	m.Close()

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobCancelled, got.Status)

	_, err = m.Start([]FileInput{{Name: "b.csv"}})
	assert.ErrorIs(t, err, ErrClosed)

	// closing twice is fine
	m.Close()
}

func TestManager_RemoveLastFileCancelsJob(t *testing.T) {
	m := NewManager(WithStepInterval(time.Hour))
	defer m.Close()

	job, err := m.Start([]FileInput{{Name: "a.csv"}})
	require.NoError(t, err)

	removed, err := m.RemoveFile(job.ID, job.Files[0].ID)
	require.NoError(t, err)
	assert.Empty(t, removed.Files)
	assert.Equal(t, JobCancelled, removed.Status)
	require.NotNil(t, removed.FinishedAt)

	_, err = m.Get(job.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// the job goroutine sees the job is gone and never completes it
	assert.True(t, m.step(job.ID))
}

func TestManager_FinishedJobsExpire(t *testing.T) {
	now := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	m := NewManager(
		WithStepInterval(time.Hour),
		WithRetention(time.Minute),
		WithClock(func() time.Time { return now }),
	)
	defer m.Close()

	finished, err := m.Start([]FileInput{{Name: "a.csv"}})
	require.NoError(t, err)
	for !m.step(finished.ID) {
	}
	running, err := m.Start([]FileInput{{Name: "b.csv"}})
	require.NoError(t, err)

	got, err := m.Get(finished.ID)
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, got.Status)
	require.NotNil(t, got.FinishedAt)
	assert.Equal(t, now, *got.FinishedAt)

	now = now.Add(2 * time.Minute)

	_, err = m.Get(finished.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = m.Get(running.ID)
	require.NoError(t, err)
	assert.Equal(t, JobUploading, got.Status)
}
