package api

import (
	"context"
	"sync"
	"time"

	"github.com/samcharles93/ffaudio/pkg/fastfile"
)

type jobRecord struct {
	Job    Job
	cancel context.CancelFunc
}

// JobStore keeps every job of the server's lifetime and admits one running
// job at a time.
type JobStore struct {
	mu     sync.Mutex
	jobs   map[string]*jobRecord
	active string

	// Snapshot of the session published by finished jobs.
	profile string
	sounds  []fastfile.Sound
}

func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*jobRecord),
	}
}

// Start records a running job. It fails with ErrBusy while another job is
// running.
func (s *JobStore) Start(kind JobKind, cancel context.CancelFunc, now time.Time) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != "" {
		return Job{}, ErrBusy
	}
	job := Job{
		ID:        newJobID(),
		Object:    "job",
		Kind:      kind,
		Status:    JobRunning,
		CreatedAt: now.Unix(),
	}
	s.jobs[job.ID] = &jobRecord{Job: job, cancel: cancel}
	s.active = job.ID
	return job, nil
}

func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return rec.Job, true
}

// Busy reports whether a job is running.
func (s *JobStore) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != ""
}

func (s *JobStore) SetProgress(id string, progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.jobs[id]; ok && rec.Job.Status == JobRunning {
		rec.Job.Progress = progress
	}
}

// Finish moves a running job to its final state and frees the worker slot.
// update fills in the result fields.
func (s *JobStore) Finish(id string, status JobStatus, now time.Time, update func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		return
	}
	completedAt := now.Unix()
	rec.Job.Status = status
	rec.Job.CompletedAt = &completedAt
	if status == JobCompleted {
		rec.Job.Progress = 100
	}
	if update != nil {
		update(&rec.Job)
	}
	if rec.cancel != nil {
		rec.cancel()
		rec.cancel = nil
	}
	if s.active == id {
		s.active = ""
	}
}

// Cancel asks a running job to stop. The job reaches the cancelled state
// once the worker observes the request.
func (s *JobStore) Cancel(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	if rec.Job.Status == JobRunning && rec.cancel != nil {
		rec.cancel()
	}
	return rec.Job, true
}

// CancelActive cancels the running job, if any, and returns its id.
func (s *JobStore) CancelActive() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.jobs[s.active]; ok && rec.cancel != nil {
		rec.cancel()
	}
	return s.active
}

// Publish replaces the loaded snapshot served to readers.
func (s *JobStore) Publish(profile string, sounds []fastfile.Sound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
	s.sounds = sounds
}

// Loaded returns the current snapshot.
func (s *JobStore) Loaded() (string, []fastfile.Sound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.sounds
}
