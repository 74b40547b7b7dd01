package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mintaslang/dew/internal/types"
)

// Job is a unit of background work tracked by the host. The server only
// stores state; scheduling and execution belong to the host runtime.
type Job struct {
	ID        string
	Name      string
	Status    string
	Data      types.Value
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JobStore tracks jobs by id.
type JobStore struct {
	mutex sync.RWMutex
	jobs  map[string]*Job
}

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Create registers a pending job and returns its id.
func (s *JobStore) Create(name string, data types.Value) string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	id := uuid.NewString()
	now := time.Now()
	s.jobs[id] = &Job{
		ID:        id,
		Name:      name,
		Status:    "pending",
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id
}

// Get returns a copy of the job, if known.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// SetStatus updates a job's status.
func (s *JobStore) SetStatus(id, status string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	job.Status = status
	job.UpdatedAt = time.Now()
	return true
}

// QueueStore holds named FIFO queues of values.
type QueueStore struct {
	mutex  sync.Mutex
	queues map[string][]types.Value
}

// NewQueueStore creates an empty queue store.
func NewQueueStore() *QueueStore {
	return &QueueStore{queues: make(map[string][]types.Value)}
}

// Push appends a value to the named queue.
func (s *QueueStore) Push(name string, v types.Value) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.queues[name] = append(s.queues[name], v)
}

// Pop removes and returns the oldest value in the named queue.
func (s *QueueStore) Pop(name string) (types.Value, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	q := s.queues[name]
	if len(q) == 0 {
		return types.Null(), false
	}
	v := q[0]
	s.queues[name] = q[1:]
	return v, true
}

// Len returns the number of values waiting in the named queue.
func (s *QueueStore) Len(name string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.queues[name])
}
