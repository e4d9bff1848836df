// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package jobs runs scene-detection requests asynchronously. A lecture video
// takes minutes to analyze, far past any sane HTTP timeout, so the server
// accepts a job, returns its id immediately, and lets clients poll for the
// result. A fixed worker pool bounds how many videos are analyzed at once.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lecturelab/go-scene-detect/internal/core/model"
)

// SceneFinder is the analysis entry point the pool drives.
type SceneFinder interface {
	FindScenes(ctx context.Context, path string) ([]*model.Scene, error)
}

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job is one queued analysis request and, eventually, its result.
type Job struct {
	ID          string         `json:"id"`
	Path        string         `json:"path"`
	Status      Status         `json:"status"`
	Scenes      []*model.Scene `json:"scenes,omitempty"`
	Error       string         `json:"error,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
}

// Pool is a fixed-size worker pool over a SceneFinder.
type Pool struct {
	finder  SceneFinder
	timeout time.Duration

	mu   sync.RWMutex
	byID map[string]*Job

	queue chan string
	wg    sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewPool starts numberOfWorkers workers over finder. Each job gets its own
// deadline of timeout; a non-positive timeout means no per-job deadline.
func NewPool(finder SceneFinder, numberOfWorkers int, timeout time.Duration) *Pool {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		finder:  finder,
		timeout: timeout,
		byID:    make(map[string]*Job),
		queue:   make(chan string, 256),
		baseCtx: ctx,
		cancel:  cancel,
	}
	for w := 0; w < numberOfWorkers; w++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit queues a video for analysis and returns the pending job snapshot.
func (p *Pool) Submit(path string) Job {
	job := &Job{
		ID:          uuid.NewString(),
		Path:        path,
		Status:      StatusPending,
		SubmittedAt: time.Now(),
	}
	p.mu.Lock()
	p.byID[job.ID] = job
	p.mu.Unlock()

	p.queue <- job.ID
	return *job
}

// Get returns a snapshot of the job with the given id.
func (p *Pool) Get(id string) (Job, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	job, ok := p.byID[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Shutdown stops accepting queued work, cancels running jobs, and waits for
// the workers to exit.
func (p *Pool) Shutdown() {
	close(p.queue)
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for id := range p.queue {
		p.run(id)
	}
}

func (p *Pool) run(id string) {
	ctx := p.baseCtx
	var cancel context.CancelFunc = func() {}
	if p.timeout > 0 {
		ctx, cancel = context.WithTimeout(p.baseCtx, p.timeout)
	}
	defer cancel()

	now := time.Now()
	p.update(id, func(j *Job) {
		j.Status = StatusRunning
		j.StartedAt = &now
	})

	scenes, err := p.finder.FindScenes(ctx, p.path(id))

	done := time.Now()
	p.update(id, func(j *Job) {
		j.FinishedAt = &done
		if err != nil {
			j.Status = StatusFailed
			j.Error = err.Error()
			return
		}
		j.Status = StatusSucceeded
		j.Scenes = scenes
	})
	if err != nil {
		slog.Error("scene detection job failed", "job", id, "error", err)
	}
}

func (p *Pool) path(id string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byID[id].Path
}

func (p *Pool) update(id string, fn func(*Job)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, ok := p.byID[id]; ok {
		fn(job)
	}
}
