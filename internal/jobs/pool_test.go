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

package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lecturelab/go-scene-detect/internal/core/model"
)

// fakeFinder returns canned results keyed by path.
type fakeFinder struct {
	scenes map[string][]*model.Scene
	err    error
	delay  time.Duration
}

func (f *fakeFinder) FindScenes(ctx context.Context, path string) ([]*model.Scene, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.scenes[path], nil
}

// waitFor polls until the job leaves the pending/running states.
func waitFor(t *testing.T, p *Pool, id string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := p.Get(id)
		assert.True(t, ok)
		if job.Status == StatusSucceeded || job.Status == StatusFailed {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return Job{}
}

func TestPoolRunsJobToCompletion(t *testing.T) {
	finder := &fakeFinder{scenes: map[string][]*model.Scene{
		"lecture.mp4": {{FrameStart: 0, FrameEnd: 100, Start: "00:00:00.000", End: "00:00:05.000"}},
	}}
	pool := NewPool(finder, 2, time.Minute)
	defer pool.Shutdown()

	job := pool.Submit("lecture.mp4")
	assert.Equal(t, StatusPending, job.Status)
	assert.NotEmpty(t, job.ID)

	done := waitFor(t, pool, job.ID)
	assert.Equal(t, StatusSucceeded, done.Status)
	assert.Len(t, done.Scenes, 1)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.FinishedAt)
	assert.Empty(t, done.Error)
}

func TestPoolRecordsFailure(t *testing.T) {
	finder := &fakeFinder{err: errors.New("decoder exploded")}
	pool := NewPool(finder, 1, time.Minute)
	defer pool.Shutdown()

	job := pool.Submit("broken.mp4")
	done := waitFor(t, pool, job.ID)
	assert.Equal(t, StatusFailed, done.Status)
	assert.Contains(t, done.Error, "decoder exploded")
	assert.Nil(t, done.Scenes)
}

func TestPoolTimeoutCancelsJob(t *testing.T) {
	finder := &fakeFinder{delay: time.Minute}
	pool := NewPool(finder, 1, 20*time.Millisecond)
	defer pool.Shutdown()

	job := pool.Submit("slow.mp4")
	done := waitFor(t, pool, job.ID)
	assert.Equal(t, StatusFailed, done.Status)
	assert.Contains(t, done.Error, context.DeadlineExceeded.Error())
}

func TestPoolUnknownJob(t *testing.T) {
	pool := NewPool(&fakeFinder{}, 1, time.Minute)
	defer pool.Shutdown()

	_, ok := pool.Get("no-such-id")
	assert.False(t, ok)
}

func TestPoolProcessesQueueWithFewWorkers(t *testing.T) {
	finder := &fakeFinder{scenes: map[string][]*model.Scene{}}
	pool := NewPool(finder, 1, time.Minute)
	defer pool.Shutdown()

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, pool.Submit("v.mp4").ID)
	}
	for _, id := range ids {
		done := waitFor(t, pool, id)
		assert.Equal(t, StatusSucceeded, done.Status)
	}
}
