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

// This file defines the REST routes of the scene-detection API.
package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lecturelab/go-scene-detect/internal/core/model"
	"github.com/lecturelab/go-scene-detect/internal/phrasehints"
)

// sceneRequest names the video to analyze. The path must be reachable from
// the server's filesystem.
type sceneRequest struct {
	Path string `json:"path" binding:"required"`
}

// phraseHintRequest carries the newline-separated raw phrases collected
// across a lecture's scenes.
type phraseHintRequest struct {
	Phrases string `json:"phrases" binding:"required"`
}

// SceneRouter sets up the scene-detection endpoints.
//
// This function defines the following endpoints:
//   - POST /scenes: Analyzes a video synchronously and returns its scenes.
//     Only sensible for short clips; long lectures should use jobs.
//   - POST /scenes/jobs: Queues a video for background analysis and returns
//     the job id immediately.
//   - GET /scenes/jobs/:id: Returns the job's status and, once finished, its
//     scenes.
func SceneRouter(r *gin.RouterGroup) {
	scenes := r.Group("/scenes")
	{
		scenes.POST("", func(c *gin.Context) {
			var req sceneRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			result, err := state.workflow.FindScenes(c.Request.Context(), req.Path)
			if err != nil {
				log.Printf("Error finding scenes for %s: %v\n", req.Path, err)
				var pErr *model.PipelineError
				if errors.As(err, &pErr) && pErr.Kind == model.KindMediaUnreadable {
					c.JSON(http.StatusUnprocessableEntity, gin.H{"error": pErr.Error()})
					return
				}
				c.Status(http.StatusInternalServerError)
				return
			}
			if result == nil {
				// The file was not there; nothing was analyzed.
				c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"scenes": result})
		})

		scenes.POST("/jobs", func(c *gin.Context) {
			var req sceneRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			job := state.pool.Submit(req.Path)
			c.JSON(http.StatusAccepted, job)
		})

		scenes.GET("/jobs/:id", func(c *gin.Context) {
			job, ok := state.pool.Get(c.Param("id"))
			if !ok {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, job)
		})
	}
}

// PhraseHintRouter sets up the phrase-hint endpoint.
//
// POST /phrase-hints converts the slide text of a lecture into a
// newline-separated hint list for speech recognition.
func PhraseHintRouter(r *gin.RouterGroup) {
	hints := r.Group("/phrase-hints")
	{
		hints.POST("", func(c *gin.Context) {
			var req phraseHintRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"hints": phrasehints.ToPhraseHints(req.Phrases)})
		})
	}
}
