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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const baseToml = `
[application]
name = "scene-detect-test"
data_dir = "/tmp/scene-data"
thread_pool_size = 4

[detector]
target_fps = 2.0
abs_min = 0.7
face_masking = true

[ocr]
language = "eng"
rate_limit = 8
`

const overrideToml = `
[detector]
abs_min = 0.5

[ocr]
rate_limit = 2
`

func writeConfigFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseToml), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.unit.toml"), []byte(overrideToml), 0o644))
	return dir
}

func TestLoadConfigBaseOnly(t *testing.T) {
	dir := writeConfigFiles(t)
	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "missing-runtime")

	cfg := NewConfig()
	LoadConfig(cfg)

	assert.Equal(t, "scene-detect-test", cfg.Application.Name)
	assert.Equal(t, 4, cfg.Application.ThreadPoolSize)
	assert.Equal(t, 0.7, cfg.Detector.AbsMin)
	assert.True(t, cfg.Detector.FaceMasking)
}

func TestLoadConfigRuntimeOverride(t *testing.T) {
	dir := writeConfigFiles(t)
	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "unit")

	cfg := NewConfig()
	LoadConfig(cfg)

	// Overridden values.
	assert.Equal(t, 0.5, cfg.Detector.AbsMin)
	assert.Equal(t, 2, cfg.OCR.RateLimit)
	// Values from the base file survive the overlay.
	assert.Equal(t, "scene-detect-test", cfg.Application.Name)
	assert.Equal(t, 2.0, cfg.Detector.TargetFPS)
}

func TestLoadConfigKeepsDefaultsWhenFilesAbsent(t *testing.T) {
	t.Setenv(EnvConfigFilePrefix, t.TempDir())
	t.Setenv(EnvConfigRuntime, "local")

	cfg := NewConfig()
	LoadConfig(cfg)

	assert.Equal(t, "scene-detect-server", cfg.Application.Name)
	assert.Equal(t, ":8080", cfg.Application.ListenAddress)
	assert.Equal(t, "eng", cfg.OCR.Language)
}
