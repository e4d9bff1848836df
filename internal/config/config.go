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

// Package config defines the application configuration, loaded from TOML
// files. Loading is hierarchical: a base file (.env.toml) is read first and a
// runtime-specific file (.env.<runtime>.toml) overwrites any values it sets.
// The config directory and runtime name come from environment variables so
// the same binary runs unchanged across local, test and production setups.
package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	// EnvConfigFilePrefix names the directory holding the TOML files.
	EnvConfigFilePrefix = "SCENES_CONFIG_PREFIX"
	// EnvConfigRuntime selects the override file (e.g. "local", "test").
	EnvConfigRuntime = "SCENES_RUNTIME"
)

// Application holds general service settings.
type Application struct {
	Name string `toml:"name"` // Service name used in telemetry.
	// DataDir is the root directory for extracted keyframe images; one
	// sub-directory is created per input video.
	DataDir string `toml:"data_dir"`
	// ThreadPoolSize caps how many videos are processed concurrently.
	ThreadPoolSize int `toml:"thread_pool_size"`
	// JobTimeoutSeconds is the wall-clock budget applied to one video job.
	// Expiry cancels the job; a partially processed video is not resumable.
	JobTimeoutSeconds int    `toml:"job_timeout_seconds"`
	ListenAddress     string `toml:"listen_address"`
}

// Detector holds the scene-detection thresholds and weights. Zero values are
// replaced with the documented defaults by model.DefaultOptions, so a config
// file only needs to name the values it changes.
type Detector struct {
	TargetFPS        float64 `toml:"target_fps"`         // Samples per second of video.
	AbsMin           float64 `toml:"abs_min"`            // Combined-similarity cut threshold.
	MinSceneLength   float64 `toml:"min_scene_length"`   // Seconds; floor on scene duration.
	StructuralWeight float64 `toml:"structural_weight"`  // Raw SSIM weight.
	MaskedWeight     float64 `toml:"masked_weight"`      // Face-masked SSIM weight.
	TextWeight       float64 `toml:"text_weight"`        // OCR-overlap weight.
	FaceMasking      bool    `toml:"face_masking"`       // Enable presenter masking.
	OCRSimilarity    bool    `toml:"ocr_similarity"`     // Enable the OCR-overlap signal.
	CascadeFile      string  `toml:"cascade_file"`       // Haar cascade model path.
	SimilarityOCRMin float64 `toml:"similarity_ocr_min"` // Confidence floor, similarity pass.
	ExtractOCRMin    float64 `toml:"extract_ocr_min"`    // Confidence floor, extraction pass.
	TitleOCRMin      float64 `toml:"title_ocr_min"`      // Confidence floor, title pass.
}

// OCR holds the Tesseract engine settings.
type OCR struct {
	Language string `toml:"language"` // Tesseract language pack, e.g. "eng".
	// RateLimit bounds OCR invocations per second across the process so that
	// concurrent video jobs do not starve each other of the engine.
	RateLimit int `toml:"rate_limit"`
}

// Config is the root configuration container.
type Config struct {
	Application Application `toml:"application"`
	Detector    Detector    `toml:"detector"`
	OCR         OCR         `toml:"ocr"`
}

// NewConfig returns a Config with serviceable fallbacks for everything a
// config file might omit.
func NewConfig() *Config {
	return &Config{
		Application: Application{
			Name:              "scene-detect-server",
			DataDir:           "data",
			ThreadPoolSize:    2,
			JobTimeoutSeconds: 1800,
			ListenAddress:     ":8080",
		},
		OCR: OCR{Language: "eng", RateLimit: 8},
	}
}

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates baseConfig from the base TOML file and then from the
// runtime-specific override file, when either exists. Decode failures are
// fatal: a malformed config file is an operator error, not a runtime
// condition to tolerate.
func LoadConfig(baseConfig interface{}) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "local"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	if fileExists(baseConfigFileName) {
		if _, err := toml.DecodeFile(baseConfigFileName, baseConfig); err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	if fileExists(envConfigFileName) {
		if _, err := toml.DecodeFile(envConfigFileName, baseConfig); err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}
}
