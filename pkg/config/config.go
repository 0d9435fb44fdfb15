// SPDX-License-Identifier: Apache-2.0

// Package config implements ConfigStore: a process-wide, thread-safe
// holder of the connection and path settings, served and replaced as a
// JSON document by the GET/POST /api/config endpoints (posted documents are
// parsed through sigs.k8s.io/yaml). Settings are held in memory only; no
// value is read from viper or from environment variables.
package config

import (
	"encoding/json"
	"sync"

	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"
)

// Config is the full set of process-wide migration settings.
type Config struct {
	DoAllSchemas      bool   `json:"do.all-schemas"`
	DoOnlyTestSchema  string `json:"do.only-test-schema"`
	ExcludeLobData    bool   `json:"exclude.lob-data"`
	AllowLossy        bool   `json:"allow.lossy"`

	OracleURL      string `json:"oracle.url"`
	OracleUser     string `json:"oracle.user"`
	OraclePassword string `json:"oracle.password"`

	PostgresURL      string `json:"postgre.url"`
	PostgresUsername string `json:"postgre.username"`
	PostgresPassword string `json:"postgre.password"`

	PathTargetProjectDDL   string `json:"path.target-project-ddl"`
	PathTargetProjectViews string `json:"path.target-project-views"`

	// Retained for external collaborators; unused by the core.
	JavaGeneratedPackageName string `json:"java.generated-package-name"`

	// Internal tuning knobs, not part of the REST-visible document. Only
	// WorkerPoolSize and CommitInterval are read, by pkg/transfer. The job
	// service takes its pool size and retention cap from its own options,
	// and JobTimeoutExtractSeconds and FetchSize are not read: no job
	// timeout is enforced.
	WorkerPoolSize    int `json:"-"`
	JobTimeoutExtractSeconds int `json:"-"`
	JobRetentionCap   int `json:"-"`
	CommitInterval    int `json:"-"`
	FetchSize         int `json:"-"`
}

// Default returns the baseline configuration before any overlay is applied.
func Default() Config {
	return Config{
		DoAllSchemas:             true,
		ExcludeLobData:           false,
		AllowLossy:               false,
		WorkerPoolSize:           0, // pkg/transfer runs max(2, WorkerPoolSize) tables at a time
		JobTimeoutExtractSeconds: 300,
		JobRetentionCap:          1024,
		CommitInterval:           10000,
		FetchSize:                1000,
	}
}

// Store is the process-wide, concurrency-safe ConfigStore.
type Store struct {
	mu  sync.RWMutex
	cfg Config
	v   *viper.Viper
}

// NewStore builds a Store seeded with Default(). It also sets up a viper
// instance with the ORAGRES env prefix and AutomaticEnv, but Get never
// consults it, so environment variables do not change the configuration.
func NewStore() *Store {
	v := viper.New()
	v.SetEnvPrefix("ORAGRES")
	v.AutomaticEnv()

	return &Store{cfg: Default(), v: v}
}

// Get returns a snapshot of the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set overwrites the entire configuration document (POST /api/config).
func (s *Store) Set(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Reset restores the default configuration (POST /api/config/reset).
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = Default()
}

// MarshalJSON renders the current configuration as the JSON document
// served by GET /api/config.
func (s *Store) MarshalJSON() ([]byte, error) {
	cfg := s.Get()
	return json.Marshal(cfg)
}

// UnmarshalAndSet parses a JSON document (as posted to /api/config) and
// installs it atomically.
func (s *Store) UnmarshalAndSet(doc []byte) error {
	cfg := Default()
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return err
	}
	s.Set(cfg)
	return nil
}
