// Package config loads and validates the meshbuild configuration file.
package config

import (
	"time"

	"github.com/storefront-tools/meshbuild/internal/meshconfig"
	"github.com/storefront-tools/meshbuild/internal/retry"
)

// Config represents the application configuration
type Config struct {
	Environments  map[string]Environment `yaml:"environments"`
	Mesh          MeshSettings           `yaml:"mesh"`
	Caching       CachingConfig          `yaml:"caching"`
	Batching      BatchingConfig         `yaml:"batching"`
	API           APIPaths               `yaml:"api"`
	Deploy        DeployConfig           `yaml:"deploy"`
	Watch         WatchConfig            `yaml:"watch,omitempty"`
	History       HistoryConfig          `yaml:"history,omitempty"`
	Notifications *NotificationsConfig   `yaml:"notifications,omitempty"`
}

// Environment is one deployment target (staging, production, ...).
type Environment struct {
	CommerceBaseURL string `yaml:"commerce_base_url"`
	Production      bool   `yaml:"production,omitempty"`
}

// MeshSettings locates the mesh inputs and outputs and carries credentials.
type MeshSettings struct {
	APIKey       string                     `yaml:"api_key"`
	Template     string                     `yaml:"template"`      // resolver template path
	Artifact     string                     `yaml:"artifact"`      // generated resolver path
	ConfigOutput string                     `yaml:"config_output"` // mesh.json path
	Sources      []meshconfig.Source        `yaml:"sources"`
	TypeDefs     meshconfig.TypeDefs        `yaml:"additional_type_defs,omitempty"`
	Resolvers    []string                   `yaml:"additional_resolvers,omitempty"`
	Response     *meshconfig.ResponseConfig `yaml:"response_config,omitempty"`
}

// CachingConfig holds the TTLs substituted into the resolver template.
type CachingConfig struct {
	DefaultTTLSeconds   int `yaml:"default_ttl_seconds,omitempty"`
	ProductTTLSeconds   int `yaml:"product_ttl_seconds,omitempty"`
	CategoryTTLSeconds  int `yaml:"category_ttl_seconds,omitempty"`
	InventoryTTLSeconds int `yaml:"inventory_ttl_seconds,omitempty"`
}

// BatchingConfig holds the batching thresholds substituted into the template.
type BatchingConfig struct {
	MaxBatchSize    int `yaml:"max_batch_size,omitempty"`
	BatchWaitMillis int `yaml:"batch_wait_millis,omitempty"`
}

// APIPaths holds the Commerce API path fragments used by the resolvers.
type APIPaths struct {
	GraphQLPath   string `yaml:"graphql_path,omitempty"`
	CatalogPath   string `yaml:"catalog_path,omitempty"`
	InventoryPath string `yaml:"inventory_path,omitempty"`
}

// DeployConfig bounds the deployment state machine. Durations are "30s"-style
// strings parsed with time.ParseDuration during validation.
type DeployConfig struct {
	MaxSubmitRetries  int    `yaml:"max_submit_retries,omitempty"`
	PollInterval      string `yaml:"poll_interval,omitempty"`
	MaxPollAttempts   int    `yaml:"max_poll_attempts,omitempty"`
	SubmitBackoffMode string `yaml:"submit_backoff_mode,omitempty"` // fixed|linear|exponential
	SubmitBackoffInit string `yaml:"submit_backoff_initial,omitempty"`
	SubmitBackoffMax  string `yaml:"submit_backoff_max,omitempty"`
}

// PollIntervalDuration returns the parsed poll interval. Validation guarantees
// the string parses; a zero value falls back to the default.
func (d DeployConfig) PollIntervalDuration() time.Duration {
	return parseDurationOr(d.PollInterval, 30*time.Second)
}

// SubmitPolicy converts the deploy settings into a retry policy for the
// submit loop.
func (d DeployConfig) SubmitPolicy() retry.Policy {
	// MaxRetries counts retries after the first attempt.
	return retry.NewPolicy(
		retry.BackoffMode(d.SubmitBackoffMode),
		parseDurationOr(d.SubmitBackoffInit, 0),
		parseDurationOr(d.SubmitBackoffMax, 0),
		d.MaxSubmitRetries-1,
	)
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMillis     int    `yaml:"debounce_millis,omitempty"`
	StatusSyncInterval string `yaml:"status_sync_interval,omitempty"`
	MetricsAddr        string `yaml:"metrics_addr,omitempty"`
}

// StatusSyncDuration returns the parsed periodic status sync interval.
func (w WatchConfig) StatusSyncDuration() time.Duration {
	return parseDurationOr(w.StatusSyncInterval, 5*time.Minute)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// HistoryConfig locates the run history database.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotificationsConfig configures optional NATS event publishing.
type NotificationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}
