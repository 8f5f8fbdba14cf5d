package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
	"github.com/storefront-tools/meshbuild/internal/meshconfig"
)

// Load loads configuration from the specified file. Environment variables
// referenced as ${VAR} in the YAML are expanded after .env/.env.local have
// been loaded, so secrets (the mesh API key) stay out of the config file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; absence is not an error.
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, mberrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, mberrors.ConfigLoadFailed(configPath, err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, mberrors.ConfigLoadFailed(configPath, err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadEnvFiles loads the first .env file found. Existing process environment
// variables are never overwritten.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			return
		}
	}
}

// applyDefaults fills unset fields with working defaults.
func (c *Config) applyDefaults() {
	if c.Mesh.Template == "" {
		c.Mesh.Template = "resolvers.tmpl.js"
	}
	if c.Mesh.Artifact == "" {
		c.Mesh.Artifact = "build/resolvers.js"
	}
	if c.Mesh.ConfigOutput == "" {
		c.Mesh.ConfigOutput = "mesh.json"
	}
	if len(c.Mesh.Resolvers) == 0 {
		c.Mesh.Resolvers = []string{"./" + c.Mesh.Artifact}
	}

	if c.Caching.DefaultTTLSeconds == 0 {
		c.Caching.DefaultTTLSeconds = 300
	}
	if c.Caching.ProductTTLSeconds == 0 {
		c.Caching.ProductTTLSeconds = c.Caching.DefaultTTLSeconds
	}
	if c.Caching.CategoryTTLSeconds == 0 {
		c.Caching.CategoryTTLSeconds = c.Caching.DefaultTTLSeconds
	}
	if c.Caching.InventoryTTLSeconds == 0 {
		c.Caching.InventoryTTLSeconds = 60
	}

	if c.Batching.MaxBatchSize == 0 {
		c.Batching.MaxBatchSize = 20
	}
	if c.Batching.BatchWaitMillis == 0 {
		c.Batching.BatchWaitMillis = 10
	}

	if c.API.GraphQLPath == "" {
		c.API.GraphQLPath = "/graphql"
	}
	if c.API.CatalogPath == "" {
		c.API.CatalogPath = "/rest/all/V1/products"
	}
	if c.API.InventoryPath == "" {
		c.API.InventoryPath = "/rest/all/V1/inventory"
	}

	if c.Deploy.MaxSubmitRetries == 0 {
		c.Deploy.MaxSubmitRetries = 3
	}
	if c.Deploy.PollInterval == "" {
		c.Deploy.PollInterval = "30s"
	}
	if c.Deploy.MaxPollAttempts == 0 {
		c.Deploy.MaxPollAttempts = 20
	}

	if c.Watch.DebounceMillis == 0 {
		c.Watch.DebounceMillis = 500
	}
	if c.Watch.StatusSyncInterval == "" {
		c.Watch.StatusSyncInterval = "5m"
	}
	if c.Watch.MetricsAddr == "" {
		c.Watch.MetricsAddr = ":9464"
	}

	if c.History.Path == "" {
		c.History.Path = ".meshbuild/history.db"
	}
}

// Validate checks the invariants a build or deploy depends on.
func (c *Config) Validate() error {
	if len(c.Environments) == 0 {
		return mberrors.ConfigRequired("environments")
	}
	for name, env := range c.Environments {
		if env.CommerceBaseURL == "" {
			return mberrors.ValidationFailed(
				fmt.Sprintf("environments.%s.commerce_base_url", name), "must be set")
		}
	}
	if len(c.Mesh.Sources) == 0 {
		return mberrors.ConfigRequired("mesh.sources")
	}
	for _, src := range c.Mesh.Sources {
		if src.Name == "" {
			return mberrors.ValidationFailed("mesh.sources", "source without a name")
		}
		if src.Handler.Endpoint() == "" {
			return mberrors.ValidationFailed("mesh.sources", "source without a handler endpoint").
				WithContext("source", src.Name)
		}
	}
	if c.Deploy.MaxSubmitRetries < 1 {
		return mberrors.ValidationFailed("deploy.max_submit_retries", "must be at least 1")
	}
	if c.Deploy.MaxPollAttempts < 1 {
		return mberrors.ValidationFailed("deploy.max_poll_attempts", "must be at least 1")
	}
	for field, raw := range map[string]string{
		"deploy.poll_interval":          c.Deploy.PollInterval,
		"deploy.submit_backoff_initial": c.Deploy.SubmitBackoffInit,
		"deploy.submit_backoff_max":     c.Deploy.SubmitBackoffMax,
		"watch.status_sync_interval":    c.Watch.StatusSyncInterval,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return mberrors.ValidationFailed(field, "invalid duration").WithContext("value", raw)
		}
	}
	if c.Notifications != nil && c.Notifications.Enabled {
		if c.Notifications.NATSURL == "" || c.Notifications.Subject == "" {
			return mberrors.ValidationFailed("notifications", "nats_url and subject are required when enabled")
		}
	}
	return nil
}

// Environment returns the named environment, defaulting to "staging" for an
// empty name.
func (c *Config) Environment(name string) (Environment, error) {
	if name == "" {
		name = "staging"
	}
	env, ok := c.Environments[name]
	if !ok {
		return Environment{}, mberrors.ValidationFailed("environment", "unknown environment").
			WithContext("name", name)
	}
	return env, nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Environments: map[string]Environment{
			"staging": {CommerceBaseURL: "https://staging.store.example"},
			"production": {
				CommerceBaseURL: "https://www.store.example",
				Production:      true,
			},
		},
		Mesh: MeshSettings{
			APIKey:       "${MESH_API_KEY}",
			Template:     "resolvers.tmpl.js",
			Artifact:     "build/resolvers.js",
			ConfigOutput: "mesh.json",
			Sources: []meshconfig.Source{
				{
					Name: "commerce",
					Handler: meshconfig.SourceHandler{
						GraphQL: &meshconfig.GraphQLHandler{
							Endpoint: "https://staging.store.example/graphql",
						},
					},
				},
			},
		},
		Deploy: DeployConfig{
			MaxSubmitRetries: 3,
			PollInterval:     "30s",
			MaxPollAttempts:  20,
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
