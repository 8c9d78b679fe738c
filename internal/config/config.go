package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Repo      RepoConfig      `yaml:"repo"`
	Generator GeneratorConfig `yaml:"generator"`
	Market    MarketConfig    `yaml:"market"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// RepoConfig describes the fixed git checkout the pipeline publishes from.
type RepoConfig struct {
	// Path is the absolute path of the pre-existing checkout. The pipeline never
	// clones; a missing or non-git path is a fatal environment error.
	Path   string `yaml:"path"`
	Remote string `yaml:"remote,omitempty"`
	// Branch is the remote branch pushed to (the local HEAD branch is pushed onto it).
	Branch string `yaml:"branch,omitempty"`
	// Artifacts is the exact set of paths staged after generation, relative to Path.
	Artifacts []string    `yaml:"artifacts,omitempty"`
	Auth      *AuthConfig `yaml:"auth,omitempty"`
	Identity  *Identity   `yaml:"identity,omitempty"`
}

// AuthConfig represents push authentication configuration.
type AuthConfig struct {
	Type     string `yaml:"type"` // "none", "ssh", "token", "basic"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// Identity is the commit author. When nil the repository's own git config is used;
// commits fail if neither is present.
type Identity struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// GeneratorConfig describes the opaque generator subprocess.
type GeneratorConfig struct {
	// Command is the argv of the generator; it runs with the repo path as working
	// directory, inheriting stdio.
	Command []string `yaml:"command,omitempty"`
	// Timeout bounds the subprocess ("0" or empty = no timeout, block until exit).
	Timeout string `yaml:"timeout,omitempty"`
}

// MarketConfig tunes the built-in report generator's data fetching.
type MarketConfig struct {
	Timezone          string `yaml:"timezone,omitempty"`
	UserAgent         string `yaml:"user_agent,omitempty"`
	RequestTimeout    string `yaml:"request_timeout,omitempty"`
	MaxRetries        int    `yaml:"max_retries,omitempty"`
	RetryInitialDelay string `yaml:"retry_initial_delay,omitempty"`
	RetryMaxDelay     string `yaml:"retry_max_delay,omitempty"`
	RetryBackoff      string `yaml:"retry_backoff,omitempty"` // fixed|linear|exponential
}

// MetricsConfig controls metrics persistence for one-shot runs.
type MetricsConfig struct {
	// Textfile, when set, receives the Prometheus registry in text exposition
	// format after each run (node_exporter textfile collector layout).
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug|info|warn|error
	Format string `yaml:"format,omitempty"` // text|json
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; absence is not an error.
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks invariants a loaded configuration must satisfy.
func (c *Config) Validate() error {
	if c.Repo.Path == "" {
		return fmt.Errorf("repo.path is required")
	}
	if len(c.Repo.Artifacts) == 0 {
		return fmt.Errorf("repo.artifacts must not be empty")
	}
	if len(c.Generator.Command) == 0 {
		return fmt.Errorf("generator.command must not be empty")
	}
	if c.Repo.Auth != nil {
		switch c.Repo.Auth.Type {
		case "", "none", "ssh", "token", "basic":
		default:
			return fmt.Errorf("unsupported auth type: %s", c.Repo.Auth.Type)
		}
	}
	return nil
}
