package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init creates an example configuration file at the given path.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Repo: RepoConfig{
			Path:      "/home/openclaw/prediction-markets",
			Remote:    DefaultRemote,
			Branch:    DefaultBranch,
			Artifacts: append([]string(nil), defaultArtifacts...),
			Auth: &AuthConfig{
				Type:  "token",
				Token: "${PREDMARKETS_GIT_TOKEN}",
			},
			Identity: &Identity{
				Name:  "predmarkets-bot",
				Email: "bot@example.com",
			},
		},
		Generator: GeneratorConfig{
			Command: append([]string(nil), DefaultGeneratorCommand...),
		},
		Market: MarketConfig{
			Timezone:  DefaultTimezone,
			UserAgent: DefaultUserAgent,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
