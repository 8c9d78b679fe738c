package config

// Default artifact set staged after generation. These are the exact outputs the
// generator touches; nothing else may be staged.
var defaultArtifacts = []string{
	"data/prediction-markets-today.json",
	"prediction-markets-today.json",
	"prediction-markets-today.html",
	"scripts/generate_prediction_markets_today.py",
	"scripts/update_prediction_markets_today.sh",
}

// DefaultGeneratorCommand invokes this binary's own generator. Deployments that
// keep the legacy script set generator.command accordingly.
var DefaultGeneratorCommand = []string{"predmarkets", "generate"}

const (
	DefaultRemote    = "origin"
	DefaultBranch    = "main"
	DefaultTimezone  = "Asia/Shanghai"
	DefaultUserAgent = "Mozilla/5.0 (OpenClaw prediction-markets-today bot)"
)

// ApplyDefaults fills unset fields with their defaults. It is idempotent.
func (c *Config) ApplyDefaults() {
	if c.Repo.Remote == "" {
		c.Repo.Remote = DefaultRemote
	}
	if c.Repo.Branch == "" {
		c.Repo.Branch = DefaultBranch
	}
	if len(c.Repo.Artifacts) == 0 {
		c.Repo.Artifacts = append([]string(nil), defaultArtifacts...)
	}
	if len(c.Generator.Command) == 0 {
		c.Generator.Command = append([]string(nil), DefaultGeneratorCommand...)
	}
	if c.Market.Timezone == "" {
		c.Market.Timezone = DefaultTimezone
	}
	if c.Market.UserAgent == "" {
		c.Market.UserAgent = DefaultUserAgent
	}
	if c.Market.RequestTimeout == "" {
		c.Market.RequestTimeout = "20s"
	}
	if c.Market.MaxRetries <= 0 {
		c.Market.MaxRetries = 3
	}
	if c.Market.RetryInitialDelay == "" {
		c.Market.RetryInitialDelay = "1s"
	}
	if c.Market.RetryMaxDelay == "" {
		c.Market.RetryMaxDelay = "20s"
	}
	if c.Market.RetryBackoff == "" {
		c.Market.RetryBackoff = "exponential"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}
