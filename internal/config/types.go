package config

// PollConfig sets the dashboard refresh cadences in seconds.
type PollConfig struct {
	StatsSeconds      int `yaml:"stats_seconds" koanf:"stats_seconds"`
	EngagementSeconds int `yaml:"engagement_seconds" koanf:"engagement_seconds"`
}

// Config is the top-level aidesk configuration, corresponding to
// .aidesk.yml.
type Config struct {
	BackendURL      string     `yaml:"backend_url" koanf:"backend_url"`
	TimeoutSeconds  int        `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	CredentialsFile string     `yaml:"credentials_file" koanf:"credentials_file"`
	Poll            PollConfig `yaml:"poll" koanf:"poll"`
}
