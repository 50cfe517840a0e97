package config

import "time"

// DefaultConfig returns a Config with sensible defaults. The poll
// cadences match the backend's expectations: stats every 30s,
// engagement every 15s.
func DefaultConfig() *Config {
	return &Config{
		BackendURL:     "http://localhost:3000",
		TimeoutSeconds: 15,
		Poll: PollConfig{
			StatsSeconds:      30,
			EngagementSeconds: 15,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StatsInterval returns the dashboard-stats staleness window.
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.Poll.StatsSeconds) * time.Second
}

// EngagementInterval returns the engagement-feed staleness window.
func (c *Config) EngagementInterval() time.Duration {
	return time.Duration(c.Poll.EngagementSeconds) * time.Second
}
