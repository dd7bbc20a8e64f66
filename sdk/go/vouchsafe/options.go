package vouchsafe

import "time"

// Option configures a Gate at creation time.
type Option func(*gateConfig)

type gateConfig struct {
	agentID       string
	configPath    string
	dbPath        string
	journalPath   string
	maxDefers     int
	maxPendingAge time.Duration
}

// WithAgentID sets the default agent id attached to proposals.
func WithAgentID(id string) Option {
	return func(c *gateConfig) { c.agentID = id }
}

// WithConfig sets the path to a vouchsafe config YAML file.
func WithConfig(path string) Option {
	return func(c *gateConfig) { c.configPath = path }
}

// WithStorePaths overrides the seal database and journal locations.
func WithStorePaths(db, journal string) Option {
	return func(c *gateConfig) {
		c.dbPath = db
		c.journalPath = journal
	}
}

// WithMaxDefers overrides the defer bound.
func WithMaxDefers(n int) Option {
	return func(c *gateConfig) { c.maxDefers = n }
}

// WithMaxPendingAge overrides how long a queued proposal may wait
// before the sweeper expires it.
func WithMaxPendingAge(d time.Duration) Option {
	return func(c *gateConfig) { c.maxPendingAge = d }
}

// GuardOption configures a single Guard call.
type GuardOption func(*guardConfig)

type guardConfig struct {
	agentID string
}

// GuardWithAgentID overrides the gate-level agent id for this guard.
func GuardWithAgentID(id string) GuardOption {
	return func(g *guardConfig) { g.agentID = id }
}
