package model

type Config struct {
	Project ProjectConfig  `yaml:"project"`
	Engine  EngineConfig   `yaml:"engine"`
	Policy  LevelingPolicy `yaml:"policy"`
	Store   StoreConfig    `yaml:"store"`
	Logging LoggingConfig  `yaml:"logging"`
}

type ProjectConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type EngineConfig struct {
	// Workers bounds the per-resource fan-out during conflict detection.
	Workers int `yaml:"workers"`
	// AnalysisTimeoutSec caps one Detect+Build pass.
	AnalysisTimeoutSec int `yaml:"analysis_timeout_sec"`
	// DefaultStrategy is used when the caller does not select one.
	DefaultStrategy string `yaml:"default_strategy"`
}

type StoreConfig struct {
	// DataDir holds the entity YAML files served by the store daemon.
	DataDir string `yaml:"data_dir"`
	// Socket is the UDS path the store daemon listens on.
	Socket string `yaml:"socket"`
	// RequestTimeoutSec is the fixed per-request timeout; no retries.
	RequestTimeoutSec int `yaml:"request_timeout_sec"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

const (
	defaultWorkers            = 4
	defaultAnalysisTimeoutSec = 30
	defaultRequestTimeoutSec  = 10
)

func DefaultConfig() Config {
	cfg := Config{
		Engine: EngineConfig{
			Workers:            defaultWorkers,
			AnalysisTimeoutSec: defaultAnalysisTimeoutSec,
			DefaultStrategy:    string(StrategyBalanced),
		},
		Store: StoreConfig{
			DataDir:           ".leveler/data",
			Socket:            ".leveler/store.sock",
			RequestTimeoutSec: defaultRequestTimeoutSec,
		},
		Logging: LoggingConfig{Level: "info"},
		Policy:  DefaultLevelingPolicy(),
	}
	return cfg
}

// ApplyDefaults fills unset fields so a sparse config.yaml still yields a
// runnable configuration.
func (c *Config) ApplyDefaults() {
	if c.Engine.Workers <= 0 {
		c.Engine.Workers = defaultWorkers
	}
	if c.Engine.AnalysisTimeoutSec <= 0 {
		c.Engine.AnalysisTimeoutSec = defaultAnalysisTimeoutSec
	}
	if c.Engine.DefaultStrategy == "" {
		c.Engine.DefaultStrategy = string(StrategyBalanced)
	}
	if c.Store.DataDir == "" {
		c.Store.DataDir = ".leveler/data"
	}
	if c.Store.Socket == "" {
		c.Store.Socket = ".leveler/store.sock"
	}
	if c.Store.RequestTimeoutSec <= 0 {
		c.Store.RequestTimeoutSec = defaultRequestTimeoutSec
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Policy.ApplyDefaults()
}
