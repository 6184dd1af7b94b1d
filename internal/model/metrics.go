package model

type Metrics struct {
	SchemaVersion int             `yaml:"schema_version"`
	FileType      string          `yaml:"file_type"`
	Counters      MetricsCounters `yaml:"counters"`
	UpdatedAt     *string         `yaml:"updated_at"`
}

type MetricsCounters struct {
	AnalysesRun          int `yaml:"analyses_run"`
	ConflictsDetected    int `yaml:"conflicts_detected"`
	RecommendationsBuilt int `yaml:"recommendations_built"`
	ResolutionsApplied   int `yaml:"resolutions_applied"`
	ApplyFailures        int `yaml:"apply_failures"`
	SnapshotRefreshes    int `yaml:"snapshot_refreshes"`
}
