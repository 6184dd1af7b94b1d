package model

// LevelingPolicy names the scheduling thresholds the recommender scores
// against. Values are configurable through config.yaml so the policy stays
// auditable and testable in isolation; zero fields fall back to defaults.
type LevelingPolicy struct {
	// DelayBufferDays is added on top of the overlap gap so a shifted task
	// starts strictly after the kept task ends, covering same-day edges.
	DelayBufferDays int `yaml:"delay_buffer_days"`
	// SevereOverlapDays: overlaps longer than this are high severity.
	SevereOverlapDays int `yaml:"severe_overlap_days"`
	// ModerateOverlapDays: overlaps longer than this are medium severity.
	ModerateOverlapDays int `yaml:"moderate_overlap_days"`
	// SplitMinDurationDays: tasks longer than this qualify for a split
	// recommendation when an alternative resource exists.
	SplitMinDurationDays int `yaml:"split_min_duration_days"`
	// DefaultMaxConcurrentAssignments applies to resources that do not set
	// their own limit.
	DefaultMaxConcurrentAssignments int `yaml:"default_max_concurrent_assignments"`
}

const (
	defaultDelayBufferDays      = 2
	defaultSevereOverlapDays    = 7
	defaultModerateOverlapDays  = 3
	defaultSplitMinDurationDays = 5
	defaultMaxConcurrent        = 3
)

func DefaultLevelingPolicy() LevelingPolicy {
	return LevelingPolicy{
		DelayBufferDays:                 defaultDelayBufferDays,
		SevereOverlapDays:               defaultSevereOverlapDays,
		ModerateOverlapDays:             defaultModerateOverlapDays,
		SplitMinDurationDays:            defaultSplitMinDurationDays,
		DefaultMaxConcurrentAssignments: defaultMaxConcurrent,
	}
}

// ApplyDefaults fills unset (zero) fields with the default policy values.
func (p *LevelingPolicy) ApplyDefaults() {
	def := DefaultLevelingPolicy()
	if p.DelayBufferDays == 0 {
		p.DelayBufferDays = def.DelayBufferDays
	}
	if p.SevereOverlapDays == 0 {
		p.SevereOverlapDays = def.SevereOverlapDays
	}
	if p.ModerateOverlapDays == 0 {
		p.ModerateOverlapDays = def.ModerateOverlapDays
	}
	if p.SplitMinDurationDays == 0 {
		p.SplitMinDurationDays = def.SplitMinDurationDays
	}
	if p.DefaultMaxConcurrentAssignments == 0 {
		p.DefaultMaxConcurrentAssignments = def.DefaultMaxConcurrentAssignments
	}
}
