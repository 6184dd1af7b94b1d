package model

// ConflictType classifies whether the two overlapping tasks belong to the
// same project or span projects.
type ConflictType string

const (
	ConflictSameProject  ConflictType = "same-project"
	ConflictCrossProject ConflictType = "cross-project"
)

// Conflict is a derived finding that one resource is committed to two
// overlapping task intervals. Conflicts are recomputed fresh on every
// analysis pass and never persisted, so there is no stale-conflict state.
type Conflict struct {
	ResourceID  string       `yaml:"resource_id" json:"resource_id"`
	Task1       Task         `yaml:"task1" json:"task1"`
	Task2       Task         `yaml:"task2" json:"task2"`
	OverlapDays int          `yaml:"overlap_days" json:"overlap_days"`
	Type        ConflictType `yaml:"type" json:"type"`
	Severity    Severity     `yaml:"severity" json:"severity"`
}

// PairKey returns an order-independent key for the conflicting task pair.
// The recommender uses it to skip pairs already processed when the same two
// tasks conflict via multiple shared resources.
func (c Conflict) PairKey() string {
	if c.Task1.ID < c.Task2.ID {
		return c.Task1.ID + "|" + c.Task2.ID
	}
	return c.Task2.ID + "|" + c.Task1.ID
}
