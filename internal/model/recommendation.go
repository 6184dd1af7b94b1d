package model

import "sort"

// RecommendationKind discriminates the leveling action variants.
type RecommendationKind string

const (
	KindDelay      RecommendationKind = "delay"
	KindReallocate RecommendationKind = "reallocate"
	KindSplit      RecommendationKind = "split"
)

// Recommendation is a proposed leveling action for one conflicting task
// pair. It is a closed tagged union: Delay, Reallocate, and Split are the
// only variants, each carrying its own payload plus a severity and a
// human-readable rationale.
type Recommendation interface {
	Kind() RecommendationKind
	// Target is the task the action would mutate.
	Target() Task
	SeverityLevel() Severity
	Rationale() string
}

// Delay proposes shifting the target task past the kept task's end date.
type Delay struct {
	Task                   Task
	DelayDays              int
	NewStart               Date
	NewEnd                 Date
	ImpactedSuccessorCount int
	ViolatesDeadline       bool
	Severity               Severity
	Reason                 string
}

func (d Delay) Kind() RecommendationKind { return KindDelay }
func (d Delay) Target() Task             { return d.Task }
func (d Delay) SeverityLevel() Severity  { return d.Severity }
func (d Delay) Rationale() string        { return d.Reason }

// Reallocate proposes replacing the conflicted resource on the target task
// with an alternative of the same type.
type Reallocate struct {
	Task             Task
	FromResourceID   string
	ToResourceID     string
	AlternativeCount int
	Severity         Severity
	Reason           string
}

func (r Reallocate) Kind() RecommendationKind { return KindReallocate }
func (r Reallocate) Target() Task             { return r.Task }
func (r Reallocate) SeverityLevel() Severity  { return r.Severity }
func (r Reallocate) Rationale() string        { return r.Reason }

// Split proposes running the target task's work in parallel between the
// original resource and an alternative. Applying it is dual-assignment in
// this version: the secondary resource is added without removing the
// primary.
type Split struct {
	Task                Task
	PrimaryResourceID   string
	SecondaryResourceID string
	Severity            Severity
	Reason              string
}

func (s Split) Kind() RecommendationKind { return KindSplit }
func (s Split) Target() Task             { return s.Task }
func (s Split) SeverityLevel() Severity  { return s.Severity }
func (s Split) Rationale() string        { return s.Reason }

// SortRecommendations orders the list ascending by severity rank
// (critical first). The sort is stable so per-conflict emission order is
// preserved within a rank.
func SortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].SeverityLevel().Rank() < recs[j].SeverityLevel().Rank()
	})
}
