package engine

import (
	"fmt"
	"io"
	"time"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/sitework/leveler/internal/model"
)

// ReportView is the serializable form of a Report for YAML output. The
// recommendation sum type flattens into one row shape with a kind
// discriminator; this is presentation only, the engine API keeps the
// typed variants.
type ReportView struct {
	Strategy        string               `yaml:"strategy"`
	Generation      int                  `yaml:"generation"`
	GeneratedAt     string               `yaml:"generated_at"`
	ResourceFilter  string               `yaml:"resource_filter,omitempty"`
	Conflicts       []ConflictView       `yaml:"conflicts"`
	Recommendations []RecommendationView `yaml:"recommendations"`
}

type ConflictView struct {
	ResourceID  string `yaml:"resource_id"`
	Task1       string `yaml:"task1"`
	Task2       string `yaml:"task2"`
	OverlapDays int    `yaml:"overlap_days"`
	Type        string `yaml:"type"`
	Severity    string `yaml:"severity"`
}

type RecommendationView struct {
	Kind      string `yaml:"kind"`
	Severity  string `yaml:"severity"`
	TaskID    string `yaml:"task_id"`
	TaskName  string `yaml:"task_name"`
	Rationale string `yaml:"rationale"`

	// Delay fields
	DelayDays              int         `yaml:"delay_days,omitempty"`
	NewStart               *model.Date `yaml:"new_start,omitempty"`
	NewEnd                 *model.Date `yaml:"new_end,omitempty"`
	ImpactedSuccessorCount int         `yaml:"impacted_successors,omitempty"`
	ViolatesDeadline       bool        `yaml:"violates_deadline,omitempty"`

	// Reallocate fields
	FromResource     string `yaml:"from_resource,omitempty"`
	ToResource       string `yaml:"to_resource,omitempty"`
	AlternativeCount int    `yaml:"alternative_count,omitempty"`

	// Split fields
	PrimaryResource   string `yaml:"primary_resource,omitempty"`
	SecondaryResource string `yaml:"secondary_resource,omitempty"`
}

// View converts a report for serialization.
func (r *Report) View() ReportView {
	view := ReportView{
		Strategy:       string(r.Strategy),
		Generation:     r.Generation,
		GeneratedAt:    r.GeneratedAt.Format(time.RFC3339),
		ResourceFilter: r.ResourceFilter,
	}
	for _, c := range r.Conflicts {
		view.Conflicts = append(view.Conflicts, ConflictView{
			ResourceID:  c.ResourceID,
			Task1:       c.Task1.ID,
			Task2:       c.Task2.ID,
			OverlapDays: c.OverlapDays,
			Type:        string(c.Type),
			Severity:    string(c.Severity),
		})
	}
	for _, rec := range r.Recommendations {
		view.Recommendations = append(view.Recommendations, viewOf(rec))
	}
	return view
}

func viewOf(rec model.Recommendation) RecommendationView {
	task := rec.Target()
	view := RecommendationView{
		Kind:      string(rec.Kind()),
		Severity:  string(rec.SeverityLevel()),
		TaskID:    task.ID,
		TaskName:  task.Name,
		Rationale: rec.Rationale(),
	}

	switch r := rec.(type) {
	case model.Delay:
		start, end := r.NewStart, r.NewEnd
		view.DelayDays = r.DelayDays
		view.NewStart = &start
		view.NewEnd = &end
		view.ImpactedSuccessorCount = r.ImpactedSuccessorCount
		view.ViolatesDeadline = r.ViolatesDeadline
	case model.Reallocate:
		view.FromResource = r.FromResourceID
		view.ToResource = r.ToResourceID
		view.AlternativeCount = r.AlternativeCount
	case model.Split:
		view.PrimaryResource = r.PrimaryResourceID
		view.SecondaryResource = r.SecondaryResourceID
	}
	return view
}

// WriteYAML serializes the report to w.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yamlv3.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	if err := enc.Encode(r.View()); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteText renders a human-readable summary to w.
func (r *Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Analysis (%s strategy, generation %d)\n", r.Strategy, r.Generation)
	if r.ResourceFilter != "" {
		fmt.Fprintf(w, "Resource filter: %s\n", r.ResourceFilter)
	}
	fmt.Fprintf(w, "\nConflicts: %d\n", len(r.Conflicts))
	for _, c := range r.Conflicts {
		fmt.Fprintf(w, "  [%s] %s: %s <-> %s (%d day overlap, %s)\n",
			c.Severity, c.ResourceID, c.Task1.ID, c.Task2.ID, c.OverlapDays, c.Type)
	}
	fmt.Fprintf(w, "\nRecommendations: %d\n", len(r.Recommendations))
	for i, rec := range r.Recommendations {
		fmt.Fprintf(w, "  %2d. [%s] %s: %s\n", i+1, rec.SeverityLevel(), rec.Kind(), rec.Rationale())
	}
	return nil
}
