// Package model defines the data structures for the leveler's entities,
// configuration, and derived analysis results.
package model

// Resource is a unit of labor, equipment, or a subcontractor that tasks are
// assigned to. Resources are owned by the external entity store and are
// read-only to the analysis engine.
type Resource struct {
	ID                       string         `yaml:"id" json:"id"`
	Name                     string         `yaml:"name" json:"name"`
	Type                     ResourceType   `yaml:"type" json:"type"`
	Skills                   []string       `yaml:"skills,omitempty" json:"skills,omitempty"`
	Status                   ResourceStatus `yaml:"status" json:"status"`
	MaxConcurrentAssignments int            `yaml:"max_concurrent_assignments,omitempty" json:"max_concurrent_assignments,omitempty"`
	CreatedAt                string         `yaml:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt                string         `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// HasSkills reports whether the resource covers every required skill.
// Vacuously true when no skills are required.
func (r *Resource) HasSkills(required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]bool, len(r.Skills))
	for _, s := range r.Skills {
		have[s] = true
	}
	for _, s := range required {
		if !have[s] {
			return false
		}
	}
	return true
}

// Task is a scheduled unit of work. The analysis engine mutates tasks only
// through the Resolution Applier (date fields and assignment sets); every
// other field is read-only here. Version carries the optimistic-concurrency
// token the entity store checks on update.
type Task struct {
	ID                string     `yaml:"id" json:"id"`
	ProjectID         string     `yaml:"project_id" json:"project_id"`
	Name              string     `yaml:"name" json:"name"`
	StartDate         *Date      `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate           *Date      `yaml:"end_date,omitempty" json:"end_date,omitempty"`
	Status            TaskStatus `yaml:"status" json:"status"`
	AssignedResources []string   `yaml:"assigned_resources,omitempty" json:"assigned_resources,omitempty"`
	AssignedEquipment []string   `yaml:"assigned_equipment,omitempty" json:"assigned_equipment,omitempty"`
	PredecessorIDs    []string   `yaml:"predecessor_ids,omitempty" json:"predecessor_ids,omitempty"`
	Priority          Priority   `yaml:"priority" json:"priority"`
	IsCritical        bool       `yaml:"is_critical,omitempty" json:"is_critical,omitempty"`
	DurationDays      int        `yaml:"duration_days,omitempty" json:"duration_days,omitempty"`
	WorkPackageID     string     `yaml:"work_package_id,omitempty" json:"work_package_id,omitempty"`
	RequiredSkills    []string   `yaml:"required_skills,omitempty" json:"required_skills,omitempty"`
	Version           int        `yaml:"version" json:"version"`
	CreatedAt         string     `yaml:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt         string     `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// IsScheduled reports whether both interval dates are present. Unscheduled
// tasks are excluded from conflict pairing entirely.
func (t *Task) IsScheduled() bool {
	return t.StartDate != nil && t.EndDate != nil
}

// Uses reports whether the task references the resource in either
// assignment set.
func (t *Task) Uses(resourceID string) bool {
	for _, id := range t.AssignedResources {
		if id == resourceID {
			return true
		}
	}
	for _, id := range t.AssignedEquipment {
		if id == resourceID {
			return true
		}
	}
	return false
}

// Overlaps tests the task's inclusive interval against [start, end].
// Boundary-touching counts: two ranges sharing a single calendar day overlap.
// Returns false for unscheduled tasks.
func (t *Task) Overlaps(start, end Date) bool {
	if !t.IsScheduled() {
		return false
	}
	return !t.StartDate.After(end) && !start.After(*t.EndDate)
}

// WorkPackage groups tasks under a shared delivery deadline. Read-only
// collaborator used for deadline-violation checks.
type WorkPackage struct {
	ID             string            `yaml:"id" json:"id"`
	Name           string            `yaml:"name" json:"name"`
	TargetDelivery *Date             `yaml:"target_delivery,omitempty" json:"target_delivery,omitempty"`
	Status         WorkPackageStatus `yaml:"status" json:"status"`
}

// Project is consumed for identity comparison only (same-project vs
// cross-project conflict classification).
type Project struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Status string `yaml:"status,omitempty" json:"status,omitempty"`
}
