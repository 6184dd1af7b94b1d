package store

import (
	"context"

	"github.com/sitework/leveler/internal/model"
)

// SnapshotData is the raw entity collections fetched in one read.
// Generation increments whenever the store's contents change, letting
// callers detect that a cached snapshot has gone stale.
type SnapshotData struct {
	Resources    []model.Resource    `json:"resources" yaml:"resources"`
	Tasks        []model.Task        `json:"tasks" yaml:"tasks"`
	WorkPackages []model.WorkPackage `json:"work_packages" yaml:"work_packages"`
	Projects     []model.Project     `json:"projects" yaml:"projects"`
	Generation   int                 `json:"generation" yaml:"generation"`
}

// TaskUpdate is the single mutation shape the applier issues. Exactly one
// of the two groups must be set: the date pair (delay) or an assignment
// list (reallocate/split). Version is the last-observed task version; the
// store rejects stale writes with ErrVersionConflict.
type TaskUpdate struct {
	TaskID  string `json:"task_id"`
	Version int    `json:"version"`

	StartDate *model.Date `json:"start_date,omitempty"`
	EndDate   *model.Date `json:"end_date,omitempty"`

	// nil means unchanged; an empty non-nil slice clears the list. The
	// assignment fields must encode without omitempty so an empty slice
	// survives the trip through the wire protocol as [] rather than
	// being dropped and read back as unchanged.
	AssignedResources []string `json:"assigned_resources"`
	AssignedEquipment []string `json:"assigned_equipment"`
}

// HasDateChange reports whether the update carries the delay shape.
func (u *TaskUpdate) HasDateChange() bool {
	return u.StartDate != nil || u.EndDate != nil
}

// HasAssignmentChange reports whether the update carries the reassignment shape.
func (u *TaskUpdate) HasAssignmentChange() bool {
	return u.AssignedResources != nil || u.AssignedEquipment != nil
}

// Store is the read/write boundary to the external entity store. Reads are
// full-snapshot fetches; the only write is the task update the Resolution
// Applier issues.
type Store interface {
	FetchSnapshot(ctx context.Context) (*SnapshotData, error)
	UpdateTask(ctx context.Context, upd TaskUpdate) (*model.Task, error)
}
