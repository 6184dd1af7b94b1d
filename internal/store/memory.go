package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sitework/leveler/internal/model"
)

// Memory is an in-process Store. It backs the store daemon's serving state
// and is used directly in tests and the single-process demo path. All
// reads return deep copies so callers can treat snapshots as immutable.
type Memory struct {
	mu           sync.RWMutex
	resources    map[string]model.Resource
	tasks        map[string]model.Task
	workPackages map[string]model.WorkPackage
	projects     map[string]model.Project
	generation   int
}

func NewMemory(data SnapshotData) *Memory {
	m := &Memory{
		resources:    make(map[string]model.Resource),
		tasks:        make(map[string]model.Task),
		workPackages: make(map[string]model.WorkPackage),
		projects:     make(map[string]model.Project),
		generation:   data.Generation,
	}
	m.Replace(data)
	return m
}

// Replace swaps the store's contents wholesale and bumps the generation.
// The daemon calls this when it reloads hand-edited entity files.
func (m *Memory) Replace(data SnapshotData) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resources = make(map[string]model.Resource, len(data.Resources))
	for _, r := range data.Resources {
		m.resources[r.ID] = r
	}
	m.tasks = make(map[string]model.Task, len(data.Tasks))
	for _, t := range data.Tasks {
		m.tasks[t.ID] = t
	}
	m.workPackages = make(map[string]model.WorkPackage, len(data.WorkPackages))
	for _, wp := range data.WorkPackages {
		m.workPackages[wp.ID] = wp
	}
	m.projects = make(map[string]model.Project, len(data.Projects))
	for _, p := range data.Projects {
		m.projects[p.ID] = p
	}
	m.generation++
}

func (m *Memory) FetchSnapshot(ctx context.Context) (*SnapshotData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data := &SnapshotData{
		Resources:    make([]model.Resource, 0, len(m.resources)),
		Tasks:        make([]model.Task, 0, len(m.tasks)),
		WorkPackages: make([]model.WorkPackage, 0, len(m.workPackages)),
		Projects:     make([]model.Project, 0, len(m.projects)),
		Generation:   m.generation,
	}
	for _, r := range m.resources {
		data.Resources = append(data.Resources, copyResource(r))
	}
	for _, t := range m.tasks {
		data.Tasks = append(data.Tasks, copyTask(t))
	}
	for _, wp := range m.workPackages {
		data.WorkPackages = append(data.WorkPackages, copyWorkPackage(wp))
	}
	for _, p := range m.projects {
		data.Projects = append(data.Projects, p)
	}
	return data, nil
}

func (m *Memory) UpdateTask(ctx context.Context, upd TaskUpdate) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateUpdateShape(upd); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[upd.TaskID]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, upd.TaskID)
	}
	if upd.Version != task.Version {
		return nil, fmt.Errorf("%w: task %s is at version %d, update carries %d",
			ErrVersionConflict, upd.TaskID, task.Version, upd.Version)
	}

	if upd.HasDateChange() {
		if upd.StartDate == nil || upd.EndDate == nil {
			return nil, fmt.Errorf("%w: date update requires both start_date and end_date", ErrValidation)
		}
		if upd.EndDate.Before(*upd.StartDate) {
			return nil, fmt.Errorf("%w: end_date %s precedes start_date %s",
				ErrValidation, upd.EndDate, upd.StartDate)
		}
		start := *upd.StartDate
		end := *upd.EndDate
		task.StartDate = &start
		task.EndDate = &end
	} else {
		if upd.AssignedResources != nil {
			if err := m.checkResourcesExist(upd.AssignedResources); err != nil {
				return nil, err
			}
			task.AssignedResources = dedupe(upd.AssignedResources)
		}
		if upd.AssignedEquipment != nil {
			if err := m.checkResourcesExist(upd.AssignedEquipment); err != nil {
				return nil, err
			}
			task.AssignedEquipment = dedupe(upd.AssignedEquipment)
		}
	}

	task.Version++
	task.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	m.tasks[upd.TaskID] = task
	m.generation++

	updated := copyTask(task)
	return &updated, nil
}

// Generation returns the current change counter.
func (m *Memory) Generation() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

func validateUpdateShape(upd TaskUpdate) error {
	if err := model.CheckIDKind(upd.TaskID, model.IDTypeTask); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	dates := upd.HasDateChange()
	assignments := upd.HasAssignmentChange()
	if dates && assignments {
		return fmt.Errorf("%w: update must change dates or assignments, not both", ErrValidation)
	}
	if !dates && !assignments {
		return fmt.Errorf("%w: update changes nothing", ErrValidation)
	}
	return nil
}

func (m *Memory) checkResourcesExist(ids []string) error {
	for _, id := range ids {
		if _, ok := m.resources[id]; !ok {
			return fmt.Errorf("%w: unknown resource %s", ErrValidation, id)
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func copyResource(r model.Resource) model.Resource {
	r.Skills = append([]string(nil), r.Skills...)
	return r
}

func copyTask(t model.Task) model.Task {
	if t.StartDate != nil {
		d := *t.StartDate
		t.StartDate = &d
	}
	if t.EndDate != nil {
		d := *t.EndDate
		t.EndDate = &d
	}
	t.AssignedResources = append([]string(nil), t.AssignedResources...)
	t.AssignedEquipment = append([]string(nil), t.AssignedEquipment...)
	t.PredecessorIDs = append([]string(nil), t.PredecessorIDs...)
	t.RequiredSkills = append([]string(nil), t.RequiredSkills...)
	return t
}

func copyWorkPackage(wp model.WorkPackage) model.WorkPackage {
	if wp.TargetDelivery != nil {
		d := *wp.TargetDelivery
		wp.TargetDelivery = &d
	}
	return wp
}
