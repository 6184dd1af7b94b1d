// Package snapshot provides the read-only schedule view the analysis
// passes run against, and the cached reader that fetches it.
package snapshot

import (
	"sort"
	"time"

	"github.com/sitework/leveler/internal/model"
	"github.com/sitework/leveler/internal/store"
)

// Snapshot is an immutable view of the schedule at one point in time.
// Analysis treats it as a value: nothing in this package or its consumers
// mutates the collections after construction.
type Snapshot struct {
	Resources    []model.Resource
	Tasks        []model.Task
	WorkPackages []model.WorkPackage
	Projects     []model.Project
	Generation   int
	FetchedAt    time.Time

	taskByID        map[string]*model.Task
	resourceByID    map[string]*model.Resource
	workPackageByID map[string]*model.WorkPackage
}

// New builds a Snapshot from fetched store data. Collections are sorted by
// ID so downstream iteration order is deterministic.
func New(data *store.SnapshotData) *Snapshot {
	s := &Snapshot{
		Resources:    data.Resources,
		Tasks:        data.Tasks,
		WorkPackages: data.WorkPackages,
		Projects:     data.Projects,
		Generation:   data.Generation,
		FetchedAt:    time.Now().UTC(),
	}

	sort.Slice(s.Resources, func(i, j int) bool { return s.Resources[i].ID < s.Resources[j].ID })
	sort.Slice(s.Tasks, func(i, j int) bool { return s.Tasks[i].ID < s.Tasks[j].ID })
	sort.Slice(s.WorkPackages, func(i, j int) bool { return s.WorkPackages[i].ID < s.WorkPackages[j].ID })
	sort.Slice(s.Projects, func(i, j int) bool { return s.Projects[i].ID < s.Projects[j].ID })

	s.taskByID = make(map[string]*model.Task, len(s.Tasks))
	for i := range s.Tasks {
		s.taskByID[s.Tasks[i].ID] = &s.Tasks[i]
	}
	s.resourceByID = make(map[string]*model.Resource, len(s.Resources))
	for i := range s.Resources {
		s.resourceByID[s.Resources[i].ID] = &s.Resources[i]
	}
	s.workPackageByID = make(map[string]*model.WorkPackage, len(s.WorkPackages))
	for i := range s.WorkPackages {
		s.workPackageByID[s.WorkPackages[i].ID] = &s.WorkPackages[i]
	}

	return s
}

func (s *Snapshot) TaskByID(id string) (*model.Task, bool) {
	t, ok := s.taskByID[id]
	return t, ok
}

func (s *Snapshot) ResourceByID(id string) (*model.Resource, bool) {
	r, ok := s.resourceByID[id]
	return r, ok
}

func (s *Snapshot) WorkPackageByID(id string) (*model.WorkPackage, bool) {
	wp, ok := s.workPackageByID[id]
	return wp, ok
}

// ActiveTasksFor returns the non-terminal scheduled tasks committed to the
// resource, sorted by start date. This is the pairing list for conflict
// detection and the load/overlap basis for reallocation candidates.
func (s *Snapshot) ActiveTasksFor(resourceID string) []model.Task {
	var out []model.Task
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if model.IsTerminal(t.Status) {
			continue
		}
		if !t.Uses(resourceID) {
			continue
		}
		if !t.IsScheduled() {
			// Unscheduled tasks cannot conflict
			continue
		}
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartDate.Equal(*out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(*out[j].StartDate)
	})
	return out
}

// SuccessorsOf returns the non-completed tasks whose predecessor list
// contains taskID.
func (s *Snapshot) SuccessorsOf(taskID string) []model.Task {
	var out []model.Task
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if t.Status == model.TaskStatusCompleted {
			continue
		}
		for _, pred := range t.PredecessorIDs {
			if pred == taskID {
				out = append(out, *t)
				break
			}
		}
	}
	return out
}
