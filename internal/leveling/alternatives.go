package leveling

import (
	"sort"

	"github.com/sitework/leveler/internal/model"
	"github.com/sitework/leveler/internal/snapshot"
)

// candidate is a qualifying reallocation target with its current load.
type candidate struct {
	resource model.Resource
	load     int
}

// findAlternatives searches for resources that could take over the task
// from the conflicted resource: same type, excluding the conflicted one,
// available or assigned, covering the task's required skills, and with no
// scheduling overlap of their own against the task's interval. The
// returned slice is sorted ascending by current active-task load, ID as
// tie-break, so the least-loaded candidate is first.
func findAlternatives(snap *snapshot.Snapshot, task model.Task, conflictedResourceID string) []candidate {
	conflicted, ok := snap.ResourceByID(conflictedResourceID)
	if !ok {
		return nil
	}

	var out []candidate
	for i := range snap.Resources {
		res := &snap.Resources[i]
		if res.ID == conflictedResourceID {
			continue
		}
		if res.Type != conflicted.Type {
			continue
		}
		if res.Status != model.ResourceStatusAvailable && res.Status != model.ResourceStatusAssigned {
			continue
		}
		if !res.HasSkills(task.RequiredSkills) {
			continue
		}

		active := snap.ActiveTasksFor(res.ID)
		if task.IsScheduled() && hasOwnOverlap(active, task) {
			continue
		}

		out = append(out, candidate{resource: *res, load: len(active)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].load == out[j].load {
			return out[i].resource.ID < out[j].resource.ID
		}
		return out[i].load < out[j].load
	})
	return out
}

func hasOwnOverlap(active []model.Task, task model.Task) bool {
	for i := range active {
		if active[i].ID == task.ID {
			continue
		}
		if active[i].Overlaps(*task.StartDate, *task.EndDate) {
			return true
		}
	}
	return false
}
