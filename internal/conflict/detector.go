// Package conflict implements the resource conflict detector: for every
// resource it finds all pairs of committed, non-terminal tasks whose
// inclusive date intervals overlap.
package conflict

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sitework/leveler/internal/model"
	"github.com/sitework/leveler/internal/snapshot"
)

// Detect scans every resource in the snapshot and returns the overlapping
// task pairs. It is a pure function of the snapshot: no side effects, and
// running it twice on an unchanged snapshot yields identical results.
//
// The per-resource scans are independent, so they fan out across an
// errgroup bounded by workers. Results merge back in resource order, and
// within a resource pairs follow start-date order, so output is
// deterministic regardless of scheduling. Cost is O(R*k^2) with k bounded
// by max_concurrent_assignments in practice.
func Detect(ctx context.Context, snap *snapshot.Snapshot, workers int) ([]model.Conflict, error) {
	if workers <= 0 {
		workers = 1
	}

	perResource := make([][]model.Conflict, len(snap.Resources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range snap.Resources {
		// Deadline check between per-resource batches so a pathological
		// snapshot cannot block past the caller's timeout.
		if err := gctx.Err(); err != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := &snap.Resources[i]
			perResource[i] = detectForResource(res.ID, snap.ActiveTasksFor(res.ID))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("conflict detection: %w", err)
	}

	var out []model.Conflict
	for _, conflicts := range perResource {
		out = append(out, conflicts...)
	}
	return out, nil
}

// DetectForResource scans a single resource's committed tasks. Used when
// the caller wants conflicts pre-filtered to one resource.
func DetectForResource(snap *snapshot.Snapshot, resourceID string) []model.Conflict {
	return detectForResource(resourceID, snap.ActiveTasksFor(resourceID))
}

// detectForResource pairs the resource's tasks. The input list is sorted
// by start date, which stabilizes output order; correctness does not
// depend on it.
func detectForResource(resourceID string, tasks []model.Task) []model.Conflict {
	var out []model.Conflict
	for i := 0; i < len(tasks); i++ {
		for j := i + 1; j < len(tasks); j++ {
			t1, t2 := tasks[i], tasks[j]
			if !overlaps(t1, t2) {
				continue
			}

			conflictType := model.ConflictSameProject
			severity := model.SeverityMedium
			if t1.ProjectID != t2.ProjectID {
				conflictType = model.ConflictCrossProject
				severity = model.SeverityHigh
			}

			out = append(out, model.Conflict{
				ResourceID:  resourceID,
				Task1:       t1,
				Task2:       t2,
				OverlapDays: OverlapDays(t1, t2),
				Type:        conflictType,
				Severity:    severity,
			})
		}
	}
	return out
}

// overlaps tests the inclusive intervals. Boundary-touching counts: a
// shared resource cannot be in two places even for a single common day.
func overlaps(t1, t2 model.Task) bool {
	return !t1.StartDate.After(*t2.EndDate) && !t2.StartDate.After(*t1.EndDate)
}

// OverlapDays returns the inclusive day count of the shared range:
// [Jan 1, Jan 5] and [Jan 3, Jan 8] share Jan 3 through Jan 5, which is
// 3 days, and two intervals touching on a single day share 1.
func OverlapDays(t1, t2 model.Task) int {
	start := model.MaxDate(*t1.StartDate, *t2.StartDate)
	end := model.MinDate(*t1.EndDate, *t2.EndDate)
	if end.Before(start) {
		return 0
	}
	return start.DaysUntil(end) + 1
}
