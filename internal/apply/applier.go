// Package apply executes a chosen recommendation as a single mutation
// against the external task store.
package apply

import (
	"context"
	"fmt"
	"time"

	"github.com/sitework/leveler/internal/lock"
	"github.com/sitework/leveler/internal/model"
	"github.com/sitework/leveler/internal/store"
)

// DefaultTimeout caps one Apply request. Apply calls are single,
// short-lived requests with no internal retry loop.
const DefaultTimeout = 10 * time.Second

// Applier issues the one mutation each recommendation variant maps to.
// Concurrent Apply calls against the same task are serialized through a
// per-task mutex; staleness across processes is caught by the store's
// version check, which surfaces as store.ErrVersionConflict. On any
// failure the recommendation is left unapplied and the error is returned
// unchanged; the caller decides whether to re-analyze.
type Applier struct {
	store   store.Store
	locks   *lock.MutexMap
	timeout time.Duration
}

func New(st store.Store) *Applier {
	return &Applier{
		store:   st,
		locks:   lock.NewMutexMap(),
		timeout: DefaultTimeout,
	}
}

func (a *Applier) SetTimeout(d time.Duration) {
	a.timeout = d
}

// Apply executes the recommendation and returns the updated task from the
// store. After a successful Apply the caller must discard the now-stale
// recommendation set and re-run detection on a fresh snapshot.
func (a *Applier) Apply(ctx context.Context, rec model.Recommendation) (*model.Task, error) {
	task := rec.Target()

	a.locks.Lock(task.ID)
	defer a.locks.Unlock(task.ID)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	upd, err := updateFor(rec)
	if err != nil {
		return nil, err
	}

	updated, err := a.store.UpdateTask(ctx, upd)
	if err != nil {
		return nil, fmt.Errorf("apply %s to task %s: %w", rec.Kind(), task.ID, err)
	}
	return updated, nil
}

// updateFor maps a recommendation variant onto the single update shape it
// issues: {start_date, end_date} for a delay, an assignment set otherwise.
func updateFor(rec model.Recommendation) (store.TaskUpdate, error) {
	switch r := rec.(type) {
	case model.Delay:
		start, end := r.NewStart, r.NewEnd
		return store.TaskUpdate{
			TaskID:    r.Task.ID,
			Version:   r.Task.Version,
			StartDate: &start,
			EndDate:   &end,
		}, nil

	case model.Reallocate:
		// Set semantics: remove the old resource, add the new one.
		resources, equipment, found := replaceAssignment(r.Task, r.FromResourceID, r.ToResourceID)
		if !found {
			return store.TaskUpdate{}, fmt.Errorf("task %s no longer references resource %s", r.Task.ID, r.FromResourceID)
		}
		return store.TaskUpdate{
			TaskID:            r.Task.ID,
			Version:           r.Task.Version,
			AssignedResources: resources,
			AssignedEquipment: equipment,
		}, nil

	case model.Split:
		// Dual-assignment: the secondary resource joins the set that holds
		// the primary; the primary stays. True parallel sub-allocation is
		// future work.
		resources, equipment, found := addAssignment(r.Task, r.PrimaryResourceID, r.SecondaryResourceID)
		if !found {
			return store.TaskUpdate{}, fmt.Errorf("task %s no longer references resource %s", r.Task.ID, r.PrimaryResourceID)
		}
		return store.TaskUpdate{
			TaskID:            r.Task.ID,
			Version:           r.Task.Version,
			AssignedResources: resources,
			AssignedEquipment: equipment,
		}, nil

	default:
		return store.TaskUpdate{}, fmt.Errorf("unsupported recommendation kind %q", rec.Kind())
	}
}

// replaceAssignment swaps from for to in whichever assignment list holds from.
// Only the modified list is returned non-nil so the update leaves the
// other list untouched.
func replaceAssignment(task model.Task, from, to string) (resources, equipment []string, found bool) {
	if containsID(task.AssignedResources, from) {
		return swapID(task.AssignedResources, from, to), nil, true
	}
	if containsID(task.AssignedEquipment, from) {
		return nil, swapID(task.AssignedEquipment, from, to), true
	}
	return nil, nil, false
}

// addAssignment appends secondary to the list holding primary, if absent.
func addAssignment(task model.Task, primary, secondary string) (resources, equipment []string, found bool) {
	if containsID(task.AssignedResources, primary) {
		out := append([]string(nil), task.AssignedResources...)
		if !containsID(out, secondary) {
			out = append(out, secondary)
		}
		return out, nil, true
	}
	if containsID(task.AssignedEquipment, primary) {
		out := append([]string(nil), task.AssignedEquipment...)
		if !containsID(out, secondary) {
			out = append(out, secondary)
		}
		return nil, out, true
	}
	return nil, nil, false
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func swapID(ids []string, from, to string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v == from {
			continue
		}
		out = append(out, v)
	}
	if !containsID(out, to) {
		out = append(out, to)
	}
	return out
}
