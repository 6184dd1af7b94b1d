package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitework/leveler/internal/model"
	"github.com/sitework/leveler/internal/store"
)

func datePtr(s string) *model.Date {
	d := model.MustDate(s)
	return &d
}

func buildSnapshot() *Snapshot {
	return New(&store.SnapshotData{
		Resources: []model.Resource{
			{ID: "res_b", Name: "Crew B", Type: model.ResourceTypeLabor},
			{ID: "res_a", Name: "Crew A", Type: model.ResourceTypeLabor},
		},
		Tasks: []model.Task{
			{
				ID: "task_late", ProjectID: "proj_1",
				StartDate: datePtr("2024-03-01"), EndDate: datePtr("2024-03-05"),
				Status:            model.TaskStatusNotStarted,
				AssignedResources: []string{"res_a"},
			},
			{
				ID: "task_early", ProjectID: "proj_1",
				StartDate: datePtr("2024-01-01"), EndDate: datePtr("2024-01-05"),
				Status:            model.TaskStatusInProgress,
				AssignedResources: []string{"res_a"},
			},
			{
				ID: "task_done", ProjectID: "proj_1",
				StartDate: datePtr("2024-01-01"), EndDate: datePtr("2024-01-03"),
				Status:            model.TaskStatusCompleted,
				AssignedResources: []string{"res_a"},
			},
			{
				ID: "task_unsched", ProjectID: "proj_1",
				Status:            model.TaskStatusNotStarted,
				AssignedResources: []string{"res_a"},
			},
			{
				ID: "task_succ", ProjectID: "proj_1",
				StartDate: datePtr("2024-04-01"), EndDate: datePtr("2024-04-05"),
				Status:         model.TaskStatusNotStarted,
				PredecessorIDs: []string{"task_late"},
			},
		},
		WorkPackages: []model.WorkPackage{
			{ID: "wp_1", Name: "Groundworks", TargetDelivery: datePtr("2024-06-01")},
		},
		Generation: 7,
	})
}

func TestNew_SortsCollections(t *testing.T) {
	snap := buildSnapshot()

	assert.Equal(t, "res_a", snap.Resources[0].ID)
	assert.Equal(t, "res_b", snap.Resources[1].ID)
	assert.Equal(t, 7, snap.Generation)
	assert.False(t, snap.FetchedAt.IsZero())

	for i := 1; i < len(snap.Tasks); i++ {
		assert.Less(t, snap.Tasks[i-1].ID, snap.Tasks[i].ID, "tasks must be sorted by ID")
	}
}

func TestSnapshot_Lookups(t *testing.T) {
	snap := buildSnapshot()

	task, ok := snap.TaskByID("task_early")
	require.True(t, ok)
	assert.Equal(t, model.TaskStatusInProgress, task.Status)

	_, ok = snap.TaskByID("task_nope")
	assert.False(t, ok)

	res, ok := snap.ResourceByID("res_b")
	require.True(t, ok)
	assert.Equal(t, "Crew B", res.Name)

	wp, ok := snap.WorkPackageByID("wp_1")
	require.True(t, ok)
	assert.Equal(t, "2024-06-01", wp.TargetDelivery.String())
}

func TestSnapshot_ActiveTasksFor(t *testing.T) {
	snap := buildSnapshot()

	active := snap.ActiveTasksFor("res_a")

	// Completed and unscheduled tasks are excluded; the rest come back in
	// start-date order.
	require.Len(t, active, 2)
	assert.Equal(t, "task_early", active[0].ID)
	assert.Equal(t, "task_late", active[1].ID)
}

func TestSnapshot_ActiveTasksFor_UnknownResource(t *testing.T) {
	snap := buildSnapshot()
	assert.Empty(t, snap.ActiveTasksFor("res_ghost"))
}

func TestSnapshot_SuccessorsOf(t *testing.T) {
	snap := buildSnapshot()

	succs := snap.SuccessorsOf("task_late")
	require.Len(t, succs, 1)
	assert.Equal(t, "task_succ", succs[0].ID)

	assert.Empty(t, snap.SuccessorsOf("task_succ"))
}

func TestSnapshot_SuccessorsOf_SkipsCompleted(t *testing.T) {
	snap := New(&store.SnapshotData{
		Tasks: []model.Task{
			{ID: "task_a", Status: model.TaskStatusNotStarted},
			{ID: "task_b", Status: model.TaskStatusCompleted, PredecessorIDs: []string{"task_a"}},
			{ID: "task_c", Status: model.TaskStatusBlocked, PredecessorIDs: []string{"task_a"}},
		},
	})

	succs := snap.SuccessorsOf("task_a")
	require.Len(t, succs, 1)
	assert.Equal(t, "task_c", succs[0].ID)
}
