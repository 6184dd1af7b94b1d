package conflict

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitework/leveler/internal/model"
	"github.com/sitework/leveler/internal/snapshot"
	"github.com/sitework/leveler/internal/store"
)

func datePtr(s string) *model.Date {
	d := model.MustDate(s)
	return &d
}

func scheduledTask(id, projectID, resourceID, start, end string) model.Task {
	return model.Task{
		ID:                id,
		ProjectID:         projectID,
		Name:              id,
		StartDate:         datePtr(start),
		EndDate:           datePtr(end),
		Status:            model.TaskStatusNotStarted,
		AssignedResources: []string{resourceID},
		Priority:          model.PriorityLow,
	}
}

func snapFor(resources []model.Resource, tasks []model.Task) *snapshot.Snapshot {
	return snapshot.New(&store.SnapshotData{Resources: resources, Tasks: tasks})
}

func laborResource(id string) model.Resource {
	return model.Resource{ID: id, Name: id, Type: model.ResourceTypeLabor, Status: model.ResourceStatusAssigned}
}

func TestDetect_OverlapArithmetic(t *testing.T) {
	snap := snapFor(
		[]model.Resource{laborResource("res_r")},
		[]model.Task{
			scheduledTask("task_a", "proj_1", "res_r", "2024-01-01", "2024-01-05"),
			scheduledTask("task_b", "proj_1", "res_r", "2024-01-03", "2024-01-08"),
		},
	)

	conflicts, err := Detect(context.Background(), snap, 2)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, "res_r", c.ResourceID)
	assert.Equal(t, 3, c.OverlapDays)
	assert.Equal(t, model.ConflictSameProject, c.Type)
	assert.Equal(t, model.SeverityMedium, c.Severity)
}

func TestDetect_NoFalseConflict(t *testing.T) {
	snap := snapFor(
		[]model.Resource{laborResource("res_r")},
		[]model.Task{
			scheduledTask("task_a", "proj_1", "res_r", "2024-01-01", "2024-01-05"),
			scheduledTask("task_c", "proj_1", "res_r", "2024-01-06", "2024-01-10"),
		},
	)

	conflicts, err := Detect(context.Background(), snap, 1)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestDetect_BoundaryTouchingCounts(t *testing.T) {
	snap := snapFor(
		[]model.Resource{laborResource("res_r")},
		[]model.Task{
			scheduledTask("task_a", "proj_1", "res_r", "2024-01-01", "2024-01-05"),
			scheduledTask("task_b", "proj_1", "res_r", "2024-01-05", "2024-01-09"),
		},
	)

	conflicts, err := Detect(context.Background(), snap, 1)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	// The two ranges share exactly one calendar day.
	assert.Equal(t, 1, conflicts[0].OverlapDays)
}

func TestDetect_CrossProjectSeverity(t *testing.T) {
	snap := snapFor(
		[]model.Resource{laborResource("res_r")},
		[]model.Task{
			scheduledTask("task_a", "proj_1", "res_r", "2024-01-01", "2024-01-05"),
			scheduledTask("task_b", "proj_2", "res_r", "2024-01-03", "2024-01-08"),
		},
	)

	conflicts, err := Detect(context.Background(), snap, 1)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictCrossProject, conflicts[0].Type)
	assert.Equal(t, model.SeverityHigh, conflicts[0].Severity)
}

func TestDetect_TerminalTasksExcluded(t *testing.T) {
	done := scheduledTask("task_done", "proj_1", "res_r", "2024-01-01", "2024-01-05")
	done.Status = model.TaskStatusCompleted
	cancelled := scheduledTask("task_gone", "proj_1", "res_r", "2024-01-02", "2024-01-06")
	cancelled.Status = model.TaskStatusCancelled

	snap := snapFor(
		[]model.Resource{laborResource("res_r")},
		[]model.Task{
			done,
			cancelled,
			scheduledTask("task_live", "proj_1", "res_r", "2024-01-03", "2024-01-08"),
		},
	)

	conflicts, err := Detect(context.Background(), snap, 1)
	require.NoError(t, err)
	assert.Empty(t, conflicts, "terminal tasks hold no resource commitment")
}

func TestDetect_UnscheduledTasksExcluded(t *testing.T) {
	unscheduled := model.Task{
		ID:                "task_unsched",
		ProjectID:         "proj_1",
		Status:            model.TaskStatusNotStarted,
		AssignedResources: []string{"res_r"},
	}
	halfScheduled := model.Task{
		ID:                "task_half",
		ProjectID:         "proj_1",
		StartDate:         datePtr("2024-01-01"),
		Status:            model.TaskStatusNotStarted,
		AssignedResources: []string{"res_r"},
	}

	snap := snapFor(
		[]model.Resource{laborResource("res_r")},
		[]model.Task{
			unscheduled,
			halfScheduled,
			scheduledTask("task_live", "proj_1", "res_r", "2024-01-01", "2024-01-08"),
		},
	)

	conflicts, err := Detect(context.Background(), snap, 1)
	require.NoError(t, err)
	assert.Empty(t, conflicts, "tasks missing dates are unscheduled and never conflict")
}

func TestDetect_EquipmentAssignmentCounts(t *testing.T) {
	crane := model.Resource{ID: "res_crane", Type: model.ResourceTypeEquipment, Status: model.ResourceStatusAssigned}
	t1 := scheduledTask("task_a", "proj_1", "res_x", "2024-01-01", "2024-01-05")
	t1.AssignedResources = nil
	t1.AssignedEquipment = []string{"res_crane"}
	t2 := scheduledTask("task_b", "proj_1", "res_x", "2024-01-04", "2024-01-09")
	t2.AssignedResources = nil
	t2.AssignedEquipment = []string{"res_crane"}

	snap := snapFor([]model.Resource{crane}, []model.Task{t1, t2})

	conflicts, err := Detect(context.Background(), snap, 1)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "res_crane", conflicts[0].ResourceID)
}

func TestDetect_PairReportedOnce(t *testing.T) {
	snap := snapFor(
		[]model.Resource{laborResource("res_r")},
		[]model.Task{
			scheduledTask("task_a", "proj_1", "res_r", "2024-01-01", "2024-01-05"),
			scheduledTask("task_b", "proj_1", "res_r", "2024-01-03", "2024-01-08"),
		},
	)

	conflicts, err := Detect(context.Background(), snap, 4)
	require.NoError(t, err)
	require.Len(t, conflicts, 1, "unordered pair must be reported exactly once")
}

func TestDetect_Idempotent(t *testing.T) {
	snap := snapFor(
		[]model.Resource{laborResource("res_r"), laborResource("res_s")},
		[]model.Task{
			scheduledTask("task_a", "proj_1", "res_r", "2024-01-01", "2024-01-05"),
			scheduledTask("task_b", "proj_1", "res_r", "2024-01-03", "2024-01-08"),
			scheduledTask("task_c", "proj_2", "res_s", "2024-02-01", "2024-02-10"),
			scheduledTask("task_d", "proj_2", "res_s", "2024-02-05", "2024-02-12"),
		},
	)

	first, err := Detect(context.Background(), snap, 3)
	require.NoError(t, err)
	second, err := Detect(context.Background(), snap, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second, "unchanged snapshot must yield identical conflicts")
}

func TestDetect_ThreeWayOverlap(t *testing.T) {
	snap := snapFor(
		[]model.Resource{laborResource("res_r")},
		[]model.Task{
			scheduledTask("task_a", "proj_1", "res_r", "2024-01-01", "2024-01-10"),
			scheduledTask("task_b", "proj_1", "res_r", "2024-01-02", "2024-01-08"),
			scheduledTask("task_c", "proj_1", "res_r", "2024-01-05", "2024-01-12"),
		},
	)

	conflicts, err := Detect(context.Background(), snap, 1)
	require.NoError(t, err)
	// All three pairs overlap
	assert.Len(t, conflicts, 3)
}

func TestDetect_ContextCancelled(t *testing.T) {
	var resources []model.Resource
	for i := 0; i < 50; i++ {
		resources = append(resources, laborResource(fmt.Sprintf("res_%02d", i)))
	}
	tasks := []model.Task{
		scheduledTask("task_a", "proj_1", "res_00", "2024-01-01", "2024-01-05"),
		scheduledTask("task_b", "proj_1", "res_00", "2024-01-03", "2024-01-08"),
	}
	snap := snapFor(resources, tasks)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Detect(ctx, snap, 2)
	assert.Error(t, err)
}

func TestDetect_RespectsDeadline(t *testing.T) {
	snap := snapFor(
		[]model.Resource{laborResource("res_r")},
		[]model.Task{
			scheduledTask("task_a", "proj_1", "res_r", "2024-01-01", "2024-01-05"),
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	conflicts, err := Detect(ctx, snap, 2)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestOverlapDays(t *testing.T) {
	t1 := scheduledTask("task_a", "proj_1", "res_r", "2024-01-01", "2024-01-05")
	t2 := scheduledTask("task_b", "proj_1", "res_r", "2024-01-03", "2024-01-08")
	assert.Equal(t, 3, OverlapDays(t1, t2))
	assert.Equal(t, 3, OverlapDays(t2, t1), "overlap is symmetric")
}
