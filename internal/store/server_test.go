package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitework/leveler/internal/model"
	yamlutil "github.com/sitework/leveler/internal/yaml"
)

func writeTestData(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, WriteSeedFiles(dir))

	data := seedData()
	require.NoError(t, SaveTasks(dir, data.Tasks))

	rf := resourceFile{
		SchemaVersion: entityFileSchemaVersion,
		FileType:      "resources",
		Resources:     data.Resources,
	}
	require.NoError(t, yamlutil.AtomicWrite(filepath.Join(dir, ResourcesFile), rf))
}

func startTestServer(t *testing.T, dir string) (*Server, string) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), DefaultSocketName)
	srv, err := NewServer(dir, socketPath, nil)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })
	return srv, socketPath
}

func TestServer_ServesLoadedFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)
	_, socketPath := startTestServer(t, dir)

	c := NewClient(socketPath)
	c.SetTimeout(2 * time.Second)

	snap, err := c.FetchSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "task_1", snap.Tasks[0].ID)
	require.Len(t, snap.Resources, 2)
}

func TestServer_UpdatePersistsToDisk(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)
	_, socketPath := startTestServer(t, dir)

	c := NewClient(socketPath)
	c.SetTimeout(2 * time.Second)

	_, err := c.UpdateTask(context.Background(), TaskUpdate{
		TaskID:    "task_1",
		Version:   1,
		StartDate: testDate("2024-01-07"),
		EndDate:   testDate("2024-01-12"),
	})
	require.NoError(t, err)

	// The daemon writes tasks.yaml synchronously before replying
	data, err := LoadDataDir(dir)
	require.NoError(t, err)
	require.Len(t, data.Tasks, 1)
	assert.Equal(t, "2024-01-07", data.Tasks[0].StartDate.String())
	assert.Equal(t, 2, data.Tasks[0].Version)
}

func TestServer_LockExcludesSecondDaemon(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)
	startTestServer(t, dir)

	second, err := NewServer(dir, filepath.Join(t.TempDir(), DefaultSocketName), nil)
	require.NoError(t, err)
	err = second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another store daemon")
}

func TestServer_HotReloadOnFileEdit(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the reload debounce")
	}

	dir := t.TempDir()
	writeTestData(t, dir)
	srv, socketPath := startTestServer(t, dir)

	genBefore := srv.Memory().Generation()

	// Simulate a hand edit: rewrite tasks.yaml with a second task
	data := seedData()
	data.Tasks = append(data.Tasks, model.Task{
		ID:        "task_2",
		ProjectID: "proj_1",
		Name:      "Backfill",
		StartDate: testDate("2024-02-01"),
		EndDate:   testDate("2024-02-05"),
		Status:    model.TaskStatusNotStarted,
		Version:   1,
	})
	require.NoError(t, SaveTasks(dir, data.Tasks))

	deadline := time.Now().Add(5 * time.Second)
	for srv.Memory().Generation() == genBefore && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	require.Greater(t, srv.Memory().Generation(), genBefore, "watcher never triggered a reload")

	c := NewClient(socketPath)
	c.SetTimeout(2 * time.Second)
	snap, err := c.FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Tasks, 2)
}

func TestServer_StopRemovesSocket(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)

	socketPath := filepath.Join(t.TempDir(), DefaultSocketName)
	srv, err := NewServer(dir, socketPath, nil)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	require.NoError(t, srv.Stop())

	_, err = os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err), "socket file should be removed on shutdown")
}

func TestLoadDataDir_MissingFilesAreEmpty(t *testing.T) {
	data, err := LoadDataDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, data.Tasks)
	assert.Empty(t, data.Resources)
	assert.Empty(t, data.WorkPackages)
	assert.Empty(t, data.Projects)
}

func TestWriteSeedFiles_NeverClobbers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSeedFiles(dir))

	require.NoError(t, SaveTasks(dir, seedData().Tasks))
	require.NoError(t, WriteSeedFiles(dir))

	data, err := LoadDataDir(dir)
	require.NoError(t, err)
	assert.Len(t, data.Tasks, 1, "re-running init must not wipe existing entity files")
}

func TestLoadDataDir_RejectsBadEnums(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(data *SnapshotData)
		wantMsg string
	}{
		{
			name:    "bogus task status",
			mutate:  func(d *SnapshotData) { d.Tasks[0].Status = "done" },
			wantMsg: "unknown task status",
		},
		{
			name:    "bogus task priority",
			mutate:  func(d *SnapshotData) { d.Tasks[0].Priority = "medium" },
			wantMsg: "unknown priority",
		},
		{
			name:    "bogus resource type",
			mutate:  func(d *SnapshotData) { d.Resources[0].Type = "crane" },
			wantMsg: "unknown resource type",
		},
		{
			name:    "bogus resource status",
			mutate:  func(d *SnapshotData) { d.Resources[0].Status = "busy" },
			wantMsg: "unknown resource status",
		},
		{
			name:    "task id missing",
			mutate:  func(d *SnapshotData) { d.Tasks[0].ID = "" },
			wantMsg: "missing task id",
		},
		{
			name:    "resource prefix on a task id",
			mutate:  func(d *SnapshotData) { d.Tasks[0].ID = "res_a" },
			wantMsg: "carries a res prefix",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			data := seedData()
			tt.mutate(&data)

			rf := resourceFile{SchemaVersion: entityFileSchemaVersion, FileType: "resources", Resources: data.Resources}
			require.NoError(t, yamlutil.AtomicWrite(filepath.Join(dir, ResourcesFile), rf))
			require.NoError(t, SaveTasks(dir, data.Tasks))

			_, err := LoadDataDir(dir)
			require.Error(t, err, "hand-edited files with invalid fields must not load")
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadDataDir_UnsetPriorityAllowed(t *testing.T) {
	dir := t.TempDir()
	writeTestData(t, dir)

	data, err := LoadDataDir(dir)
	require.NoError(t, err)
	require.Len(t, data.Tasks, 1)
	assert.Empty(t, data.Tasks[0].Priority)
}

func TestValidateStatusChanges(t *testing.T) {
	current := []model.Task{
		{ID: "task_1", Status: model.TaskStatusInProgress},
		{ID: "task_2", Status: model.TaskStatusCancelled},
	}

	tests := []struct {
		name    string
		next    []model.Task
		wantErr bool
	}{
		{
			name: "legal transition",
			next: []model.Task{{ID: "task_1", Status: model.TaskStatusCompleted}},
		},
		{
			name: "status unchanged",
			next: []model.Task{{ID: "task_2", Status: model.TaskStatusCancelled}},
		},
		{
			name: "new task carries any valid status",
			next: []model.Task{{ID: "task_9", Status: model.TaskStatusCompleted}},
		},
		{
			name:    "reviving a cancelled task",
			next:    []model.Task{{ID: "task_2", Status: model.TaskStatusNotStarted}},
			wantErr: true,
		},
		{
			name:    "skipping straight to completed",
			next:    []model.Task{{ID: "task_1", Status: model.TaskStatusNotStarted}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStatusChanges(current, tt.next)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServer_ReloadRejectsIllegalTransition(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the reload debounce")
	}

	dir := t.TempDir()
	writeTestData(t, dir)
	srv, _ := startTestServer(t, dir)

	genBefore := srv.Memory().Generation()

	// Hand edit that jumps task_1 from not_started straight to completed
	data := seedData()
	data.Tasks[0].Status = model.TaskStatusCompleted
	require.NoError(t, SaveTasks(dir, data.Tasks))

	time.Sleep(3 * reloadDebounce)
	assert.Equal(t, genBefore, srv.Memory().Generation(), "illegal transition must not replace served state")

	snap, err := srv.Memory().FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusNotStarted, snap.Tasks[0].Status)
}

func TestWriteSampleData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSampleData(dir))

	data, err := LoadDataDir(dir)
	require.NoError(t, err)
	require.Len(t, data.Resources, 2)
	require.Len(t, data.Tasks, 2)
	require.Len(t, data.WorkPackages, 1)
	require.Len(t, data.Projects, 1)

	for _, r := range data.Resources {
		assert.True(t, model.ValidateID(r.ID), "resource ID %q must be generated, not hand-written", r.ID)
	}
	for _, task := range data.Tasks {
		assert.True(t, model.ValidateID(task.ID), "task ID %q must be generated, not hand-written", task.ID)
		assert.True(t, task.IsScheduled())
	}

	// The two sample tasks share a crew and overlapping dates
	assert.Equal(t, data.Tasks[0].AssignedResources, data.Tasks[1].AssignedResources)
	assert.True(t, data.Tasks[0].Overlaps(*data.Tasks[1].StartDate, *data.Tasks[1].EndDate))
}

func TestWriteSampleData_NeverClobbers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveTasks(dir, seedData().Tasks))

	require.NoError(t, WriteSampleData(dir))

	data, err := LoadDataDir(dir)
	require.NoError(t, err)
	require.Len(t, data.Tasks, 1)
	assert.Equal(t, "task_1", data.Tasks[0].ID, "sample seeding must not overwrite existing files")
}
