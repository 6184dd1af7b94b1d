package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sitework/leveler/internal/model"
	yamlutil "github.com/sitework/leveler/internal/yaml"
)

const entityFileSchemaVersion = 1

// Entity file names inside the store's data directory.
const (
	ResourcesFile    = "resources.yaml"
	TasksFile        = "tasks.yaml"
	WorkPackagesFile = "work_packages.yaml"
	ProjectsFile     = "projects.yaml"
)

type resourceFile struct {
	SchemaVersion int              `yaml:"schema_version"`
	FileType      string           `yaml:"file_type"`
	Resources     []model.Resource `yaml:"resources"`
}

type taskFile struct {
	SchemaVersion int          `yaml:"schema_version"`
	FileType      string       `yaml:"file_type"`
	Tasks         []model.Task `yaml:"tasks"`
}

type workPackageFile struct {
	SchemaVersion int                 `yaml:"schema_version"`
	FileType      string              `yaml:"file_type"`
	WorkPackages  []model.WorkPackage `yaml:"work_packages"`
}

type projectFile struct {
	SchemaVersion int             `yaml:"schema_version"`
	FileType      string          `yaml:"file_type"`
	Projects      []model.Project `yaml:"projects"`
}

// LoadDataDir reads the four entity files from dir. Missing files yield
// empty collections rather than errors so a fresh data directory works.
// The entity files are hand-editable, so every load validates IDs and
// enum fields before the data reaches the serving state.
func LoadDataDir(dir string) (SnapshotData, error) {
	var data SnapshotData

	var rf resourceFile
	if err := loadOptional(filepath.Join(dir, ResourcesFile), &rf); err != nil {
		return data, err
	}
	data.Resources = rf.Resources

	var tf taskFile
	if err := loadOptional(filepath.Join(dir, TasksFile), &tf); err != nil {
		return data, err
	}
	data.Tasks = tf.Tasks

	var wf workPackageFile
	if err := loadOptional(filepath.Join(dir, WorkPackagesFile), &wf); err != nil {
		return data, err
	}
	data.WorkPackages = wf.WorkPackages

	var pf projectFile
	if err := loadOptional(filepath.Join(dir, ProjectsFile), &pf); err != nil {
		return data, err
	}
	data.Projects = pf.Projects

	if err := validateData(&data); err != nil {
		return SnapshotData{}, err
	}
	return data, nil
}

func validateData(data *SnapshotData) error {
	for i := range data.Resources {
		r := &data.Resources[i]
		if err := model.CheckIDKind(r.ID, model.IDTypeResource); err != nil {
			return fmt.Errorf("%s: %w", ResourcesFile, err)
		}
		if err := model.ValidateResourceType(r.Type); err != nil {
			return fmt.Errorf("%s: resource %s: %w", ResourcesFile, r.ID, err)
		}
		if err := model.ValidateResourceStatus(r.Status); err != nil {
			return fmt.Errorf("%s: resource %s: %w", ResourcesFile, r.ID, err)
		}
	}
	for i := range data.Tasks {
		t := &data.Tasks[i]
		if err := model.CheckIDKind(t.ID, model.IDTypeTask); err != nil {
			return fmt.Errorf("%s: %w", TasksFile, err)
		}
		if err := model.ValidateTaskStatus(t.Status); err != nil {
			return fmt.Errorf("%s: task %s: %w", TasksFile, t.ID, err)
		}
		// Priority is optional; unset tasks score as low.
		if t.Priority != "" {
			if err := model.ValidatePriority(t.Priority); err != nil {
				return fmt.Errorf("%s: task %s: %w", TasksFile, t.ID, err)
			}
		}
	}
	for i := range data.WorkPackages {
		if err := model.CheckIDKind(data.WorkPackages[i].ID, model.IDTypeWorkPackage); err != nil {
			return fmt.Errorf("%s: %w", WorkPackagesFile, err)
		}
	}
	for i := range data.Projects {
		if err := model.CheckIDKind(data.Projects[i].ID, model.IDTypeProject); err != nil {
			return fmt.Errorf("%s: %w", ProjectsFile, err)
		}
	}
	return nil
}

// SaveTasks persists the task collection atomically.
func SaveTasks(dir string, tasks []model.Task) error {
	f := taskFile{
		SchemaVersion: entityFileSchemaVersion,
		FileType:      "tasks",
		Tasks:         tasks,
	}
	return yamlutil.AtomicWrite(filepath.Join(dir, TasksFile), f)
}

// WriteSeedFiles creates empty entity files in dir, for `leveler init`.
func WriteSeedFiles(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	seeds := []struct {
		name string
		data any
	}{
		{ResourcesFile, resourceFile{SchemaVersion: entityFileSchemaVersion, FileType: "resources"}},
		{TasksFile, taskFile{SchemaVersion: entityFileSchemaVersion, FileType: "tasks"}},
		{WorkPackagesFile, workPackageFile{SchemaVersion: entityFileSchemaVersion, FileType: "work_packages"}},
		{ProjectsFile, projectFile{SchemaVersion: entityFileSchemaVersion, FileType: "projects"}},
	}
	for _, s := range seeds {
		path := filepath.Join(dir, s.name)
		if _, err := os.Stat(path); err == nil {
			continue // never clobber existing entity files
		}
		if err := yamlutil.AtomicWrite(path, s.data); err != nil {
			return fmt.Errorf("seed %s: %w", s.name, err)
		}
	}
	return nil
}

// WriteSampleData seeds dir with a small example schedule for
// `leveler init -sample`: one crew double-booked across two tasks, so a
// fresh install has a conflict to analyze. Existing entity files are
// never clobbered.
func WriteSampleData(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	crewID, err := model.GenerateID(model.IDTypeResource)
	if err != nil {
		return err
	}
	craneID, err := model.GenerateID(model.IDTypeResource)
	if err != nil {
		return err
	}
	pourID, err := model.GenerateID(model.IDTypeTask)
	if err != nil {
		return err
	}
	frameID, err := model.GenerateID(model.IDTypeTask)
	if err != nil {
		return err
	}
	wpID, err := model.GenerateID(model.IDTypeWorkPackage)
	if err != nil {
		return err
	}
	projID, err := model.GenerateID(model.IDTypeProject)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	base := model.NewDate(now.Year(), now.Month(), now.Day())
	day := func(offset int) *model.Date {
		d := base.AddDays(offset)
		return &d
	}

	seeds := []struct {
		name string
		data any
	}{
		{ResourcesFile, resourceFile{
			SchemaVersion: entityFileSchemaVersion,
			FileType:      "resources",
			Resources: []model.Resource{
				{ID: crewID, Name: "Concrete Crew", Type: model.ResourceTypeLabor, Status: model.ResourceStatusAssigned, Skills: []string{"concrete"}},
				{ID: craneID, Name: "Tower Crane", Type: model.ResourceTypeEquipment, Status: model.ResourceStatusAvailable},
			},
		}},
		{TasksFile, taskFile{
			SchemaVersion: entityFileSchemaVersion,
			FileType:      "tasks",
			Tasks: []model.Task{
				{
					ID: pourID, ProjectID: projID, Name: "Foundation Pour",
					StartDate: day(0), EndDate: day(4),
					Status:            model.TaskStatusNotStarted,
					Priority:          model.PriorityHigh,
					DurationDays:      5,
					WorkPackageID:     wpID,
					AssignedResources: []string{crewID},
					Version:           1,
				},
				{
					ID: frameID, ProjectID: projID, Name: "Framing",
					StartDate: day(2), EndDate: day(7),
					Status:            model.TaskStatusNotStarted,
					Priority:          model.PriorityLow,
					DurationDays:      6,
					WorkPackageID:     wpID,
					AssignedResources: []string{crewID},
					Version:           1,
				},
			},
		}},
		{WorkPackagesFile, workPackageFile{
			SchemaVersion: entityFileSchemaVersion,
			FileType:      "work_packages",
			WorkPackages: []model.WorkPackage{
				{ID: wpID, Name: "Structural Shell", TargetDelivery: day(30)},
			},
		}},
		{ProjectsFile, projectFile{
			SchemaVersion: entityFileSchemaVersion,
			FileType:      "projects",
			Projects: []model.Project{
				{ID: projID, Name: "Sample Site"},
			},
		}},
	}
	for _, s := range seeds {
		path := filepath.Join(dir, s.name)
		if _, err := os.Stat(path); err == nil {
			continue // never clobber existing entity files
		}
		if err := yamlutil.AtomicWrite(path, s.data); err != nil {
			return fmt.Errorf("seed %s: %w", s.name, err)
		}
	}
	return nil
}

func loadOptional(path string, out any) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return yamlutil.Load(path, out)
}
