package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/brimstone/logger"
	"github.com/google/uuid"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var log = logger.New()

// ErrNotFound is returned when a looked-up entity does not exist.
var ErrNotFound = errors.New("not found")

const (
	timesheetSuffix = "-timesheet.json"
	projectsFile    = "projects.json"
)

// FileStore keeps one JSON file per accounting period plus a shared
// projects file in Base.
type FileStore struct {
	Base               string
	DefaultTargetHours int
}

// NewFileStore returns a FileStore rooted at base.
func NewFileStore(base string, targetHours int) *FileStore {
	return &FileStore{Base: base, DefaultTargetHours: targetHours}
}

// Path returns the file path of the given period key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.Base, key+timesheetSuffix)
}

func validateKey(key string) error {
	if _, err := time.Parse(timecalc.PeriodLayout, key); err != nil {
		return fmt.Errorf("invalid period key %q: %w", key, err)
	}
	return nil
}

// LoadTimesheet loads the timesheet for key. A missing file is initialised
// with an empty timesheet and persisted; a corrupt file is an error.
func (s *FileStore) LoadTimesheet(key string) (*model.Timesheet, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	path := s.Path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		ts := model.NewTimesheet(s.DefaultTargetHours)
		if err := s.SaveTimesheet(key, ts); err != nil {
			return nil, err
		}
		log.Debug("created timesheet", log.Field("path", path))
		return ts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var ts model.Timesheet
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("corrupt JSON in %s: %w", path, err)
	}
	if ts.Days == nil {
		ts.Days = map[string]*model.Day{}
	}
	for date, d := range ts.Days {
		if d == nil {
			return nil, fmt.Errorf("corrupt JSON in %s: day %s is null", path, date)
		}
		if d.Date == "" {
			d.Date = date
		}
	}
	log.Debug("loaded timesheet", log.Field("path", path), log.Field("days", len(ts.Days)))
	return &ts, nil
}

// SaveTimesheet atomically overwrites the timesheet file for key. Day keys
// are written in sorted order.
func (s *FileStore) SaveTimesheet(key string, ts *model.Timesheet) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	path := s.Path(key)
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}
	log.Debug("saved timesheet", log.Field("path", path))
	return nil
}

// Keys lists the period keys of all stored timesheets in ascending order.
func (s *FileStore) Keys() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Base, "*"+timesheetSuffix))
	if err != nil {
		return nil, fmt.Errorf("storage error listing timesheets: %w", err)
	}
	var keys []string
	for _, m := range matches {
		key := strings.TrimSuffix(filepath.Base(m), timesheetSuffix)
		if validateKey(key) == nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// LoadProjects loads the project directory. A missing file reads as an
// empty directory and is not created.
func (s *FileStore) LoadProjects() ([]model.Project, error) {
	path := filepath.Join(s.Base, projectsFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []model.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	var projects []model.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("corrupt JSON in %s: %w", path, err)
	}
	return projects, nil
}

// SaveProjects overwrites the project directory.
func (s *FileStore) SaveProjects(projects []model.Project) error {
	if projects == nil {
		projects = []model.Project{}
	}
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.Base, projectsFile), data)
}

// GetProject returns the project with the given id.
func (s *FileStore) GetProject(id int) (model.Project, error) {
	projects, err := s.LoadProjects()
	if err != nil {
		return model.Project{}, err
	}
	return findProject(projects, id)
}

// AddProject validates name and stores a new project.
func (s *FileStore) AddProject(name string) (model.Project, error) {
	projects, err := s.LoadProjects()
	if err != nil {
		return model.Project{}, err
	}
	projects, p, err := addProject(projects, name)
	if err != nil {
		return model.Project{}, err
	}
	return p, s.SaveProjects(projects)
}

// DeleteProject soft-deletes the project with the given id.
func (s *FileStore) DeleteProject(id int) (model.Project, error) {
	projects, err := s.LoadProjects()
	if err != nil {
		return model.Project{}, err
	}
	p, err := deleteProject(projects, id)
	if err != nil {
		return model.Project{}, err
	}
	return p, s.SaveProjects(projects)
}

// writeFileAtomic writes data to a uniquely named temp file and renames it
// over path.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}
	tmpPath := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
