package storage

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Tiliavir/worktimer/internal/model"
)

// ErrInvalidProjectName is returned for empty, over-long or duplicate names.
var ErrInvalidProjectName = errors.New("invalid project name")

func findProject(projects []model.Project, id int) (model.Project, error) {
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("project %d: %w", id, ErrNotFound)
}

func addProject(projects []model.Project, name string) ([]model.Project, model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.Project{}, fmt.Errorf("%w: name must not be empty", ErrInvalidProjectName)
	}
	if utf8.RuneCountInString(name) > model.MaxProjectNameLength {
		return nil, model.Project{}, fmt.Errorf("%w: %q is longer than %d characters",
			ErrInvalidProjectName, name, model.MaxProjectNameLength)
	}
	maxID := model.NoProject
	for _, p := range projects {
		if !p.Deleted && strings.EqualFold(p.Name, name) {
			return nil, model.Project{}, fmt.Errorf("%w: %q already exists", ErrInvalidProjectName, name)
		}
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	p := model.Project{ID: maxID + 1, Name: name}
	return append(projects, p), p, nil
}

func deleteProject(projects []model.Project, id int) (model.Project, error) {
	for i := range projects {
		if projects[i].ID == id && !projects[i].Deleted {
			projects[i].Deleted = true
			return projects[i], nil
		}
	}
	return model.Project{}, fmt.Errorf("project %d: %w", id, ErrNotFound)
}
