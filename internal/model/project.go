package model

// NoProject is the sentinel id for work that is not attributed to a project.
const NoProject = 0

// MaxProjectNameLength bounds project names, in runes.
const MaxProjectNameLength = 30

// Project tags work blocks. Ids are assigned monotonically from 1.
type Project struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// ActiveProjects filters out soft-deleted projects.
func ActiveProjects(projects []Project) []Project {
	var active []Project
	for _, p := range projects {
		if !p.Deleted {
			active = append(active, p)
		}
	}
	return active
}
