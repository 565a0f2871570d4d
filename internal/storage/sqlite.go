package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// SQLStore keeps timesheets and projects in a single SQLite database.
// Saving a timesheet replaces every row of its period in one transaction.
type SQLStore struct {
	db                 *sql.DB
	DefaultTargetHours int
}

// DBPath returns the database path inside base.
func DBPath(base string) string {
	return filepath.Join(base, "worktimer.db")
}

// OpenSQLStore opens or creates the database at path and runs migrations.
func OpenSQLStore(path string, targetHours int) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// One writer; the process is single-threaded anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s := &SQLStore{db: db, DefaultTargetHours: targetHours}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate() error {
	migrations := []string{
		migrationCreateTimesheets,
		migrationCreateDays,
		migrationCreateWorkBlocks,
		migrationCreateProjects,
	}
	for i, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

const migrationCreateTimesheets = `
CREATE TABLE IF NOT EXISTS timesheets (
    period TEXT PRIMARY KEY,
    target_hours INTEGER NOT NULL
);
`

const migrationCreateDays = `
CREATE TABLE IF NOT EXISTS days (
    period TEXT NOT NULL,
    date TEXT NOT NULL,
    time_off_minutes INTEGER NOT NULL DEFAULT 0,
    flex_minutes INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (period, date),
    FOREIGN KEY (period) REFERENCES timesheets(period) ON DELETE CASCADE
);
`

const migrationCreateWorkBlocks = `
CREATE TABLE IF NOT EXISTS work_blocks (
    period TEXT NOT NULL,
    date TEXT NOT NULL,
    seq INTEGER NOT NULL,
    start TEXT,
    stop TEXT,
    comment TEXT,
    project_id INTEGER,
    lunch INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (period, date, seq),
    FOREIGN KEY (period, date) REFERENCES days(period, date) ON DELETE CASCADE
);
`

const migrationCreateProjects = `
CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    deleted INTEGER NOT NULL DEFAULT 0
);
`

// LoadTimesheet loads the timesheet for key, creating and persisting an
// empty one if the period is unknown.
func (s *SQLStore) LoadTimesheet(key string) (*model.Timesheet, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	ts := model.NewTimesheet(s.DefaultTargetHours)
	err := s.db.QueryRow(`SELECT target_hours FROM timesheets WHERE period = ?`, key).Scan(&ts.TargetHours)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.SaveTimesheet(key, ts); err != nil {
			return nil, err
		}
		log.Debug("created timesheet", log.Field("period", key))
		return ts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load timesheet %s: %w", key, err)
	}

	rows, err := s.db.Query(`SELECT date, time_off_minutes, flex_minutes FROM days WHERE period = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load days of %s: %w", key, err)
	}
	for rows.Next() {
		d := model.NewDay("")
		if err := rows.Scan(&d.Date, &d.TimeOffMinutes, &d.FlexMinutes); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan day: %w", err)
		}
		ts.Days[d.Date] = d
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`SELECT date, start, stop, comment, project_id, lunch
		FROM work_blocks WHERE period = ? ORDER BY date, seq`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load work blocks of %s: %w", key, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			date        string
			start, stop sql.NullString
			comment     sql.NullString
			projectID   sql.NullInt64
			b           model.WorkBlock
		)
		if err := rows.Scan(&date, &start, &stop, &comment, &projectID, &b.Lunch); err != nil {
			return nil, fmt.Errorf("failed to scan work block: %w", err)
		}
		if b.Start, err = nullTimeOfDay(start); err != nil {
			return nil, fmt.Errorf("corrupt start time on %s: %w", date, err)
		}
		if b.Stop, err = nullTimeOfDay(stop); err != nil {
			return nil, fmt.Errorf("corrupt stop time on %s: %w", date, err)
		}
		if comment.Valid {
			b.SetComment(comment.String)
		}
		if projectID.Valid {
			id := int(projectID.Int64)
			b.SetProject(&id)
		}
		ts.GetOrCreateDay(date).AppendBlock(b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Debug("loaded timesheet", log.Field("period", key), log.Field("days", len(ts.Days)))
	return ts, nil
}

// SaveTimesheet replaces the stored rows of period key with ts.
func (s *SQLStore) SaveTimesheet(key string, ts *model.Timesheet) error {
	if err := validateKey(key); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []struct {
		query string
		args  []any
	}{
		{`DELETE FROM work_blocks WHERE period = ?`, []any{key}},
		{`DELETE FROM days WHERE period = ?`, []any{key}},
		{`INSERT INTO timesheets (period, target_hours) VALUES (?, ?)
			ON CONFLICT(period) DO UPDATE SET target_hours = excluded.target_hours`, []any{key, ts.TargetHours}},
	}
	for _, st := range stmts {
		if _, err := tx.Exec(st.query, st.args...); err != nil {
			return fmt.Errorf("failed to save timesheet %s: %w", key, err)
		}
	}

	for _, d := range ts.SortedDays() {
		if _, err := tx.Exec(`INSERT INTO days (period, date, time_off_minutes, flex_minutes) VALUES (?, ?, ?, ?)`,
			key, d.Date, d.TimeOffMinutes, d.FlexMinutes); err != nil {
			return fmt.Errorf("failed to save day %s: %w", d.Date, err)
		}
		for seq, b := range d.WorkBlocks {
			if _, err := tx.Exec(`INSERT INTO work_blocks (period, date, seq, start, stop, comment, project_id, lunch)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				key, d.Date, seq, timeOfDayArg(b.Start), timeOfDayArg(b.Stop),
				stringArg(b.Comment), intArg(b.ProjectID), b.Lunch); err != nil {
				return fmt.Errorf("failed to save work block %s/%d: %w", d.Date, seq, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit timesheet %s: %w", key, err)
	}
	log.Debug("saved timesheet", log.Field("period", key))
	return nil
}

// Keys lists all stored period keys in ascending order.
func (s *SQLStore) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT period FROM timesheets ORDER BY period`)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// LoadProjects returns all projects ordered by id.
func (s *SQLStore) LoadProjects() ([]model.Project, error) {
	rows, err := s.db.Query(`SELECT id, name, deleted FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()
	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Deleted); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// SaveProjects replaces the project directory.
func (s *SQLStore) SaveProjects(projects []model.Project) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM projects`); err != nil {
		return fmt.Errorf("failed to save projects: %w", err)
	}
	for _, p := range projects {
		if _, err := tx.Exec(`INSERT INTO projects (id, name, deleted) VALUES (?, ?, ?)`,
			p.ID, p.Name, p.Deleted); err != nil {
			return fmt.Errorf("failed to save project %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// GetProject returns the project with the given id.
func (s *SQLStore) GetProject(id int) (model.Project, error) {
	var p model.Project
	err := s.db.QueryRow(`SELECT id, name, deleted FROM projects WHERE id = ?`, id).Scan(&p.ID, &p.Name, &p.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return p, nil
}

// AddProject validates name and stores a new project.
func (s *SQLStore) AddProject(name string) (model.Project, error) {
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
func (s *SQLStore) DeleteProject(id int) (model.Project, error) {
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

func nullTimeOfDay(v sql.NullString) (*timecalc.TimeOfDay, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := timecalc.ParseTimeOfDay(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func timeOfDayArg(t *timecalc.TimeOfDay) any {
	if t == nil {
		return nil
	}
	return t.String()
}

func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intArg(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
