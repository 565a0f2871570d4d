// Package prompt asks the user which project a work block belongs to.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/model"
)

// ErrAborted is returned when the user cancels the selection.
var ErrAborted = errors.New("project selection aborted")

// New returns an interactive picker when in is a terminal and a line prompt
// otherwise.
func New(in, out *os.File) journal.ProjectPicker {
	if term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd())) {
		return &TUIPicker{In: in, Out: out}
	}
	return &LinePicker{In: in, Out: out}
}

// LinePicker prompts for a project id on a line-oriented stream.
type LinePicker struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

// Pick lists the projects and reads an id. An empty answer keeps the
// default, 0 means no project, anything else unknown is asked again.
func (p *LinePicker) Pick(ctx context.Context, projects []model.Project, defaultID *int) (*int, error) {
	if p.scanner == nil {
		p.scanner = bufio.NewScanner(p.In)
	}
	fmt.Fprintln(p.Out, "Projects:")
	fmt.Fprintf(p.Out, "  %3d  %s\n", model.NoProject, "No project")
	for _, pr := range projects {
		fmt.Fprintf(p.Out, "  %3d  %s\n", pr.ID, pr.Name)
	}

	def := model.NoProject
	if defaultID != nil {
		def = *defaultID
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(p.Out, "Select project [%d]: ", def)
		if !p.scanner.Scan() {
			if err := p.scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading project selection: %w", err)
			}
			return nil, ErrAborted
		}
		answer := strings.TrimSpace(p.scanner.Text())
		id := def
		if answer != "" {
			n, err := strconv.Atoi(answer)
			if err != nil {
				fmt.Fprintf(p.Out, "%q is not a number\n", answer)
				continue
			}
			id = n
		}
		if id == model.NoProject {
			return nil, nil
		}
		if !contains(projects, id) {
			fmt.Fprintf(p.Out, "No project with id %d\n", id)
			continue
		}
		return &id, nil
	}
}

func contains(projects []model.Project, id int) bool {
	for _, p := range projects {
		if p.ID == id {
			return true
		}
	}
	return false
}
