package model

import "github.com/Tiliavir/worktimer/internal/timecalc"

// WorkBlock is one contiguous start→stop working interval within a day.
type WorkBlock struct {
	Start     *timecalc.TimeOfDay `json:"start"`
	Stop      *timecalc.TimeOfDay `json:"stop"`
	Comment   *string             `json:"comment"`
	ProjectID *int                `json:"project_id"`
	// Lunch is the lunch break in minutes taken during this block.
	Lunch int `json:"lunch"`
}

// Started reports whether the block has a start time.
func (b *WorkBlock) Started() bool { return b.Start != nil }

// Stopped reports whether the block has a stop time.
func (b *WorkBlock) Stopped() bool { return b.Stop != nil }

// IsOngoing reports whether the block is started but not yet stopped.
func (b *WorkBlock) IsOngoing() bool { return b.Started() && !b.Stopped() }

// Duration is the gross length of the block, ignoring lunch.
func (b *WorkBlock) Duration() int {
	if !b.Started() || !b.Stopped() {
		return 0
	}
	return timecalc.MinutesBetween(b.Stop, b.Start)
}

// WorkedTime is the block length minus its lunch. It is 0 until both ends
// are set and is not clamped: an inverted block yields a negative value.
func (b *WorkBlock) WorkedTime() int {
	if !b.Started() || !b.Stopped() {
		return 0
	}
	return b.Duration() - b.Lunch
}

func (b *WorkBlock) SetStart(t timecalc.TimeOfDay) { b.Start = &t }

func (b *WorkBlock) SetStop(t timecalc.TimeOfDay) { b.Stop = &t }

func (b *WorkBlock) SetComment(text string) { b.Comment = &text }

// SetProject assigns a project; nil clears it.
func (b *WorkBlock) SetProject(id *int) {
	if id == nil || *id == NoProject {
		b.ProjectID = nil
		return
	}
	v := *id
	b.ProjectID = &v
}

func (b *WorkBlock) SetLunch(mins int) { b.Lunch = mins }

// ProjectKey returns the block's project id, or NoProject.
func (b *WorkBlock) ProjectKey() int {
	if b.ProjectID == nil {
		return NoProject
	}
	return *b.ProjectID
}
