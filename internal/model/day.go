package model

import "github.com/Tiliavir/worktimer/internal/timecalc"

// Day aggregates the work blocks of one calendar day.
type Day struct {
	Date string `json:"date"`
	// WorkBlocks is in creation order; the last element is the current block.
	WorkBlocks     []WorkBlock `json:"work_blocks"`
	TimeOffMinutes int         `json:"time_off_minutes"`
	FlexMinutes    int         `json:"flex_minutes"`
}

// NewDay returns an empty day for the given date key.
func NewDay(date string) *Day {
	return &Day{Date: date, WorkBlocks: []WorkBlock{}}
}

// CurrentBlock returns the last work block, appending an empty placeholder
// first if the day has none. It mutates the day.
func (d *Day) CurrentBlock() *WorkBlock {
	if len(d.WorkBlocks) == 0 {
		d.WorkBlocks = append(d.WorkBlocks, WorkBlock{})
	}
	return &d.WorkBlocks[len(d.WorkBlocks)-1]
}

// LastBlock returns the last work block without creating one.
func (d *Day) LastBlock() *WorkBlock {
	if len(d.WorkBlocks) == 0 {
		return nil
	}
	return &d.WorkBlocks[len(d.WorkBlocks)-1]
}

// AppendBlock adds a new block and returns it as the current block.
func (d *Day) AppendBlock(b WorkBlock) *WorkBlock {
	d.WorkBlocks = append(d.WorkBlocks, b)
	return &d.WorkBlocks[len(d.WorkBlocks)-1]
}

// Started reports whether any block of the day has been started.
func (d *Day) Started() bool {
	for i := range d.WorkBlocks {
		if d.WorkBlocks[i].Started() {
			return true
		}
	}
	return false
}

// Lunch is the total lunch of the day, summed over its blocks.
func (d *Day) Lunch() int {
	total := 0
	for i := range d.WorkBlocks {
		total += d.WorkBlocks[i].Lunch
	}
	return total
}

// WorkedTime sums the worked time of all blocks.
func (d *Day) WorkedTime() int {
	total := 0
	for i := range d.WorkBlocks {
		total += d.WorkBlocks[i].WorkedTime()
	}
	return total
}

// IsWeekend reports whether the day falls on a Saturday or Sunday. An
// unparseable date counts as a weekday.
func (d *Day) IsWeekend() bool {
	t, err := timecalc.ParseDate(d.Date)
	if err != nil {
		return false
	}
	return timecalc.IsWeekend(t)
}

// Expected returns the quota and the effective time off for the day.
// Weekends carry neither.
func (d *Day) Expected(quotaMinutes int) (expected, timeOff int) {
	if d.IsWeekend() {
		return 0, 0
	}
	return quotaMinutes, d.TimeOffMinutes
}

// RecalcFlex recomputes FlexMinutes from the blocks and time off. It never
// reads the previous FlexMinutes, so repeated calls are idempotent.
func (d *Day) RecalcFlex(quotaMinutes int) {
	expected, timeOff := d.Expected(quotaMinutes)

	switch {
	case len(d.WorkBlocks) == 1 && !d.WorkBlocks[0].Stopped():
		// Only just started: no deficit while the first block runs.
		d.FlexMinutes = 0
	default:
		d.FlexMinutes = d.WorkedTime() - expected + timeOff
	}
}
