package journal

import (
	"fmt"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// Estimate is the projected end of the working day.
type Estimate struct {
	End timecalc.TimeOfDay
	// LunchMinutes is the lunch the estimate is based on.
	LunchMinutes int
}

func (e Estimate) String() string {
	return fmt.Sprintf("Estimated end time for today with %d min lunch is %s", e.LunchMinutes, e.End)
}

// EstimateEnd projects the end of day from the start of the current block:
// the remaining quota after time off and completed blocks, plus the lunch
// still owed. It reports false unless the current block is ongoing.
func (j *Journal) EstimateEnd(day *model.Day) (Estimate, bool) {
	cur := day.LastBlock()
	if cur == nil || !cur.IsOngoing() {
		return Estimate{}, false
	}
	expected, timeOff := day.Expected(j.Settings.QuotaMinutes())
	remaining := expected - timeOff - day.WorkedTime()

	lunch := day.Lunch()
	owed := 0
	switch {
	case cur.Lunch > 0:
		// Not yet deducted: the current block has not been stopped.
		owed = cur.Lunch
	case lunch == 0:
		lunch = j.Settings.DefaultLunchMinutes
		owed = lunch
	}
	return Estimate{End: cur.Start.Add(remaining + owed), LunchMinutes: lunch}, true
}
