package msgraph

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// Journal is the part of the work journal a sync writes time off to.
type Journal interface {
	Days(ctx context.Context, from, to time.Time) ([]*model.Day, error)
	SetTimeOff(ctx context.Context, date time.Time, minutes int) (int, error)
}

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Updated int
	Skipped int
	Errors  int
}

// SyncOptions configures a sync run. Only days in [From, To] are touched.
type SyncOptions struct {
	From         time.Time
	To           time.Time
	DryRun       bool
	QuotaMinutes int
	Timezone     string
	Out          io.Writer
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, dt); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

func location(tz string) *time.Location {
	if tz == "" {
		return time.Local
	}
	if l, err := time.LoadLocation(tz); err == nil {
		return l
	}
	return time.Local
}

// isTimeOff reports whether the event marks the user as out of office.
func isTimeOff(event CalendarEvent) bool {
	return !event.IsCancelled && event.ShowAs == "oof" &&
		event.Start.DateTime != "" && event.End.DateTime != ""
}

// TimeOffByDay maps out-of-office events to time off per day key. All-day
// events count as a full quota for every weekday they cover; timed events
// count the minutes they overlap each day. Totals are capped at the quota.
func TimeOffByDay(events []CalendarEvent, timezone string, quotaMinutes int) (map[string]int, error) {
	loc := location(timezone)
	days := map[string]int{}
	for _, event := range events {
		if !isTimeOff(event) {
			continue
		}
		start, err := parseGraphTime(event.Start.DateTime, loc)
		if err != nil {
			return nil, fmt.Errorf("event %q: parsing start time: %w", event.Subject, err)
		}
		end, err := parseGraphTime(event.End.DateTime, loc)
		if err != nil {
			return nil, fmt.Errorf("event %q: parsing end time: %w", event.Subject, err)
		}
		for d := timecalc.StartOfDay(start); d.Before(end); d = d.AddDate(0, 0, 1) {
			if timecalc.IsWeekend(d) {
				continue
			}
			mins := quotaMinutes
			if !event.IsAllDay {
				s, e := start, end
				if s.Before(d) {
					s = d
				}
				if next := d.AddDate(0, 0, 1); e.After(next) {
					e = next
				}
				mins = int(e.Sub(s).Minutes())
			}
			key := timecalc.DateKey(d)
			days[key] = min(days[key]+mins, quotaMinutes)
		}
	}
	return days, nil
}

// SyncTimeOff writes the time off derived from events into j. Days whose
// time off already matches are skipped; a dry run only reports.
func SyncTimeOff(ctx context.Context, events []CalendarEvent, j Journal, opts SyncOptions) (SyncResult, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	var result SyncResult

	byDay, err := TimeOffByDay(events, opts.Timezone, opts.QuotaMinutes)
	if err != nil {
		return result, err
	}
	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	from, to := timecalc.DateKey(opts.From), timecalc.DateKey(opts.To)
	for _, key := range keys {
		if key < from || key > to {
			continue
		}
		mins := byDay[key]
		date, err := timecalc.ParseDate(key)
		if err != nil {
			return result, err
		}
		days, err := j.Days(ctx, date, date)
		if err != nil {
			fmt.Fprintf(out, "  ! Error loading %s: %v\n", key, err)
			result.Errors++
			continue
		}
		if len(days) == 1 && days[0].TimeOffMinutes == mins {
			fmt.Fprintf(out, "  – Skipped:  %s (already %s off)\n", key, timecalc.FormatMinutes(mins, false))
			result.Skipped++
			continue
		}
		if !opts.DryRun {
			if _, err := j.SetTimeOff(ctx, date, mins); err != nil {
				fmt.Fprintf(out, "  ! Error saving %s: %v\n", key, err)
				result.Errors++
				continue
			}
		}
		fmt.Fprintf(out, "  ✓ Time off: %s (%s)\n", key, timecalc.FormatMinutes(mins, false))
		result.Updated++
	}
	log.Debug("synced time off",
		log.Field("updated", result.Updated),
		log.Field("skipped", result.Skipped),
		log.Field("errors", result.Errors),
	)
	return result, nil
}
