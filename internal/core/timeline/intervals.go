package timeline

import (
	"slices"
	"time"

	"github.com/agenthands/orgchart/internal/core/common"
	"github.com/agenthands/orgchart/internal/core/model"
)

// FarFuture stands in for an open end inside interval arithmetic only. It never leaves
// this package: Render turns it back into an open period.
var FarFuture = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

func endOrFarFuture(end *time.Time) time.Time {
	if end == nil {
		return FarFuture
	}
	return *end
}

// Tenure is one span during which a department belonged to a ministry.
type Tenure struct {
	MinistryID   string
	MinistryName string
	Start        time.Time
	End          time.Time
}

// Appointment is one span during which a person held a ministry.
type Appointment struct {
	MinisterID   string
	MinisterName string
	Start        time.Time
	End          time.Time
}

// PresidentTerm is one presidential span used to fill uncovered sub-intervals.
type PresidentTerm struct {
	PresidentID   string
	PresidentName string
	Start         time.Time
	End           time.Time
}

// Overlap intersects [aStart, aEnd) with [bStart, bEnd). Intervals that only touch at a
// boundary do not overlap.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) (start, end time.Time, ok bool) {
	start = aStart
	if bStart.After(start) {
		start = bStart
	}
	end = aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	return start, end, start.Before(end)
}

// ClipAppointments returns one filled entry per appointment overlapping tenure, clipped
// to the tenure and sorted by start.
func ClipAppointments(tenure Tenure, appointments []Appointment) []model.TimelineEntry {
	var entries []model.TimelineEntry
	for _, a := range appointments {
		start, end, ok := Overlap(a.Start, a.End, tenure.Start, tenure.End)
		if !ok {
			continue
		}
		id := a.MinisterID
		entries = append(entries, model.TimelineEntry{
			MinistryID:   tenure.MinistryID,
			MinistryName: tenure.MinistryName,
			MinisterID:   &id,
			MinisterName: a.MinisterName,
			Start:        start,
			End:          end,
		})
	}
	sortAscending(entries)
	return entries
}

// FillGaps returns an unfilled entry for every part of tenure not covered by filled,
// which must be sorted by start. Together with filled the gaps cover the tenure exactly.
func FillGaps(tenure Tenure, filled []model.TimelineEntry) []model.TimelineEntry {
	var gaps []model.TimelineEntry
	cursor := tenure.Start
	for _, e := range filled {
		if cursor.Before(e.Start) {
			gaps = append(gaps, gap(tenure, cursor, e.Start))
		}
		if e.End.After(cursor) {
			cursor = e.End
		}
	}
	if cursor.Before(tenure.End) {
		gaps = append(gaps, gap(tenure, cursor, tenure.End))
	}
	return gaps
}

func gap(tenure Tenure, start, end time.Time) model.TimelineEntry {
	return model.TimelineEntry{
		MinistryID:   tenure.MinistryID,
		MinistryName: tenure.MinistryName,
		Start:        start,
		End:          end,
	}
}

// FillFromPresidents fills each unfilled entry with the first term that overlaps it,
// clipping the entry to that overlap. Entries no term overlaps stay unfilled; their
// count is returned.
func FillFromPresidents(entries []model.TimelineEntry, terms []PresidentTerm) int {
	unfilled := 0
	for i := range entries {
		if entries[i].Filled() {
			continue
		}
		filled := false
		for _, term := range terms {
			start, end, ok := Overlap(term.Start, term.End, entries[i].Start, entries[i].End)
			if !ok {
				continue
			}
			id := term.PresidentID
			entries[i].MinisterID = &id
			entries[i].MinisterName = term.PresidentName
			entries[i].Start = start
			entries[i].End = end
			filled = true
			break
		}
		if !filled {
			unfilled++
		}
	}
	return unfilled
}

// Collapse sorts entries by start and merges each entry into its predecessor when both
// have the same minister and ministry name and the predecessor reaches the entry's start.
// Collapse(Collapse(x)) equals Collapse(x).
func Collapse(entries []model.TimelineEntry) []model.TimelineEntry {
	sorted := slices.Clone(entries)
	sortAscending(sorted)

	var out []model.TimelineEntry
	for _, e := range sorted {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if sameMinister(prev.MinisterID, e.MinisterID) &&
				prev.MinistryName == e.MinistryName &&
				!prev.End.Before(e.Start) {
				if e.End.After(prev.End) {
					prev.End = e.End
				}
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func sameMinister(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Render orders entries newest first and replaces their timestamps with a period string.
func Render(entries []model.TimelineEntry) []model.TimelineView {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b model.TimelineEntry) int {
		return b.Start.Compare(a.Start)
	})

	views := make([]model.TimelineView, 0, len(sorted))
	for _, e := range sorted {
		var end *time.Time
		if !e.End.Equal(FarFuture) {
			t := e.End
			end = &t
		}
		views = append(views, model.TimelineView{
			MinistryID:   e.MinistryID,
			MinistryName: e.MinistryName,
			MinisterID:   e.MinisterID,
			MinisterName: e.MinisterName,
			Period:       common.FormatTerm(e.Start, end, true),
			Unfilled:     !e.Filled(),
		})
	}
	return views
}

func sortAscending(entries []model.TimelineEntry) {
	slices.SortStableFunc(entries, func(a, b model.TimelineEntry) int {
		return a.Start.Compare(b.Start)
	})
}
