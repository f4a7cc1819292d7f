package suggestion

import (
	"sort"
	"time"

	"fieldserve/models"
)

// interval is a half-open [start, end) time window.
type interval struct {
	start time.Time
	end   time.Time
}

// GenerateCandidates enumerates open time windows for one technician across
// the requested date range that are large enough to host the new case. One
// candidate is emitted per free sub-interval, anchored at the sub-interval's
// start so the coordinator sees the soonest viable time within each gap.
func GenerateCandidates(tech models.Technician, bookings []models.Booking, rangeStart, rangeEnd time.Time, duration time.Duration) []models.CandidateSlot {
	var candidates []models.CandidateSlot
	if duration <= 0 || !rangeEnd.After(rangeStart) {
		return candidates
	}

	loc := rangeStart.Location()
	day := time.Date(rangeStart.Year(), rangeStart.Month(), rangeStart.Day(), 0, 0, 0, 0, loc)

	for ; day.Before(rangeEnd); day = day.AddDate(0, 0, 1) {
		wh, ok := tech.HoursFor(day.Weekday())
		if !ok {
			// No working-hours template for this weekday: zero candidates, not an error.
			continue
		}

		window := interval{
			start: day.Add(time.Duration(wh.Start) * time.Minute),
			end:   day.Add(time.Duration(wh.End) * time.Minute),
		}
		// Clamp to the requested range.
		if window.start.Before(rangeStart) {
			window.start = rangeStart
		}
		if window.end.After(rangeEnd) {
			window.end = rangeEnd
		}
		if !window.end.After(window.start) {
			continue
		}

		busy := mergedBusyBlocks(bookings, window)
		free := subtract(window, busy)

		for _, f := range free {
			if f.end.Sub(f.start) < duration {
				continue
			}
			candidates = append(candidates, models.CandidateSlot{
				TechnicianID: tech.ID,
				Start:        f.start,
				End:          f.start.Add(duration),
				// First job of the day: nothing on the calendar before this slot.
				IsFirstJob: !hasBookingBefore(bookings, day, f.start),
			})
		}
	}

	return candidates
}

// mergedBusyBlocks clips the technician's bookings to the working window and
// merges overlapping intervals into single busy blocks. Overlapping bookings
// are a data-integrity issue in the case store; merging tolerates them.
func mergedBusyBlocks(bookings []models.Booking, window interval) []interval {
	var blocks []interval
	for _, b := range bookings {
		if !b.End.After(window.start) || !b.Start.Before(window.end) {
			continue
		}
		blk := interval{start: b.Start, end: b.End}
		if blk.start.Before(window.start) {
			blk.start = window.start
		}
		if blk.end.After(window.end) {
			blk.end = window.end
		}
		blocks = append(blocks, blk)
	}
	if len(blocks) == 0 {
		return blocks
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].start.Before(blocks[j].start) })

	merged := blocks[:1]
	for _, blk := range blocks[1:] {
		last := &merged[len(merged)-1]
		if !blk.start.After(last.end) {
			if blk.end.After(last.end) {
				last.end = blk.end
			}
			continue
		}
		merged = append(merged, blk)
	}
	return merged
}

// subtract removes busy blocks from the window and returns the remaining free
// sub-intervals, in chronological order.
func subtract(window interval, busy []interval) []interval {
	var free []interval
	cursor := window.start
	for _, blk := range busy {
		if blk.start.After(cursor) {
			free = append(free, interval{start: cursor, end: blk.start})
		}
		if blk.end.After(cursor) {
			cursor = blk.end
		}
	}
	if window.end.After(cursor) {
		free = append(free, interval{start: cursor, end: window.end})
	}
	return free
}

// hasBookingBefore reports whether the technician has any booking on the given
// calendar day that starts before the instant t.
func hasBookingBefore(bookings []models.Booking, day, t time.Time) bool {
	next := day.AddDate(0, 0, 1)
	for _, b := range bookings {
		if b.Start.Before(next) && b.End.After(day) && b.Start.Before(t) {
			return true
		}
	}
	return false
}
