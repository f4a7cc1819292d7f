package suggestion

import (
	"sort"

	"fieldserve/models"
)

// topPickCount is the number of globally best suggestions surfaced above the
// per-day groups, regardless of technician or day.
const topPickCount = 3

// Rank sorts the full suggestion pool, takes the global top picks, and groups
// the remainder by calendar day. A suggestion never appears both in the top
// picks and in a day group. The ordering is fully deterministic: score
// descending, then travel time ascending (unknown estimates last), then start
// time ascending, then technician ID.
func Rank(all []models.SingleSuggestion) ([]models.SingleSuggestion, []models.DayGroup) {
	sorted := make([]models.SingleSuggestion, len(all))
	copy(sorted, all)
	sort.SliceStable(sorted, func(i, j int) bool {
		return suggestionLess(sorted[i], sorted[j])
	})

	topPicks := []models.SingleSuggestion{}
	n := topPickCount
	if len(sorted) < n {
		n = len(sorted)
	}
	topPicks = append(topPicks, sorted[:n]...)

	remainder := sorted[n:]
	groupsByDate := make(map[string][]models.SingleSuggestion)
	var dates []string
	for _, s := range remainder {
		date := s.Start.Format("2006-01-02")
		if _, seen := groupsByDate[date]; !seen {
			dates = append(dates, date)
		}
		groupsByDate[date] = append(groupsByDate[date], s)
	}

	byDay := []models.DayGroup{}
	for _, date := range dates {
		members := groupsByDate[date]
		// Members arrive already sorted; the best score is the first one's.
		byDay = append(byDay, models.DayGroup{
			Date:        date,
			BestScore:   members[0].EfficiencyScore,
			Suggestions: members,
		})
	}

	// Most promising day first; ties resolved by earliest date.
	sort.SliceStable(byDay, func(i, j int) bool {
		if byDay[i].BestScore != byDay[j].BestScore {
			return byDay[i].BestScore > byDay[j].BestScore
		}
		return byDay[i].Date < byDay[j].Date
	})

	return topPicks, byDay
}

func suggestionLess(a, b models.SingleSuggestion) bool {
	if a.EfficiencyScore != b.EfficiencyScore {
		return a.EfficiencyScore > b.EfficiencyScore
	}
	at, aKnown := travelMinutes(a)
	bt, bKnown := travelMinutes(b)
	if aKnown != bKnown {
		return aKnown
	}
	if aKnown && at != bt {
		return at < bt
	}
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	return a.TechnicianID < b.TechnicianID
}

func travelMinutes(s models.SingleSuggestion) (int, bool) {
	if s.TravelTimeMinutes == nil {
		return 0, false
	}
	return *s.TravelTimeMinutes, true
}
