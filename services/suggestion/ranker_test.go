package suggestion

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"fieldserve/models"
)

func sugg(techID string, start time.Time, score int, travelMinutes *int) models.SingleSuggestion {
	return models.SingleSuggestion{
		TechnicianID:      techID,
		TechnicianName:    "Tech " + techID,
		Start:             start,
		End:               start.Add(time.Hour),
		EfficiencyScore:   score,
		TravelTimeMinutes: travelMinutes,
	}
}

func minutes(m int) *int { return &m }

func TestRankTopPicksBoundAndNoDuplication(t *testing.T) {
	day2 := testDay.AddDate(0, 0, 1)
	pool := []models.SingleSuggestion{
		sugg("a", at(testDay, 8, 0), 95, minutes(5)),
		sugg("b", at(testDay, 9, 0), 80, minutes(20)),
		sugg("a", at(day2, 8, 0), 75, minutes(25)),
		sugg("b", at(day2, 10, 0), 60, minutes(40)),
		sugg("a", at(testDay, 13, 0), 55, minutes(45)),
	}

	topPicks, byDay := Rank(pool)
	if len(topPicks) != 3 {
		t.Fatalf("expected 3 top picks, got %d", len(topPicks))
	}
	if topPicks[0].EfficiencyScore != 95 {
		t.Errorf("best pick score = %d, want 95", topPicks[0].EfficiencyScore)
	}

	seen := make(map[string]bool)
	for _, s := range topPicks {
		seen[s.TechnicianID+s.Start.String()] = true
	}
	total := 0
	for _, group := range byDay {
		for _, s := range group.Suggestions {
			total++
			if seen[s.TechnicianID+s.Start.String()] {
				t.Errorf("suggestion %s@%v appears in both topPicks and byDay", s.TechnicianID, s.Start)
			}
		}
	}
	if total != len(pool)-len(topPicks) {
		t.Errorf("byDay holds %d suggestions, want %d", total, len(pool)-len(topPicks))
	}
}

func TestRankDayGroupsOrderedByBestScore(t *testing.T) {
	day2 := testDay.AddDate(0, 0, 1)
	day3 := testDay.AddDate(0, 0, 2)
	pool := []models.SingleSuggestion{
		// Three fillers that will become top picks.
		sugg("a", at(testDay, 7, 0), 99, minutes(1)),
		sugg("a", at(testDay, 8, 0), 98, minutes(2)),
		sugg("a", at(testDay, 9, 0), 97, minutes(3)),
		// Remainder across days with day3 stronger than day2.
		sugg("b", at(day2, 8, 0), 60, minutes(30)),
		sugg("b", at(day3, 8, 0), 85, minutes(10)),
		sugg("b", at(day3, 13, 0), 50, minutes(50)),
	}

	_, byDay := Rank(pool)
	if len(byDay) != 2 {
		t.Fatalf("expected 2 day groups, got %d", len(byDay))
	}
	if byDay[0].Date != day3.Format("2006-01-02") {
		t.Errorf("first group date = %s, want the higher-scoring day", byDay[0].Date)
	}
	if byDay[0].BestScore != 85 || byDay[1].BestScore != 60 {
		t.Errorf("group best scores = %d, %d; want 85, 60", byDay[0].BestScore, byDay[1].BestScore)
	}
	for _, group := range byDay {
		for i := 1; i < len(group.Suggestions); i++ {
			if group.Suggestions[i].EfficiencyScore > group.Suggestions[i-1].EfficiencyScore {
				t.Errorf("group %s members out of order", group.Date)
			}
		}
	}
}

func TestRankTieBreaks(t *testing.T) {
	pool := []models.SingleSuggestion{
		sugg("b", at(testDay, 10, 0), 80, minutes(25)),
		sugg("a", at(testDay, 10, 0), 80, minutes(15)),
		sugg("c", at(testDay, 8, 0), 80, minutes(15)),
		sugg("d", at(testDay, 9, 0), 80, nil), // unknown estimate sorts last
	}

	topPicks, _ := Rank(pool)
	if topPicks[0].TechnicianID != "c" {
		t.Errorf("ties on score+travel should break on earlier start; got %s first", topPicks[0].TechnicianID)
	}
	if topPicks[1].TechnicianID != "a" {
		t.Errorf("lower travel should beat higher travel on equal score; got %s second", topPicks[1].TechnicianID)
	}
	if topPicks[2].TechnicianID != "b" {
		t.Errorf("got %s third, want b", topPicks[2].TechnicianID)
	}
}

func TestRankDeterministic(t *testing.T) {
	day2 := testDay.AddDate(0, 0, 1)
	pool := []models.SingleSuggestion{
		sugg("b", at(testDay, 9, 0), 70, minutes(20)),
		sugg("a", at(testDay, 8, 0), 70, minutes(20)),
		sugg("c", at(day2, 8, 0), 70, minutes(20)),
		sugg("d", at(day2, 9, 0), 40, nil),
		sugg("e", at(testDay, 14, 0), 40, nil),
	}

	first := marshalRanked(t, pool)
	second := marshalRanked(t, pool)
	if !bytes.Equal(first, second) {
		t.Error("identical input produced different ranked output")
	}
}

func TestRankEmptyPool(t *testing.T) {
	topPicks, byDay := Rank(nil)
	if topPicks == nil || len(topPicks) != 0 {
		t.Errorf("empty pool should yield empty (non-nil) topPicks, got %v", topPicks)
	}
	if byDay == nil || len(byDay) != 0 {
		t.Errorf("empty pool should yield empty (non-nil) byDay, got %v", byDay)
	}
}

func marshalRanked(t *testing.T, pool []models.SingleSuggestion) []byte {
	t.Helper()
	topPicks, byDay := Rank(pool)
	b, err := json.Marshal(struct {
		TopPicks []models.SingleSuggestion
		ByDay    []models.DayGroup
	}{topPicks, byDay})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
