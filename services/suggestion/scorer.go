package suggestion

import "fieldserve/models"

// Travel-time bands in minutes. The bands are independent of the 0-100 score
// tiers but consistent with them: a short band can reach "Optimal", the long
// band never can.
const (
	travelShortMax  = 20
	travelMediumMax = 35
	travelLongerMax = 50
)

// unknownTravelScore is the flat score applied when no travel estimate could
// be obtained. It sits in the lowest tier regardless of other inputs, so the
// portal never overstates confidence, and it is constant so that an outage
// degrades ordering to schedule fit.
const unknownTravelScore = 40

// degradedPenalty discounts a score when the origin had to fall back to the
// home address instead of the true prior stop.
const degradedPenalty = 10

// Score converts travel time and schedule fit into a 0-100 efficiency score.
// Travel time dominates; large idle gaps before the technician's next
// commitment are mildly penalized. slackMinutes < 0 means the slot has no
// later commitment that day. The mapping is monotonic: for fixed other
// factors, more travel never scores higher.
func Score(travel models.TravelEstimate, isFirstJob bool, slackMinutes int) int {
	if !travel.Known {
		return unknownTravelScore
	}

	score := 100.0 - travelPenalty(travel.Minutes) - slackPenalty(slackMinutes)
	if isFirstJob {
		// A first job fills the start of the day; small nudge.
		score += 2
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

// travelPenalty grows piecewise with the travel bands: gently inside the short
// band, steeply through the longer one, then flattens so the longest drives
// all land near the floor.
func travelPenalty(minutes int) float64 {
	m := float64(minutes)
	switch {
	case minutes <= travelShortMax:
		return m * 0.5
	case minutes <= travelMediumMax:
		return 10 + (m-travelShortMax)*1.0
	case minutes <= travelLongerMax:
		return 25 + (m-travelMediumMax)*1.5
	default:
		p := 47.5 + (m-travelLongerMax)*0.5
		if p > 60 {
			p = 60
		}
		return p
	}
}

// slackPenalty leaves up to two hours of idle time unpenalized, then grows
// slowly; excess idle time erodes daily utilization.
func slackPenalty(slackMinutes int) float64 {
	if slackMinutes <= 120 {
		return 0
	}
	p := float64(slackMinutes-120) / 30.0
	if p > 15 {
		p = 15
	}
	return p
}
