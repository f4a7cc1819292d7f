package models

import "time"

// NewCaseRequest describes a new (or rescheduled) field case to find booking
// suggestions for.
type NewCaseRequest struct {
	Address         string      `json:"address"`
	Coordinate      *Coordinate `json:"coordinate,omitempty"`
	RangeStart      time.Time   `json:"rangeStart" binding:"required"`
	RangeEnd        time.Time   `json:"rangeEnd" binding:"required"`
	DurationMinutes int         `json:"durationMinutes" binding:"required"`
	TechnicianIDs   []string    `json:"technicianIds,omitempty"` // empty means all active technicians
}

// TravelEstimate carries a drive-time result. Known distinguishes a real
// zero-minute answer from a failed or timed-out lookup.
type TravelEstimate struct {
	Minutes int
	Known   bool
}

// OriginContext describes what a technician is doing immediately before a
// candidate slot.
type OriginContext struct {
	Address         string
	Coordinate      *Coordinate
	IsFirstJob      bool
	PriorBookingEnd *time.Time
	PriorTitle      string
	// Degraded is set when the true prior stop's location could not be
	// resolved and the home address was used instead.
	Degraded bool
}

// CandidateSlot is a computed free time window large enough to host the new
// case, before scoring.
type CandidateSlot struct {
	TechnicianID string
	Start        time.Time
	End          time.Time
	IsFirstJob   bool
	Origin       OriginContext
	Travel       TravelEstimate
}

// OriginDescriptor is the wire shape of an origin context.
type OriginDescriptor struct {
	Address        string     `json:"address"`
	PriorCaseTitle string     `json:"priorCaseTitle,omitempty"`
	PriorCaseEnd   *time.Time `json:"priorCaseEnd,omitempty"`
	Degraded       bool       `json:"degraded,omitempty"`
}

// SingleSuggestion is a scored candidate slot as presented to the UI.
// TravelTimeMinutes is null when no estimate could be obtained.
type SingleSuggestion struct {
	TechnicianID          string           `json:"technicianId"`
	TechnicianName        string           `json:"technicianName"`
	Start                 time.Time        `json:"start"`
	End                   time.Time        `json:"end"`
	TravelTimeMinutes     *int             `json:"travelTimeMinutes"`
	Origin                OriginDescriptor `json:"origin"`
	IsFirstJob            bool             `json:"isFirstJob"`
	EfficiencyScore       int              `json:"efficiencyScore"`
	TravelTimeHomeMinutes *int             `json:"travelTimeHomeMinutes,omitempty"`
}

// DayGroup buckets suggestions that fall on the same calendar day.
type DayGroup struct {
	Date        string             `json:"date"` // "2006-01-02"
	BestScore   int                `json:"bestScore"`
	Suggestions []SingleSuggestion `json:"suggestions"`
}

// RankedSuggestions is the engine's response: the 3 globally best picks plus
// the remainder grouped per day.
type RankedSuggestions struct {
	TopPicks []SingleSuggestion `json:"topPicks"`
	ByDay    []DayGroup         `json:"byDay"`
	// EstimatesUnavailable is set when no travel-time data could be obtained
	// for any candidate; scores are then floored and ordering falls back to
	// schedule fit.
	EstimatesUnavailable bool `json:"estimatesUnavailable,omitempty"`
	// IncompleteTechnicians lists technicians that were not fully evaluated
	// before the request deadline expired.
	IncompleteTechnicians []string `json:"incompleteTechnicians,omitempty"`
}

// Score tier labels used by the UI.
const (
	TierOptimal = "Optimal"
	TierGood    = "Bra"
	TierOK      = "OK"
	TierLow     = "Låg"
)

// TierFor maps a 0-100 efficiency score to its UI tier label.
func TierFor(score int) string {
	switch {
	case score >= 90:
		return TierOptimal
	case score >= 70:
		return TierGood
	case score >= 50:
		return TierOK
	default:
		return TierLow
	}
}
