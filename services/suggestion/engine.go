package suggestion

import (
	"context"
	"sync"
	"time"

	"fieldserve/models"
	"fieldserve/services/availability"
	"fieldserve/services/geo"

	"go.uber.org/zap"
)

// Engine computes ranked booking suggestions for a new field case across a
// technician pool.
type Engine interface {
	Suggest(ctx context.Context, req models.NewCaseRequest, technicians []models.Technician) (models.RankedSuggestions, error)
}

// DefaultEngine is the production implementation. All state is request scoped;
// identical inputs produce identical ranked output.
type DefaultEngine struct {
	Availability availability.Resolver
	Geocoder     geo.Geocoder
	Travel       geo.TravelEstimator
	Vehicles     geo.VehicleLocator // optional; nil when no fleet API is configured

	// Workers bounds concurrent per-technician evaluation (and therefore
	// concurrent outbound travel-time calls).
	Workers int
	// TravelTimeout is the per-call ceiling for a single travel-time lookup.
	TravelTimeout time.Duration

	Logger *zap.Logger
}

// techOutcome collects one technician's evaluation so results can be merged in
// input order regardless of goroutine completion order.
type techOutcome struct {
	suggestions []models.SingleSuggestion
	incomplete  bool
}

// suggestRun carries the state shared by every per-technician evaluation of
// one request: the resolved destination, the travel memo, and tuning values.
type suggestRun struct {
	req       models.NewCaseRequest
	duration  time.Duration
	dest      models.Coordinate
	destKnown bool
	travel    geo.TravelEstimator
	logger    *zap.Logger
}

func (e *DefaultEngine) Suggest(ctx context.Context, req models.NewCaseRequest, technicians []models.Technician) (models.RankedSuggestions, error) {
	if len(technicians) == 0 {
		return models.RankedSuggestions{}, newSuggestError(CodeEmptyTechnicianPool, "no eligible technicians")
	}
	if !req.RangeEnd.After(req.RangeStart) {
		return models.RankedSuggestions{}, newSuggestError(CodeInvalidDateRange, "date range end must be after start")
	}
	if req.DurationMinutes <= 0 {
		return models.RankedSuggestions{}, newSuggestError(CodeInvalidDuration, "service duration must be positive")
	}

	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dest, destKnown := e.resolveDestination(ctx, req)
	if !destKnown {
		logger.Warn("case destination could not be geocoded; travel estimates unavailable",
			zap.String("address", req.Address))
	}

	run := &suggestRun{
		req:       req,
		duration:  time.Duration(req.DurationMinutes) * time.Minute,
		dest:      dest,
		destKnown: destKnown,
		// Travel-time memo for this request only; traffic conditions change
		// between requests.
		travel: geo.NewRequestTravelCache(e.Travel),
		logger: logger,
	}

	workers := e.Workers
	if workers <= 0 {
		workers = 6
	}
	sem := make(chan struct{}, workers)
	outcomes := make([]techOutcome, len(technicians))
	var wg sync.WaitGroup

	for i := range technicians {
		wg.Add(1)
		go func(idx int, tech models.Technician) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[idx] = e.evaluateTechnician(ctx, tech, run)
		}(i, technicians[i])
	}
	wg.Wait()

	result := models.RankedSuggestions{}
	var pool []models.SingleSuggestion
	for i, out := range outcomes {
		pool = append(pool, out.suggestions...)
		if out.incomplete {
			result.IncompleteTechnicians = append(result.IncompleteTechnicians, technicians[i].ID)
		}
	}

	result.EstimatesUnavailable = len(pool) > 0 && noneEstimated(pool)
	result.TopPicks, result.ByDay = Rank(pool)
	return result, nil
}

// resolveDestination prefers an explicit coordinate from the request and falls
// back to geocoding the case address.
func (e *DefaultEngine) resolveDestination(ctx context.Context, req models.NewCaseRequest) (models.Coordinate, bool) {
	if req.Coordinate != nil {
		return *req.Coordinate, true
	}
	coord, err := e.Geocoder.Geocode(ctx, req.Address)
	if err != nil {
		return models.Coordinate{}, false
	}
	return coord, true
}

func (e *DefaultEngine) evaluateTechnician(ctx context.Context, tech models.Technician, run *suggestRun) techOutcome {
	bookings, err := e.Availability.Bookings(ctx, tech.ID, run.req.RangeStart, run.req.RangeEnd)
	if err != nil {
		run.logger.Warn("failed to fetch bookings; technician not evaluated",
			zap.String("technicianID", tech.ID), zap.Error(err))
		return techOutcome{incomplete: true}
	}

	candidates := GenerateCandidates(tech, bookings, run.req.RangeStart, run.req.RangeEnd, run.duration)

	out := techOutcome{}
	for _, cand := range candidates {
		if ctx.Err() != nil {
			// Overall deadline expired: keep what we have, flag the rest.
			out.incomplete = true
			break
		}
		cand.Origin = ResolveOrigin(tech, cand, bookings)
		cand.Travel = e.estimateTravel(ctx, tech, &cand.Origin, run)
		out.suggestions = append(out.suggestions, e.buildSuggestion(ctx, tech, cand, bookings, run))
	}
	return out
}

// estimateTravel resolves the origin coordinate (live vehicle position for
// first jobs when available, otherwise the stored or geocoded origin address)
// and asks the estimator. A failed lookup yields an explicit unknown estimate,
// never a silent zero.
func (e *DefaultEngine) estimateTravel(ctx context.Context, tech models.Technician, origin *models.OriginContext, run *suggestRun) models.TravelEstimate {
	if !run.destKnown {
		return models.TravelEstimate{}
	}

	coord := e.resolveOriginCoordinate(ctx, tech, origin)
	if coord == nil {
		return models.TravelEstimate{}
	}

	callCtx, cancel := e.travelContext(ctx)
	defer cancel()
	minutes, err := run.travel.TravelTime(callCtx, *coord, run.dest)
	if err != nil {
		return models.TravelEstimate{}
	}
	return models.TravelEstimate{Minutes: minutes, Known: true}
}

// resolveOriginCoordinate fills in the origin's coordinate, degrading the
// context to the home address when the true origin cannot be located.
func (e *DefaultEngine) resolveOriginCoordinate(ctx context.Context, tech models.Technician, origin *models.OriginContext) *models.Coordinate {
	// First jobs prefer the vehicle's live position over the static home
	// address when the fleet lookup succeeds in time.
	if origin.IsFirstJob && e.Vehicles != nil && tech.VehicleID != "" {
		if pos, err := e.Vehicles.Position(ctx, tech.VehicleID); err == nil {
			coord := pos.Coordinate
			if pos.Address != "" {
				origin.Address = pos.Address
			}
			origin.Coordinate = &coord
			return &coord
		}
	}

	if origin.Coordinate != nil {
		return origin.Coordinate
	}
	if origin.Address != "" {
		if coord, err := e.Geocoder.Geocode(ctx, origin.Address); err == nil {
			origin.Coordinate = &coord
			return &coord
		}
	}
	if origin.IsFirstJob {
		// Already home based and home could not be located.
		return nil
	}

	// Prior stop unresolvable: estimate from home instead and mark it.
	origin.Address = tech.HomeAddress
	origin.Coordinate = tech.HomeCoordinate
	origin.Degraded = true
	if origin.Coordinate != nil {
		return origin.Coordinate
	}
	if origin.Address != "" {
		if coord, err := e.Geocoder.Geocode(ctx, origin.Address); err == nil {
			origin.Coordinate = &coord
			return &coord
		}
	}
	return nil
}

func (e *DefaultEngine) buildSuggestion(ctx context.Context, tech models.Technician, cand models.CandidateSlot, bookings []models.Booking, run *suggestRun) models.SingleSuggestion {
	slack := slackBeforeNext(cand, bookings)
	score := Score(cand.Travel, cand.IsFirstJob, slack)
	if cand.Origin.Degraded && score > degradedPenalty {
		score -= degradedPenalty
	}

	s := models.SingleSuggestion{
		TechnicianID:    tech.ID,
		TechnicianName:  tech.Name,
		Start:           cand.Start,
		End:             cand.End,
		IsFirstJob:      cand.IsFirstJob,
		EfficiencyScore: score,
		Origin: models.OriginDescriptor{
			Address:        cand.Origin.Address,
			PriorCaseTitle: cand.Origin.PriorTitle,
			PriorCaseEnd:   cand.Origin.PriorBookingEnd,
			Degraded:       cand.Origin.Degraded,
		},
	}
	if cand.Travel.Known {
		minutes := cand.Travel.Minutes
		s.TravelTimeMinutes = &minutes
	}

	// Trailing commute only matters when nothing follows the slot that day.
	if slack < 0 && run.destKnown && tech.HomeCoordinate != nil {
		callCtx, cancel := e.travelContext(ctx)
		defer cancel()
		if minutes, err := run.travel.TravelTime(callCtx, run.dest, *tech.HomeCoordinate); err == nil {
			s.TravelTimeHomeMinutes = &minutes
		}
	}
	return s
}

// slackBeforeNext returns the idle minutes between the candidate's end and the
// technician's next booking that day, or -1 when nothing follows.
func slackBeforeNext(cand models.CandidateSlot, bookings []models.Booking) int {
	dayEnd := time.Date(cand.Start.Year(), cand.Start.Month(), cand.Start.Day(), 0, 0, 0, 0, cand.Start.Location()).AddDate(0, 0, 1)
	var next *models.Booking
	for i := range bookings {
		b := &bookings[i]
		if b.Start.Before(cand.End) || !b.Start.Before(dayEnd) {
			continue
		}
		if next == nil || b.Start.Before(next.Start) {
			next = b
		}
	}
	if next == nil {
		return -1
	}
	return int(next.Start.Sub(cand.End) / time.Minute)
}

func (e *DefaultEngine) travelContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := e.TravelTimeout
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return context.WithTimeout(ctx, timeout)
}

func noneEstimated(pool []models.SingleSuggestion) bool {
	for _, s := range pool {
		if s.TravelTimeMinutes != nil {
			return false
		}
	}
	return true
}
