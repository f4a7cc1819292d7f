package suggestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"fieldserve/models"
	"fieldserve/services/geo"
)

type fakeAvailability struct {
	bookings map[string][]models.Booking
	errs     map[string]error
}

func (f *fakeAvailability) Bookings(ctx context.Context, technicianID string, from, to time.Time) ([]models.Booking, error) {
	if err := f.errs[technicianID]; err != nil {
		return nil, err
	}
	return f.bookings[technicianID], nil
}

type fakeGeocoder struct {
	coords map[string]models.Coordinate
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (models.Coordinate, error) {
	if coord, ok := f.coords[address]; ok {
		return coord, nil
	}
	return models.Coordinate{}, geo.ErrNotFound
}

type fakeTravel struct {
	mu    sync.Mutex
	calls int
	fn    func(origin, dest models.Coordinate) (int, error)
}

func (f *fakeTravel) TravelTime(ctx context.Context, origin, dest models.Coordinate) (int, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(origin, dest)
}

type fakeLocator struct {
	positions map[string]models.VehiclePosition
}

func (f *fakeLocator) Position(ctx context.Context, vehicleID string) (*models.VehiclePosition, error) {
	if pos, ok := f.positions[vehicleID]; ok {
		return &pos, nil
	}
	return nil, geo.ErrNotFound
}

var caseDest = models.Coordinate{Lat: 55.595, Lng: 12.999}

func newTestEngine(avail *fakeAvailability, travel *fakeTravel) *DefaultEngine {
	return &DefaultEngine{
		Availability:  avail,
		Geocoder:      &fakeGeocoder{},
		Travel:        travel,
		Workers:       4,
		TravelTimeout: time.Second,
	}
}

func testRequest() models.NewCaseRequest {
	return models.NewCaseRequest{
		Address:         "Möllevångsgatan 12, Malmö",
		Coordinate:      &caseDest,
		RangeStart:      testDay,
		RangeEnd:        testDay.AddDate(0, 0, 1),
		DurationMinutes: 60,
	}
}

func TestSuggestRejectsBadInput(t *testing.T) {
	engine := newTestEngine(&fakeAvailability{}, &fakeTravel{fn: func(_, _ models.Coordinate) (int, error) { return 10, nil }})
	tech := testTechnician()

	cases := []struct {
		name  string
		req   models.NewCaseRequest
		techs []models.Technician
		code  string
	}{
		{"empty pool", testRequest(), nil, CodeEmptyTechnicianPool},
		{
			"degenerate range",
			models.NewCaseRequest{Coordinate: &caseDest, RangeStart: testDay, RangeEnd: testDay, DurationMinutes: 60},
			[]models.Technician{tech},
			CodeInvalidDateRange,
		},
		{
			"non-positive duration",
			models.NewCaseRequest{Coordinate: &caseDest, RangeStart: testDay, RangeEnd: testDay.AddDate(0, 0, 1)},
			[]models.Technician{tech},
			CodeInvalidDuration,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Suggest(context.Background(), tc.req, tc.techs)
			var se *SuggestError
			if !errors.As(err, &se) {
				t.Fatalf("expected SuggestError, got %v", err)
			}
			if se.Code != tc.code {
				t.Errorf("error code = %s, want %s", se.Code, tc.code)
			}
		})
	}
}

func TestSuggestOriginsAndTravelTimes(t *testing.T) {
	tech := testTechnician()
	prior := booking("b1", at(testDay, 10, 0), at(testDay, 11, 0))
	avail := &fakeAvailability{bookings: map[string][]models.Booking{
		tech.ID: {prior},
	}}
	travel := &fakeTravel{fn: func(origin, dest models.Coordinate) (int, error) {
		switch {
		case origin == *tech.HomeCoordinate:
			return 7, nil
		case origin == *prior.Coordinate:
			return 12, nil
		default:
			return 10, nil
		}
	}}

	engine := newTestEngine(avail, travel)
	result, err := engine.Suggest(context.Background(), testRequest(), []models.Technician{tech})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}

	all := append([]models.SingleSuggestion{}, result.TopPicks...)
	for _, g := range result.ByDay {
		all = append(all, g.Suggestions...)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(all))
	}

	var morning, afterPrior *models.SingleSuggestion
	for i := range all {
		switch {
		case all[i].Start.Equal(at(testDay, 8, 0)):
			morning = &all[i]
		case all[i].Start.Equal(at(testDay, 11, 0)):
			afterPrior = &all[i]
		}
	}
	if morning == nil || afterPrior == nil {
		t.Fatalf("missing expected suggestions: %+v", all)
	}

	if !morning.IsFirstJob || morning.Origin.Address != tech.HomeAddress {
		t.Errorf("08:00 slot should originate from home, got %+v", morning.Origin)
	}
	if morning.TravelTimeMinutes == nil || *morning.TravelTimeMinutes != 7 {
		t.Errorf("08:00 slot travel = %v, want 7 (from home)", morning.TravelTimeMinutes)
	}

	if afterPrior.Origin.PriorCaseTitle != prior.Title {
		t.Errorf("11:00 slot origin title = %q, want %q", afterPrior.Origin.PriorCaseTitle, prior.Title)
	}
	if afterPrior.Origin.PriorCaseEnd == nil || !afterPrior.Origin.PriorCaseEnd.Equal(prior.End) {
		t.Errorf("11:00 slot origin end = %v, want %v", afterPrior.Origin.PriorCaseEnd, prior.End)
	}
	if afterPrior.TravelTimeMinutes == nil || *afterPrior.TravelTimeMinutes != 12 {
		t.Errorf("11:00 slot travel = %v, want 12 (from prior stop)", afterPrior.TravelTimeMinutes)
	}
}

func TestSuggestRanksShortTravelFirst(t *testing.T) {
	techA := testTechnician()
	techB := testTechnician()
	techB.ID = "tech-2"
	techB.Name = "Jonas Berg"
	techB.HomeCoordinate = &models.Coordinate{Lat: 56.05, Lng: 13.8}

	packed := booking("b1", at(testDay, 8, 0), at(testDay, 12, 0))
	packed.TechnicianID = techB.ID
	tail := booking("b2", at(testDay, 13, 0), at(testDay, 17, 0))
	tail.TechnicianID = techB.ID

	avail := &fakeAvailability{bookings: map[string][]models.Booking{
		techA.ID: nil,
		techB.ID: {packed, tail},
	}}
	travel := &fakeTravel{fn: func(origin, dest models.Coordinate) (int, error) {
		if origin == *techA.HomeCoordinate {
			return 5, nil
		}
		return 45, nil
	}}

	engine := newTestEngine(avail, travel)
	result, err := engine.Suggest(context.Background(), testRequest(), []models.Technician{techA, techB})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(result.TopPicks) == 0 {
		t.Fatal("expected top picks")
	}
	if result.TopPicks[0].TechnicianID != techA.ID {
		t.Errorf("top pick technician = %s, want the 5-minute-travel technician %s",
			result.TopPicks[0].TechnicianID, techA.ID)
	}
}

func TestSuggestTotalProviderOutage(t *testing.T) {
	techA := testTechnician()
	techB := testTechnician()
	techB.ID = "tech-2"

	b1 := booking("b1", at(testDay, 10, 0), at(testDay, 11, 0))
	b2 := booking("b2", at(testDay, 9, 0), at(testDay, 12, 0))
	b2.TechnicianID = techB.ID

	avail := &fakeAvailability{bookings: map[string][]models.Booking{
		techA.ID: {b1},
		techB.ID: {b2},
	}}
	travel := &fakeTravel{fn: func(_, _ models.Coordinate) (int, error) {
		return 0, geo.ErrUnavailable
	}}

	engine := newTestEngine(avail, travel)
	result, err := engine.Suggest(context.Background(), testRequest(), []models.Technician{techA, techB})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}

	if !result.EstimatesUnavailable {
		t.Error("total outage should set the estimates-unavailable flag")
	}
	if len(result.TopPicks) == 0 {
		t.Fatal("outage must still yield an actionable list")
	}
	check := func(s models.SingleSuggestion) {
		if s.EfficiencyScore >= 50 {
			t.Errorf("suggestion %s@%v scored %d during outage, want below 50",
				s.TechnicianID, s.Start, s.EfficiencyScore)
		}
		if s.TravelTimeMinutes != nil {
			t.Errorf("suggestion %s@%v carries travel minutes during outage", s.TechnicianID, s.Start)
		}
	}
	for _, s := range result.TopPicks {
		check(s)
	}
	for _, g := range result.ByDay {
		for _, s := range g.Suggestions {
			check(s)
		}
	}
	// With flat scores the picks fall back to schedule fit: earliest first.
	for i := 1; i < len(result.TopPicks); i++ {
		if result.TopPicks[i].Start.Before(result.TopPicks[i-1].Start) {
			t.Error("outage top picks not in first-available order")
		}
	}
}

func TestSuggestNoWorkingDaysIsEmptyNotError(t *testing.T) {
	tech := testTechnician()
	tech.WeeklyHours = nil

	avail := &fakeAvailability{}
	travel := &fakeTravel{fn: func(_, _ models.Coordinate) (int, error) { return 10, nil }}
	engine := newTestEngine(avail, travel)

	result, err := engine.Suggest(context.Background(), testRequest(), []models.Technician{tech})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(result.TopPicks) != 0 || len(result.ByDay) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.EstimatesUnavailable {
		t.Error("an empty pool is not a provider outage")
	}
}

func TestSuggestFlagsUnevaluatedTechnicians(t *testing.T) {
	techA := testTechnician()
	techB := testTechnician()
	techB.ID = "tech-2"

	avail := &fakeAvailability{
		bookings: map[string][]models.Booking{techA.ID: nil},
		errs:     map[string]error{techB.ID: errors.New("case store down")},
	}
	travel := &fakeTravel{fn: func(_, _ models.Coordinate) (int, error) { return 10, nil }}
	engine := newTestEngine(avail, travel)

	result, err := engine.Suggest(context.Background(), testRequest(), []models.Technician{techA, techB})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(result.IncompleteTechnicians) != 1 || result.IncompleteTechnicians[0] != techB.ID {
		t.Errorf("incomplete technicians = %v, want [%s]", result.IncompleteTechnicians, techB.ID)
	}
	if len(result.TopPicks) == 0 {
		t.Error("healthy technicians should still be evaluated")
	}
}

func TestSuggestExpiredDeadlineFlagsAllIncomplete(t *testing.T) {
	techA := testTechnician()
	techB := testTechnician()
	techB.ID = "tech-2"

	avail := &fakeAvailability{bookings: map[string][]models.Booking{
		techA.ID: nil,
		techB.ID: nil,
	}}
	travel := &fakeTravel{fn: func(_, _ models.Coordinate) (int, error) { return 10, nil }}
	engine := newTestEngine(avail, travel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Suggest(ctx, testRequest(), []models.Technician{techA, techB})
	if err != nil {
		t.Fatalf("deadline expiry must degrade, not fail: %v", err)
	}
	if len(result.IncompleteTechnicians) != 2 {
		t.Fatalf("incomplete technicians = %v, want both", result.IncompleteTechnicians)
	}
	for i, want := range []string{techA.ID, techB.ID} {
		if result.IncompleteTechnicians[i] != want {
			t.Errorf("incomplete[%d] = %s, want %s (input order)", i, result.IncompleteTechnicians[i], want)
		}
	}
	if result.EstimatesUnavailable {
		t.Error("an expired deadline is not a provider outage")
	}
	if len(result.TopPicks) != 0 || len(result.ByDay) != 0 {
		t.Errorf("no technician was evaluated, expected empty picks, got %+v", result)
	}
}

func TestSuggestPrefersVehiclePositionForFirstJob(t *testing.T) {
	tech := testTechnician()
	tech.VehicleID = "veh-1"
	vehicleCoord := models.Coordinate{Lat: 55.7, Lng: 13.2}

	avail := &fakeAvailability{bookings: map[string][]models.Booking{tech.ID: nil}}
	travel := &fakeTravel{fn: func(origin, dest models.Coordinate) (int, error) {
		if origin == vehicleCoord {
			return 3, nil
		}
		return 30, nil
	}}

	engine := newTestEngine(avail, travel)
	engine.Vehicles = &fakeLocator{positions: map[string]models.VehiclePosition{
		"veh-1": {VehicleID: "veh-1", Coordinate: vehicleCoord},
	}}

	result, err := engine.Suggest(context.Background(), testRequest(), []models.Technician{tech})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(result.TopPicks) == 0 {
		t.Fatal("expected a suggestion")
	}
	got := result.TopPicks[0]
	if got.TravelTimeMinutes == nil || *got.TravelTimeMinutes != 3 {
		t.Errorf("travel = %v, want 3 minutes from the live vehicle position", got.TravelTimeMinutes)
	}
}

func TestSuggestDeterministicOutput(t *testing.T) {
	techA := testTechnician()
	techB := testTechnician()
	techB.ID = "tech-2"
	techB.Name = "Jonas Berg"

	b1 := booking("b1", at(testDay, 10, 0), at(testDay, 11, 0))
	b2 := booking("b2", at(testDay, 13, 0), at(testDay, 14, 0))
	b2.TechnicianID = techB.ID

	avail := &fakeAvailability{bookings: map[string][]models.Booking{
		techA.ID: {b1},
		techB.ID: {b2},
	}}
	travelFn := func(origin, dest models.Coordinate) (int, error) {
		return int(origin.Lat+origin.Lng) % 40, nil
	}

	req := models.NewCaseRequest{
		Coordinate:      &caseDest,
		RangeStart:      testDay,
		RangeEnd:        testDay.AddDate(0, 0, 2),
		DurationMinutes: 60,
	}
	techs := []models.Technician{techA, techB}

	run := func() []byte {
		engine := newTestEngine(avail, &fakeTravel{fn: travelFn})
		result, err := engine.Suggest(context.Background(), req, techs)
		if err != nil {
			t.Fatalf("Suggest: %v", err)
		}
		b, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return b
	}

	first := run()
	for i := 0; i < 10; i++ {
		if next := run(); !bytes.Equal(first, next) {
			t.Fatalf("run %d produced different output despite identical inputs", i)
		}
	}
}
