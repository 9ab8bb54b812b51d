package model

import (
	"fmt"
	"time"
)

// PreferenceEntry is one row of the preference table. Matching is ordered,
// first match wins, so the table is kept as a slice.
type PreferenceEntry struct {
	FlightPrefix string
	Pref         *Preference
}

// Schedule holds the day's flight legs together with the airport they
// operate at. It is built once by csvio and read-only afterwards.
type Schedule struct {
	Airport *Airport
	Legs    []*Leg

	// Date is the nominal calendar date all times were loaded onto.
	Date time.Time

	// Buffer is added before an arrival edge and after a departure edge
	// when checking time conflicts.
	Buffer time.Duration

	// SpareBays are reserved bays excluded from all compliance.
	SpareBays map[int]bool
}

func (s *Schedule) NumLegs() int {
	return len(s.Legs)
}

// Passengers returns the seating capacity of the aircraft flying leg i.
func (s *Schedule) Passengers(i int) int {
	return s.Airport.Aircraft[s.Legs[i].ACType].Passengers
}

// AirlineOf returns the airline code of leg i.
func (s *Schedule) AirlineOf(i int) (string, error) {
	if s.Legs[i].Airline == "" {
		return "", fmt.Errorf("leg %d has neither an inbound nor an outbound flight number", i)
	}
	return s.Legs[i].Airline, nil
}

// Terminal returns the check-in terminal serving leg i. Domestic flights
// all board from terminal D regardless of airline.
func (s *Schedule) Terminal(i int) (string, error) {
	domestic, err := s.Domestic(i, true)
	if err != nil {
		return "", err
	}
	if domestic {
		return "D", nil
	}
	code, err := s.AirlineOf(i)
	if err != nil {
		return "", err
	}
	return s.Airport.Airlines[code].Terminal, nil
}

// Domestic classifies leg i by airport code. Arrival-oriented legs check
// the origin first, departure-oriented legs the destination first, each
// falling back to the other code when absent. Split legs without airport
// codes of their own, parking legs in particular, resolve through the
// outer legs of their triple.
func (s *Schedule) Domestic(i int, departing bool) (bool, error) {
	leg := s.Legs[i]
	origin, dest := leg.Origin, leg.Dest
	if origin == "" && dest == "" && leg.Triple != nil {
		origin = s.Legs[leg.Triple.Arr].Origin
		dest = s.Legs[leg.Triple.Dep].Dest
	}
	var codes [2]string
	if (leg.Kind == Arrival || leg.Kind == Parking) && !departing {
		codes = [2]string{origin, dest}
	} else {
		codes = [2]string{dest, origin}
	}
	for _, code := range codes {
		if code != "" {
			return s.Airport.DomesticAirports[code], nil
		}
	}
	return false, fmt.Errorf("leg %d has neither an origin nor a destination airport", i)
}

// Departing reports whether leg i is a departing flight, i.e. a Full or
// Departure leg with an outbound flight number.
func (s *Schedule) Departing(i int) bool {
	leg := s.Legs[i]
	return (leg.Kind == Full || leg.Kind == Departure) && leg.OutFlightNo != ""
}

// BayCompliance reports whether leg i may be assigned to bay k. Spare bays
// never comply, regardless of the aircraft group.
func (s *Schedule) BayCompliance(i, k int) bool {
	if s.SpareBays[k] {
		return false
	}
	group := s.Airport.Aircraft[s.Legs[i].ACType].Group
	return s.Airport.Compliance[k][group]
}

// occupancy returns the buffered occupancy window of leg i. The buffer
// precedes the window only for legs with an arrival edge and trails it
// only for legs with a departure edge.
func (s *Schedule) occupancy(i int) (start, end time.Time) {
	leg := s.Legs[i]
	start = leg.ETA
	if leg.Kind == Arrival || leg.Kind == Full {
		start = start.Add(-s.Buffer)
	}
	end = leg.ETD
	if leg.Kind == Departure || leg.Kind == Full {
		end = end.Add(s.Buffer)
	}
	return start, end
}

// TimeConflict reports whether legs i and j overlap in time, so that they
// must not share a bay or gate. Legs whose buffered window ends at or
// before its start occupy the resource through midnight; the four wrap
// cases are handled separately. The result is commutative.
func (s *Schedule) TimeConflict(i, j int) bool {
	iStart, iEnd := s.occupancy(i)
	jStart, jEnd := s.occupancy(j)

	iWraps := !iStart.Before(iEnd)
	jWraps := !jStart.Before(jEnd)

	switch {
	case !iWraps && !jWraps:
		return !iStart.After(jEnd) && !jStart.After(iEnd)
	case iWraps && !jWraps:
		return !iStart.After(jEnd) || !jStart.After(iEnd)
	case !iWraps && jWraps:
		return !jStart.After(iEnd) || !iStart.After(jEnd)
	default:
		// Both occupy the resource through midnight.
		return true
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsOvernight reports whether leg i belongs to a ground stay spanning a
// calendar-day boundary. A resolved date mismatch between ETA and ETD is
// authoritative; before resolution, when all times still sit on the
// nominal load date, an ETD chronologically before its ETA implies the
// arrival happened the previous day. For split stays the whole triple is
// inspected.
func (s *Schedule) IsOvernight(i int) bool {
	leg := s.Legs[i]
	if leg.Kind == Full {
		if !sameDate(leg.ETA, leg.ETD) {
			return true
		}
		return leg.ETD.Before(leg.ETA)
	}
	t := leg.Triple
	for _, j := range []int{t.Arr, t.Park, t.Dep} {
		if !sameDate(s.Legs[j].ETA, s.Legs[j].ETD) {
			return true
		}
	}
	for _, j := range []int{t.Arr, t.Park, t.Dep} {
		if s.Legs[j].ETD.Before(s.Legs[j].ETA) {
			return true
		}
	}
	return false
}

// ResolveOvernightDates corrects the ETA dates of overnight stays. All
// times are loaded onto the same nominal date, so an aircraft present
// across midnight first shows up with ETA after ETD. The correction walks
// each triple from Departure back to Arrival, shifting a leg's ETA one day
// back when it exceeds its ETD and shifting earlier legs wholesale once a
// later leg has been moved. Must run exactly once, before any conflict or
// compliance queries.
func (s *Schedule) ResolveOvernightDates() {
	for i, leg := range s.Legs {
		if !s.IsOvernight(i) {
			continue
		}
		switch leg.Kind {
		case Full:
			leg.ETA = leg.ETA.AddDate(0, 0, -1)
		case Arrival:
			// Process each triple once, at its arrival leg.
			t := leg.Triple
			laterShifted := false
			for _, j := range []int{t.Dep, t.Park, t.Arr} {
				lj := s.Legs[j]
				if laterShifted {
					lj.ETA = lj.ETA.AddDate(0, 0, -1)
					lj.ETD = lj.ETD.AddDate(0, 0, -1)
				}
				if lj.ETA.After(lj.ETD) {
					lj.ETA = lj.ETA.AddDate(0, 0, -1)
					laterShifted = true
				}
			}
		}
	}
}

// ResolvePreferences looks up the preference record for every leg. The
// table is searched with the inbound flight number and origin first, then
// the outbound number and destination; a table entry matches when its
// flight number is a prefix of the leg's and the airports agree. Split
// legs resolve against the outer flight numbers of their triple.
func (s *Schedule) ResolvePreferences(table []PreferenceEntry) {
	for _, leg := range s.Legs {
		var inNo, inApt, outNo, outApt string
		if leg.Kind == Full {
			inNo, inApt = leg.InFlightNo, leg.Origin
			outNo, outApt = leg.OutFlightNo, leg.Dest
		} else {
			t := leg.Triple
			inNo, inApt = s.Legs[t.Arr].InFlightNo, s.Legs[t.Arr].Origin
			outNo, outApt = s.Legs[t.Dep].OutFlightNo, s.Legs[t.Dep].Dest
		}
		leg.Preference = matchPreference(table, inNo, inApt)
		if leg.Preference == nil {
			leg.Preference = matchPreference(table, outNo, outApt)
		}
	}
}

func matchPreference(table []PreferenceEntry, flightNo, airport string) *Preference {
	if flightNo == "" {
		return nil
	}
	for _, e := range table {
		if len(flightNo) >= len(e.FlightPrefix) &&
			flightNo[:len(e.FlightPrefix)] == e.FlightPrefix &&
			airport == e.Pref.Dest {
			return e.Pref
		}
	}
	return nil
}

// DuplicateFlights returns the index pairs of legs sharing a flight number
// and identical times. Ambiguous source data is reported, not rejected.
func (s *Schedule) DuplicateFlights() [][2]int {
	var dups [][2]int
	for i := 0; i < len(s.Legs); i++ {
		for j := i + 1; j < len(s.Legs); j++ {
			a, b := s.Legs[i], s.Legs[j]
			sameNo := (a.InFlightNo != "" && a.InFlightNo == b.InFlightNo) ||
				(a.OutFlightNo != "" && a.OutFlightNo == b.OutFlightNo)
			if sameNo && a.ETA.Equal(b.ETA) && a.ETD.Equal(b.ETD) {
				dups = append(dups, [2]int{i, j})
			}
		}
	}
	return dups
}
