package model

import "time"

// LegKind is the kind of a scheduling record. An aircraft's ground stay is
// either a single Full record or a split Arrival/Parking/Departure triple.
type LegKind int

const (
	Full LegKind = iota
	Arrival
	Parking
	Departure
)

var legKindNames = map[LegKind]string{
	Full:      "Full",
	Arrival:   "Arr",
	Parking:   "Park",
	Departure: "Dep",
}

func (k LegKind) String() string {
	return legKindNames[k]
}

// ParseLegKind maps the flight_type column value to a LegKind.
func ParseLegKind(s string) (LegKind, bool) {
	for k, n := range legKindNames {
		if n == s {
			return k, true
		}
	}
	return Full, false
}

// Triple links the three legs of a split ground stay. All three legs of a
// stay share one Triple value.
type Triple struct {
	Arr  int
	Park int
	Dep  int
}

// Preference is a destination-scoped allow-list of bays and gates for
// flights matching a flight number prefix.
type Preference struct {
	Dest  string
	Bays  []int
	Gates []int
}

// PreferredBay reports whether bay k is on the preference's allow-list.
func (p *Preference) PreferredBay(k int) bool {
	for _, b := range p.Bays {
		if b == k {
			return true
		}
	}
	return false
}

// PreferredGate reports whether gate l is on the preference's allow-list.
func (p *Preference) PreferredGate(l int) bool {
	for _, g := range p.Gates {
		if g == l {
			return true
		}
	}
	return false
}

// Leg is one scheduling record. Empty string fields mean the column was
// absent in the source data; Current is -1 when the aircraft's overnight
// location is unknown.
type Leg struct {
	Kind        LegKind
	InFlightNo  string
	Origin      string
	ETA         time.Time
	RegNo       string
	OutFlightNo string
	Dest        string
	ETD         time.Time
	ACType      string
	Airline     string

	Preference *Preference

	// Current is the bay the aircraft already occupies at the start of
	// the day, for overnight carry-over stays.
	Current int

	// Triple is shared by the three legs of a split stay and nil for
	// Full legs.
	Triple *Triple
}
