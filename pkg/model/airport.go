package model

import (
	"fmt"
	"math"
)

// Airline holds the reference data for one carrier operating at the airport.
type Airline struct {
	Code     string
	Terminal string
}

// Aircraft holds the size group and seating capacity of an aircraft type.
type Aircraft struct {
	Type       string
	Group      string
	Passengers int
}

// Airport holds the static reference data of the target airport. It is
// loaded once by csvio and read-only afterwards.
type Airport struct {
	BayNames      []string
	GateNames     []string
	TerminalNames []string

	Airlines map[string]Airline
	Aircraft map[string]Aircraft

	// Compliance[k][group] reports whether the aircraft size group may
	// park on bay k.
	Compliance []map[string]bool

	// TerminalDist[k][terminal] is the walking distance from bay k to the
	// check-in terminal.
	TerminalDist []map[string]float64

	// MaxDist[terminal] is the largest bay distance for that terminal,
	// derived once after loading.
	MaxDist map[string]float64

	DomesticAirports map[string]bool

	// Fueling[k] reports whether bay k has a fuel pit.
	Fueling []bool

	// BayGateDist[k][l] is the distance from bay k to gate l. NaN marks an
	// infeasible pairing; use BayGateDistance to read it.
	BayGateDist [][]float64

	RemoteBays    map[int]bool
	DomesticGates map[int]bool
	BussingGates  map[int]bool

	// Adjacency lists bay index pairs that share a single gate.
	Adjacency [][2]int
}

func (a *Airport) NumBays() int {
	return len(a.BayNames)
}

func (a *Airport) NumGates() int {
	return len(a.GateNames)
}

// BayIndex resolves a bay name to its index.
func (a *Airport) BayIndex(name string) (int, error) {
	for k, n := range a.BayNames {
		if n == name {
			return k, nil
		}
	}
	return -1, fmt.Errorf("unknown bay %q", name)
}

// GateIndex resolves a gate name to its index.
func (a *Airport) GateIndex(name string) (int, error) {
	for l, n := range a.GateNames {
		if n == name {
			return l, nil
		}
	}
	return -1, fmt.Errorf("unknown gate %q", name)
}

// TerminalBayDistance returns the walking distance between a terminal and
// bay k.
func (a *Airport) TerminalBayDistance(terminal string, k int) float64 {
	return a.TerminalDist[k][terminal]
}

// BayGateDistance returns the distance between bay k and gate l. ok is
// false when the pairing is infeasible.
func (a *Airport) BayGateDistance(k, l int) (float64, bool) {
	d := a.BayGateDist[k][l]
	if math.IsNaN(d) {
		return 0, false
	}
	return d, true
}

// ComputeMaxDistances fills MaxDist from the loaded terminal distance
// table. Called once by the loader.
func (a *Airport) ComputeMaxDistances() {
	a.MaxDist = make(map[string]float64, len(a.TerminalNames))
	for _, term := range a.TerminalNames {
		max := 0.0
		for k := range a.BayNames {
			if d := a.TerminalDist[k][term]; d > max {
				max = d
			}
		}
		a.MaxDist[term] = max
	}
}

// Validate checks the invariants every bay must satisfy: compliance,
// fueling and terminal distance data have to be present for all of them.
func (a *Airport) Validate() error {
	n := len(a.BayNames)
	if len(a.Compliance) != n {
		return fmt.Errorf("bay compliance data covers %d of %d bays", len(a.Compliance), n)
	}
	if len(a.Fueling) != n {
		return fmt.Errorf("fueling data covers %d of %d bays", len(a.Fueling), n)
	}
	if len(a.TerminalDist) != n {
		return fmt.Errorf("terminal distance data covers %d of %d bays", len(a.TerminalDist), n)
	}
	if len(a.BayGateDist) != n {
		return fmt.Errorf("bay-gate distance data covers %d of %d bays", len(a.BayGateDist), n)
	}
	for k := range a.BayNames {
		if len(a.BayGateDist[k]) != len(a.GateNames) {
			return fmt.Errorf("bay %q has gate distances for %d of %d gates",
				a.BayNames[k], len(a.BayGateDist[k]), len(a.GateNames))
		}
		for _, term := range a.TerminalNames {
			if _, ok := a.TerminalDist[k][term]; !ok {
				return fmt.Errorf("bay %q has no distance to terminal %q", a.BayNames[k], term)
			}
		}
	}
	for _, pair := range a.Adjacency {
		for _, k := range []int{pair[0], pair[1]} {
			if k < 0 || k >= n {
				return fmt.Errorf("adjacency pair %v references unknown bay index %d", pair, k)
			}
		}
	}
	return nil
}
