package assign

import (
	"fmt"

	"github.com/okello/baygate/internal/lp"
	"github.com/okello/baygate/pkg/model"
)

// deltaWeight keeps the gate distance objective small relative to the
// derived preference and penalty weights.
const deltaWeight = 0.001

// GateRules carries the operational gate restrictions. A carrier's flights
// departing at or after the cutoff time of day may only use the restricted
// gate set. An empty carrier disables the rule.
type GateRules struct {
	Carrier         string
	CutoffHour      int
	CutoffMinute    int
	RestrictedGates map[int]bool
}

// GateAssignment builds the gate assignment MILP over the departing legs,
// using the already solved bay assignment.
type GateAssignment struct {
	sched *model.Schedule
	bays  []int
	rules GateRules

	m         *lp.Model
	penalties []string
}

// NewGateAssignment expects one solved bay index per leg, in schedule
// order.
func NewGateAssignment(s *model.Schedule, bays []int, rules GateRules) *GateAssignment {
	return &GateAssignment{sched: s, bays: bays, rules: rules, m: lp.NewModel()}
}

// Build generates the complete model.
func (ga *GateAssignment) Build() (*lp.Model, error) {
	if len(ga.bays) != ga.sched.NumLegs() {
		return nil, fmt.Errorf("bay solution covers %d of %d legs", len(ga.bays), ga.sched.NumLegs())
	}
	if err := ga.createVariables(); err != nil {
		return nil, err
	}
	if err := ga.constraintSingleGate(); err != nil {
		return nil, err
	}
	ga.constraintTimeConflicts()
	if err := ga.objective(); err != nil {
		return nil, err
	}
	return ga.m, nil
}

// feasible reports whether departing leg i may board at gate l, and the
// bay-gate distance when it may.
func (ga *GateAssignment) feasible(i, l int) (float64, bool, error) {
	dist, ok := ga.sched.Airport.BayGateDistance(ga.bays[i], l)
	if !ok {
		return 0, false, nil
	}
	domestic, err := ga.sched.Domestic(i, true)
	if err != nil {
		return 0, false, err
	}
	if domestic != ga.sched.Airport.DomesticGates[l] {
		return 0, false, nil
	}
	if ga.restricted(i) && !ga.rules.RestrictedGates[l] {
		return 0, false, nil
	}
	return dist, true, nil
}

// restricted reports whether the evening carrier rule applies to leg i.
func (ga *GateAssignment) restricted(i int) bool {
	if ga.rules.Carrier == "" || ga.sched.Legs[i].Airline != ga.rules.Carrier {
		return false
	}
	etd := ga.sched.Legs[i].ETD
	return etd.Hour() > ga.rules.CutoffHour ||
		(etd.Hour() == ga.rules.CutoffHour && etd.Minute() >= ga.rules.CutoffMinute)
}

// preferenceScore ranks gate l for leg i: 1 for a preferred gate fixed to
// the leg's bay (zero distance), 0.5 for a preferred gate reached by bus,
// 0 otherwise.
func (ga *GateAssignment) preferenceScore(i, l int) float64 {
	pref := ga.sched.Legs[i].Preference
	if pref == nil || !pref.PreferredGate(l) {
		return 0
	}
	if dist, ok := ga.sched.Airport.BayGateDistance(ga.bays[i], l); ok && dist == 0 {
		return 1
	}
	return 0.5
}

// createVariables registers one decision variable per feasible pair. Later
// passes only reference variables created here.
func (ga *GateAssignment) createVariables() error {
	for i := range ga.sched.Legs {
		if !ga.sched.Departing(i) {
			continue
		}
		for l := 0; l < ga.sched.Airport.NumGates(); l++ {
			_, ok, err := ga.feasible(i, l)
			if err != nil {
				return err
			}
			if ok {
				ga.m.NewVar(lp.FlightGateKey(i, l), fmt.Sprintf("X_%d_%d", i, l))
			}
		}
	}
	return nil
}

func (ga *GateAssignment) feasibleGates(i int) []int {
	var gates []int
	for l := 0; l < ga.sched.Airport.NumGates(); l++ {
		if ga.m.HasVar(lp.FlightGateKey(i, l)) {
			gates = append(gates, l)
		}
	}
	return gates
}

// constraintSingleGate forces every departing leg onto exactly one gate.
func (ga *GateAssignment) constraintSingleGate() error {
	for i := range ga.sched.Legs {
		if !ga.sched.Departing(i) {
			continue
		}
		gates := ga.feasibleGates(i)
		if len(gates) == 0 {
			return fmt.Errorf("departing leg %d has no feasible gate", i)
		}
		terms := make([]lp.Term, 0, len(gates))
		for _, l := range gates {
			terms = append(terms, lp.Term{Coef: 1, Var: ga.m.Var(lp.FlightGateKey(i, l))})
		}
		ga.m.AddConstraint(lp.Constraint{
			Name:  fmt.Sprintf("sg_%d", i),
			Terms: terms,
			Op:    "=",
			RHS:   1,
		})
	}
	return nil
}

// constraintTimeConflicts discourages double-booked gates. Unlike bays
// this is soft: simultaneous gate sharing can be operationally unavoidable,
// so a penalty variable absorbs the violation.
func (ga *GateAssignment) constraintTimeConflicts() {
	n := ga.sched.NumLegs()
	for i := 0; i < n; i++ {
		if !ga.sched.Departing(i) {
			continue
		}
		for j := i + 1; j < n; j++ {
			if !ga.sched.Departing(j) || !ga.sched.TimeConflict(i, j) {
				continue
			}
			for _, l := range ga.feasibleGates(i) {
				if !ga.m.HasVar(lp.FlightGateKey(j, l)) {
					continue
				}
				pen := ga.m.NewVar(lp.GateConflictKey(i, j, l), fmt.Sprintf("P_%d_%d_%d", i, j, l))
				ga.penalties = append(ga.penalties, pen)
				ga.m.AddConstraint(lp.Constraint{
					Name: fmt.Sprintf("gc_%d_%d_%d", i, j, l),
					Terms: []lp.Term{
						{Coef: 1, Var: ga.m.Var(lp.FlightGateKey(i, l))},
						{Coef: 1, Var: ga.m.Var(lp.FlightGateKey(j, l))},
						{Coef: -1, Var: pen},
					},
					Op:  "<=",
					RHS: 1,
				})
			}
		}
	}
}

// objective combines the maximized negative bay-gate distance, the derived
// preference bonus, and the double-booking penalties. Epsilon is twice the
// largest per-flight distance term so preference always dominates
// distance; eta is the largest achievable total preference value so
// avoiding double-booking dominates preference.
func (ga *GateAssignment) objective() error {
	maxDistTerm := 0.0
	for i := range ga.sched.Legs {
		if !ga.sched.Departing(i) {
			continue
		}
		pax := float64(ga.sched.Passengers(i))
		for _, l := range ga.feasibleGates(i) {
			dist, _, err := ga.feasible(i, l)
			if err != nil {
				return err
			}
			if v := deltaWeight * pax * dist; v > maxDistTerm {
				maxDistTerm = v
			}
		}
	}
	epsilon := 2 * maxDistTerm

	eta := 0.0
	for i := range ga.sched.Legs {
		if !ga.sched.Departing(i) {
			continue
		}
		best := 0.0
		for _, l := range ga.feasibleGates(i) {
			if sc := ga.preferenceScore(i, l); sc > best {
				best = sc
			}
		}
		eta += epsilon * best
	}

	for i := range ga.sched.Legs {
		if !ga.sched.Departing(i) {
			continue
		}
		pax := float64(ga.sched.Passengers(i))
		for _, l := range ga.feasibleGates(i) {
			name := ga.m.Var(lp.FlightGateKey(i, l))
			dist, _, err := ga.feasible(i, l)
			if err != nil {
				return err
			}
			ga.m.AddObjective(-deltaWeight*pax*dist, name)
			if sc := ga.preferenceScore(i, l); sc > 0 {
				ga.m.AddObjective(epsilon*sc, name)
			}
		}
	}
	for _, pen := range ga.penalties {
		ga.m.AddObjective(-eta, pen)
	}
	return nil
}
