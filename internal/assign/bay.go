package assign

import (
	"fmt"

	"github.com/okello/baygate/internal/lp"
	"github.com/okello/baygate/pkg/model"
)

// BayAssignment builds the bay assignment MILP: one binary variable per
// compliant (leg, bay) pair, a distance/preference/penalty objective, and
// the occupancy, fueling, continuity and adjacency constraints.
type BayAssignment struct {
	sched   *model.Schedule
	weights Weights

	m         *lp.Model
	penalties []string
}

func NewBayAssignment(s *model.Schedule, w Weights) *BayAssignment {
	return &BayAssignment{sched: s, weights: w, m: lp.NewModel()}
}

// Build generates the complete model. The variable registry is populated
// by the single-bay pass; every later pass only references existing
// variables, so an infeasible pair can never sneak in.
func (ba *BayAssignment) Build() (*lp.Model, error) {
	if err := ba.constraintSingleBay(); err != nil {
		return nil, err
	}
	ba.constraintTimeConflicts()
	if err := ba.constraintFueling(); err != nil {
		return nil, err
	}
	if err := ba.constraintSplitContinuity(); err != nil {
		return nil, err
	}
	ba.constraintAdjacency()
	if err := ba.objective(); err != nil {
		return nil, err
	}
	return ba.m, nil
}

// compliantBays lists the bays leg i may use.
func (ba *BayAssignment) compliantBays(i int) []int {
	var bays []int
	for k := 0; k < ba.sched.Airport.NumBays(); k++ {
		if ba.sched.BayCompliance(i, k) {
			bays = append(bays, k)
		}
	}
	return bays
}

// constraintSingleBay creates the flight-bay decision variables and forces
// every leg onto exactly one compliant bay. This is the only place
// flight-bay variables are created.
func (ba *BayAssignment) constraintSingleBay() error {
	for i := range ba.sched.Legs {
		bays := ba.compliantBays(i)
		if len(bays) == 0 {
			return fmt.Errorf("leg %d has no compliant bay", i)
		}
		terms := make([]lp.Term, 0, len(bays))
		for _, k := range bays {
			name := ba.m.NewVar(lp.FlightBayKey(i, k), fmt.Sprintf("X_%d_%d", i, k))
			terms = append(terms, lp.Term{Coef: 1, Var: name})
		}
		ba.m.AddConstraint(lp.Constraint{
			Name:  fmt.Sprintf("sb_%d", i),
			Terms: terms,
			Op:    "=",
			RHS:   1,
		})
	}
	return nil
}

// constraintTimeConflicts forbids two time-conflicting legs from sharing
// a bay.
func (ba *BayAssignment) constraintTimeConflicts() {
	n := ba.sched.NumLegs()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !ba.sched.TimeConflict(i, j) {
				continue
			}
			for _, k := range ba.compliantBays(i) {
				if !ba.sched.BayCompliance(j, k) {
					continue
				}
				ba.m.AddConstraint(lp.Constraint{
					Name: fmt.Sprintf("tc_%d_%d_%d", i, j, k),
					Terms: []lp.Term{
						{Coef: 1, Var: ba.m.Var(lp.FlightBayKey(i, k))},
						{Coef: 1, Var: ba.m.Var(lp.FlightBayKey(j, k))},
					},
					Op:  "<=",
					RHS: 1,
				})
			}
		}
	}
}

// constraintFueling keeps departing flights on fuel pit bays. Non-domestic
// departures and domestic Full stays must be fueled at their own bay.
// Domestic split departures may instead be fueled while parked, so the
// coverage requirement spans the departure leg and the parking leg before
// it.
func (ba *BayAssignment) constraintFueling() error {
	for i, leg := range ba.sched.Legs {
		if !ba.sched.Departing(i) {
			continue
		}
		domestic, err := ba.sched.Domestic(i, true)
		if err != nil {
			return err
		}

		if !domestic || leg.Kind == model.Full {
			var terms []lp.Term
			for _, k := range ba.compliantBays(i) {
				if ba.sched.Airport.Fueling[k] {
					terms = append(terms, lp.Term{Coef: 1, Var: ba.m.Var(lp.FlightBayKey(i, k))})
				}
			}
			if len(terms) == 0 {
				return fmt.Errorf("leg %d has no compliant fueling bay", i)
			}
			ba.m.AddConstraint(lp.Constraint{
				Name:  fmt.Sprintf("fuel_%d", i),
				Terms: terms,
				Op:    "=",
				RHS:   1,
			})
			continue
		}

		// Domestic split departure: coverage over the departure and its
		// preceding parking leg.
		var terms []lp.Term
		for _, j := range []int{i, leg.Triple.Park} {
			for _, k := range ba.compliantBays(j) {
				if ba.sched.Airport.Fueling[k] {
					terms = append(terms, lp.Term{Coef: 1, Var: ba.m.Var(lp.FlightBayKey(j, k))})
				}
			}
		}
		if len(terms) == 0 {
			return fmt.Errorf("leg %d has no compliant fueling bay on either leg of its stay", i)
		}
		ba.m.AddConstraint(lp.Constraint{
			Name:  fmt.Sprintf("fuel_%d", i),
			Terms: terms,
			Op:    ">=",
			RHS:   1,
		})
	}
	return nil
}

// constraintSplitContinuity discourages repositioning within a split stay.
// Overnight stays have their arrival pinned to the bay the aircraft
// already occupies; every transition gets per-bay penalty variables that
// activate when the stay changes bay.
func (ba *BayAssignment) constraintSplitContinuity() error {
	for i, leg := range ba.sched.Legs {
		if leg.Kind != model.Arrival {
			continue
		}
		t := leg.Triple

		if ba.sched.IsOvernight(i) && leg.Current >= 0 {
			if !ba.m.HasVar(lp.FlightBayKey(t.Arr, leg.Current)) {
				return fmt.Errorf("leg %d overnight location %s is not compliant",
					t.Arr, ba.sched.Airport.BayNames[leg.Current])
			}
			ba.m.AddConstraint(lp.Constraint{
				Name:  fmt.Sprintf("cur_%d", t.Arr),
				Terms: []lp.Term{{Coef: 1, Var: ba.m.Var(lp.FlightBayKey(t.Arr, leg.Current))}},
				Op:    "=",
				RHS:   1,
			})
		}

		ba.towPenalties(t.Arr, t.Park, "U", lp.TowArrParkKey)
		ba.towPenalties(t.Park, t.Dep, "V", lp.TowParkDepKey)
	}
	return nil
}

// towPenalties creates one penalty variable per bay compliant with both
// legs of a transition. Leaving bay k between the two legs forces the
// penalty for k to one.
func (ba *BayAssignment) towPenalties(from, to int, prefix string, keyFn func(i, k int) lp.VarKey) {
	for _, k := range ba.compliantBays(from) {
		if !ba.sched.BayCompliance(to, k) {
			continue
		}
		pen := ba.m.NewVar(keyFn(from, k), fmt.Sprintf("%s_%d_%d", prefix, from, k))
		ba.penalties = append(ba.penalties, pen)
		ba.m.AddConstraint(lp.Constraint{
			Name: fmt.Sprintf("tow_%s_%d_%d", prefix, from, k),
			Terms: []lp.Term{
				{Coef: 1, Var: ba.m.Var(lp.FlightBayKey(from, k))},
				{Coef: -1, Var: ba.m.Var(lp.FlightBayKey(to, k))},
				{Coef: -1, Var: pen},
			},
			Op:  "<=",
			RHS: 0,
		})
	}
}

// constraintAdjacency penalizes two simultaneous flights on a bay pair
// sharing one gate. Not a hard conflict: pushing either flight to a fully
// remote bay would cost more than tolerating the clash.
func (ba *BayAssignment) constraintAdjacency() {
	n := ba.sched.NumLegs()
	for _, pair := range ba.sched.Airport.Adjacency {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if !ba.sched.TimeConflict(i, j) {
					continue
				}
				ba.adjacencyPenalty(i, j, pair[0], pair[1])
				ba.adjacencyPenalty(i, j, pair[1], pair[0])
			}
		}
	}
}

func (ba *BayAssignment) adjacencyPenalty(i, j, k, l int) {
	if !ba.m.HasVar(lp.FlightBayKey(i, k)) || !ba.m.HasVar(lp.FlightBayKey(j, l)) {
		return
	}
	pen := ba.m.NewVar(lp.AdjacencyKey(i, j, k, l), fmt.Sprintf("S_%d_%d_%d_%d", i, j, k, l))
	ba.penalties = append(ba.penalties, pen)
	ba.m.AddConstraint(lp.Constraint{
		Name: fmt.Sprintf("adj_%d_%d_%d_%d", i, j, k, l),
		Terms: []lp.Term{
			{Coef: 1, Var: ba.m.Var(lp.FlightBayKey(i, k))},
			{Coef: 1, Var: ba.m.Var(lp.FlightBayKey(j, l))},
			{Coef: -1, Var: pen},
		},
		Op:  "<=",
		RHS: 1,
	})
}

// objective combines the maximized negative walking distance, the
// preference penalties for non-preferred bays, and the weighted penalty
// variables.
func (ba *BayAssignment) objective() error {
	for i, leg := range ba.sched.Legs {
		term, err := ba.sched.Terminal(i)
		if err != nil {
			return err
		}
		pax := float64(ba.sched.Passengers(i))
		for _, k := range ba.compliantBays(i) {
			name := ba.m.Var(lp.FlightBayKey(i, k))
			dist := ba.sched.Airport.TerminalBayDistance(term, k)
			ba.m.AddObjective(-ba.weights.Alpha*pax*dist, name)
			if leg.Preference != nil && !leg.Preference.PreferredBay(k) {
				ba.m.AddObjective(-ba.weights.Beta, name)
			}
		}
	}
	for _, pen := range ba.penalties {
		ba.m.AddObjective(-ba.weights.Gamma, pen)
	}
	return nil
}
