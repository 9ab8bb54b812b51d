package model

import (
	"fmt"
	"time"
)

// FlightSolution holds the solved assignment of a single leg. Bay and gate
// are write-once; assigning twice indicates an inconsistent solver result.
type FlightSolution struct {
	Idx         int
	Kind        LegKind
	InFlightNo  string
	Origin      string
	ETA         time.Time
	RegNo       string
	OutFlightNo string
	Dest        string
	ETD         time.Time
	ACType      string

	BayIdx  int
	GateIdx int
	Bay     string
	Gate    string
}

// NewSolutions creates the unsolved per-leg solution list for a schedule.
func NewSolutions(s *Schedule) []*FlightSolution {
	sols := make([]*FlightSolution, len(s.Legs))
	for i, leg := range s.Legs {
		sols[i] = &FlightSolution{
			Idx:         i,
			Kind:        leg.Kind,
			InFlightNo:  leg.InFlightNo,
			Origin:      leg.Origin,
			ETA:         leg.ETA,
			RegNo:       leg.RegNo,
			OutFlightNo: leg.OutFlightNo,
			Dest:        leg.Dest,
			ETD:         leg.ETD,
			ACType:      leg.ACType,
			BayIdx:      -1,
			GateIdx:     -1,
		}
	}
	return sols
}

// AssignBay records the solved bay for this leg.
func (fs *FlightSolution) AssignBay(k int, name string) error {
	if fs.BayIdx >= 0 {
		return fmt.Errorf("leg %d has been assigned to two bays (%s and %s)", fs.Idx, fs.Bay, name)
	}
	fs.BayIdx = k
	fs.Bay = name
	return nil
}

// AssignGate records the solved gate for this leg.
func (fs *FlightSolution) AssignGate(l int, name string) error {
	if fs.GateIdx >= 0 {
		return fmt.Errorf("leg %d has been assigned to two gates (%s and %s)", fs.Idx, fs.Gate, name)
	}
	fs.GateIdx = l
	fs.Gate = name
	return nil
}

// ResultCSVRow is the exported shape of one solved leg.
type ResultCSVRow struct {
	Idx         int    `csv:"idx"`
	FlightType  string `csv:"flight_type"`
	InFlightNo  string `csv:"in_flight_no"`
	Origin      string `csv:"origin"`
	ETA         string `csv:"eta"`
	Bay         string `csv:"bay"`
	Gate        string `csv:"gate"`
	RegNo       string `csv:"reg_no"`
	OutFlightNo string `csv:"out_flight_no"`
	Dest        string `csv:"dest"`
	ETD         string `csv:"etd"`
	ACType      string `csv:"ac_type"`
}

// CSVRow formats the solution for the result file.
func (fs *FlightSolution) CSVRow() *ResultCSVRow {
	return &ResultCSVRow{
		Idx:         fs.Idx,
		FlightType:  fs.Kind.String(),
		InFlightNo:  fs.InFlightNo,
		Origin:      fs.Origin,
		ETA:         fs.ETA.Format("15:04"),
		Bay:         fs.Bay,
		Gate:        fs.Gate,
		RegNo:       fs.RegNo,
		OutFlightNo: fs.OutFlightNo,
		Dest:        fs.Dest,
		ETD:         fs.ETD.Format("15:04"),
		ACType:      fs.ACType,
	}
}
