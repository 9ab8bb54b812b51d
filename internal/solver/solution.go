package solver

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"

	"github.com/okello/baygate/internal/lp"
	"github.com/okello/baygate/pkg/model"
)

// solutionXML mirrors the CPLEX .sol file layout: a variables element with
// one entry per variable carrying its name and solved value.
type solutionXML struct {
	XMLName   xml.Name      `xml:"CPLEXSolution"`
	Variables []variableXML `xml:"variables>variable"`
}

type variableXML struct {
	Name  string  `xml:"name,attr"`
	Value float64 `xml:"value,attr"`
}

func readSolution(path string) (*solutionXML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading solution file: %w", err)
	}
	var sol solutionXML
	if err := xml.Unmarshal(data, &sol); err != nil {
		return nil, fmt.Errorf("parsing solution file %s: %w", path, err)
	}
	return &sol, nil
}

// set reports whether a solved relaxation value rounds to an active binary.
func set(value float64) bool {
	return math.Round(value) == 1
}

// ApplyBaySolution loads a solved bay assignment into the solution list.
// Variable names are mapped back through the model's registry, never
// re-parsed. A leg assigned twice or a leg left without a bay is a fatal
// consistency error.
func ApplyBaySolution(path string, m *lp.Model, s *model.Schedule, sols []*model.FlightSolution) error {
	sol, err := readSolution(path)
	if err != nil {
		return err
	}
	for _, v := range sol.Variables {
		key, ok := m.KeyFor(v.Name)
		if !ok || key.Class != lp.FlightBay || !set(v.Value) {
			continue
		}
		if err := sols[key.I].AssignBay(key.K, s.Airport.BayNames[key.K]); err != nil {
			return err
		}
	}
	for i, fs := range sols {
		if fs.BayIdx < 0 {
			return fmt.Errorf("leg %d has no bay assigned to it", i)
		}
	}
	return nil
}

// ApplyGateSolution loads a solved gate assignment into the solution list.
// Completeness is only required for departing legs; the others never had
// gate variables.
func ApplyGateSolution(path string, m *lp.Model, s *model.Schedule, sols []*model.FlightSolution) error {
	sol, err := readSolution(path)
	if err != nil {
		return err
	}
	for _, v := range sol.Variables {
		key, ok := m.KeyFor(v.Name)
		if !ok || key.Class != lp.FlightGate || !set(v.Value) {
			continue
		}
		if err := sols[key.I].AssignGate(key.L, s.Airport.GateNames[key.L]); err != nil {
			return err
		}
	}
	for i, fs := range sols {
		if s.Departing(i) && fs.GateIdx < 0 {
			return fmt.Errorf("departing leg %d has no gate assigned to it", i)
		}
	}
	return nil
}
