// Package csvio loads the airport reference data and flight schedule from
// their csv/json files and writes the solved results back out.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/okello/baygate/pkg/model"
)

type airlineCSV struct {
	Code     string `csv:"airline"`
	Terminal string `csv:"terminal"`
}

type aircraftCSV struct {
	Type       string `csv:"ac_type"`
	Group      string `csv:"group"`
	Passengers int    `csv:"n_passengers"`
}

type complianceCSV struct {
	Bay string `csv:"bay"`
	A   bool   `csv:"A"`
	B   bool   `csv:"B"`
	C   bool   `csv:"C"`
	D   bool   `csv:"D"`
	E   bool   `csv:"E"`
	F   bool   `csv:"F"`
	G   bool   `csv:"G"`
	H   bool   `csv:"H"`
}

type fuelingCSV struct {
	Bay     string `csv:"bay"`
	Fueling bool   `csv:"fueling"`
}

type domesticAirportCSV struct {
	Code string `csv:"airport"`
}

type adjacencyCSV struct {
	Bay1 string `csv:"bay1"`
	Bay2 string `csv:"bay2"`
}

type bayListCSV struct {
	Bay string `csv:"bay"`
}

type gateListCSV struct {
	Gate string `csv:"gate"`
}

func setDelimiter(delim rune) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		return r
	})
}

// unmarshalCSV opens one data file and parses it into out, which must be a
// pointer to a slice of csv-tagged structs.
func unmarshalCSV(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// readMatrix reads a csv file whose first column is a bay name and whose
// remaining columns are named after data-dependent entities (terminals or
// gates). Empty cells map to NaN.
func readMatrix(path string, delim rune) (cols []string, rows []string, values [][]float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil, nil, fmt.Errorf("%s holds no data rows", path)
	}

	cols = records[0][1:]
	for _, record := range records[1:] {
		if len(record) != len(cols)+1 {
			return nil, nil, nil, fmt.Errorf("%s row %q has %d of %d cells",
				path, record[0], len(record)-1, len(cols))
		}
		rows = append(rows, record[0])
		row := make([]float64, len(cols))
		for c, cell := range record[1:] {
			if cell == "" {
				row[c] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("%s row %q: bad distance %q", path, record[0], cell)
			}
			row[c] = v
		}
		values = append(values, row)
	}
	return cols, rows, values, nil
}

// LoadAirport reads and validates the airport reference data directory.
// The bay order is fixed by bay_compliance.csv and the gate order by the
// bay_gate_distance.csv header.
func LoadAirport(dir string, delim rune) (*model.Airport, error) {
	setDelimiter(delim)
	a := &model.Airport{
		Airlines:         map[string]model.Airline{},
		Aircraft:         map[string]model.Aircraft{},
		DomesticAirports: map[string]bool{},
		RemoteBays:       map[int]bool{},
		DomesticGates:    map[int]bool{},
		BussingGates:     map[int]bool{},
	}

	var airlines []*airlineCSV
	if err := unmarshalCSV(filepath.Join(dir, "airlines.csv"), &airlines); err != nil {
		return nil, err
	}
	for _, row := range airlines {
		if _, ok := a.Airlines[row.Code]; ok {
			return nil, fmt.Errorf("airline %q defined twice", row.Code)
		}
		a.Airlines[row.Code] = model.Airline{Code: row.Code, Terminal: row.Terminal}
	}

	var aircraft []*aircraftCSV
	if err := unmarshalCSV(filepath.Join(dir, "aircraft.csv"), &aircraft); err != nil {
		return nil, err
	}
	for _, row := range aircraft {
		a.Aircraft[row.Type] = model.Aircraft{Type: row.Type, Group: row.Group, Passengers: row.Passengers}
	}

	var compliance []*complianceCSV
	if err := unmarshalCSV(filepath.Join(dir, "bay_compliance.csv"), &compliance); err != nil {
		return nil, err
	}
	for _, row := range compliance {
		a.BayNames = append(a.BayNames, row.Bay)
		a.Compliance = append(a.Compliance, map[string]bool{
			"A": row.A, "B": row.B, "C": row.C, "D": row.D,
			"E": row.E, "F": row.F, "G": row.G, "H": row.H,
		})
	}

	terms, bays, dists, err := readMatrix(filepath.Join(dir, "bay_terminal_distance.csv"), delim)
	if err != nil {
		return nil, err
	}
	a.TerminalNames = terms
	a.TerminalDist = make([]map[string]float64, len(a.BayNames))
	for r, bay := range bays {
		k, err := a.BayIndex(bay)
		if err != nil {
			return nil, fmt.Errorf("bay_terminal_distance.csv: %w", err)
		}
		distByTerm := make(map[string]float64, len(terms))
		for c, term := range terms {
			if math.IsNaN(dists[r][c]) {
				return nil, fmt.Errorf("bay %q has no distance to terminal %q", bay, term)
			}
			distByTerm[term] = dists[r][c]
		}
		a.TerminalDist[k] = distByTerm
	}

	gates, bays, dists, err := readMatrix(filepath.Join(dir, "bay_gate_distance.csv"), delim)
	if err != nil {
		return nil, err
	}
	a.GateNames = gates
	a.BayGateDist = make([][]float64, len(a.BayNames))
	for r, bay := range bays {
		k, err := a.BayIndex(bay)
		if err != nil {
			return nil, fmt.Errorf("bay_gate_distance.csv: %w", err)
		}
		a.BayGateDist[k] = dists[r]
	}

	var fueling []*fuelingCSV
	if err := unmarshalCSV(filepath.Join(dir, "fueling.csv"), &fueling); err != nil {
		return nil, err
	}
	a.Fueling = make([]bool, len(a.BayNames))
	if len(fueling) != len(a.BayNames) {
		return nil, fmt.Errorf("fueling.csv lists %d of %d bays", len(fueling), len(a.BayNames))
	}
	for _, row := range fueling {
		k, err := a.BayIndex(row.Bay)
		if err != nil {
			return nil, fmt.Errorf("fueling.csv: %w", err)
		}
		a.Fueling[k] = row.Fueling
	}

	var domestic []*domesticAirportCSV
	if err := unmarshalCSV(filepath.Join(dir, "domestic_airports.csv"), &domestic); err != nil {
		return nil, err
	}
	for _, row := range domestic {
		a.DomesticAirports[row.Code] = true
	}

	var remote []*bayListCSV
	if err := unmarshalCSV(filepath.Join(dir, "remote_bays.csv"), &remote); err != nil {
		return nil, err
	}
	for _, row := range remote {
		k, err := a.BayIndex(row.Bay)
		if err != nil {
			return nil, fmt.Errorf("remote_bays.csv: %w", err)
		}
		a.RemoteBays[k] = true
	}

	var adjacency []*adjacencyCSV
	if err := unmarshalCSV(filepath.Join(dir, "adjacency.csv"), &adjacency); err != nil {
		return nil, err
	}
	for _, row := range adjacency {
		k1, err := a.BayIndex(row.Bay1)
		if err != nil {
			return nil, fmt.Errorf("adjacency.csv: %w", err)
		}
		k2, err := a.BayIndex(row.Bay2)
		if err != nil {
			return nil, fmt.Errorf("adjacency.csv: %w", err)
		}
		a.Adjacency = append(a.Adjacency, [2]int{k1, k2})
	}

	var domesticGates []*gateListCSV
	if err := unmarshalCSV(filepath.Join(dir, "domestic_gates.csv"), &domesticGates); err != nil {
		return nil, err
	}
	for _, row := range domesticGates {
		l, err := a.GateIndex(row.Gate)
		if err != nil {
			return nil, fmt.Errorf("domestic_gates.csv: %w", err)
		}
		a.DomesticGates[l] = true
	}

	var bussingGates []*gateListCSV
	if err := unmarshalCSV(filepath.Join(dir, "bussing_gates.csv"), &bussingGates); err != nil {
		return nil, err
	}
	for _, row := range bussingGates {
		l, err := a.GateIndex(row.Gate)
		if err != nil {
			return nil, fmt.Errorf("bussing_gates.csv: %w", err)
		}
		a.BussingGates[l] = true
	}

	a.ComputeMaxDistances()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
