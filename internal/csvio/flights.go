package csvio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/okello/baygate/pkg/model"
)

type flightCSV struct {
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

type preferenceCSV struct {
	Flight string `csv:"flight"`
	Dest   string `csv:"dest"`
	Bays   string `csv:"bays"`
	Gates  string `csv:"gates"`
}

type currentCSV struct {
	Flight string `csv:"flight"`
	Bay    string `csv:"bay"`
}

type scheduleConfig struct {
	Date string `json:"date"`
}

// parseTimeOfDay places an HH:MM column value onto the schedule date.
func parseTimeOfDay(value string, date time.Time) (time.Time, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("bad time of day %q", value)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return time.Time{}, fmt.Errorf("bad hour in %q", value)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return time.Time{}, fmt.Errorf("bad minute in %q", value)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hh, mm, 0, 0, time.UTC), nil
}

// LoadFlights reads a flight data directory (flight_schedule.csv,
// preferences.csv, current.csv, config.json) into a fully resolved
// Schedule: airline codes derived and validated, triples linked, overnight
// dates corrected and preferences attached. Duplicate flights are logged,
// not rejected.
func LoadFlights(dir string, airport *model.Airport, buffer time.Duration,
	spareBays []string, delim rune, log *zap.Logger) (*model.Schedule, error) {
	setDelimiter(delim)

	cfgData, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, fmt.Errorf("opening config.json: %w", err)
	}
	var cfg scheduleConfig
	if err := json.Unmarshal(cfgData, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config.json: %w", err)
	}
	date, err := time.Parse("2006 01 02", cfg.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule date %q: %w", cfg.Date, err)
	}

	spare := map[int]bool{}
	for _, name := range spareBays {
		k, err := airport.BayIndex(name)
		if err != nil {
			return nil, fmt.Errorf("spare bay: %w", err)
		}
		spare[k] = true
	}

	var currents []*currentCSV
	if err := unmarshalCSV(filepath.Join(dir, "current.csv"), &currents); err != nil {
		return nil, err
	}
	currentByFlight := map[string]int{}
	for _, row := range currents {
		k, err := airport.BayIndex(row.Bay)
		if err != nil {
			return nil, fmt.Errorf("current.csv: %w", err)
		}
		currentByFlight[row.Flight] = k
	}

	var rows []*flightCSV
	if err := unmarshalCSV(filepath.Join(dir, "flight_schedule.csv"), &rows); err != nil {
		return nil, err
	}

	s := &model.Schedule{
		Airport:   airport,
		Date:      date,
		Buffer:    buffer,
		SpareBays: spare,
	}

	for i, row := range rows {
		kind, ok := model.ParseLegKind(row.FlightType)
		if !ok {
			return nil, fmt.Errorf("leg %d has invalid flight type %q", i, row.FlightType)
		}

		// The airline code is the two-letter prefix of either flight
		// number. Park legs and trailing departures without numbers
		// inherit it from the previous record.
		airline := ""
		for _, no := range []string{row.InFlightNo, row.OutFlightNo} {
			if no == "" {
				continue
			}
			if len(no) < 2 {
				return nil, fmt.Errorf("leg %d has malformed flight number %q", i, no)
			}
			airline = no[:2]
			if _, ok := airport.Airlines[airline]; !ok {
				return nil, fmt.Errorf("airline %q for leg %d is invalid", airline, i)
			}
		}
		if airline == "" {
			if i == 0 {
				return nil, fmt.Errorf("leg 0 has neither flight number nor a predecessor to inherit from")
			}
			airline = s.Legs[i-1].Airline
		}

		if _, ok := airport.Aircraft[row.ACType]; !ok {
			return nil, fmt.Errorf("invalid aircraft type %q for leg %d", row.ACType, i)
		}

		eta, err := parseTimeOfDay(row.ETA, date)
		if err != nil {
			return nil, fmt.Errorf("leg %d eta: %w", i, err)
		}
		etd, err := parseTimeOfDay(row.ETD, date)
		if err != nil {
			return nil, fmt.Errorf("leg %d etd: %w", i, err)
		}

		current := -1
		for _, no := range []string{row.InFlightNo, row.OutFlightNo} {
			if no == "" {
				continue
			}
			if k, ok := currentByFlight[no]; ok {
				current = k
			}
		}

		s.Legs = append(s.Legs, &model.Leg{
			Kind:        kind,
			InFlightNo:  row.InFlightNo,
			Origin:      row.Origin,
			ETA:         eta,
			RegNo:       row.RegNo,
			OutFlightNo: row.OutFlightNo,
			Dest:        row.Dest,
			ETD:         etd,
			ACType:      row.ACType,
			Airline:     airline,
			Current:     current,
		})
	}

	if err := linkTriples(s); err != nil {
		return nil, err
	}

	for _, pair := range s.DuplicateFlights() {
		log.Warn("duplicate flights in schedule",
			zap.Int("first", pair[0]), zap.Int("second", pair[1]))
	}

	s.ResolveOvernightDates()

	prefs, err := loadPreferences(dir, airport)
	if err != nil {
		return nil, err
	}
	s.ResolvePreferences(prefs)

	return s, nil
}

// linkTriples attaches the shared Triple record to every split stay. The
// source format guarantees a stay appears as three consecutive Arr, Park,
// Dep records; anything else is malformed data.
func linkTriples(s *model.Schedule) error {
	for i := 0; i < len(s.Legs); i++ {
		leg := s.Legs[i]
		switch leg.Kind {
		case model.Full:
			continue
		case model.Arrival:
			if i+2 >= len(s.Legs) ||
				s.Legs[i+1].Kind != model.Parking ||
				s.Legs[i+2].Kind != model.Departure {
				return fmt.Errorf("arrival leg %d is not followed by parking and departure legs", i)
			}
			t := &model.Triple{Arr: i, Park: i + 1, Dep: i + 2}
			s.Legs[i].Triple = t
			s.Legs[i+1].Triple = t
			s.Legs[i+2].Triple = t
			i += 2
		default:
			return fmt.Errorf("leg %d of kind %s has no preceding arrival leg", i, leg.Kind)
		}
	}
	return nil
}

func loadPreferences(dir string, airport *model.Airport) ([]model.PreferenceEntry, error) {
	var rows []*preferenceCSV
	if err := unmarshalCSV(filepath.Join(dir, "preferences.csv"), &rows); err != nil {
		return nil, err
	}
	var entries []model.PreferenceEntry
	for _, row := range rows {
		pref := &model.Preference{Dest: row.Dest}
		for _, name := range strings.Split(row.Bays, ";") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			k, err := airport.BayIndex(name)
			if err != nil {
				return nil, fmt.Errorf("preferences.csv %q: %w", row.Flight, err)
			}
			pref.Bays = append(pref.Bays, k)
		}
		for _, name := range strings.Split(row.Gates, ";") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			l, err := airport.GateIndex(name)
			if err != nil {
				return nil, fmt.Errorf("preferences.csv %q: %w", row.Flight, err)
			}
			pref.Gates = append(pref.Gates, l)
		}
		entries = append(entries, model.PreferenceEntry{FlightPrefix: row.Flight, Pref: pref})
	}
	return entries, nil
}
