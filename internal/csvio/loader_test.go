package csvio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okello/baygate/pkg/model"
)

func TestLoadAirport(t *testing.T) {
	a, err := LoadAirport("testdata/airport", ',')
	require.NoError(t, err)

	assert.Equal(t, []string{"B1", "B2", "B3"}, a.BayNames)
	assert.Equal(t, []string{"G1", "G2", "G5"}, a.GateNames)
	assert.Equal(t, []string{"A", "C", "D"}, a.TerminalNames)

	assert.Equal(t, "A", a.Airlines["KQ"].Terminal)
	assert.Equal(t, 189, a.Aircraft["B738"].Passengers)
	assert.Equal(t, "D", a.Aircraft["B738"].Group)

	assert.True(t, a.Compliance[2]["A"])
	assert.False(t, a.Compliance[2]["D"])

	assert.Equal(t, []bool{true, false, true}, a.Fueling)
	assert.True(t, a.DomesticAirports["KIS"])

	d, ok := a.BayGateDistance(1, 2)
	assert.True(t, ok)
	assert.Equal(t, 150.0, d)
	_, ok = a.BayGateDistance(0, 2)
	assert.False(t, ok, "empty cell must be infeasible")

	assert.Equal(t, 500.0, a.MaxDist["A"])
	assert.Equal(t, map[int]bool{2: true}, a.RemoteBays)
	assert.Equal(t, map[int]bool{2: true}, a.DomesticGates)
	assert.Equal(t, map[int]bool{1: true}, a.BussingGates)
	assert.Equal(t, [][2]int{{0, 1}}, a.Adjacency)
}

func TestLoadAirportMissingDirectory(t *testing.T) {
	_, err := LoadAirport("testdata/nonexistent", ',')
	assert.Error(t, err)
}

func TestLoadFlights(t *testing.T) {
	a, err := LoadAirport("testdata/airport", ',')
	require.NoError(t, err)

	s, err := LoadFlights("testdata/flights", a, 15*time.Minute, nil, ',', zap.NewNop())
	require.NoError(t, err)
	require.Len(t, s.Legs, 4)
	assert.Equal(t, 15*time.Minute, s.Buffer)

	assert.Equal(t, model.Full, s.Legs[0].Kind)
	assert.Equal(t, model.Arrival, s.Legs[1].Kind)
	assert.Equal(t, model.Parking, s.Legs[2].Kind)
	assert.Equal(t, model.Departure, s.Legs[3].Kind)
}

func TestLoadFlightsLinksTriples(t *testing.T) {
	a, err := LoadAirport("testdata/airport", ',')
	require.NoError(t, err)
	s, err := LoadFlights("testdata/flights", a, 0, nil, ',', zap.NewNop())
	require.NoError(t, err)

	require.NotNil(t, s.Legs[1].Triple)
	assert.Same(t, s.Legs[1].Triple, s.Legs[2].Triple)
	assert.Same(t, s.Legs[1].Triple, s.Legs[3].Triple)
	assert.Equal(t, model.Triple{Arr: 1, Park: 2, Dep: 3}, *s.Legs[1].Triple)
	assert.Nil(t, s.Legs[0].Triple)
}

func TestLoadFlightsInheritsAirline(t *testing.T) {
	a, err := LoadAirport("testdata/airport", ',')
	require.NoError(t, err)
	s, err := LoadFlights("testdata/flights", a, 0, nil, ',', zap.NewNop())
	require.NoError(t, err)

	// The parking row has no flight numbers of its own.
	assert.Equal(t, "KQ", s.Legs[2].Airline)
	assert.Equal(t, "KQ", s.Legs[3].Airline)
}

func TestLoadFlightsCurrentLocation(t *testing.T) {
	a, err := LoadAirport("testdata/airport", ',')
	require.NoError(t, err)
	s, err := LoadFlights("testdata/flights", a, 0, nil, ',', zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 0, s.Legs[1].Current)
	assert.Equal(t, -1, s.Legs[0].Current)
}

func TestLoadFlightsResolvesOvernight(t *testing.T) {
	a, err := LoadAirport("testdata/airport", ',')
	require.NoError(t, err)
	s, err := LoadFlights("testdata/flights", a, 0, nil, ',', zap.NewNop())
	require.NoError(t, err)

	// The overnight stay's arrival and the start of its parking shift to
	// the previous day; the departure stays on the schedule date.
	assert.Equal(t, 1, s.Legs[1].ETA.Day())
	assert.Equal(t, 1, s.Legs[2].ETA.Day())
	assert.Equal(t, 2, s.Legs[2].ETD.Day())
	assert.Equal(t, 2, s.Legs[3].ETD.Day())
	assert.True(t, s.IsOvernight(1))
}

func TestLoadFlightsResolvesPreferences(t *testing.T) {
	a, err := LoadAirport("testdata/airport", ',')
	require.NoError(t, err)
	s, err := LoadFlights("testdata/flights", a, 0, nil, ',', zap.NewNop())
	require.NoError(t, err)

	pref := s.Legs[0].Preference
	require.NotNil(t, pref)
	assert.Equal(t, []int{1, 0}, pref.Bays)
	assert.Equal(t, []int{0}, pref.Gates)
	assert.Nil(t, s.Legs[1].Preference)
}

func TestLoadFlightsSpareBays(t *testing.T) {
	a, err := LoadAirport("testdata/airport", ',')
	require.NoError(t, err)

	s, err := LoadFlights("testdata/flights", a, 0, []string{"B3"}, ',', zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{2: true}, s.SpareBays)

	_, err = LoadFlights("testdata/flights", a, 0, []string{"B9"}, ',', zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spare bay")
}
