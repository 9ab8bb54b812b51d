package assign

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okello/baygate/internal/lp"
	"github.com/okello/baygate/pkg/model"
)

func TestGateBuildRejectsShortBaySolution(t *testing.T) {
	s := newSchedule(fullLeg("KQ100", "BOM", at(8, 0), "KQ101", "BOM", at(9, 0), "B738"))
	_, err := NewGateAssignment(s, nil, GateRules{}).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bay solution covers 0 of 1 legs")
}

func TestGateFeasibility(t *testing.T) {
	s := newSchedule(fullLeg("KQ100", "BOM", at(8, 0), "KQ101", "BOM", at(9, 0), "B738"))
	m, err := NewGateAssignment(s, []int{1}, GateRules{}).Build()
	require.NoError(t, err)

	// From bay B2 every gate is reachable, but G5 serves domestic flights
	// only.
	assert.True(t, m.HasVar(lp.FlightGateKey(0, 0)))
	assert.True(t, m.HasVar(lp.FlightGateKey(0, 1)))
	assert.False(t, m.HasVar(lp.FlightGateKey(0, 2)))

	c := findConstraint(m, "sg_0")
	require.NotNil(t, c)
	assert.Len(t, c.Terms, 2)
	assert.Equal(t, "=", c.Op)
}

func TestGateMissingDistanceIsInfeasible(t *testing.T) {
	s := newSchedule(fullLeg("KQ560", "KIS", at(8, 0), "KQ561", "KIS", at(9, 0), "AT4"))
	// Bay B1 has no recorded distance to the domestic gate G5.
	_, err := NewGateAssignment(s, []int{0}, GateRules{}).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no feasible gate")
}

func TestGateDomesticFlightUsesDomesticGate(t *testing.T) {
	s := newSchedule(fullLeg("KQ560", "KIS", at(8, 0), "KQ561", "KIS", at(9, 0), "AT4"))
	m, err := NewGateAssignment(s, []int{2}, GateRules{}).Build()
	require.NoError(t, err)

	assert.True(t, m.HasVar(lp.FlightGateKey(0, 2)))
	assert.False(t, m.HasVar(lp.FlightGateKey(0, 0)))
	assert.False(t, m.HasVar(lp.FlightGateKey(0, 1)))
}

func TestGateSkipsNonDepartingLegs(t *testing.T) {
	legs := tripleLegs(0, "KQ560", "KIS", at(9, 0), at(9, 30), at(14, 0), "KQ561", "KIS", at(15, 0), "AT4")
	s := newSchedule(legs...)
	m, err := NewGateAssignment(s, []int{2, 2, 2}, GateRules{}).Build()
	require.NoError(t, err)

	assert.False(t, m.HasVar(lp.FlightGateKey(0, 2)))
	assert.False(t, m.HasVar(lp.FlightGateKey(1, 2)))
	assert.True(t, m.HasVar(lp.FlightGateKey(2, 2)))
	assert.Nil(t, findConstraint(m, "sg_0"))
	assert.NotNil(t, findConstraint(m, "sg_2"))
}

func TestRestrictedCarrierEveningRule(t *testing.T) {
	rules := GateRules{
		Carrier:         "KQ",
		CutoffHour:      18,
		RestrictedGates: map[int]bool{0: true},
	}

	evening := newSchedule(fullLeg("KQ100", "BOM", at(17, 0), "KQ101", "BOM", at(19, 0), "B738"))
	m, err := NewGateAssignment(evening, []int{1}, rules).Build()
	require.NoError(t, err)
	assert.True(t, m.HasVar(lp.FlightGateKey(0, 0)))
	assert.False(t, m.HasVar(lp.FlightGateKey(0, 1)))

	day := newSchedule(fullLeg("KQ200", "BOM", at(8, 0), "KQ201", "BOM", at(10, 0), "B738"))
	m, err = NewGateAssignment(day, []int{1}, rules).Build()
	require.NoError(t, err)
	assert.True(t, m.HasVar(lp.FlightGateKey(0, 1)))
}

func TestRestrictedCarrierRuleIgnoresOtherCarriers(t *testing.T) {
	rules := GateRules{
		Carrier:         "KQ",
		CutoffHour:      18,
		RestrictedGates: map[int]bool{0: true},
	}
	s := newSchedule(fullLeg("ET302", "ADD", at(17, 0), "ET303", "ADD", at(19, 0), "B738"))
	m, err := NewGateAssignment(s, []int{1}, rules).Build()
	require.NoError(t, err)
	assert.True(t, m.HasVar(lp.FlightGateKey(0, 1)))
}

func TestPreferenceScore(t *testing.T) {
	leg := fullLeg("KQ100", "BOM", at(8, 0), "KQ101", "BOM", at(9, 0), "B738")
	leg.Preference = &model.Preference{Dest: "BOM", Gates: []int{0, 1}}
	s := newSchedule(leg)
	ga := NewGateAssignment(s, []int{0}, GateRules{})

	// Gate G1 is fixed to bay B1, gate G2 is reached by bus.
	assert.Equal(t, 1.0, ga.preferenceScore(0, 0))
	assert.Equal(t, 0.5, ga.preferenceScore(0, 1))
	// G5 is not preferred.
	assert.Equal(t, 0.0, ga.preferenceScore(0, 2))
}

func TestPreferenceScoreWithoutPreference(t *testing.T) {
	s := newSchedule(fullLeg("KQ100", "BOM", at(8, 0), "KQ101", "BOM", at(9, 0), "B738"))
	ga := NewGateAssignment(s, []int{0}, GateRules{})
	assert.Equal(t, 0.0, ga.preferenceScore(0, 0))
}

func TestGateConflictPenalty(t *testing.T) {
	s := newSchedule(
		fullLeg("KQ100", "BOM", at(8, 0), "KQ101", "BOM", at(9, 0), "B738"),
		fullLeg("KQ200", "AMS", at(8, 30), "KQ201", "AMS", at(10, 0), "B738"),
	)
	m, err := NewGateAssignment(s, []int{1, 1}, GateRules{}).Build()
	require.NoError(t, err)

	// Both legs can use G1 and G2; each shared gate gets a soft conflict.
	for _, l := range []int{0, 1} {
		assert.True(t, m.HasVar(lp.GateConflictKey(0, 1, l)), "missing penalty for gate %d", l)
		c := findConstraint(m, fmt.Sprintf("gc_0_1_%d", l))
		require.NotNil(t, c)
		assert.Equal(t, "<=", c.Op)
		assert.Equal(t, 1.0, c.RHS)
		require.Len(t, c.Terms, 3)
		assert.Equal(t, -1.0, c.Terms[2].Coef)
	}
}

func TestGateConflictSkippedWhenDisjoint(t *testing.T) {
	s := newSchedule(
		fullLeg("KQ100", "BOM", at(8, 0), "KQ101", "BOM", at(9, 0), "B738"),
		fullLeg("KQ200", "AMS", at(12, 0), "KQ201", "AMS", at(13, 0), "B738"),
	)
	m, err := NewGateAssignment(s, []int{1, 1}, GateRules{}).Build()
	require.NoError(t, err)
	assert.False(t, m.HasVar(lp.GateConflictKey(0, 1, 0)))
	assert.False(t, m.HasVar(lp.GateConflictKey(0, 1, 1)))
}

func TestGateObjectiveWeights(t *testing.T) {
	leg := fullLeg("KQ100", "BOM", at(8, 0), "KQ101", "BOM", at(9, 0), "B738")
	leg.Preference = &model.Preference{Dest: "BOM", Gates: []int{1}}
	s := newSchedule(leg)
	m, err := NewGateAssignment(s, []int{1}, GateRules{}).Build()
	require.NoError(t, err)

	out := m.String()
	// From bay B2: G1 at 90 m, G2 fixed. The largest distance term is
	// 0.001 * 189 * 90, so epsilon is twice that, and the preferred fixed
	// gate G2 collects the full bonus.
	assert.Contains(t, out, "- 17.0100 X_0_0")
	assert.Contains(t, out, "+ 34.0200 X_0_1")
}
