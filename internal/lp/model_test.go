package lp

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarRegistry(t *testing.T) {
	m := NewModel()
	name := m.NewVar(FlightBayKey(0, 3), "X_0_3")
	assert.Equal(t, "X_0_3", name)
	assert.Equal(t, 1, m.NumVars())

	assert.Equal(t, "X_0_3", m.Var(FlightBayKey(0, 3)))
	assert.True(t, m.HasVar(FlightBayKey(0, 3)))
	assert.False(t, m.HasVar(FlightBayKey(0, 4)))

	key, ok := m.KeyFor("X_0_3")
	require.True(t, ok)
	assert.Equal(t, FlightBayKey(0, 3), key)

	_, ok = m.KeyFor("X_9_9")
	assert.False(t, ok)
}

func TestVarPanicsOnUncreated(t *testing.T) {
	m := NewModel()
	assert.PanicsWithValue(t,
		"lp: reference to uncreated variable (class 0, i=1 j=-1 k=2 l=-1)",
		func() { m.Var(FlightBayKey(1, 2)) })
}

func TestNewVarPanicsOnDuplicate(t *testing.T) {
	m := NewModel()
	m.NewVar(FlightBayKey(0, 0), "X_0_0")
	assert.Panics(t, func() { m.NewVar(FlightBayKey(0, 0), "X_0_0") })
}

func TestKeysAreDistinct(t *testing.T) {
	// Keys of different classes with the same indices must not collide.
	assert.NotEqual(t, TowArrParkKey(1, 2), TowParkDepKey(1, 2))
	assert.NotEqual(t, FlightBayKey(1, 2), TowArrParkKey(1, 2))
	assert.NotEqual(t, FlightGateKey(1, 2), FlightBayKey(1, 2))
}

func TestWriteFormat(t *testing.T) {
	m := NewModel()
	x00 := m.NewVar(FlightBayKey(0, 0), "X_0_0")
	x01 := m.NewVar(FlightBayKey(0, 1), "X_0_1")
	m.AddObjective(-2.5, x00)
	m.AddObjective(-1, x01)
	m.AddConstraint(Constraint{
		Name:  "sb_0",
		Terms: []Term{{1, x00}, {1, x01}},
		Op:    "=",
		RHS:   1,
	})

	out := m.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, "Maximize", lines[0])
	assert.Equal(t, " obj: - 2.5000 X_0_0 - 1.0000 X_0_1", lines[1])
	assert.Equal(t, "Subject To", lines[2])
	assert.Equal(t, " sb_0: + 1.0000 X_0_0 + 1.0000 X_0_1 = 1.0000", lines[3])
	assert.Equal(t, "Binary", lines[4])
	assert.Equal(t, "  X_0_0 X_0_1", lines[5])
	assert.Equal(t, "End", lines[6])
}

func TestWriteFoldsLongLines(t *testing.T) {
	m := NewModel()
	var terms []Term
	for k := 0; k < 40; k++ {
		name := m.NewVar(FlightBayKey(0, k), "X_0_"+strconv.Itoa(k))
		m.AddObjective(1, name)
		terms = append(terms, Term{1, name})
	}
	m.AddConstraint(Constraint{Name: "sb_0", Terms: terms, Op: "=", RHS: 1})

	for _, line := range strings.Split(m.String(), "\n") {
		// A folded line may exceed the limit by at most one term.
		assert.Less(t, len(line), 160, "line too long: %q", line)
	}
}

func TestObjectiveAccumulates(t *testing.T) {
	m := NewModel()
	x := m.NewVar(FlightBayKey(0, 0), "X_0_0")
	m.AddObjective(2, x)
	m.AddObjective(-0.5, x)
	assert.Contains(t, m.String(), "+ 1.5000 X_0_0")
}
