// Package lp builds binary mixed-integer programs and writes them in the
// CPLEX LP exchange format.
package lp

import (
	"fmt"
	"io"
	"strings"
)

// VarClass distinguishes the decision and penalty variable families of a
// model. The pair (class, indices) identifies a variable; the textual name
// exists only for the LP file and the solver round trip.
type VarClass int

const (
	FlightBay VarClass = iota
	FlightGate
	TowArrPark
	TowParkDep
	AdjacencyPenalty
	GateConflictPenalty
)

// VarKey identifies a variable inside the registry. Unused index slots
// are set to -1 by the constructors.
type VarKey struct {
	Class VarClass
	I     int
	J     int
	K     int
	L     int
}

// FlightBayKey is the key of the decision variable binding leg i to bay k.
func FlightBayKey(i, k int) VarKey {
	return VarKey{Class: FlightBay, I: i, J: -1, K: k, L: -1}
}

// FlightGateKey is the key of the decision variable binding leg i to gate l.
func FlightGateKey(i, l int) VarKey {
	return VarKey{Class: FlightGate, I: i, J: -1, K: -1, L: l}
}

// TowArrParkKey is the key of the penalty variable for a bay change between
// the arrival and parking legs of the triple starting at leg i, on bay k.
func TowArrParkKey(i, k int) VarKey {
	return VarKey{Class: TowArrPark, I: i, J: -1, K: k, L: -1}
}

// TowParkDepKey is the key of the penalty variable for a bay change between
// the parking and departure legs of the triple starting at leg i, on bay k.
func TowParkDepKey(i, k int) VarKey {
	return VarKey{Class: TowParkDep, I: i, J: -1, K: k, L: -1}
}

// AdjacencyKey is the key of the penalty variable for legs i and j sitting
// on the adjacent bays k and l at the same time.
func AdjacencyKey(i, j, k, l int) VarKey {
	return VarKey{Class: AdjacencyPenalty, I: i, J: j, K: k, L: l}
}

// GateConflictKey is the key of the penalty variable for legs i and j
// double-booked on gate l.
func GateConflictKey(i, j, l int) VarKey {
	return VarKey{Class: GateConflictPenalty, I: i, J: j, K: -1, L: l}
}

// Term is one linear term of a constraint.
type Term struct {
	Coef float64
	Var  string
}

// Constraint is a named linear (in)equality.
type Constraint struct {
	Name  string
	Terms []Term
	Op    string // "<=", ">=" or "="
	RHS   float64
}

// Model is an append-only binary MILP under construction. The objective
// sense is always Maximize; minimized quantities enter with negative
// coefficients.
type Model struct {
	varNames    []string
	varIndex    map[VarKey]int
	keyByName   map[string]VarKey
	objective   map[string]float64
	constraints []Constraint
}

func NewModel() *Model {
	return &Model{
		varIndex:  make(map[VarKey]int),
		keyByName: make(map[string]VarKey),
		objective: make(map[string]float64),
	}
}

// NewVar registers a binary variable. Registering the same key twice is a
// modeling bug.
func (m *Model) NewVar(key VarKey, name string) string {
	if _, ok := m.varIndex[key]; ok {
		panic(fmt.Sprintf("lp: variable %s created twice", name))
	}
	m.varIndex[key] = len(m.varNames)
	m.varNames = append(m.varNames, name)
	m.keyByName[name] = key
	return name
}

// Var returns the name of a previously created variable. Referencing a
// variable that was never created is a programming error, not a runtime
// condition, so it panics.
func (m *Model) Var(key VarKey) string {
	idx, ok := m.varIndex[key]
	if !ok {
		panic(fmt.Sprintf("lp: reference to uncreated variable (class %d, i=%d j=%d k=%d l=%d)",
			key.Class, key.I, key.J, key.K, key.L))
	}
	return m.varNames[idx]
}

// HasVar reports whether a variable exists for the key.
func (m *Model) HasVar(key VarKey) bool {
	_, ok := m.varIndex[key]
	return ok
}

// KeyFor recovers the registry key of a variable name. Used by the
// solution loader; model logic itself never re-derives meaning from names.
func (m *Model) KeyFor(name string) (VarKey, bool) {
	key, ok := m.keyByName[name]
	return key, ok
}

// NumVars returns the number of registered variables.
func (m *Model) NumVars() int {
	return len(m.varNames)
}

// AddObjective adds coef * variable to the objective, accumulating over
// repeated calls for the same variable.
func (m *Model) AddObjective(coef float64, variable string) {
	m.objective[variable] += coef
}

// AddConstraint appends a named constraint.
func (m *Model) AddConstraint(c Constraint) {
	m.constraints = append(m.constraints, c)
}

// Constraints returns the constraints added so far.
func (m *Model) Constraints() []Constraint {
	return m.constraints
}

// lineWidthLimit folds generated LP lines. Checked after appending, so a
// line may exceed it by one term.
const lineWidthLimit = 120

func writeTerms(sb *strings.Builder, terms []Term) {
	lineStart := sb.Len()
	for _, t := range terms {
		sign := "+"
		coef := t.Coef
		if coef < 0 {
			sign = "-"
			coef = -coef
		}
		fmt.Fprintf(sb, " %s %.4f %s", sign, coef, t.Var)
		if sb.Len()-lineStart > lineWidthLimit {
			sb.WriteString("\n ")
			lineStart = sb.Len()
		}
	}
}

// Write emits the model in CPLEX LP format: a Maximize objective, named
// constraints under Subject To, and a Binary section declaring every
// variable.
func (m *Model) Write(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("Maximize\n obj:")
	objTerms := make([]Term, 0, len(m.varNames))
	for _, name := range m.varNames {
		if coef, ok := m.objective[name]; ok {
			objTerms = append(objTerms, Term{Coef: coef, Var: name})
		}
	}
	writeTerms(&sb, objTerms)
	sb.WriteString("\n")

	sb.WriteString("Subject To\n")
	for _, c := range m.constraints {
		fmt.Fprintf(&sb, " %s:", c.Name)
		writeTerms(&sb, c.Terms)
		fmt.Fprintf(&sb, " %s %.4f\n", c.Op, c.RHS)
	}

	sb.WriteString("Binary\n")
	lineStart := sb.Len()
	sb.WriteString(" ")
	for _, name := range m.varNames {
		sb.WriteString(" " + name)
		if sb.Len()-lineStart > lineWidthLimit {
			sb.WriteString("\n ")
			lineStart = sb.Len()
		}
	}
	sb.WriteString("\nEnd\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// String renders the model as LP text.
func (m *Model) String() string {
	var sb strings.Builder
	m.Write(&sb)
	return sb.String()
}
