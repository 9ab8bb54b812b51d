package solver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCplexRunnerAvailable(t *testing.T) {
	r := NewCplexRunner("definitely-not-a-solver-binary", zap.NewNop())
	assert.False(t, r.Available())

	r = NewCplexRunner("true", zap.NewNop())
	assert.True(t, r.Available())
}

func TestSolveFailsWithoutSolutionFile(t *testing.T) {
	// "true" exits cleanly but writes nothing, so the missing solution
	// file is the failure signal.
	r := NewCplexRunner("true", zap.NewNop())
	dir := t.TempDir()
	err := r.Solve(context.Background(), filepath.Join(dir, "model.lp"), filepath.Join(dir, "model.sol"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no solution file")
}
