// Package solver isolates the external MILP solver behind a narrow
// interface and loads its solution files back into per-leg assignments.
package solver

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// Runner solves a textual LP model file into a solution file. The solver
// runs as an external process; success is observable through the solution
// file existing afterwards.
type Runner interface {
	Available() bool
	Solve(ctx context.Context, lpPath, solPath string) error
}

// CplexRunner drives a CPLEX-style interactive solver from the command
// line: read model, optimize, write solution.
type CplexRunner struct {
	Command string
	Log     *zap.Logger
}

func NewCplexRunner(command string, log *zap.Logger) *CplexRunner {
	return &CplexRunner{Command: command, Log: log}
}

// Available probes whether the solver command can be executed at all.
func (r *CplexRunner) Available() bool {
	if _, err := exec.LookPath(r.Command); err != nil {
		return false
	}
	return true
}

// Solve runs the solver synchronously. A cancelled context is not an
// error by itself: an interrupted solver may have written an intermediate
// solution worth recovering, so only the absence of the solution file is
// fatal.
func (r *CplexRunner) Solve(ctx context.Context, lpPath, solPath string) error {
	// Remove a stale solution so an old file cannot masquerade as the
	// new result.
	if _, err := os.Stat(solPath); err == nil {
		if err := os.Remove(solPath); err != nil {
			return fmt.Errorf("removing stale solution %s: %w", solPath, err)
		}
	}

	cmd := exec.CommandContext(ctx, r.Command, "-c",
		fmt.Sprintf("read %s", lpPath),
		"optimize",
		fmt.Sprintf("write %s", solPath))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			r.Log.Warn("solver interrupted, checking for an intermediate solution",
				zap.String("solution", solPath))
		} else {
			r.Log.Warn("solver exited with an error", zap.Error(err))
		}
	}

	if _, err := os.Stat(solPath); err != nil {
		return fmt.Errorf("no solution file was generated at %s", solPath)
	}
	return nil
}
