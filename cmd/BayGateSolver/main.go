package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/okello/baygate/internal/assign"
	"github.com/okello/baygate/internal/csvio"
	"github.com/okello/baygate/internal/lp"
	"github.com/okello/baygate/internal/solver"
	"github.com/okello/baygate/pkg/model"
)

type Config struct {
	AirportDir    string   `yaml:"airport_dir" env:"AIRPORT_DIR" env-default:"./data/airport"`
	FlightsDir    string   `yaml:"flights_dir" env:"FLIGHTS_DIR" env-default:"./data/schedule"`
	JobID         string   `yaml:"job_id" env:"JOB_ID" env-default:"workspace"`
	BufferMinutes int      `yaml:"buffer_minutes" env:"BUFFER_MINUTES" env-default:"15"`
	SpareBays     []string `yaml:"spare_bays" env:"SPARE_BAYS" env-separator:","`
	SolverCommand string   `yaml:"solver_command" env:"SOLVER_COMMAND" env-default:"cplex"`

	// Evening gate restriction for one carrier; empty carrier disables it.
	RestrictedCarrier string   `yaml:"restricted_carrier" env:"RESTRICTED_CARRIER" env-default:"KQ"`
	RestrictedAfter   string   `yaml:"restricted_after" env:"RESTRICTED_AFTER" env-default:"18:00"`
	RestrictedGates   []string `yaml:"restricted_gates" env:"RESTRICTED_GATES" env-separator:","`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment config: %w", err)
	}
	return &cfg, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
}

func run(cfg *Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	airport, err := csvio.LoadAirport(cfg.AirportDir, ',')
	if err != nil {
		return err
	}
	sched, err := csvio.LoadFlights(cfg.FlightsDir, airport,
		time.Duration(cfg.BufferMinutes)*time.Minute, cfg.SpareBays, ',', log)
	if err != nil {
		return err
	}
	log.Info("schedule loaded",
		zap.Int("legs", sched.NumLegs()),
		zap.Int("bays", airport.NumBays()),
		zap.Int("gates", airport.NumGates()))

	ws, err := initWorkspace(cfg.JobID)
	if err != nil {
		return err
	}
	bayLP := filepath.Join(ws, "bay.lp")
	baySol := filepath.Join(ws, "bay.sol")
	gateLP := filepath.Join(ws, "gate.lp")
	gateSol := filepath.Join(ws, "gate.sol")

	sols := model.NewSolutions(sched)
	runner := solver.NewCplexRunner(cfg.SolverCommand, log)

	// Bay assignment first; the gate model depends on its solution.
	weights, err := assign.BayWeights(sched)
	if err != nil {
		return err
	}
	start := time.Now()
	bayModel, err := assign.NewBayAssignment(sched, weights).Build()
	if err != nil {
		return err
	}
	log.Info("bay model generated",
		zap.Int("variables", bayModel.NumVars()),
		zap.Int("constraints", len(bayModel.Constraints())),
		zap.Duration("took", time.Since(start)))
	if err := writeModel(bayModel, bayLP); err != nil {
		return err
	}
	if err := solve(ctx, runner, bayLP, baySol, log); err != nil {
		return err
	}
	if err := solver.ApplyBaySolution(baySol, bayModel, sched, sols); err != nil {
		return err
	}

	bays := make([]int, len(sols))
	for i, fs := range sols {
		bays[i] = fs.BayIdx
	}
	rules, err := gateRules(cfg, airport)
	if err != nil {
		return err
	}
	start = time.Now()
	gateModel, err := assign.NewGateAssignment(sched, bays, rules).Build()
	if err != nil {
		return err
	}
	log.Info("gate model generated",
		zap.Int("variables", gateModel.NumVars()),
		zap.Int("constraints", len(gateModel.Constraints())),
		zap.Duration("took", time.Since(start)))
	if err := writeModel(gateModel, gateLP); err != nil {
		return err
	}
	if err := solve(ctx, runner, gateLP, gateSol, log); err != nil {
		return err
	}
	if err := solver.ApplyGateSolution(gateSol, gateModel, sched, sols); err != nil {
		return err
	}

	printResults(sols)
	resultPath := filepath.Join(ws, "result.csv")
	if err := csvio.ExportResults(sols, resultPath); err != nil {
		return err
	}
	log.Info("results written", zap.String("path", resultPath))
	return nil
}

// initWorkspace creates the per-job directory holding generated models,
// solutions and results.
func initWorkspace(jobID string) (string, error) {
	ws, err := filepath.Abs(jobID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(ws, os.ModePerm); err != nil {
		return "", fmt.Errorf("creating workspace %s: %w", ws, err)
	}
	gitignore := filepath.Join(ws, ".gitignore")
	if _, err := os.Stat(gitignore); os.IsNotExist(err) {
		if err := os.WriteFile(gitignore, []byte("*.log\n"), 0o644); err != nil {
			return "", err
		}
	}
	return ws, nil
}

func writeModel(m *lp.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return m.Write(f)
}

// solve runs the external solver when it is available. A missing solver is
// not fatal: the model file is kept for an offline solve and the run tells
// the operator where the solution must be placed.
func solve(ctx context.Context, runner solver.Runner, lpPath, solPath string, log *zap.Logger) error {
	if !runner.Available() {
		color.Red("Solver is not available in the command line.")
		color.Red("The model was generated and saved at\n  %s", lpPath)
		color.Red("Please solve it and save the resulting solution file at\n  %s", solPath)
		log.Warn("solver unavailable, expecting an offline solution",
			zap.String("model", lpPath), zap.String("solution", solPath))
		return nil
	}
	start := time.Now()
	if err := runner.Solve(ctx, lpPath, solPath); err != nil {
		return err
	}
	log.Info("model solved", zap.String("model", lpPath), zap.Duration("took", time.Since(start)))
	return nil
}

func gateRules(cfg *Config, airport *model.Airport) (assign.GateRules, error) {
	rules := assign.GateRules{Carrier: cfg.RestrictedCarrier, RestrictedGates: map[int]bool{}}
	if rules.Carrier == "" || len(cfg.RestrictedGates) == 0 {
		return assign.GateRules{}, nil
	}
	parts := strings.Split(cfg.RestrictedAfter, ":")
	if len(parts) != 2 {
		return assign.GateRules{}, fmt.Errorf("bad restricted_after %q", cfg.RestrictedAfter)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return assign.GateRules{}, fmt.Errorf("bad restricted_after %q", cfg.RestrictedAfter)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return assign.GateRules{}, fmt.Errorf("bad restricted_after %q", cfg.RestrictedAfter)
	}
	rules.CutoffHour, rules.CutoffMinute = hh, mm
	for _, name := range cfg.RestrictedGates {
		l, err := airport.GateIndex(strings.TrimSpace(name))
		if err != nil {
			return assign.GateRules{}, fmt.Errorf("restricted gate: %w", err)
		}
		rules.RestrictedGates[l] = true
	}
	return rules, nil
}

// printResults renders the solved assignment table on the console, gated
// departures in green.
func printResults(sols []*model.FlightSolution) {
	fmt.Printf("%3s  %-12s %-6s %-5s %-5s %-5s %-7s %-13s %-4s %-5s %-7s\n",
		"idx", "in_flight_no", "origin", "eta", "bay", "gate",
		"reg_no", "out_flight_no", "dest", "etd", "ac_type")
	fmt.Println(strings.Repeat("=", 88))
	for _, fs := range sols {
		line := fmt.Sprintf("%3d  %-12s %-6s %-5s %-5s %-5s %-7s %-13s %-4s %-5s %-7s",
			fs.Idx, fs.InFlightNo, fs.Origin, fs.ETA.Format("15:04"),
			fs.Bay, fs.Gate, fs.RegNo, fs.OutFlightNo, fs.Dest,
			fs.ETD.Format("15:04"), fs.ACType)
		if fs.Gate != "" {
			color.Green(line)
		} else {
			fmt.Println(line)
		}
	}
}
