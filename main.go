package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slate-solver/slate/internal/dimacs"
	"github.com/slate-solver/slate/internal/drat"
	"github.com/slate-solver/slate/internal/sat"
)

// Exit codes follow the solver convention: the code encodes the answer.
const (
	exitSAT     = 0
	exitError   = 1
	exitUnknown = 10
	exitUNSAT   = 20
)

type config struct {
	outputDir    string
	proofFile    string
	certify      bool
	timeoutSec   float64
	noEliminator bool
	noAdaptation bool
	restartLBD   float64
	restartBlock float64
	restartStep  int64
	allModels    bool
	gzipped      bool
	verbose      bool

	exitCode int
}

func newRootCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "slate [flags] FILE.cnf",
		Short:         "slate is a conflict-driven clause learning SAT solver",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return run(cfg, args[0])
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&cfg.outputDir, "output-dir", "o", "", "directory in which the result certificate is saved")
	fl.StringVarP(&cfg.proofFile, "proof", "p", "", "file in which the DRAT proof is written")
	fl.BoolVarP(&cfg.certify, "certify", "c", false, "emit a DRAT certificate of unsatisfiability")
	fl.Float64Var(&cfg.timeoutSec, "to", 0, "timeout in seconds (0 means none)")
	fl.BoolVarP(&cfg.noEliminator, "no-elim", "E", false, "disable the preprocessing eliminator")
	fl.BoolVarP(&cfg.noAdaptation, "no-adapt", "S", false, "disable search strategy adaptation")
	fl.Float64Var(&cfg.restartLBD, "rt", sat.DefaultOptions.RestartLBDFactor, "restart LBD threshold factor")
	fl.Float64Var(&cfg.restartBlock, "rb", sat.DefaultOptions.RestartBlockFactor, "restart blocking trail factor")
	fl.Int64Var(&cfg.restartStep, "rs", sat.DefaultOptions.RestartStep, "minimum number of conflicts between restarts")
	fl.BoolVar(&cfg.allModels, "all", false, "enumerate all models")
	fl.BoolVar(&cfg.gzipped, "gz", false, "read a gzip-compressed instance")
	fl.BoolVar(&cfg.verbose, "verbose", false, "enable debug logging")

	return cmd
}

func solverOptions(cfg *config) sat.Options {
	opts := sat.DefaultOptions
	opts.StrategyAdaptation = !cfg.noAdaptation
	opts.RestartLBDFactor = cfg.restartLBD
	opts.RestartBlockFactor = cfg.restartBlock
	opts.RestartStep = cfg.restartStep
	opts.Output = os.Stdout
	if cfg.timeoutSec > 0 {
		opts.Timeout = time.Duration(cfg.timeoutSec * float64(time.Second))
	}
	return opts
}

func run(cfg *config, instanceFile string) error {
	instance, err := dimacs.Parse(instanceFile, cfg.gzipped)
	if err != nil {
		return errors.Wrap(err, "could not parse instance")
	}

	s := sat.NewSolver(solverOptions(cfg))
	if err := dimacs.Instantiate(s, instance); err != nil {
		return errors.Wrap(err, "could not load instance")
	}

	fmt.Printf("c variables:  %d\n", instance.Variables)
	fmt.Printf("c clauses:    %d\n", len(instance.Clauses))

	if !cfg.noEliminator && !cfg.allModels {
		n := assignPureLiterals(s, instance)
		logrus.WithField("pure", n).Debug("eliminator pass done")
	}

	var proof *drat.Writer
	if cfg.certify || cfg.proofFile != "" {
		file, err := os.Create(proofPath(cfg))
		if err != nil {
			return errors.Wrap(err, "could not create proof file")
		}
		defer file.Close()
		proof = drat.NewWriter(file)
		s.SetCertifier(proof)
	}

	t := time.Now()
	status := s.Solve()
	if cfg.allModels {
		status = enumerateModels(s, status)
	}
	elapsed := time.Since(t)

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n", s.TotalConflicts, float64(s.TotalConflicts)/elapsed.Seconds())
	if cfg.allModels {
		fmt.Printf("c models:     %d\n", len(s.Models))
	}

	if proof != nil {
		if err := proof.Flush(); err != nil {
			return err
		}
	}

	return report(cfg, instanceFile, instance, status, s.Model())
}

// enumerateModels re-enters the search with a refuting clause for each model
// found until the problem becomes unsatisfiable.
func enumerateModels(s *sat.Solver, status sat.LBool) sat.LBool {
	for status == sat.True {
		model := s.Models[len(s.Models)-1]
		refute := make([]sat.Literal, len(model))
		for v, b := range model {
			if b { // literals are flipped
				refute[v] = sat.NegativeLiteral(v)
			} else {
				refute[v] = sat.PositiveLiteral(v)
			}
		}
		if err := s.AddClause(refute); err != nil {
			logrus.WithError(err).Error("could not refute model")
			return sat.Unknown
		}
		status = s.Solve()
	}
	if len(s.Models) > 0 {
		return sat.True
	}
	return status
}

// assignPureLiterals fixes every variable that occurs with a single polarity
// to that polarity. This preserves satisfiability but not the set of models,
// so it is skipped when enumerating.
func assignPureLiterals(s *sat.Solver, inst *dimacs.Instance) int {
	pos := make([]bool, inst.Variables+1)
	neg := make([]bool, inst.Variables+1)
	for _, clause := range inst.Clauses {
		for _, l := range clause {
			if l > 0 {
				pos[l] = true
			} else {
				neg[-l] = true
			}
		}
	}

	fixed := 0
	for v := 1; v <= inst.Variables; v++ {
		if pos[v] == neg[v] {
			continue
		}
		d := v
		if neg[v] {
			d = -v
		}
		if err := s.AddClause([]sat.Literal{sat.LiteralFromDimacs(d)}); err != nil {
			return fixed
		}
		fixed++
	}
	return fixed
}

func proofPath(cfg *config) string {
	if cfg.proofFile != "" {
		return cfg.proofFile
	}
	if cfg.outputDir != "" {
		return filepath.Join(cfg.outputDir, "proof.drat")
	}
	return "proof.drat"
}

// report prints the result certificate, optionally saves it to the output
// directory, and sets the process exit code.
func report(cfg *config, instanceFile string, instance *dimacs.Instance, status sat.LBool, model []bool) error {
	if status == sat.True {
		if bad := dimacs.Validate(instance, model); bad >= 0 {
			return errors.Errorf("model does not satisfy clause %d", bad)
		}
	}

	if err := dimacs.WriteCertificate(os.Stdout, status, model); err != nil {
		return err
	}
	if cfg.outputDir != "" {
		name := filepath.Base(instanceFile) + ".ans"
		file, err := os.Create(filepath.Join(cfg.outputDir, name))
		if err != nil {
			return errors.Wrap(err, "could not create certificate file")
		}
		defer file.Close()
		if err := dimacs.WriteCertificate(file, status, model); err != nil {
			return err
		}
	}

	switch status {
	case sat.True:
		cfg.exitCode = exitSAT
	case sat.False:
		cfg.exitCode = exitUNSAT
	default:
		cfg.exitCode = exitUnknown
	}
	return nil
}

func main() {
	cfg := &config{}
	cmd := newRootCmd(cfg)

	if err := cmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(exitError)
	}
	os.Exit(cfg.exitCode)
}
