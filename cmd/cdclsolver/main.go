// Command cdclsolver is a thin DIMACS-driving binary around the solver
// package, the way gophersat's main.go sits on top of its solver package.
// It owns none of the solving logic itself: reading a bare CNF file and
// mapping exit codes are the only things a CLI front end is for (spec.md
// §1 explicitly keeps richer SAT-competition parsers out of the core).
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cdclsolver/cdclsolver/internal/config"
	"github.com/cdclsolver/cdclsolver/internal/proofsink"
	"github.com/cdclsolver/cdclsolver/internal/statsink"
	"github.com/cdclsolver/cdclsolver/solver"
)

const (
	exitSat     = 10
	exitUnsat   = 20
	exitUnknown = 0
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		cfgPath    string
		proofPath  string
		statsDSN   string
		verbosity  int
		maxConfl   int64
		timeBudget int64
	)

	root := &cobra.Command{
		Use:   "cdclsolver [flags] file.cnf",
		Short: "Solve a DIMACS CNF file.",
		Args:  cobra.ExactArgs(1),
	}
	root.Flags().StringVar(&cfgPath, "config", "", "path to a YAML configuration file")
	root.Flags().StringVar(&proofPath, "proof", "", "path to write a FRAT-style proof trace")
	root.Flags().StringVar(&statsDSN, "stats-dsn", "", "SQLite DSN to stream per-iteration statistics to")
	root.Flags().IntVar(&verbosity, "verbosity", 0, "logging verbosity (0-3)")
	root.Flags().Int64Var(&maxConfl, "max-conflicts", -1, "global conflict budget, -1 for unbounded")
	root.Flags().Int64Var(&timeBudget, "timeout", -1, "wall-clock budget in seconds, -1 for unbounded")

	exitCode := exitUnknown
	root.RunE = func(cmd *cobra.Command, posArgs []string) error {
		cfg := config.Default()
		if cfgPath != "" {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded
		}
		if verbosity != 0 {
			cfg.Verbosity = verbosity
		}
		if maxConfl != -1 {
			cfg.MaxConflicts = maxConfl
		}
		if timeBudget != -1 {
			cfg.TimeBudgetSecs = timeBudget
		}
		if proofPath == "" {
			proofPath = cfg.ProofPath
		}

		f, err := os.Open(posArgs[0])
		if err != nil {
			return fmt.Errorf("opening %q: %w", posArgs[0], err)
		}
		defer f.Close()

		lits, nbVars, err := parseDimacs(f)
		if err != nil {
			return fmt.Errorf("parsing %q: %w", posArgs[0], err)
		}

		s := solver.New(cfg)
		if proofPath != "" {
			pf, err := os.Create(proofPath)
			if err != nil {
				return fmt.Errorf("creating proof file %q: %w", proofPath, err)
			}
			defer pf.Close()
			s.WithProofSink(proofsink.NewWriterSink(pf))
		}
		s.NewVars(nbVars)
		for _, clause := range lits {
			s.AddClause(clause, false)
		}

		if statsDSN != "" {
			sink, err := statsink.NewSQLiteSink(statsDSN)
			if err != nil {
				return fmt.Errorf("opening stats sink %q: %w", statsDSN, err)
			}
			defer sink.Close()
			s.WithStatSink(sink, 1)
		}

		status := s.Solve(nil)
		switch status {
		case solver.Sat:
			fmt.Println("SATISFIABLE")
			printModel(os.Stdout, s.GetModel(), nbVars)
			exitCode = exitSat
		case solver.Unsat:
			fmt.Println("UNSATISFIABLE")
			exitCode = exitUnsat
		default:
			fmt.Println("UNKNOWN")
			exitCode = exitUnknown
		}
		return nil
	}

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUnknown
	}
	return exitCode
}

// parseDimacs reads a bare DIMACS CNF stream: "c" comment lines, one "p cnf
// nbvars nbclauses" header, then clauses as whitespace-separated signed
// integers terminated by 0. No PB/WCNF extensions; those are out of scope.
func parseDimacs(r io.Reader) (clauses [][]int, nbVars int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<24)
	var current []int
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			fields := strings.Fields(line)
			if len(fields) < 4 || fields[1] != "cnf" {
				return nil, 0, fmt.Errorf("unsupported problem header %q", line)
			}
			nbVars, err = strconv.Atoi(fields[2])
			if err != nil {
				return nil, 0, fmt.Errorf("bad variable count in %q: %w", line, err)
			}
			continue
		}
		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, 0, fmt.Errorf("bad literal %q: %w", field, err)
			}
			if n == 0 {
				clauses = append(clauses, current)
				current = nil
				continue
			}
			current = append(current, n)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	if len(current) > 0 {
		clauses = append(clauses, current)
	}
	return clauses, nbVars, nil
}

func printModel(w io.Writer, model solver.ModelMap, nbVars int) {
	var sb strings.Builder
	for v := 0; v < nbVars; v++ {
		val, ok := model[solver.OutsideVar(v)]
		if !ok {
			continue
		}
		if !val {
			sb.WriteString("-")
		}
		sb.WriteString(strconv.Itoa(v + 1))
		sb.WriteString(" ")
	}
	fmt.Fprintln(w, strings.TrimSpace(sb.String()))
}
