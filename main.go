package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ZacxDev/stepsim/config"
	"github.com/ZacxDev/stepsim/fs"
	"github.com/ZacxDev/stepsim/scheduler"
	"github.com/ZacxDev/stepsim/step"
	"github.com/ZacxDev/stepsim/ui"
	"github.com/pkg/errors"

	tea "github.com/charmbracelet/bubbletea"
)

type input struct {
	name string
	data []byte
}

type runOptions struct {
	table bool
	ui    bool
}

// resolveInputs expands every argument as a glob pattern. With no
// arguments the dependency list is read from stdin.
func resolveInputs(fsys fs.FileSystem, patterns []string, stdin io.Reader) ([]input, error) {
	if len(patterns) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read stdin")
		}
		return []input{{name: "stdin", data: data}}, nil
	}

	var inputs []input
	for _, pattern := range patterns {
		matches, err := fsys.DoublestarGlob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "error expanding glob pattern %s", pattern)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no input matches %s", pattern)
		}
		for _, match := range matches {
			data, err := fsys.ReadFile(match)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			inputs = append(inputs, input{name: match, data: data})
		}
	}
	return inputs, nil
}

func runInput(w io.Writer, in input, cfg *config.Config, lm scheduler.LockFileManager, ro runOptions) error {
	edges, err := step.ParseEdges(bytes.NewReader(in.data))
	if err != nil {
		return errors.Wrapf(err, "failed to parse %s", in.name)
	}

	g := scheduler.NewGraph(edges)
	opts := scheduler.Options{
		Workers:  cfg.Workers,
		Cost:     cfg.CostFunc(),
		Overhead: cfg.Overhead,
	}

	var key string
	if lm != nil {
		key = scheduler.ResultKey(g, opts)
		if entry, ok := lm.GetCachedEntry(key); ok && !ro.table && !ro.ui {
			fmt.Fprintf(w, "[%s] part1: sequence is %s [cached]\n", in.name, entry.Order)
			fmt.Fprintf(w, "[%s] part2: total time is %d [cached]\n", in.name, entry.Elapsed)
			lm.AddFreshEntry(key, entry)
			return nil
		}
	}

	order, err := scheduler.Order(g)
	if err != nil {
		fmt.Fprintf(w, "[%s] part1: stalled after %s\n", in.name, strings.Join(order, ""))
		return errors.Wrapf(err, "failed to order %s", in.name)
	}
	fmt.Fprintf(w, "[%s] part1: sequence is %s\n", in.name, strings.Join(order, ""))

	res, err := scheduler.Simulate(g, opts)
	if err != nil {
		return errors.Wrapf(err, "failed to simulate %s", in.name)
	}
	fmt.Fprintf(w, "[%s] part2: total time is %d\n", in.name, res.Elapsed)

	if lm != nil {
		lm.AddFreshEntry(key, scheduler.LockFileEntry{Order: strings.Join(order, ""), Elapsed: res.Elapsed})
	}

	if !ro.table && !ro.ui {
		return nil
	}

	critical := make(map[string]bool)
	cp, err := scheduler.CriticalPath(g, opts.Cost, opts.Overhead)
	if err != nil {
		log.Printf("Error computing critical path for %s: %v", in.name, err)
	} else {
		for _, id := range cp.Path {
			critical[id] = true
		}
		fmt.Fprintf(w, "[%s] critical path %s (lower bound %d)\n", in.name, strings.Join(cp.Path, " -> "), cp.Length)
	}

	if ro.table {
		fmt.Fprint(w, ui.RenderTable(res, critical))
	}
	if ro.ui {
		return ui.Run(res, critical)
	}
	return nil
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(fset *flag.FlagSet, cfg *config.Config, workers, overhead, base int) {
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = workers
		case "overhead":
			cfg.Overhead = overhead
		case "base":
			cfg.BaseCost = base
		}
	})
}

func main() {
	workers := flag.Int("workers", config.DefaultWorkers, "Number of simulated workers")
	overhead := flag.Int("overhead", config.DefaultOverhead, "Time units added to every step")
	base := flag.Int("base", 0, "Base cost added to each step's alphabet position")
	configPath := flag.String("config", "", "Path to a .star or .toml config file")
	lockPath := flag.String("lock", "", "Cache results in this lock file")
	table := flag.Bool("table", false, "Print the per-step schedule")
	betaUI := flag.Bool("ui", false, "Browse the schedule in an interactive view")
	flag.Parse()

	fsys := fs.RealFileSystem{}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(fsys, *configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		cfg = loaded
	}
	applyFlags(flag.CommandLine, cfg, *workers, *overhead, *base)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Error in configuration: %v", err)
	}

	inputs, err := resolveInputs(fsys, flag.Args(), os.Stdin)
	if err != nil {
		log.Fatalf("Error reading input: %v", err)
	}

	var lm scheduler.LockFileManager
	if *lockPath != "" {
		lm = scheduler.NewLockFileManager(fsys, *lockPath)
		if err := lm.LoadLockFile(); err != nil {
			log.Fatalf("Error loading lock file: %v", err)
		}
	}

	if *betaUI {
		f, err := tea.LogToFile("debug.log", "debug")
		if err != nil {
			log.Fatalf("Error opening debug log: %v", err)
		}
		defer f.Close()
	}

	failed := 0
	for _, in := range inputs {
		if err := runInput(os.Stdout, in, cfg, lm, runOptions{table: *table, ui: *betaUI}); err != nil {
			log.Printf("Error running %s: %v", in.name, err)
			failed++
		}
	}

	if lm != nil {
		if err := lm.SaveFreshLockFile(); err != nil {
			log.Printf("Error saving lock file: %v", err)
			failed++
		}
	}

	if failed > 0 {
		log.Fatalf("%d input(s) failed", failed)
	}
}
