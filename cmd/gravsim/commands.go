package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %s simulation (%d bodies, seed %d)...\n", cfg.Policy, cfg.InitState.NumBodies, cfg.Seed)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && !(errors.Is(err, context.Canceled) && result != nil) {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted at t=%.4f, saving partial run\n", exp.Simulation().Time())
	}

	elapsed := time.Since(start)

	runID, err := st.Save(exp.Info(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("merges: %d\n", len(result.Merges))
	fmt.Printf("survivors: %d/%d\n", len(result.Final), cfg.InitState.NumBodies)
	fmt.Println("\nmetrics:")
	printMetrics(os.Stdout, result.Metrics)

	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6g\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOLICY\tTIME\tSEED\tBODIES\tSURVIVORS\tDURATION\tDT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f\t%.4f\n",
			run.ID,
			run.Policy,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Bodies,
			run.Survivors,
			run.Duration,
			run.Dt,
		)
	}

	return w.Flush()
}

// series extracts one named column from a sample set.
func series(samples []sim.Sample, name string) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		switch name {
		case "active":
			out[i] = float64(s.Active)
		case "mass":
			out[i] = s.Mass
		case "energy":
			out[i] = s.Energy
		case "angmom":
			out[i] = s.AngMom
		default:
			return nil, fmt.Errorf("unknown series: %s (want active, mass, energy or angmom)", name)
		}
	}
	return out, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("policy: %s, seed: %d\n", meta.Policy, meta.Seed)
	fmt.Printf("samples: %d\n\n", len(samples))

	plots := []struct{ name, caption string }{
		{"active", "active bodies"},
		{"mass", "total mass"},
		{"energy", "total energy"},
		{"angmom", "angular momentum"},
	}
	for _, p := range plots {
		data, err := series(samples, p.name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile != "" {
		if err := st.ExportJSONFile(outFile, args[0]); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outFile)
		return nil
	}
	return st.ExportJSON(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var svg string
	if svgPlot != "" {
		samples, err := st.LoadSamples(runID)
		if err != nil {
			return err
		}
		values, err := series(samples, svgPlot)
		if err != nil {
			return err
		}
		times := make([]float64, len(samples))
		for i, s := range samples {
			times[i] = s.Time
		}
		svg = export.SeriesToSVG(times, values, svgSize, svgSize/2, "#0088ff")
		if svg == "" {
			return fmt.Errorf("run %s has too few samples to plot", runID)
		}
	} else {
		bodies, err := st.LoadBodies(runID)
		if err != nil {
			return err
		}
		svg = export.BodiesToSVG(bodies, svgSize)
	}

	if outFile == "" {
		_, err := fmt.Fprint(os.Stdout, svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPOLICY\tBODIES\tSEED\tDURATION\tDT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f\t%.4f\n",
			name, p.Policy, p.InitState.NumBodies, p.Seed, p.Duration, p.Dt)
	}
	return w.Flush()
}

func benchBodies(cmd *cobra.Command, args []string) error {
	fmt.Printf("benchmarking %.1fs at dt=%.4f\n\n", benchTime, benchDt)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tSTEPS\tMERGES\tTIME\tSTEPS/SEC")

	runCfg := sim.Config{Dt: benchDt, Duration: benchTime}
	for _, n := range bodyList {
		sampling := nbody.DefaultInitConfig()
		sampling.Bodies = n

		s, err := nbody.FromConfig(sampling, config.DefaultSeed)
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := sim.NewRunner().Run(context.Background(), s, runCfg)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n",
			n, result.StepsTaken, len(result.Merges), elapsed, stepsPerSec)
	}

	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if runs < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", runs)
	}

	ens := sim.NewEnsemble(cfg.Sampling(), sim.SeedRange(cfg.Seed, runs), metrics.Standard)
	ens.SetWorkers(workers)

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %d %s simulations from seed %d...\n", runs, cfg.Policy, cfg.Seed)
	start := time.Now()
	results, err := ens.Run(ctx, experiment.RunConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	var st *storage.Store
	if save {
		if st, err = openStore(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSURVIVORS\tMERGES\tENERGY_DRIFT\tANGMOM\tRUN")

	var survivors, merges, drift float64
	for _, res := range results {
		last := res.Samples[len(res.Samples)-1]
		id := "-"
		if st != nil {
			if id, err = st.Save(experiment.Info(cfg), res); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3e\t%.4g\t%s\n",
			res.Seed, len(res.Final), len(res.Merges), res.EnergyDrift, last.AngMom, id)

		survivors += float64(len(res.Final))
		merges += float64(len(res.Merges))
		drift += res.EnergyDrift
	}
	n := float64(len(results))
	fmt.Fprintf(w, "mean\t%.1f\t%.1f\t%.3e\t\t\n", survivors/n, merges/n, drift/n)

	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	if sc.Description != "" {
		fmt.Printf("%s: %s\n", sc.Name, sc.Description)
	}
	results, err := automation.RunScenario(ctx, sc, st, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSEED\tSURVIVORS\tMERGES\tENERGY_DRIFT\tRUN")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.3e\t%s\n",
			r.Step, r.Seed, len(r.Result.Final), len(r.Result.Merges), r.Result.EnergyDrift, r.RunID)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSURVIVORS\tMERGES\tENERGY_DRIFT\tANGMOM\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%d\t%d\t%.3e\t%.4g\n",
			r.ParamValue, r.Survivors, r.Merges, r.EnergyDrift, r.AngMom)
	}
	return w.Flush()
}
