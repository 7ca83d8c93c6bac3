package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run, or one seed sweep when Runs > 1. Zero fields keep
// the preset's value.
type ScenarioStep struct {
	Name        string             `yaml:"name"`
	Preset      string             `yaml:"preset"`
	Policy      string             `yaml:"policy"`
	Seed        *int64             `yaml:"seed"`
	Runs        int                `yaml:"runs"`
	Duration    float64            `yaml:"duration"`
	Dt          float64            `yaml:"dt"`
	SampleEvery int                `yaml:"sample_every"`
	Params      map[string]float64 `yaml:"params"`
}

type StepResult struct {
	Step   string
	Seed   int64
	Result *sim.Result
	RunID  string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step against its preset.
func (st ScenarioStep) Config() (*config.Config, error) {
	preset := st.Preset
	if preset == "" {
		preset = "default"
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", preset)
	}

	if st.Policy != "" {
		cfg.Policy = st.Policy
	}
	if st.Seed != nil {
		cfg.Seed = *st.Seed
	}
	if st.Duration > 0 {
		cfg.Duration = st.Duration
	}
	if st.Dt > 0 {
		cfg.Dt = st.Dt
	}
	if st.SampleEvery > 0 {
		cfg.SampleEvery = st.SampleEvery
	}

	keys := make([]string, 0, len(st.Params))
	for k := range st.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := SetParam(cfg, k, st.Params[k]); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

// SetParam sets one init_state field by its yaml name.
func SetParam(cfg *config.Config, name string, v float64) error {
	ic := &cfg.InitState
	switch name {
	case "num_bodies":
		ic.NumBodies = int(v)
	case "min_mass":
		ic.MinMass = v
	case "max_mass":
		ic.MaxMass = v
	case "max_pos":
		ic.MaxPos = v
	case "max_mom":
		ic.MaxMom = v
	case "angmom_mean":
		ic.AngMomMean = v
	case "angmom_stddev":
		ic.AngMomStdDev = v
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

// RunScenario executes every step in order. Results are saved to store when
// it is non-nil. Progress lines go to out.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, out io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		fmt.Fprintf(out, "Running step %d/%d: %s\n", i+1, len(scenario.Steps), name)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		runs := max(step.Runs, 1)
		ens := sim.NewEnsemble(cfg.Sampling(), sim.SeedRange(cfg.Seed, runs), metrics.Standard)
		stepResults, err := ens.Run(ctx, experiment.RunConfig(cfg))
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		for _, res := range stepResults {
			sr := StepResult{Step: name, Seed: res.Seed, Result: res}
			if store != nil {
				id, err := store.Save(experiment.Info(cfg), res)
				if err != nil {
					return results, fmt.Errorf("step %d save: %w", i+1, err)
				}
				sr.RunID = id
			}
			results = append(results, sr)
		}
	}

	return results, nil
}

// ParameterSweep runs one simulation per value of an init_state parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue  float64
	Survivors   int
	Merges      int
	EnergyDrift float64
	AngMom      float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, out io.Writer) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if err := SetParam(cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp, err := experiment.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		last := result.Samples[len(result.Samples)-1]
		results = append(results, SweepResult{
			ParamValue:  paramVal,
			Survivors:   len(result.Final),
			Merges:      len(result.Merges),
			EnergyDrift: result.EnergyDrift,
			AngMom:      last.AngMom,
		})

		fmt.Fprintf(out, "Sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
