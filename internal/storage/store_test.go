package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/vmath"
)

func testResult() *sim.Result {
	return &sim.Result{
		Seed: 42,
		Samples: []sim.Sample{
			{Time: 0, Active: 3, Mass: 60, Momentum: vmath.Vec2{X: 1.5, Y: -2}, AngMom: 200.25, Energy: -13.1},
			{Time: 0.1, Active: 2, Mass: 60, Momentum: vmath.Vec2{X: 1.5, Y: -2}, AngMom: 199.75, Energy: -14.0000001},
		},
		Merges: []nbody.Merge{{Time: 0.05, Absorber: 2, Absorbed: 0, Mass: 40}},
		Final: []nbody.Body{
			nbody.NewBody(1, 20, vmath.Vec2{X: 10, Y: -3.25}, vmath.Vec2{X: 0.1, Y: 1.0 / 3}),
			nbody.NewBody(2, 40, vmath.Vec2{X: -5, Y: 7}, vmath.Vec2{X: 1.4, Y: -7.0 / 3}),
		},
		StepsTaken: 10,
		Metrics:    map[string]float64{"energy_drift": 0.07},
	}
}

func saveTestRun(t *testing.T) (*Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunInfo{Policy: "angular", Bodies: 3, Dt: 0.01, Duration: 0.1}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}
	return st, dir, runID
}

func TestStoreSaveLoad(t *testing.T) {
	st, _, runID := saveTestRun(t)

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Policy != "angular" {
		t.Errorf("expected policy 'angular', got '%s'", meta.Policy)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Steps != 10 || meta.Merges != 1 || meta.Survivors != 2 {
		t.Errorf("unexpected counts %+v", meta)
	}
	if meta.Metrics["energy_drift"] != 0.07 {
		t.Errorf("expected energy_drift 0.07, got %f", meta.Metrics["energy_drift"])
	}
}

func TestStoreSamplesRoundTrip(t *testing.T) {
	st, _, runID := saveTestRun(t)

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if !reflect.DeepEqual(samples, testResult().Samples) {
		t.Errorf("samples mismatch:\n got %+v\nwant %+v", samples, testResult().Samples)
	}
}

func TestStoreBodiesRoundTrip(t *testing.T) {
	st, _, runID := saveTestRun(t)

	bodies, err := st.LoadBodies(runID)
	if err != nil {
		t.Fatalf("load bodies failed: %v", err)
	}
	if !reflect.DeepEqual(bodies, testResult().Final) {
		t.Errorf("bodies mismatch:\n got %+v\nwant %+v", bodies, testResult().Final)
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save(RunInfo{Policy: "polar"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(RunInfo{Policy: "polar"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first == second {
		t.Fatalf("run ids collide: %s", first)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	_, dir, runID := saveTestRun(t)

	for _, name := range []string{"metadata.json", "samples.csv", "bodies.csv"} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, runID, "samples.csv"))
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != "time,active,mass,px,py,angmom,energy" {
		t.Errorf("unexpected samples header %q", header)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadSamples("nope"); err == nil {
		t.Error("expected error for missing samples")
	}
}

func TestStoreCorruptSamples(t *testing.T) {
	st, dir, runID := saveTestRun(t)

	path := filepath.Join(dir, runID, "samples.csv")
	if err := os.WriteFile(path, []byte("time,active,mass,px,py,angmom,energy\n0,x,1,2,3,4,5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadSamples(runID); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportJSON(t *testing.T) {
	st, _, runID := saveTestRun(t)

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Run.ID != runID {
		t.Errorf("expected run %s, got %s", runID, data.Run.ID)
	}
	if len(data.Samples) != 2 || len(data.Bodies) != 2 {
		t.Errorf("expected 2 samples and 2 bodies, got %d and %d", len(data.Samples), len(data.Bodies))
	}
	if data.Bodies[1].Index != 2 || data.Bodies[1].Mass != 40 {
		t.Errorf("unexpected body %+v", data.Bodies[1])
	}
}

func TestExportCSV(t *testing.T) {
	st, dir, runID := saveTestRun(t)

	var buf bytes.Buffer
	if err := st.ExportCSV(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	want, err := os.ReadFile(filepath.Join(dir, runID, "samples.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Error("csv export differs from stored samples")
	}
}
