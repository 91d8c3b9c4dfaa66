package continuum_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bahbah94/continuum"
	"github.com/bahbah94/continuum/model"
)

// quick returns a config with a short interval and a small sample gate; the
// trainer is left stopped so tests drive training through train-now pushes.
func quick() *continuum.LearningConfig {
	cfg := continuum.FrequentUpdates()
	cfg.Interval = 20 * time.Millisecond
	return cfg
}

// trainOnLine pushes n examples of y = slope*x + intercept and requests an
// inline retrain on the last one.
func trainOnLine(t *testing.T, c *continuum.Continuum, name string, slope, intercept float64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		x := float64(i)
		trainNow := i == n-1
		if err := c.AddTrainingExample(name, []float64{x}, slope*x+intercept, trainNow); err != nil {
			t.Fatalf("AddTrainingExample(%v) failed: %v", x, err)
		}
	}
}

func TestRegisterModel(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Fatalf("RegisterModel() failed: %v", err)
	}

	t.Run("duplicate name", func(t *testing.T) {
		err := c.RegisterModel("m", "linear", nil)
		if !errors.Is(err, continuum.ErrAlreadyExists) {
			t.Errorf("error = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("unknown family", func(t *testing.T) {
		err := c.RegisterModel("other", "gradient_boosting", nil)
		if !errors.Is(err, model.ErrUnknownFamily) {
			t.Errorf("error = %v, want ErrUnknownFamily", err)
		}
	})

	t.Run("names are case-sensitive", func(t *testing.T) {
		if err := c.RegisterModel("M", "linear", nil); err != nil {
			t.Errorf("RegisterModel(\"M\") failed: %v", err)
		}
	})
}

func TestUnregisterModel_Roundtrip(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Fatal(err)
	}
	if err := c.UnregisterModel("m"); err != nil {
		t.Fatalf("UnregisterModel() failed: %v", err)
	}

	if _, err := c.GetModelInfo("m"); !errors.Is(err, continuum.ErrNotFound) {
		t.Errorf("GetModelInfo() after unregister = %v, want ErrNotFound", err)
	}
	// The name is free for reuse.
	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Errorf("re-RegisterModel() failed: %v", err)
	}

	if err := c.UnregisterModel("ghost"); !errors.Is(err, continuum.ErrNotFound) {
		t.Errorf("UnregisterModel(ghost) = %v, want ErrNotFound", err)
	}
}

func TestPredict_Errors(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	if _, err := c.Predict("ghost", []float64{1}); !errors.Is(err, continuum.ErrNotFound) {
		t.Errorf("Predict(ghost) = %v, want ErrNotFound", err)
	}

	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Predict("m", []float64{1}); !errors.Is(err, continuum.ErrNotTrained) {
		t.Errorf("Predict() before first fit = %v, want ErrNotTrained", err)
	}

	trainOnLine(t, c, "m", 2, 1, 10)
	if _, err := c.Predict("m", []float64{1, 2}); !errors.Is(err, model.ErrDimensionMismatch) {
		t.Errorf("Predict() with wrong width = %v, want ErrDimensionMismatch", err)
	}
}

func TestTrainNow_InlineFit(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Fatal(err)
	}
	trainOnLine(t, c, "m", 2, 1, 10)

	resp, err := c.Predict("m", []float64{4})
	if err != nil {
		t.Fatalf("Predict() failed: %v", err)
	}
	if resp.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", resp.ModelVersion)
	}
	if diff := resp.Prediction - 9; diff < -1e-6 || diff > 1e-6 {
		t.Errorf("Prediction = %v, want 9±1e-6", resp.Prediction)
	}
}

func TestTrainNow_BelowGateDegradesToPush(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Fatal(err)
	}
	// MinSamples is 5; a train-now push with only 2 buffered examples must
	// not attempt a fit.
	if err := c.AddTrainingExample("m", []float64{1}, 3, true); err != nil {
		t.Fatal(err)
	}
	if err := c.AddTrainingExample("m", []float64{2}, 5, true); err != nil {
		t.Fatal(err)
	}

	info, err := c.GetModelInfo("m")
	if err != nil {
		t.Fatal(err)
	}
	if info.Version != 0 {
		t.Errorf("Version = %d, want 0", info.Version)
	}
	if !strings.Contains(info.Stats, "trains=0") {
		t.Errorf("Stats = %q, want trains=0", info.Stats)
	}
}

func TestDimensionLockIn(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Fatal(err)
	}
	trainOnLine(t, c, "m", 2, 1, 10)

	err := c.AddTrainingExample("m", []float64{1, 2}, 3, false)
	if !errors.Is(err, model.ErrDimensionMismatch) {
		t.Fatalf("AddTrainingExample() after lock-in = %v, want ErrDimensionMismatch", err)
	}

	// The rejected example was not buffered: a later retrain still succeeds
	// on clean data alone.
	trainOnLine(t, c, "m", 3, 0, 10)
	resp, err := c.Predict("m", []float64{2})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ModelVersion != 2 {
		t.Errorf("ModelVersion = %d, want 2", resp.ModelVersion)
	}
}

func TestPredictBatch_SingleSnapshot(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Fatal(err)
	}
	trainOnLine(t, c, "m", 2, 1, 10)

	resp, err := c.PredictBatch("m", [][]float64{{0}, {1}, {2}})
	if err != nil {
		t.Fatalf("PredictBatch() failed: %v", err)
	}
	if resp.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", resp.ModelVersion)
	}
	want := []float64{1, 3, 5}
	for i, y := range resp.Predictions {
		if diff := y - want[i]; diff < -1e-6 || diff > 1e-6 {
			t.Errorf("Predictions[%d] = %v, want %v", i, y, want[i])
		}
	}

	t.Run("width error names the input", func(t *testing.T) {
		_, err := c.PredictBatch("m", [][]float64{{1}, {1, 2}})
		if !errors.Is(err, model.ErrDimensionMismatch) {
			t.Errorf("error = %v, want ErrDimensionMismatch", err)
		}
	})
}

func TestPredict_DeterministicPerVersion(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Fatal(err)
	}
	trainOnLine(t, c, "m", 2, 1, 10)

	a, err := c.Predict("m", []float64{3.7})
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Predict("m", []float64{3.7})
	if err != nil {
		t.Fatal(err)
	}
	if a.Prediction != b.Prediction || a.ModelVersion != b.ModelVersion {
		t.Errorf("repeat predict differs: %+v vs %+v", a, b)
	}
}

func TestListModels_SortedWithInfo(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := c.RegisterModel(name, "linear", nil); err != nil {
			t.Fatal(err)
		}
	}
	trainOnLine(t, c, "mid", 1, 0, 10)

	infos := c.ListModels()
	if len(infos) != 3 {
		t.Fatalf("ListModels() returned %d entries, want 3", len(infos))
	}
	wantOrder := []string{"alpha", "mid", "zeta"}
	for i, info := range infos {
		if info.Name != wantOrder[i] {
			t.Errorf("ListModels()[%d].Name = %q, want %q", i, info.Name, wantOrder[i])
		}
	}
	if infos[1].Version != 1 {
		t.Errorf("trained model version = %d, want 1", infos[1].Version)
	}
	for _, field := range []string{"examples_seen=", "swaps=", "last_mse="} {
		if !strings.Contains(infos[1].Stats, field) {
			t.Errorf("Stats = %q, missing %s", infos[1].Stats, field)
		}
	}
}

func TestWeightedExamples_InfluenceFit(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Fatal(err)
	}
	// Heavy examples follow y = x, a light one contradicts it.
	for i := 1; i <= 4; i++ {
		x := float64(i)
		if err := c.AddWeightedTrainingExample("m", []float64{x}, x, 1000, false); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.AddWeightedTrainingExample("m", []float64{1}, 100, 0.0001, true); err != nil {
		t.Fatal(err)
	}

	resp, err := c.Predict("m", []float64{5})
	if err != nil {
		t.Fatal(err)
	}
	if diff := resp.Prediction - 5; diff < -0.1 || diff > 0.1 {
		t.Errorf("Prediction = %v, want ≈5 (heavy cluster dominates)", resp.Prediction)
	}
}

func TestBufferOverflow_CountedInStats(t *testing.T) {
	cfg := quick()
	cfg.BufferCapacity = 8
	c := continuum.New(cfg)
	defer c.Close()

	if err := c.RegisterModel("m", "linear", nil); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		if err := c.AddTrainingExample("m", []float64{float64(i)}, float64(i), false); err != nil {
			t.Fatal(err)
		}
	}

	info, err := c.GetModelInfo("m")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(info.Stats, "dropped=12") {
		t.Errorf("Stats = %q, want dropped=12", info.Stats)
	}
}

func TestSGDFamily_EndToEnd(t *testing.T) {
	c := continuum.New(quick())
	defer c.Close()

	p := model.Params{WithBias: true, LearningRate: 0.05, MaxIterations: 20000}
	if err := c.RegisterModel("m", "linear_sgd", &p); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		x := float64(i) / 3
		if err := c.AddTrainingExample("m", []float64{x}, 2*x+1, i == 9); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := c.Predict("m", []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", resp.ModelVersion)
	}
	if diff := resp.Prediction - 3; diff < -0.05 || diff > 0.05 {
		t.Errorf("Prediction = %v, want ≈3", resp.Prediction)
	}
}
