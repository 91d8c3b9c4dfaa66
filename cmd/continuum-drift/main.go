// Command continuum-drift demonstrates zero-downtime model updates under
// data drift: it registers a linear model, streams synthetic data whose slope
// shifts over time, and reports how the served version adapts while
// predictions keep flowing.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/bahbah94/continuum"
	"github.com/bahbah94/continuum/data"
	"github.com/bahbah94/continuum/metrics"
)

// DriftConfig represents command-line configuration for the demonstration.
type DriftConfig struct {
	Interval        time.Duration `json:"interval"`         // trainer wake period
	MinSamples      int           `json:"min_samples"`      // retrain eligibility gate
	Threshold       float64       `json:"threshold"`        // validation threshold
	UseKL           bool          `json:"use_kl"`           // drift-gate validator
	SamplesPerPhase int           `json:"samples_per_phase"` // examples per drift phase
	Predictions     int           `json:"predictions"`      // predictions for the latency report
	DataPath        string        `json:"data_path"`        // optional parquet training set to replay first
	OutputPath      string        `json:"output_path"`      // optional JSON result path
	Seed            int64         `json:"seed"`
	Verbose         bool          `json:"verbose"`
}

// DriftResult contains the outcome of one demonstration run.
type DriftResult struct {
	Timestamp     time.Time    `json:"timestamp"`
	Config        *DriftConfig `json:"config"`
	Phases        []PhaseInfo  `json:"phases"`
	FinalVersion  uint64       `json:"final_version"`
	FinalStats    string       `json:"final_stats"`
	Predictions   int          `json:"predictions"`
	AvgLatencyUS  float64      `json:"avg_latency_us"`
	P95LatencyUS  float64      `json:"p95_latency_us"`
	P99LatencyUS  float64      `json:"p99_latency_us"`
	FinalMSE      float64      `json:"final_mse"`
	FinalPearson  float64      `json:"final_pearson"`
	Duration      time.Duration `json:"duration"`
}

// PhaseInfo records the model state after one drift phase settled.
type PhaseInfo struct {
	Slope   float64 `json:"slope"`
	Version uint64  `json:"version"`
}

const modelName = "adaptive_model"

func main() {
	config := parseFlags()

	logger := log.New(os.Stderr, "continuum-drift: ", log.LstdFlags)
	if config.Verbose {
		logger.Printf("starting with config: %+v", config)
	}

	result, err := run(config, logger)
	if err != nil {
		logger.Printf("demonstration failed: %v", err)
		os.Exit(1)
	}

	report(result)
	if config.OutputPath != "" {
		if err := saveResult(config.OutputPath, result); err != nil {
			logger.Printf("failed to save result: %v", err)
			os.Exit(1)
		}
		logger.Printf("result written to %s", config.OutputPath)
	}
}

func parseFlags() *DriftConfig {
	config := &DriftConfig{}

	flag.DurationVar(&config.Interval, "interval", 2*time.Second, "Trainer wake period")
	flag.IntVar(&config.MinSamples, "min-samples", 20, "Minimum buffered examples before retraining")
	flag.Float64Var(&config.Threshold, "threshold", 0, "Validation threshold for swapping")
	flag.BoolVar(&config.UseKL, "kl", false, "Use the KL drift gate instead of the MSE improvement gate")
	flag.IntVar(&config.SamplesPerPhase, "samples", 50, "Training examples per drift phase")
	flag.IntVar(&config.Predictions, "predictions", 200, "Predictions for the latency report")
	flag.StringVar(&config.DataPath, "data", "", "Optional parquet training set to replay before the drift phases")
	flag.StringVar(&config.OutputPath, "out", "", "Optional path for the JSON result")
	flag.Int64Var(&config.Seed, "seed", 42, "Random seed")
	flag.BoolVar(&config.Verbose, "v", false, "Verbose logging")
	flag.Parse()

	return config
}

func run(config *DriftConfig, logger *log.Logger) (*DriftResult, error) {
	start := time.Now()
	rng := rand.New(rand.NewSource(config.Seed))

	cfg := continuum.FrequentUpdates()
	cfg.Interval = config.Interval
	cfg.MinSamples = config.MinSamples
	cfg.ValidationThreshold = config.Threshold
	cfg.UseKLDivergence = config.UseKL

	c := continuum.New(cfg)
	if config.Verbose {
		c.SetLogger(logger)
	}
	defer c.Close()

	if err := c.RegisterModel(modelName, "linear", nil); err != nil {
		return nil, err
	}

	if config.DataPath != "" {
		examples, err := data.LoadExamples(config.DataPath)
		if err != nil {
			return nil, err
		}
		logger.Printf("replaying %d examples from %s", len(examples), config.DataPath)
		if err := data.Replay(c, modelName, examples, true); err != nil {
			return nil, err
		}
	}

	c.StartContinuousLearning()
	defer c.StopContinuousLearning()

	result := &DriftResult{Timestamp: start, Config: config}

	// The slope drifts upward phase by phase, exactly the regime a
	// zero-downtime runtime exists for: the incumbent keeps serving while
	// each new slope is learned and swapped in.
	slopes := []float64{1.0, 1.5, 2.0, 2.5}
	for _, slope := range slopes {
		logger.Printf("drift phase: slope %.1f", slope)
		for i := 0; i < config.SamplesPerPhase; i++ {
			x := rng.Float64() * 10
			y := slope*x + rng.NormFloat64()*0.1
			if err := c.AddTrainingExample(modelName, []float64{x}, y, false); err != nil {
				return nil, err
			}
		}

		settle(config.Interval)
		info, err := c.GetModelInfo(modelName)
		if err != nil {
			return nil, err
		}
		logger.Printf("phase settled: version %d", info.Version)
		result.Phases = append(result.Phases, PhaseInfo{Slope: slope, Version: info.Version})
	}

	if err := measure(c, config, rng, slopes[len(slopes)-1], result); err != nil {
		return nil, err
	}

	info, err := c.GetModelInfo(modelName)
	if err != nil {
		return nil, err
	}
	result.FinalVersion = info.Version
	result.FinalStats = info.Stats
	result.Duration = time.Since(start)
	return result, nil
}

// settle waits long enough for at least one trainer tick to pass.
func settle(interval time.Duration) {
	time.Sleep(2*interval + 500*time.Millisecond)
}

// measure runs the prediction workload against the final model and fills in
// latency and quality numbers.
func measure(c *continuum.Continuum, config *DriftConfig, rng *rand.Rand, slope float64, result *DriftResult) error {
	latencies := make([]float64, 0, config.Predictions)
	preds := make([]float64, 0, config.Predictions)
	truths := make([]float64, 0, config.Predictions)

	for i := 0; i < config.Predictions; i++ {
		x := rng.Float64() * 10

		begin := time.Now()
		resp, err := c.Predict(modelName, []float64{x})
		if err != nil {
			return fmt.Errorf("prediction %d: %w", i, err)
		}
		latencies = append(latencies, float64(time.Since(begin).Microseconds()))
		preds = append(preds, resp.Prediction)
		truths = append(truths, slope*x)
	}

	var sum float64
	for _, l := range latencies {
		sum += l
	}
	sort.Float64s(latencies)

	result.Predictions = len(latencies)
	result.AvgLatencyUS = sum / float64(len(latencies))
	result.P95LatencyUS = percentile(latencies, 0.95)
	result.P99LatencyUS = percentile(latencies, 0.99)
	if ev := metrics.Evaluate(preds, truths); ev != nil {
		result.FinalMSE = ev.MSE
	}
	result.FinalPearson = metrics.PearsonCorrelation(preds, truths)
	return nil
}

// percentile reads the p-quantile from an already sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func report(result *DriftResult) {
	fmt.Println("=== Continuum drift demonstration ===")
	for _, phase := range result.Phases {
		fmt.Printf("slope %.1f -> version %d\n", phase.Slope, phase.Version)
	}
	fmt.Printf("final version:   %d\n", result.FinalVersion)
	fmt.Printf("final stats:     %s\n", result.FinalStats)
	fmt.Printf("predictions:     %d\n", result.Predictions)
	fmt.Printf("avg latency:     %.1f us\n", result.AvgLatencyUS)
	fmt.Printf("p95 latency:     %.1f us\n", result.P95LatencyUS)
	fmt.Printf("p99 latency:     %.1f us\n", result.P99LatencyUS)
	fmt.Printf("final mse:       %.4f\n", result.FinalMSE)
	fmt.Printf("final pearson:   %.4f\n", result.FinalPearson)
	fmt.Printf("total duration:  %v\n", result.Duration)
}

func saveResult(path string, result *DriftResult) error {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
