// Package data provides bulk example ingest for the runtime: parquet-backed
// loading, writing, and replay of recorded training sets. It sits outside the
// core serving contract; the runtime itself never touches the filesystem.
package data

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/bahbah94/continuum"
	"github.com/bahbah94/continuum/model"
)

// Row is the on-disk schema for one training example.
type Row struct {
	Features []float64 `parquet:"features"`
	Label    float64   `parquet:"label"`
	Weight   float64   `parquet:"weight,optional"`
}

// LoadExamples reads a parquet training set. Rows without a weight default to
// unit weight.
func LoadExamples(path string) ([]model.Example, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	out := make([]model.Example, len(rows))
	for i, r := range rows {
		w := r.Weight
		if w <= 0 {
			w = 1
		}
		out[i] = model.Example{Features: r.Features, Label: r.Label, Weight: w}
	}
	return out, nil
}

// WriteExamples writes a training set as parquet.
func WriteExamples(path string, examples []model.Example) error {
	rows := make([]Row, len(examples))
	for i, ex := range examples {
		rows[i] = Row{Features: ex.Features, Label: ex.Label, Weight: ex.Weight}
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Replay pushes examples through the runtime's example path in file order,
// preserving per-example weights. When trainNow is set the final push
// requests an inline retrain, so a replayed dataset can be served without
// waiting for the next trainer tick.
func Replay(c *continuum.Continuum, modelName string, examples []model.Example, trainNow bool) error {
	for i, ex := range examples {
		last := trainNow && i == len(examples)-1
		if err := c.AddWeightedTrainingExample(modelName, ex.Features, ex.Label, ex.Weight, last); err != nil {
			return fmt.Errorf("example %d: %w", i, err)
		}
	}
	return nil
}
