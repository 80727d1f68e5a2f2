package pricer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
)

// Ensemble blends the three estimator outputs with a previously trained
// linear model over [ft, rag, xgb, max, mean].
type Ensemble struct {
	weights   [5]float64
	intercept float64
}

type ensembleModel struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// NewEnsemble loads model coefficients from a JSON file. A missing or
// malformed file degrades to a zero model whose estimates are always 0.0,
// keeping the pipeline running while making the broken configuration
// visible in the results.
func NewEnsemble(modelPath string) *Ensemble {
	model, err := loadModel(modelPath)
	if err != nil {
		slog.Warn("Ensemble model not loaded, estimates degrade to 0.0", "path", modelPath, "error", err)
		return &Ensemble{}
	}

	slog.Debug("Ensemble model loaded", "path", modelPath)
	return model
}

func loadModel(path string) (*Ensemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var model ensembleModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}

	if len(model.Weights) != 5 {
		return nil, fmt.Errorf("expected 5 weights, got %d", len(model.Weights))
	}

	e := &Ensemble{intercept: model.Intercept}
	copy(e.weights[:], model.Weights)
	return e, nil
}

// Combine applies the linear model to the feature vector derived from the
// three predictions and rounds to 2 decimal places. It never fails: a
// numerically broken result degrades to 0.0 so that enrichment can finish
// with a sentinel instead of aborting at the final stage.
func (e *Ensemble) Combine(ft, rag, xgb float64) float64 {
	features := [5]float64{
		ft,
		rag,
		xgb,
		math.Max(ft, math.Max(rag, xgb)),
		(ft + rag + xgb) / 3,
	}

	result := e.intercept
	for i, w := range e.weights {
		result += w * features[i]
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		slog.Error("Ensemble produced a non-finite estimate", "ft", ft, "rag", rag, "xgb", xgb)
		return 0.0
	}

	return math.Round(result*100) / 100
}
