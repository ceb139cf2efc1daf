// Package ml holds the phishing-probability collaborator. The pipeline
// treats the prediction as opaque; this package ships a logistic model
// whose coefficients load from a model file, with built-in fallback
// coefficients when the file is absent.
package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/phishguard/phishguard/pkg/features"
)

// FeatureWeight is one entry of the importance ranking
type FeatureWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Prediction is the collaborator contract output
type Prediction struct {
	MLPrediction      float64         `json:"ml_prediction"`
	Confidence        float64         `json:"confidence"`
	ModelUsed         string          `json:"model_used"`
	FeatureImportance []FeatureWeight `json:"feature_importance"`
	InferenceTimeMS   float64         `json:"inference_time_ms"`
}

// Scorer produces a phishing probability from the feature record
type Scorer interface {
	Predict(ctx context.Context, f *features.Features) (*Prediction, error)
}

// modelFile is the on-disk model layout
type modelFile struct {
	Model        string             `json:"model"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// LogisticScorer scores the fixed feature vector with a logistic model
type LogisticScorer struct {
	intercept    float64
	coefficients map[string]float64
	modelUsed    string
	logger       zerolog.Logger
}

// NewLogisticScorer loads coefficients from modelPath. A missing or
// unreadable file falls back to the built-in coefficients; the prediction
// records which model answered.
func NewLogisticScorer(modelPath string, logger zerolog.Logger) *LogisticScorer {
	log := logger.With().Str("component", "ml").Logger()

	if modelPath != "" {
		if model, err := loadModelFile(modelPath); err == nil {
			log.Info().Str("path", modelPath).Str("model", model.Model).Msg("model loaded")
			return &LogisticScorer{
				intercept:    model.Intercept,
				coefficients: model.Coefficients,
				modelUsed:    "primary",
				logger:       log,
			}
		} else if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", modelPath).Msg("model file unreadable, using fallback coefficients")
		}
	}

	return &LogisticScorer{
		intercept:    fallbackIntercept,
		coefficients: fallbackCoefficients(),
		modelUsed:    "fallback",
		logger:       log,
	}
}

// Predict computes the phishing probability. Confidence is the distance
// from the decision boundary, scaled to [0,1].
func (s *LogisticScorer) Predict(ctx context.Context, f *features.Features) (*Prediction, error) {
	start := time.Now()

	names := features.Names()
	vector := f.Vector()

	z := s.intercept
	contributions := make([]FeatureWeight, 0, len(names))
	for i, name := range names {
		w, ok := s.coefficients[name]
		if !ok {
			continue
		}
		contribution := w * vector[i]
		z += contribution
		contributions = append(contributions, FeatureWeight{Name: name, Weight: contribution})
	}

	probability := sigmoid(z)
	confidence := math.Abs(probability-0.5) * 2

	sort.SliceStable(contributions, func(i, j int) bool {
		return math.Abs(contributions[i].Weight) > math.Abs(contributions[j].Weight)
	})
	if len(contributions) > 10 {
		contributions = contributions[:10]
	}
	for i := range contributions {
		contributions[i].Weight = round4(contributions[i].Weight)
	}

	return &Prediction{
		MLPrediction:      round4(probability),
		Confidence:        round4(confidence),
		ModelUsed:         s.modelUsed,
		FeatureImportance: contributions,
		InferenceTimeMS:   float64(time.Since(start).Microseconds()) / 1000,
	}, nil
}

// ModelUsed reports which coefficient set answered
func (s *LogisticScorer) ModelUsed() string {
	return s.modelUsed
}

func loadModelFile(path string) (*modelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var model modelFile
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}
	if len(model.Coefficients) == 0 {
		return nil, fmt.Errorf("model file has no coefficients")
	}
	return &model, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

const fallbackIntercept = -3.5

// fallbackCoefficients is the built-in model: hand-tuned logistic weights
// over the fixed feature vector.
func fallbackCoefficients() map[string]float64 {
	return map[string]float64{
		"url_length":                   0.010,
		"domain_length":                0.015,
		"subdomain_count":              0.350,
		"path_depth":                   0.080,
		"digit_ratio":                  2.000,
		"special_char_ratio":           1.200,
		"hyphen_count":                 0.120,
		"url_entropy":                  0.250,
		"domain_entropy":               0.200,
		"has_ip_address":               2.200,
		"has_suspicious_tld":           1.300,
		"suspicious_keyword_count":     0.450,
		"at_symbol":                    1.400,
		"has_double_slash_redirecting": 0.800,
		"prefix_suffix_in_domain":      0.500,
		"uses_non_standard_port":       0.700,
		"is_https":                     -0.600,
		"has_valid_ssl":                -0.500,
		"domain_registered_recently":   1.100,
	}
}
