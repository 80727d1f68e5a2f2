package agent

import (
	"context"
	"math"

	"github.com/pricehound/pricehound/app/scrape"
)

// Opportunity is a candidate deal selected by the language model. Estimate
// and Discount stay absent until the planner enriches the candidate; the
// JSON tags are the persisted memory schema.
type Opportunity struct {
	ProductDescription string   `json:"product_description"`
	Price              float64  `json:"price"`
	URL                string   `json:"url"`
	Estimate           *float64 `json:"estimate"`
	Discount           *float64 `json:"discount"`
}

// OpportunitiesCollection is the model's structured output, in the model's
// ranking order. The wire name of the list is "deals".
type OpportunitiesCollection struct {
	Opportunities []Opportunity `json:"deals"`
}

// Collaborator contracts, defined here so implementations stay swappable in
// tests.

type DealFetcher interface {
	Fetch(ctx context.Context, categories []string) ([]scrape.Deal, error)
}

type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type OpportunityStore interface {
	SeenURLs() map[string]struct{}
	MergeAndSave(opportunities []Opportunity) error
}

type Estimator interface {
	Name() string
	Predict(ctx context.Context, description string) (float64, error)
}

type Aggregator interface {
	Combine(ft, rag, xgb float64) float64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
