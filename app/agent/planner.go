package agent

import (
	"context"
	"fmt"
	"log/slog"
)

// DealScanner is the scanning stage of the pipeline as the planner sees it.
type DealScanner interface {
	Scan(ctx context.Context, categories []string) (*OpportunitiesCollection, error)
}

// Planner coordinates the full pipeline: scan, enrich every candidate with
// the three price estimators and the ensemble, keep candidates whose
// discount reaches the threshold, and persist the accepted ones.
type Planner struct {
	scanner   DealScanner
	ft        Estimator
	rag       Estimator
	xgb       Estimator
	ensemble  Aggregator
	store     OpportunityStore
	threshold float64
}

func NewPlanner(scanner DealScanner, ft, rag, xgb Estimator, ensemble Aggregator,
	store OpportunityStore, threshold float64) *Planner {
	return &Planner{
		scanner:   scanner,
		ft:        ft,
		rag:       rag,
		xgb:       xgb,
		ensemble:  ensemble,
		store:     store,
		threshold: threshold,
	}
}

// Run executes one pipeline pass and returns the accepted opportunities
// along with the number of shortlisted candidates that were evaluated.
// Rejected candidates are discarded. A fatal error from the scanner or any
// estimator aborts the whole run before anything is written to memory.
func (p *Planner) Run(ctx context.Context, categories []string) ([]Opportunity, int, error) {
	slog.Info("Scanning initiated", "categories", categories)

	collection, err := p.scanner.Scan(ctx, categories)
	if err != nil {
		return nil, 0, err
	}
	if collection == nil || len(collection.Opportunities) == 0 {
		slog.Info("No deals found from scanner")
		return []Opportunity{}, 0, nil
	}

	scanned := len(collection.Opportunities)

	slog.Info("Scanning complete, starting enrichment", "candidates", len(collection.Opportunities))

	accepted := []Opportunity{}
	for i := range collection.Opportunities {
		opportunity := collection.Opportunities[i]
		idx := i + 1

		if err := p.enrich(ctx, &opportunity); err != nil {
			return nil, scanned, fmt.Errorf("enrich deal #%d: %w", idx, err)
		}

		discount := *opportunity.Discount
		if discount >= p.threshold {
			slog.Info("Deal accepted", "index", idx, "discount", fmt.Sprintf("%.2f", discount))
			accepted = append(accepted, opportunity)
		} else {
			slog.Info("Deal rejected, discount below threshold", "index", idx, "discount", fmt.Sprintf("%.2f", discount))
		}
	}

	slog.Info("Enrichment complete, saving opportunities")

	if err := p.store.MergeAndSave(accepted); err != nil {
		return nil, scanned, fmt.Errorf("save opportunities: %w", err)
	}
	slog.Info("Opportunities saved to memory", "count", len(accepted))

	p.reportSummary(accepted)

	return accepted, scanned, nil
}

// enrich collects the three estimates in a fixed order, blends them and
// sets the estimate and discount on the candidate. Any estimator failure
// propagates; there is no per-candidate recovery.
func (p *Planner) enrich(ctx context.Context, opportunity *Opportunity) error {
	ftPred, err := p.ft.Predict(ctx, opportunity.ProductDescription)
	if err != nil {
		return fmt.Errorf("price estimation failed: %w", err)
	}

	ragPred, err := p.rag.Predict(ctx, opportunity.ProductDescription)
	if err != nil {
		return fmt.Errorf("price estimation failed: %w", err)
	}

	xgbPred, err := p.xgb.Predict(ctx, opportunity.ProductDescription)
	if err != nil {
		return fmt.Errorf("price estimation failed: %w", err)
	}

	slog.Debug("Predictions received",
		"ft", fmt.Sprintf("%.2f", ftPred),
		"rag", fmt.Sprintf("%.2f", ragPred),
		"xgb", fmt.Sprintf("%.2f", xgbPred))

	estimate := p.ensemble.Combine(ftPred, ragPred, xgbPred)
	discount := round2(estimate - opportunity.Price)

	opportunity.Estimate = &estimate
	opportunity.Discount = &discount

	return nil
}

func (p *Planner) reportSummary(accepted []Opportunity) {
	if len(accepted) == 0 {
		slog.Info("No opportunities met the discount threshold")
		return
	}

	for _, opportunity := range accepted {
		slog.Info("Accepted opportunity",
			"description", opportunity.ProductDescription,
			"price", fmt.Sprintf("%.2f", opportunity.Price),
			"estimate", fmt.Sprintf("%.2f", *opportunity.Estimate),
			"discount", fmt.Sprintf("%.2f", *opportunity.Discount),
			"url", opportunity.URL)
	}
}
