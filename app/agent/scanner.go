package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pricehound/pricehound/app/scrape"
)

const scannerSystemPrompt = `You are a deal filtering assistant.

Your task is to identify the 5 deals with the most detailed product descriptions and clearly stated prices. Focus only on the product itself, not the deal terms, discounts, or promotions.

Only include deals where the price is explicitly mentioned and easy to extract. Avoid entries with phrases like "$XXX off" or "reduced by $XXX", those are not valid prices. Only include deals when you are confident about the actual product price.

Respond strictly in JSON with no explanation, using the following format:

{"deals": [{"product_description": "A clear, 4-5 sentence summary of the product.", "price": 99.99, "url": "..."}]}`

// Scanner shortlists freshly scraped deals through the language model.
type Scanner struct {
	fetcher DealFetcher
	llm     Completer
	store   OpportunityStore
}

func NewScanner(fetcher DealFetcher, llm Completer, store OpportunityStore) *Scanner {
	return &Scanner{
		fetcher: fetcher,
		llm:     llm,
		store:   store,
	}
}

// Scan fetches deals for the categories, drops already-seen URLs and asks
// the model for a shortlist. A nil collection with a nil error means "no
// new deals", which is a normal outcome, not a failure.
func (s *Scanner) Scan(ctx context.Context, categories []string) (*OpportunitiesCollection, error) {
	seen := s.store.SeenURLs()

	scraped, err := s.fetcher.Fetch(ctx, categories)
	if err != nil {
		return nil, fmt.Errorf("deal scanner: fetch deals: %w", err)
	}

	fresh := make([]scrape.Deal, 0, len(scraped))
	skipped := 0
	for _, deal := range scraped {
		if _, ok := seen[deal.URL]; ok {
			skipped++
			continue
		}
		fresh = append(fresh, deal)
	}

	slog.Info("Deals fetched", "total", len(scraped), "skipped", skipped, "new", len(fresh))

	if len(fresh) == 0 {
		slog.Info("No new deals to process")
		return nil, nil
	}

	content, err := s.llm.Complete(ctx, scannerSystemPrompt, buildUserPrompt(fresh))
	if err != nil {
		return nil, fmt.Errorf("deal scanner: language model call failed: %w", err)
	}

	var collection OpportunitiesCollection
	if err := json.Unmarshal([]byte(content), &collection); err != nil {
		return nil, fmt.Errorf("deal scanner: failed to decode model output: %w", err)
	}

	// The model occasionally invents a zero price for entries it should
	// have left out. Drop those instead of trusting it.
	valid := make([]Opportunity, 0, len(collection.Opportunities))
	for _, opp := range collection.Opportunities {
		if opp.Price <= 0 {
			slog.Warn("Dropped opportunity without a valid price", "url", opp.URL)
			continue
		}
		valid = append(valid, opp)
	}

	slog.Info("Valid opportunities received", "count", len(valid))

	if len(valid) == 0 {
		return nil, nil
	}

	collection.Opportunities = valid
	return &collection, nil
}

func buildUserPrompt(deals []scrape.Deal) string {
	blocks := make([]string, 0, len(deals))
	for _, deal := range deals {
		blocks = append(blocks, deal.Describe())
	}

	return "Select the 5 best deals with the clearest product descriptions " +
		"and exact prices. Here is the list:\n\n" + strings.Join(blocks, "\n\n")
}
