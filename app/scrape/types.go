package scrape

import (
	"fmt"
	"strings"
)

// Deal is a raw deal record assembled from an RSS feed entry and the
// linked deal page. Immutable once built.
type Deal struct {
	Category string
	Title    string
	Summary  string
	URL      string
	Details  string
	Features string
}

// Describe renders the deal as a prompt block for the language model.
func (d Deal) Describe() string {
	return fmt.Sprintf("Title: %s\nDetails: %s\nFeatures: %s\nURL: %s",
		strings.TrimSpace(d.Title),
		strings.TrimSpace(d.Details),
		strings.TrimSpace(d.Features),
		strings.TrimSpace(d.URL))
}

// Configuration types

type Category struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}
