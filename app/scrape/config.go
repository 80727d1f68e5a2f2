package scrape

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadCategories loads all category feed definitions from YAML files in the
// feeds directory. A missing directory yields an empty map.
func LoadCategories(feedsDir string) (map[string]Category, error) {
	categories := make(map[string]Category)

	if _, err := os.Stat(feedsDir); os.IsNotExist(err) {
		return categories, nil
	}

	files, err := filepath.Glob(filepath.Join(feedsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(feedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		category, err := loadCategoryFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		categories[category.Name] = *category
		slog.Debug("Loaded category feed", "name", category.Name, "url", category.URL)
	}

	return categories, nil
}

// CategoryNames returns the configured category names in stable order.
func CategoryNames(categories map[string]Category) []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func loadCategoryFile(path string) (*Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var category Category
	if err := yaml.Unmarshal(data, &category); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if category.Name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	if category.URL == "" {
		return nil, fmt.Errorf("category feed URL is required")
	}

	return &category, nil
}
