// Command indexer validates every recipe in a data directory, rebuilds
// index.json and prints a summary of the collection.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/app"
	"github.com/cooking-companion/server/internal/config"
	"github.com/cooking-companion/server/internal/docvalue"
	"github.com/cooking-companion/server/internal/indexing"
	"github.com/cooking-companion/server/internal/logging"
	"github.com/cooking-companion/server/internal/schema"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <data-dir>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s data\n", os.Args[0])
		os.Exit(1)
	}

	logger, err := logging.New("info", "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Sugar()

	if err := run(context.Background(), os.Args[1], logger); err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}
}

func run(ctx context.Context, dataDir string, logger *zap.Logger) error {
	log := logger.Sugar()
	log.Infof("Cooking Companion Recipe Indexer v%s", app.Version)
	log.Info(rule)

	// Step 1: validate every recipe file
	recipesDir := filepath.Join(dataDir, indexing.RecipesDir)
	log.Infof("Validating recipes: %s", recipesDir)
	invalid, total, err := validateRecipes(recipesDir, schema.NewEmbeddedValidator())
	if err != nil {
		return err
	}
	for _, report := range invalid {
		log.Warnf("✗ %s", report)
	}
	log.Infof("✓ Validated %d recipes (%d invalid)", total, len(invalid))

	// Step 2: rebuild the index
	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warnf("Error closing search index: %v", err)
		}
	}()

	log.Infof("Rebuilding index")
	entries, err := a.Kitchen.RebuildIndex(ctx)
	if err != nil {
		return err
	}
	log.Infof("✓ Indexed %d recipes", len(entries))

	// Step 3: summary
	s := summarize(entries)
	log.Info(rule)
	log.Info("✓ Indexing complete!")
	log.Info("")
	log.Info("Index details:")
	log.Infof("  Location:   %s", filepath.Join(dataDir, indexing.IndexFile))
	log.Infof("  Recipes:    %d", len(entries))
	log.Infof("  Categories: %s", s.categories)
	log.Infof("  Top tags:   %s", s.tags)
	if len(invalid) > 0 {
		return fmt.Errorf("%d recipes failed validation", len(invalid))
	}
	return nil
}

// validateRecipes checks every recipe file against the recipe schema and
// returns one line per invalid file.
func validateRecipes(dir string, v *schema.Validator) ([]string, int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+indexing.RecipeExt))
	if err != nil {
		return nil, 0, err
	}

	var invalid []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		doc, err := docvalue.Parse(data)
		if err != nil {
			invalid = append(invalid, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		result, err := v.Validate(schema.KindRecipe, doc)
		if err != nil {
			return nil, 0, err
		}
		if !result.Valid {
			invalid = append(invalid, fmt.Sprintf("%s: %s", filepath.Base(path), strings.Join(result.Errors, "; ")))
		}
	}
	return invalid, len(paths), nil
}

type summary struct {
	categories string
	tags       string
}

const topTags = 10

func summarize(entries []indexing.Entry) summary {
	categories := map[string]int{}
	tags := map[string]int{}
	for _, e := range entries {
		categories[e.Category]++
		for _, tag := range e.Tags {
			tags[tag]++
		}
	}
	return summary{
		categories: formatCounts(categories, 0),
		tags:       formatCounts(tags, topTags),
	}
}

// formatCounts renders "name (n)" pairs by descending count, then name;
// limit 0 keeps all of them.
func formatCounts(counts map[string]int, limit int) string {
	if len(counts) == 0 {
		return "-"
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s (%d)", name, counts[name])
	}
	return strings.Join(parts, ", ")
}
