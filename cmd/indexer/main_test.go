package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/indexing"
	"github.com/cooking-companion/server/internal/kitchen/kitchentest"
	"github.com/cooking-companion/server/internal/schema"
)

func writeRecipe(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func TestValidateRecipes(t *testing.T) {
	dir := t.TempDir()
	fakes, err := kitchentest.Fakes().Pretty()
	require.NoError(t, err)

	writeRecipe(t, dir, "fakes.json", fakes)
	writeRecipe(t, dir, "broken.json", []byte(`{"id":`))
	writeRecipe(t, dir, "nameless.json", []byte(`{"id": "nameless"}`))
	writeRecipe(t, dir, "notes.txt", []byte(`ignored`))

	invalid, total, err := validateRecipes(dir, schema.NewEmbeddedValidator())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, invalid, 2)
	assert.Contains(t, invalid[0], "broken.json: invalid JSON")
	assert.Contains(t, invalid[1], "nameless.json:")
}

func TestRun(t *testing.T) {
	dataDir := t.TempDir()
	fakes, err := kitchentest.Fakes().Pretty()
	require.NoError(t, err)
	writeRecipe(t, filepath.Join(dataDir, indexing.RecipesDir), "fakes.json", fakes)

	require.NoError(t, run(context.Background(), dataDir, zap.NewNop()))
	assert.FileExists(t, filepath.Join(dataDir, indexing.IndexFile))
}

func TestRun_InvalidRecipe(t *testing.T) {
	dataDir := t.TempDir()
	recipe := kitchentest.Fakes().Set("ingredients", kitchentest.Fakes())
	data, err := recipe.Pretty()
	require.NoError(t, err)
	writeRecipe(t, filepath.Join(dataDir, indexing.RecipesDir), "fakes.json", data)

	err = run(context.Background(), dataDir, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 recipes failed validation")
}

func TestSummarize(t *testing.T) {
	s := summarize([]indexing.Entry{
		{ID: "fakes", Category: "όσπρια", Tags: []string{"νηστίσιμο", "χειμωνιάτικο"}},
		{ID: "fasolada", Category: "όσπρια", Tags: []string{"νηστίσιμο"}},
		{ID: "moussakas", Category: "φούρνου"},
	})
	assert.Equal(t, "όσπρια (2), φούρνου (1)", s.categories)
	assert.Equal(t, "νηστίσιμο (2), χειμωνιάτικο (1)", s.tags)

	assert.Equal(t, "-", summarize(nil).tags)
}

func TestFormatCounts_Limit(t *testing.T) {
	counts := map[string]int{"a": 1, "b": 3, "c": 2}
	assert.Equal(t, "b (3), c (2)", formatCounts(counts, 2))
	assert.Equal(t, "b (3), c (2), a (1)", formatCounts(counts, 0))
}
