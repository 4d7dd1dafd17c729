package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cooking-companion/server/internal/kitchen/kitchentest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("COMPANION_CONFIG", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func fakesJSON(t *testing.T) []byte {
	t.Helper()
	data, err := kitchentest.Fakes().Pretty()
	require.NoError(t, err)
	return data
}

func TestReindex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "recipes", "fakes.json"), fakesJSON(t))

	out, err := execute(t, "reindex", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Indexed 1 recipes")

	index, err := os.ReadFile(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `"fakes"`)
	assert.FileExists(t, filepath.Join(dir, "shelf.json"))
}

func TestReindex_BrokenRecipe(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "recipes", "fakes.json"), []byte(`{"id": "fakes"`))

	_, err := execute(t, "reindex", "--data-dir", dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	recipe := filepath.Join(dir, "recipes", "fakes.json")
	shelf := filepath.Join(dir, "shelf.json")
	notes := filepath.Join(dir, "notes.json")
	broken := filepath.Join(dir, "appliances.json")

	writeFile(t, recipe, fakesJSON(t))
	writeFile(t, shelf, []byte(`{"spices": "ρίγανη", "categories": []}`))
	writeFile(t, notes, []byte(`{"spices": [], "categories": [], "updated_at": "2024-05-01T12:30:00.000Z"}`))
	writeFile(t, broken, []byte(`{"categories": [`))

	tests := []struct {
		name     string
		args     []string
		wantErr  string
		contains []string
	}{
		{
			name:     "valid recipe",
			args:     []string{recipe},
			contains: []string{"✓ " + recipe + " (Recipe)"},
		},
		{
			name:     "schema violation",
			args:     []string{recipe, shelf},
			wantErr:  "1 of 2 files",
			contains: []string{"✓ " + recipe, "✗ " + shelf + " (Shelf)", "/spices"},
		},
		{
			name:     "undetectable kind",
			args:     []string{notes},
			wantErr:  "validation failed",
			contains: []string{"use --kind"},
		},
		{
			name:     "explicit kind",
			args:     []string{"--kind", "shelf", notes},
			contains: []string{"✓ " + notes + " (Shelf)"},
		},
		{
			name:     "invalid JSON",
			args:     []string{broken},
			wantErr:  "validation failed",
			contains: []string{"invalid JSON"},
		},
		{
			name:    "unknown kind",
			args:    []string{"--kind", "menu", notes},
			wantErr: `unknown kind "menu"`,
		},
		{
			name:    "no files",
			args:    []string{},
			wantErr: "requires at least 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"validate"}, tt.args...)...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "companion version")
}
