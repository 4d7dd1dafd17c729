// Package kitchentest builds Kitchens over temporary data directories for
// tests of the packages layered on top of kitchen.
package kitchentest

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/docstore"
	"github.com/cooking-companion/server/internal/docvalue"
	"github.com/cooking-companion/server/internal/kitchen"
	"github.com/cooking-companion/server/internal/schema"
)

// Now is the fixed clock of kitchens made by New.
var Now = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

// Stamp is Now in the stored timestamp format.
const Stamp = "2024-05-01T12:30:00.000Z"

// New returns a Kitchen over an initialised temporary data directory.
func New(t testing.TB) *kitchen.Kitchen {
	t.Helper()
	store := docstore.Open(t.TempDir(), docstore.Options{
		Logger:    zap.NewNop(),
		Validator: schema.NewEmbeddedValidator(),
		Now:       func() time.Time { return Now },
	})
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	return kitchen.New(store, zap.NewNop())
}

// Recipe returns a minimal valid recipe with the given id and name.
func Recipe(id, name string) docvalue.Value {
	return docvalue.MustParse(`{
		"id": "fakes",
		"name": "Φακές",
		"category": "όσπρια",
		"tags": ["φέτα"],
		"servings": {"amount": 4},
		"ingredients": [{"name": "φακές", "amount": 500, "unit": "g"}],
		"steps": [{"order": 1, "title": "Βράσιμο", "instruction": "Βράζουμε τις φακές."}],
		"created_at": "2024-01-01T10:00:00.000Z",
		"updated_at": "2024-01-01T10:00:00.000Z"
	}`).Set("id", docvalue.StringValue(id)).Set("name", docvalue.StringValue(name))
}

// Fakes is the lentil soup recipe used across tests.
func Fakes() docvalue.Value {
	return Recipe("fakes", "Φακές")
}

// MustSave stores recipe and fails the test on error.
func MustSave(t testing.TB, k *kitchen.Kitchen, recipe docvalue.Value) {
	t.Helper()
	if _, err := k.SaveRecipe(context.Background(), recipe); err != nil {
		t.Fatalf("failed to save recipe: %v", err)
	}
}
