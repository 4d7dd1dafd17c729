// Package kitchen is the operation surface shared by the HTTP API, the MCP
// tools and the chat assistant. It wraps the document stores and adds the
// input handling every caller needs: decoding untrusted JSON, trimming
// category names and stamping edited recipes.
package kitchen

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/docstore"
	"github.com/cooking-companion/server/internal/docvalue"
	"github.com/cooking-companion/server/internal/indexing"
)

// Kitchen exposes the recipe, taste profile, shelf and appliance
// operations.
type Kitchen struct {
	store  *docstore.Store
	logger *zap.Logger
}

// New creates a Kitchen over store.
func New(store *docstore.Store, logger *zap.Logger) *Kitchen {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Kitchen{store: store, logger: logger}
}

// Store returns the underlying document store.
func (k *Kitchen) Store() *docstore.Store {
	return k.store
}

// ListRecipes returns every index entry.
func (k *Kitchen) ListRecipes(ctx context.Context) ([]indexing.Entry, error) {
	return k.store.Recipes.List(ctx)
}

// GetRecipe returns the full recipe.
func (k *Kitchen) GetRecipe(ctx context.Context, id string) (docvalue.Value, error) {
	return k.store.Recipes.Get(ctx, id)
}

// SearchRecipes filters the index by a substring query. Whitespace in the
// query is part of the substring.
func (k *Kitchen) SearchRecipes(ctx context.Context, query string) ([]indexing.Entry, error) {
	return k.store.Recipes.Search(ctx, query)
}

// SaveRecipe stores a complete recipe exactly as given.
func (k *Kitchen) SaveRecipe(ctx context.Context, recipe docvalue.Value) (docvalue.Value, error) {
	return k.store.Recipes.Save(ctx, recipe)
}

// SaveEditedRecipe stores a recipe coming from an editor: updated_at is
// set to now and a missing created_at is filled by the store.
func (k *Kitchen) SaveEditedRecipe(ctx context.Context, recipe docvalue.Value) (docvalue.Value, error) {
	if recipe.IsObject() {
		recipe = recipe.Set("updated_at", k.store.Timestamp())
	}
	return k.store.Recipes.Save(ctx, recipe)
}

// DeleteRecipe removes a recipe.
func (k *Kitchen) DeleteRecipe(ctx context.Context, id string) error {
	return k.store.Recipes.Delete(ctx, id)
}

// RebuildIndex regenerates the recipe index from the recipe files.
func (k *Kitchen) RebuildIndex(ctx context.Context) ([]indexing.Entry, error) {
	return k.store.Recipes.RebuildIndex(ctx)
}

// GetTasteProfile returns the taste profile.
func (k *Kitchen) GetTasteProfile(ctx context.Context) (docvalue.Value, error) {
	return k.store.TasteProfile.Get(ctx)
}

// UpdateTasteProfile deep-merges patch into the taste profile.
func (k *Kitchen) UpdateTasteProfile(ctx context.Context, patch docvalue.Value) (docvalue.Value, error) {
	return k.store.TasteProfile.Update(ctx, patch)
}

// LogCook appends a cooking log entry.
func (k *Kitchen) LogCook(ctx context.Context, entry docstore.CookEntry) error {
	entry.RecipeID = strings.TrimSpace(entry.RecipeID)
	entry.Date = strings.TrimSpace(entry.Date)
	if entry.RecipeID == "" || entry.Date == "" {
		return fmt.Errorf("%w: recipe_id and date are required", docstore.ErrMalformedInput)
	}
	return k.store.TasteProfile.LogCook(ctx, entry)
}

// GetShelf returns the shelf.
func (k *Kitchen) GetShelf(ctx context.Context) (docvalue.Value, error) {
	return k.store.Shelf.Get(ctx)
}

// UpdateShelf deep-merges patch into the shelf.
func (k *Kitchen) UpdateShelf(ctx context.Context, patch docvalue.Value) (docvalue.Value, error) {
	return k.store.Shelf.Update(ctx, patch)
}

// AddShelfCategory adds an empty shelf category.
func (k *Kitchen) AddShelfCategory(ctx context.Context, name string) (docvalue.Value, error) {
	name, err := categoryName(name)
	if err != nil {
		return docvalue.Value{}, err
	}
	return k.store.Shelf.AddCategory(ctx, name)
}

// RemoveShelfCategory removes a shelf category.
func (k *Kitchen) RemoveShelfCategory(ctx context.Context, name string) (docvalue.Value, error) {
	return k.store.Shelf.RemoveCategory(ctx, name)
}

// GetAppliances returns the appliance inventory.
func (k *Kitchen) GetAppliances(ctx context.Context) (docvalue.Value, error) {
	return k.store.Appliances.Get(ctx)
}

// UpdateAppliances deep-merges patch into the appliance inventory.
func (k *Kitchen) UpdateAppliances(ctx context.Context, patch docvalue.Value) (docvalue.Value, error) {
	return k.store.Appliances.Update(ctx, patch)
}

// AddApplianceCategory adds an empty appliance category.
func (k *Kitchen) AddApplianceCategory(ctx context.Context, name string) (docvalue.Value, error) {
	name, err := categoryName(name)
	if err != nil {
		return docvalue.Value{}, err
	}
	return k.store.Appliances.AddCategory(ctx, name)
}

// RemoveApplianceCategory removes an appliance category.
func (k *Kitchen) RemoveApplianceCategory(ctx context.Context, name string) (docvalue.Value, error) {
	return k.store.Appliances.RemoveCategory(ctx, name)
}

func categoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: category name is required", docstore.ErrMalformedInput)
	}
	return name, nil
}

// DecodeJSON parses a JSON document supplied as text by an untrusted
// caller. Unparseable text fails with docstore.ErrMalformedInput.
func DecodeJSON(text string) (docvalue.Value, error) {
	v, err := docvalue.Parse([]byte(text))
	if err != nil {
		return docvalue.Value{}, fmt.Errorf("%w: %w", docstore.ErrMalformedInput, err)
	}
	return v, nil
}

// DecodeObject is DecodeJSON restricted to JSON objects.
func DecodeObject(text string) (docvalue.Value, error) {
	v, err := DecodeJSON(text)
	if err != nil {
		return docvalue.Value{}, err
	}
	if !v.IsObject() {
		return docvalue.Value{}, fmt.Errorf("%w: expected a JSON object, got %s", docstore.ErrMalformedInput, v.Kind())
	}
	return v, nil
}
