package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/indexing"
	"github.com/cooking-companion/server/internal/kitchen"
)

// RecipeListOutput defines output for list_recipes and search_recipes
type RecipeListOutput struct {
	Recipes []indexing.Entry `json:"recipes"`
	Count   int              `json:"count"`
}

// RecipeIDInput identifies a recipe
type RecipeIDInput struct {
	ID string `json:"id" jsonschema:"Recipe id (lowercase slug, e.g. fakes)"`
}

// SearchRecipesInput defines input for search_recipes tool
type SearchRecipesInput struct {
	Query string `json:"query" jsonschema:"Text to look for in recipe names, English names, categories and tags (accents and case are ignored)"`
}

// SaveRecipeInput defines input for save_recipe tool
type SaveRecipeInput struct {
	Recipe string `json:"recipe" jsonschema:"Complete recipe as a JSON object string"`
}

// ListRecipes returns the recipe index
func (tb *Toolbox) ListRecipes(ctx context.Context, req *mcp.CallToolRequest, input NoInput) (*mcp.CallToolResult, RecipeListOutput, error) {
	entries, err := tb.kitchen.ListRecipes(ctx)
	if err != nil {
		return nil, RecipeListOutput{}, fmt.Errorf("failed to list recipes: %w", err)
	}
	return nil, recipeList(entries), nil
}

// SearchRecipes filters the recipe index
func (tb *Toolbox) SearchRecipes(ctx context.Context, req *mcp.CallToolRequest, input SearchRecipesInput) (*mcp.CallToolResult, RecipeListOutput, error) {
	entries, err := tb.kitchen.SearchRecipes(ctx, input.Query)
	if err != nil {
		return nil, RecipeListOutput{}, fmt.Errorf("failed to search recipes: %w", err)
	}
	return nil, recipeList(entries), nil
}

// GetRecipe returns one full recipe
func (tb *Toolbox) GetRecipe(ctx context.Context, req *mcp.CallToolRequest, input RecipeIDInput) (*mcp.CallToolResult, any, error) {
	recipe, err := tb.kitchen.GetRecipe(ctx, input.ID)
	if err != nil {
		return nil, nil, err
	}
	return nil, recipe, nil
}

// SaveRecipe creates or replaces a recipe
func (tb *Toolbox) SaveRecipe(ctx context.Context, req *mcp.CallToolRequest, input SaveRecipeInput) (*mcp.CallToolResult, StatusOutput, error) {
	recipe, err := kitchen.DecodeJSON(input.Recipe)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	saved, err := tb.kitchen.SaveEditedRecipe(ctx, recipe)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	id, _ := saved.GetString("id")
	tb.logger.Debug("Tool saved recipe", zap.String("id", id))
	return nil, StatusOutput{
		Success: true,
		Message: fmt.Sprintf("Recipe %q saved", id),
	}, nil
}

// DeleteRecipe removes a recipe
func (tb *Toolbox) DeleteRecipe(ctx context.Context, req *mcp.CallToolRequest, input RecipeIDInput) (*mcp.CallToolResult, StatusOutput, error) {
	if err := tb.kitchen.DeleteRecipe(ctx, input.ID); err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		Success: true,
		Message: fmt.Sprintf("Recipe %q deleted", input.ID),
	}, nil
}

func recipeList(entries []indexing.Entry) RecipeListOutput {
	if entries == nil {
		entries = []indexing.Entry{}
	}
	return RecipeListOutput{Recipes: entries, Count: len(entries)}
}

func (tb *Toolbox) recipeTools() []toolSpec {
	return []toolSpec{
		newTool("list_recipes",
			"List every recipe in the collection with id, name, English name, category and tags",
			tb.ListRecipes),
		newTool("get_recipe",
			"Get the full recipe (ingredients, steps, times, notes) by id",
			tb.GetRecipe),
		newTool("search_recipes",
			"Search recipes by name, English name, category or tag. Matching ignores case and Greek accents",
			tb.SearchRecipes),
		newTool("save_recipe",
			"Create or replace a recipe. The recipe must be complete and valid; updated_at is set automatically",
			tb.SaveRecipe),
		newTool("delete_recipe",
			"Delete a recipe by id",
			tb.DeleteRecipe),
	}
}
