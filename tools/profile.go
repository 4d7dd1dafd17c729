package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cooking-companion/server/internal/docstore"
	"github.com/cooking-companion/server/internal/kitchen"
)

// LogCookInput defines input for log_cook tool
type LogCookInput struct {
	RecipeID string `json:"recipe_id" jsonschema:"Id of the recipe that was cooked"`
	Date     string `json:"date" jsonschema:"Date cooked (YYYY-MM-DD)"`
	Result   string `json:"result,omitempty" jsonschema:"How it turned out: great, good, ok, meh or bad (optional)"`
	Notes    string `json:"notes,omitempty" jsonschema:"Free-form notes (optional)"`
}

// GetTasteProfile returns the taste profile
func (tb *Toolbox) GetTasteProfile(ctx context.Context, req *mcp.CallToolRequest, input NoInput) (*mcp.CallToolResult, any, error) {
	profile, err := tb.kitchen.GetTasteProfile(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, profile, nil
}

// UpdateTasteProfile merges a partial update into the taste profile
func (tb *Toolbox) UpdateTasteProfile(ctx context.Context, req *mcp.CallToolRequest, input UpdatesInput) (*mcp.CallToolResult, any, error) {
	patch, err := kitchen.DecodeObject(input.Updates)
	if err != nil {
		return nil, nil, err
	}
	profile, err := tb.kitchen.UpdateTasteProfile(ctx, patch)
	if err != nil {
		return nil, nil, err
	}
	return nil, profile, nil
}

// LogCook appends an entry to the cooking log
func (tb *Toolbox) LogCook(ctx context.Context, req *mcp.CallToolRequest, input LogCookInput) (*mcp.CallToolResult, StatusOutput, error) {
	err := tb.kitchen.LogCook(ctx, docstore.CookEntry{
		RecipeID: input.RecipeID,
		Date:     input.Date,
		Result:   input.Result,
		Notes:    input.Notes,
	})
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		Success: true,
		Message: fmt.Sprintf("Logged %s on %s", input.RecipeID, input.Date),
	}, nil
}

func (tb *Toolbox) profileTools() []toolSpec {
	return []toolSpec{
		newTool("get_taste_profile",
			"Get the taste profile: preferences, dietary pattern and cooking log",
			tb.GetTasteProfile),
		newTool("update_taste_profile",
			"Update the taste profile with a partial JSON object. Objects are merged, arrays are replaced",
			tb.UpdateTasteProfile),
		newTool("log_cook",
			"Record that a recipe was cooked, with an optional result and notes",
			tb.LogCook),
	}
}
