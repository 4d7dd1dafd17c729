package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cooking-companion/server/internal/docstore"
	"github.com/cooking-companion/server/internal/kitchen"
	"github.com/cooking-companion/server/internal/kitchen/kitchentest"
)

var allTools = []string{
	"list_recipes", "get_recipe", "search_recipes", "save_recipe", "delete_recipe",
	"get_taste_profile", "update_taste_profile", "log_cook",
	"get_shelf", "update_shelf", "add_shelf_category", "remove_shelf_category",
	"get_appliances", "update_appliances", "add_appliance_category", "remove_appliance_category",
}

func newTestToolbox(t *testing.T) (*Toolbox, *kitchen.Kitchen) {
	t.Helper()
	k := kitchentest.New(t)
	tb, err := NewToolbox(k, nil)
	require.NoError(t, err)
	return tb, k
}

// connect serves tb over in-memory transports and returns a client session.
func connect(t *testing.T, tb *Toolbox) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "cooking-companion", Version: "test"}, nil)
	assert.Equal(t, len(allTools), tb.Register(server))

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
		serverSession.Wait()
	})
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) *mcp.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func TestToolbox_Definitions(t *testing.T) {
	tb, _ := newTestToolbox(t)

	defs := tb.Definitions()
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Description, def.Name)
		require.NotNil(t, def.Parameters, def.Name)
		assert.Equal(t, "object", def.Parameters.Type, def.Name)
	}
	assert.Equal(t, allTools, names)

	for _, def := range defs {
		if def.Name == "log_cook" {
			assert.ElementsMatch(t, []string{"recipe_id", "date"}, def.Parameters.Required)
			assert.Contains(t, def.Parameters.Properties, "notes")
		}
	}
}

func TestMCP_ListTools(t *testing.T) {
	tb, _ := newTestToolbox(t)
	session := connect(t, tb)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, allTools, names)
}

func TestMCP_RecipeLifecycle(t *testing.T) {
	tb, _ := newTestToolbox(t)
	session := connect(t, tb)

	recipe := kitchentest.Fakes().String()
	res := callTool(t, session, "save_recipe", map[string]any{"recipe": recipe})
	require.False(t, res.IsError, resultText(t, res))

	res = callTool(t, session, "list_recipes", map[string]any{})
	require.False(t, res.IsError)
	var list RecipeListOutput
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "fakes", list.Recipes[0].ID)

	res = callTool(t, session, "search_recipes", map[string]any{"query": "ΦΕΤΑ"})
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &list))
	assert.Equal(t, 1, list.Count)

	res = callTool(t, session, "get_recipe", map[string]any{"id": "fakes"})
	require.False(t, res.IsError)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "Φακές", got["name"])
	assert.Equal(t, kitchentest.Stamp, got["updated_at"])

	res = callTool(t, session, "delete_recipe", map[string]any{"id": "fakes"})
	require.False(t, res.IsError)

	res = callTool(t, session, "get_recipe", map[string]any{"id": "fakes"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")
}

func TestMCP_MalformedJSONIsToolError(t *testing.T) {
	tb, _ := newTestToolbox(t)
	session := connect(t, tb)

	tests := []struct {
		tool string
		args map[string]any
	}{
		{tool: "save_recipe", args: map[string]any{"recipe": "{not json"}},
		{tool: "update_taste_profile", args: map[string]any{"updates": "spicy please"}},
		{tool: "update_shelf", args: map[string]any{"updates": `["ρίγανη"]`}},
		{tool: "update_appliances", args: map[string]any{"updates": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			res := callTool(t, session, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), "malformed input")
		})
	}
}

func TestMCP_ValidationErrorsAreReported(t *testing.T) {
	tb, k := newTestToolbox(t)
	session := connect(t, tb)

	res := callTool(t, session, "update_shelf", map[string]any{"updates": `{"spices": "ρίγανη"}`})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Shelf validation failed")
	assert.Contains(t, resultText(t, res), "/spices")

	shelf, err := k.GetShelf(context.Background())
	require.NoError(t, err)
	spices, _ := shelf.Get("spices")
	assert.Equal(t, "[]", spices.String())
}

func TestMCP_Inventory(t *testing.T) {
	tb, k := newTestToolbox(t)
	session := connect(t, tb)

	res := callTool(t, session, "add_shelf_category", map[string]any{"name": "Όσπρια"})
	require.False(t, res.IsError, resultText(t, res))

	res = callTool(t, session, "add_shelf_category", map[string]any{"name": "Όσπρια"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "already exists")

	res = callTool(t, session, "add_appliance_category", map[string]any{"name": "Φούρνοι"})
	require.False(t, res.IsError)
	res = callTool(t, session, "remove_appliance_category", map[string]any{"name": "Φούρνοι"})
	require.False(t, res.IsError)
	res = callTool(t, session, "remove_appliance_category", map[string]any{"name": "Φούρνοι"})
	assert.True(t, res.IsError)

	res = callTool(t, session, "update_shelf", map[string]any{"updates": `{"spices": ["κύμινο"]}`})
	require.False(t, res.IsError, resultText(t, res))

	shelf, err := k.GetShelf(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `["κύμινο"]`, mustField(t, shelf.String(), "spices"))
}

func TestMCP_LogCook(t *testing.T) {
	tb, k := newTestToolbox(t)
	session := connect(t, tb)

	res := callTool(t, session, "log_cook", map[string]any{"recipe_id": "fakes", "date": "2024-05-01", "result": "good"})
	require.False(t, res.IsError, resultText(t, res))

	res = callTool(t, session, "log_cook", map[string]any{"recipe_id": "fakes", "date": "yesterday"})
	assert.True(t, res.IsError)

	profile, err := k.GetTasteProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `[{"recipe_id":"fakes","date":"2024-05-01","result":"good"}]`, mustField(t, profile.String(), "cooking_log"))
}

func TestToolbox_Call(t *testing.T) {
	tb, k := newTestToolbox(t)
	ctx := context.Background()
	kitchentest.MustSave(t, k, kitchentest.Fakes())

	out, err := tb.Call(ctx, "search_recipes", json.RawMessage(`{"query": "οσπρια"}`))
	require.NoError(t, err)
	list, ok := out.(RecipeListOutput)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, 1, list.Count)

	out, err = tb.Call(ctx, "get_shelf", nil)
	require.NoError(t, err)
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"spices":[]`)

	_, err = tb.Call(ctx, "bake_cake", nil)
	assert.ErrorIs(t, err, docstore.ErrMalformedInput)

	_, err = tb.Call(ctx, "get_recipe", json.RawMessage(`{"id": 7`))
	assert.ErrorIs(t, err, docstore.ErrMalformedInput)

	_, err = tb.Call(ctx, "get_recipe", json.RawMessage(`{"id": "missing"}`))
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func mustField(t *testing.T, doc, key string) string {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(doc), &fields))
	raw, ok := fields[key]
	require.True(t, ok, "missing %q", key)
	return string(raw)
}
