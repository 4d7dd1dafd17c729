package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cooking-companion/server/internal/docvalue"
	"github.com/cooking-companion/server/internal/kitchen"
)

// inventory is the shelf or the appliance inventory as seen by the tools.
type inventory struct {
	get       func(ctx context.Context) (docvalue.Value, error)
	update    func(ctx context.Context, patch docvalue.Value) (docvalue.Value, error)
	addCat    func(ctx context.Context, name string) (docvalue.Value, error)
	removeCat func(ctx context.Context, name string) (docvalue.Value, error)
}

func (inv inventory) Get(ctx context.Context, req *mcp.CallToolRequest, input NoInput) (*mcp.CallToolResult, any, error) {
	doc, err := inv.get(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, doc, nil
}

func (inv inventory) Update(ctx context.Context, req *mcp.CallToolRequest, input UpdatesInput) (*mcp.CallToolResult, any, error) {
	patch, err := kitchen.DecodeObject(input.Updates)
	if err != nil {
		return nil, nil, err
	}
	doc, err := inv.update(ctx, patch)
	if err != nil {
		return nil, nil, err
	}
	return nil, doc, nil
}

func (inv inventory) AddCategory(ctx context.Context, req *mcp.CallToolRequest, input NameInput) (*mcp.CallToolResult, any, error) {
	doc, err := inv.addCat(ctx, input.Name)
	if err != nil {
		return nil, nil, err
	}
	return nil, doc, nil
}

func (inv inventory) RemoveCategory(ctx context.Context, req *mcp.CallToolRequest, input NameInput) (*mcp.CallToolResult, any, error) {
	doc, err := inv.removeCat(ctx, input.Name)
	if err != nil {
		return nil, nil, err
	}
	return nil, doc, nil
}

func (tb *Toolbox) inventoryTools() []toolSpec {
	k := tb.kitchen
	shelf := inventory{
		get:       k.GetShelf,
		update:    k.UpdateShelf,
		addCat:    k.AddShelfCategory,
		removeCat: k.RemoveShelfCategory,
	}
	appliances := inventory{
		get:       k.GetAppliances,
		update:    k.UpdateAppliances,
		addCat:    k.AddApplianceCategory,
		removeCat: k.RemoveApplianceCategory,
	}

	return []toolSpec{
		newTool("get_shelf",
			"Get the pantry shelf: spices and categorized ingredients on hand",
			shelf.Get),
		newTool("update_shelf",
			"Update the shelf with a partial JSON object. Arrays such as spices are replaced, not appended",
			shelf.Update),
		newTool("add_shelf_category",
			"Add an empty ingredient category to the shelf",
			shelf.AddCategory),
		newTool("remove_shelf_category",
			"Remove an ingredient category (and its ingredients) from the shelf",
			shelf.RemoveCategory),
		newTool("get_appliances",
			"Get the kitchen appliance inventory by category",
			appliances.Get),
		newTool("update_appliances",
			"Update the appliance inventory with a partial JSON object. Arrays are replaced",
			appliances.Update),
		newTool("add_appliance_category",
			"Add an empty appliance category",
			appliances.AddCategory),
		newTool("remove_appliance_category",
			"Remove an appliance category (and its appliances)",
			appliances.RemoveCategory),
	}
}
