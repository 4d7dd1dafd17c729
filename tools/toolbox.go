// Package tools exposes the kitchen operations as tools: over MCP for
// external assistants, and as a catalog the built-in chat assistant can
// call directly.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/docstore"
	"github.com/cooking-companion/server/internal/kitchen"
)

// Toolbox binds the tool handlers to a kitchen.
type Toolbox struct {
	kitchen *kitchen.Kitchen
	logger  *zap.Logger
	specs   []toolSpec
}

// Definition describes one tool for a function-calling model.
type Definition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// toolSpec is one tool, registrable on an MCP server and callable with raw
// JSON arguments.
type toolSpec struct {
	def      Definition
	register func(server *mcp.Server)
	call     func(ctx context.Context, args json.RawMessage) (any, error)
}

// NewToolbox creates the full tool set over k.
func NewToolbox(k *kitchen.Kitchen, logger *zap.Logger) (*Toolbox, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tb := &Toolbox{kitchen: k, logger: logger}

	groups := [][]toolSpec{tb.recipeTools(), tb.profileTools(), tb.inventoryTools()}
	for _, group := range groups {
		for _, spec := range group {
			if spec.def.Parameters == nil {
				return nil, fmt.Errorf("tool %s has no input schema", spec.def.Name)
			}
			tb.specs = append(tb.specs, spec)
		}
	}
	return tb, nil
}

// Register adds every tool to server.
func (tb *Toolbox) Register(server *mcp.Server) int {
	for _, spec := range tb.specs {
		spec.register(server)
	}
	tb.logger.Info("✓ All tools registered", zap.Int("tools", len(tb.specs)))
	return len(tb.specs)
}

// Definitions lists the tools in registration order.
func (tb *Toolbox) Definitions() []Definition {
	defs := make([]Definition, 0, len(tb.specs))
	for _, spec := range tb.specs {
		defs = append(defs, spec.def)
	}
	return defs
}

// Call runs the named tool with JSON-encoded arguments and returns its
// output. Unknown tools and undecodable arguments fail with
// docstore.ErrMalformedInput.
func (tb *Toolbox) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	for _, spec := range tb.specs {
		if spec.def.Name == name {
			return spec.call(ctx, args)
		}
	}
	return nil, fmt.Errorf("%w: unknown tool %q", docstore.ErrMalformedInput, name)
}

// newTool pairs a typed MCP handler with its JSON-argument adapter.
func newTool[In, Out any](name, description string, h mcp.ToolHandlerFor[In, Out]) toolSpec {
	tool := &mcp.Tool{Name: name, Description: description}
	params, err := jsonschema.For[In](nil)
	if err != nil {
		// input structs are plain string fields; this is a programming error
		panic(fmt.Sprintf("tool %s: %v", name, err))
	}

	return toolSpec{
		def: Definition{Name: name, Description: description, Parameters: params},
		register: func(server *mcp.Server) {
			mcp.AddTool(server, tool, h)
		},
		call: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in In
			if len(args) > 0 && string(args) != "null" {
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, fmt.Errorf("%w: arguments for %s: %w", docstore.ErrMalformedInput, name, err)
				}
			}
			_, out, err := h(ctx, &mcp.CallToolRequest{}, in)
			if err != nil {
				return nil, err
			}
			return out, nil
		},
	}
}

// StatusOutput reports the outcome of an operation without a document
// result.
type StatusOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NoInput is the input of tools without arguments.
type NoInput struct{}

// NameInput names a category.
type NameInput struct {
	Name string `json:"name" jsonschema:"Category name"`
}

// UpdatesInput carries a partial document update.
type UpdatesInput struct {
	Updates string `json:"updates" jsonschema:"Partial update as a JSON object string; nested objects are merged and arrays replace the stored ones"`
}
