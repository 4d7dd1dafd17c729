// Package chat is the built-in cooking assistant: a guarded, tool-calling
// conversation over the kitchen data.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/docstore"
	"github.com/cooking-companion/server/internal/kitchen"
	"github.com/cooking-companion/server/internal/metrics"
	"github.com/cooking-companion/server/tools"
)

// DefaultMaxSteps bounds the model calls of one turn.
const DefaultMaxSteps = 5

// ErrNotConfigured is returned when no provider is available.
var ErrNotConfigured = errors.New("chat provider is not configured")

// Message is one conversation message.
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// Request is one chat turn.
type Request struct {
	Messages []Message `json:"messages"`
	// Model overrides the configured model
	Model string `json:"model,omitempty"`
	// RecipeID adds the recipe the user is looking at to the prompt
	RecipeID string `json:"recipe_id,omitempty"`
}

// ToolCall records one tool invocation made during a turn.
type ToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
}

// Reply is the assistant's answer.
type Reply struct {
	TraceID   string     `json:"trace_id"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls"`
	Refused   bool       `json:"refused,omitempty"`
}

// Options configures an Assistant.
type Options struct {
	Provider Provider
	Kitchen  *kitchen.Kitchen
	Toolbox  *tools.Toolbox
	Skill    *SkillCache
	Logger   *zap.Logger

	Model          string
	GuardrailModel string
	MaxSteps       int
	// Timeout bounds a whole turn; zero means no limit
	Timeout time.Duration
}

// Assistant runs chat turns.
type Assistant struct {
	provider       Provider
	kitchen        *kitchen.Kitchen
	toolbox        *tools.Toolbox
	skill          *SkillCache
	logger         *zap.Logger
	model          string
	guardrailModel string
	maxSteps       int
	timeout        time.Duration
	tools          []openai.Tool
}

// New creates an Assistant.
func New(opts Options) (*Assistant, error) {
	if opts.Kitchen == nil || opts.Toolbox == nil {
		return nil, fmt.Errorf("chat assistant needs a kitchen and a toolbox")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Skill == nil {
		opts.Skill = NewSkillCache("")
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.GuardrailModel == "" {
		opts.GuardrailModel = opts.Model
	}

	a := &Assistant{
		provider:       opts.Provider,
		kitchen:        opts.Kitchen,
		toolbox:        opts.Toolbox,
		skill:          opts.Skill,
		logger:         opts.Logger,
		model:          opts.Model,
		guardrailModel: opts.GuardrailModel,
		maxSteps:       opts.MaxSteps,
		timeout:        opts.Timeout,
	}
	for _, def := range opts.Toolbox.Definitions() {
		a.tools = append(a.tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return a, nil
}

// Chat runs one turn: the last user message is screened by the guardrail
// classifier, then the model answers with up to MaxSteps calls, running
// the tools it asks for in between.
func (a *Assistant) Chat(ctx context.Context, req Request) (reply Reply, err error) {
	reply = Reply{TraceID: uuid.NewString(), ToolCalls: []ToolCall{}}
	logger := a.logger.With(zap.String("trace_id", reply.TraceID))
	defer func() {
		metrics.ObserveChatTurn(turnOutcome(reply, err))
	}()

	question, err := validate(req)
	if err != nil {
		return reply, err
	}
	if a.provider == nil {
		return reply, ErrNotConfigured
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	onTopic, err := classify(ctx, a.provider, a.guardrailModel, question)
	if err != nil {
		if ctx.Err() != nil {
			return reply, ctx.Err()
		}
		// the system prompt still carries the constraint
		logger.Warn("guardrail unavailable, continuing", zap.Error(err))
		onTopic = true
	}
	if !onTopic {
		logger.Info("Off-topic message refused")
		reply.Content, reply.Refused = Refusal, true
		return reply, nil
	}

	skill, err := a.skill.Load()
	if err != nil {
		return reply, err
	}
	system, err := buildSystemPrompt(ctx, a.kitchen, skill, req.RecipeID)
	if err != nil {
		return reply, err
	}

	model := a.model
	if req.Model != "" {
		model = req.Model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	for step := 1; step <= a.maxSteps; step++ {
		resp, err := a.provider.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    model,
			Messages: messages,
			Tools:    a.tools,
		})
		if err != nil {
			return reply, fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return reply, fmt.Errorf("chat completion returned no choices")
		}

		msg := resp.Choices[0].Message
		reply.Content = msg.Content
		if len(msg.ToolCalls) == 0 {
			logger.Debug("✓ Chat turn complete", zap.Int("steps", step), zap.Int("tool_calls", len(reply.ToolCalls)))
			return reply, nil
		}
		if step == a.maxSteps {
			logger.Warn("step limit reached with pending tool calls", zap.Int("steps", step))
			break
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			record, content := a.runTool(ctx, call)
			reply.ToolCalls = append(reply.ToolCalls, record)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    content,
				ToolCallID: call.ID,
			})
			logger.Debug("Tool called", zap.String("tool", record.Name), zap.Bool("success", record.Success))
		}
	}
	return reply, nil
}

// runTool executes one call and renders the message content the model
// sees. Failures become {"success": false, "error": "..."}.
func (a *Assistant) runTool(ctx context.Context, call openai.ToolCall) (ToolCall, string) {
	record := ToolCall{Name: call.Function.Name}
	args := json.RawMessage(call.Function.Arguments)
	if json.Valid(args) {
		record.Arguments = args
	}

	out, err := a.toolbox.Call(ctx, call.Function.Name, args)
	if err == nil {
		var data []byte
		if data, err = json.Marshal(out); err == nil {
			record.Success = true
			metrics.ObserveToolCall(record.Name, metrics.OutcomeOK)
			return record, string(data)
		}
	}

	record.Error = err.Error()
	metrics.ObserveToolCall(record.Name, docstore.Outcome(err))
	data, _ := json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{Success: false, Error: record.Error})
	return record, string(data)
}

// validate checks the request and returns the last user message.
func validate(req Request) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("%w: messages array is required and must not be empty", docstore.ErrMalformedInput)
	}
	question := ""
	for i, m := range req.Messages {
		switch m.Role {
		case openai.ChatMessageRoleUser:
			question = m.Content
		case openai.ChatMessageRoleAssistant:
		default:
			return "", fmt.Errorf("%w: message %d has unsupported role %q", docstore.ErrMalformedInput, i, m.Role)
		}
	}
	if question == "" {
		return "", fmt.Errorf("%w: no user message to answer", docstore.ErrMalformedInput)
	}
	return question, nil
}

func turnOutcome(reply Reply, err error) string {
	switch {
	case err != nil:
		return docstore.Outcome(err)
	case reply.Refused:
		return metrics.OutcomeRefused
	default:
		return metrics.OutcomeOK
	}
}
