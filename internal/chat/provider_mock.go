package chat

import (
	"context"
	"fmt"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// MockProvider is a scripted Provider for testing. Each call pops the next
// queued response; requests are recorded.
type MockProvider struct {
	mu        sync.Mutex
	responses []mockResponse
	requests  []openai.ChatCompletionRequest
}

type mockResponse struct {
	resp openai.ChatCompletionResponse
	err  error
}

// NewMockProvider creates an empty mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Reply queues an assistant message with text content.
func (m *MockProvider) Reply(content string) *MockProvider {
	return m.Message(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content})
}

// CallTools queues an assistant message requesting tool calls. Each pair
// is a tool name and its JSON arguments.
func (m *MockProvider) CallTools(calls ...[2]string) *MockProvider {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
	for i, call := range calls {
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:       fmt.Sprintf("call_%d_%d", len(m.responses), i),
			Type:     openai.ToolTypeFunction,
			Function: openai.FunctionCall{Name: call[0], Arguments: call[1]},
		})
	}
	return m.Message(msg)
}

// Message queues an arbitrary assistant message.
func (m *MockProvider) Message(msg openai.ChatCompletionMessage) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: msg}},
	}})
	return m
}

// Fail queues an error.
func (m *MockProvider) Fail(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{err: err})
	return m
}

// CreateChatCompletion implements Provider.
func (m *MockProvider) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if err := ctx.Err(); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if len(m.responses) == 0 {
		return openai.ChatCompletionResponse{}, fmt.Errorf("mock provider: no response queued for call %d", len(m.requests))
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	return next.resp, next.err
}

// Requests returns the recorded requests.
func (m *MockProvider) Requests() []openai.ChatCompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), m.requests...)
}
