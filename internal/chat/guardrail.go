package chat

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const classifierPrompt = `You are a topic classifier for a Greek cooking assistant.
Decide whether the user's message is about cooking, food, recipes, ingredients, kitchen equipment, meal planning, or the user's own taste profile, pantry or appliances.
Greetings, thanks and brief small talk count as on-topic.
Answer with exactly one word: ON_TOPIC or OFF_TOPIC.`

// classify asks the model whether message is on topic.
func classify(ctx context.Context, p Provider, model, message string) (bool, error) {
	resp, err := p.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		MaxTokens:   5,
		Temperature: 0,
	})
	if err != nil {
		return false, fmt.Errorf("guardrail classification failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return false, fmt.Errorf("guardrail classification returned no choices")
	}

	verdict := strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content))
	switch {
	case strings.Contains(verdict, "OFF_TOPIC"):
		return false, nil
	case strings.Contains(verdict, "ON_TOPIC"):
		return true, nil
	default:
		return false, fmt.Errorf("unexpected guardrail verdict %q", verdict)
	}
}
