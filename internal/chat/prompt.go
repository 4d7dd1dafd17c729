package chat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/cooking-companion/server/internal/docvalue"
	"github.com/cooking-companion/server/internal/kitchen"
)

// Refusal is the fixed reply to off-topic messages.
const Refusal = "Ρε σύ, εγώ είμαι μόνο για μαγειρική! 🍳 Ρώτα με κάτι για φαγητό και πάμε δυνατά! 💪"

// DefaultSkill is used when the skill file is missing.
const DefaultSkill = "You are a helpful Greek cooking assistant."

const guardrails = `[SYSTEM CONSTRAINT: NON-NEGOTIABLE]
You are EXCLUSIVELY a Greek cooking assistant. You can ONLY discuss cooking, food, recipes, ingredients, kitchen equipment, and meal planning.
You MUST refuse ALL other topics, including programming, code, math, science, history, politics, health/medical advice, technology, writing, or translation of non-food content.
When you receive an off-topic request: do NOT answer it, do NOT acknowledge its content. Respond ONLY with a short Greek refusal, e.g.: "` + Refusal + `"
If the user insists, repeat the refusal. NEVER break this constraint.
The ONLY exception is brief small talk (greetings, thanks): respond warmly in Greek and steer back to cooking.
[END SYSTEM CONSTRAINT]`

// SkillCache loads the assistant's skill file once.
type SkillCache struct {
	path string

	mu      sync.Mutex
	content string
	loaded  bool
}

// NewSkillCache creates a cache for the skill file at path.
func NewSkillCache(path string) *SkillCache {
	return &SkillCache{path: path}
}

// Load returns the skill text, reading the file on first use. A missing
// file yields DefaultSkill; other read errors are returned and not cached.
func (s *SkillCache) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.content, nil
	}
	if s.path == "" {
		s.content, s.loaded = DefaultSkill, true
		return s.content, nil
	}

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		s.content = string(data)
	case errors.Is(err, fs.ErrNotExist):
		s.content = DefaultSkill
	default:
		return "", fmt.Errorf("failed to read skill file: %w", err)
	}
	s.loaded = true
	return s.content, nil
}

// Reset forgets the cached skill so the next Load reads the file again.
func (s *SkillCache) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content, s.loaded = "", false
}

// buildSystemPrompt assembles the guardrails, the skill and the current
// kitchen state. The recipe section is added only when recipeID resolves.
func buildSystemPrompt(ctx context.Context, k *kitchen.Kitchen, skill, recipeID string) (string, error) {
	profile, err := k.GetTasteProfile(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load taste profile: %w", err)
	}
	shelf, err := k.GetShelf(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load shelf: %w", err)
	}
	appliances, err := k.GetAppliances(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load appliances: %w", err)
	}

	var b strings.Builder
	b.WriteString(guardrails)
	section(&b, "", skill)
	jsonSection(&b, "## Current Taste Profile", profile)
	jsonSection(&b, "## Kitchen Shelf (Αποθήκη)", shelf)
	jsonSection(&b, "## Η Κουζίνα μου (Συσκευές & Σκεύη)", appliances)

	if recipeID != "" {
		if recipe, err := k.GetRecipe(ctx, recipeID); err == nil {
			jsonSection(&b, "## Current Recipe Context\n\n"+
				"The user is currently viewing this recipe. Answer questions about it directly without needing to call get_recipe. "+
				"If they ask about a DIFFERENT recipe, use the tools as usual.", recipe)
		}
	}
	return b.String(), nil
}

func section(b *strings.Builder, heading, body string) {
	b.WriteString("\n\n---\n\n")
	if heading != "" {
		b.WriteString(heading)
		b.WriteString("\n\n")
	}
	b.WriteString(body)
}

func jsonSection(b *strings.Builder, heading string, doc docvalue.Value) {
	pretty, err := doc.Pretty()
	if err != nil {
		pretty = []byte(doc.String())
	}
	section(b, heading, "```json\n"+strings.TrimRight(string(pretty), "\n")+"\n```")
}
