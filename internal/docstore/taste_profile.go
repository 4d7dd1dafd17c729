package docstore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/docvalue"
)

// CookEntry is one cooking_log record.
type CookEntry struct {
	RecipeID string `json:"recipe_id"`
	Date     string `json:"date"`
	Result   string `json:"result,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Value renders the entry with the stored key order, omitting empty
// optional fields.
func (e CookEntry) Value() docvalue.Value {
	members := []docvalue.Member{
		{Key: "recipe_id", Value: docvalue.StringValue(e.RecipeID)},
		{Key: "date", Value: docvalue.StringValue(e.Date)},
	}
	if e.Result != "" {
		members = append(members, docvalue.Member{Key: "result", Value: docvalue.StringValue(e.Result)})
	}
	if e.Notes != "" {
		members = append(members, docvalue.Member{Key: "notes", Value: docvalue.StringValue(e.Notes)})
	}
	return docvalue.ObjectValue(members...)
}

// TasteProfileStore holds the singleton taste profile.
type TasteProfileStore struct {
	document
}

// LogCook appends entry to cooking_log. The append never goes through the
// array-replacing merge, and the resulting profile is validated like any
// other mutation, so a malformed entry is rejected with a ValidationError.
func (s *TasteProfileStore) LogCook(ctx context.Context, entry CookEntry) (err error) {
	defer observe(string(s.kind), "log_cook", time.Now(), &err)

	_, err = s.mutate(ctx, func(current docvalue.Value) (docvalue.Value, error) {
		log, _ := current.Get("cooking_log")
		if !log.IsArray() {
			log = docvalue.ArrayValue()
		}
		return current.Set("cooking_log", log.Append(entry.Value())), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("✓ Cook logged", zap.String("recipe_id", entry.RecipeID), zap.String("date", entry.Date))
	return nil
}
