package indexing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cooking-companion/server/internal/docvalue"
)

// ErrMalformedRecipe is returned when a recipe lacks the fields the index
// projects.
var ErrMalformedRecipe = errors.New("malformed recipe")

// Project extracts the index entry of a recipe document.
func Project(recipe docvalue.Value) (Entry, error) {
	if !recipe.IsObject() {
		return Entry{}, fmt.Errorf("%w: expected object, got %s", ErrMalformedRecipe, recipe.Kind())
	}

	var entry Entry
	var ok bool
	if entry.ID, ok = recipe.GetString("id"); !ok || entry.ID == "" {
		return Entry{}, fmt.Errorf("%w: missing id", ErrMalformedRecipe)
	}
	if entry.Name, ok = recipe.GetString("name"); !ok {
		return Entry{}, fmt.Errorf("%w: %s: missing name", ErrMalformedRecipe, entry.ID)
	}
	if entry.Category, ok = recipe.GetString("category"); !ok {
		return Entry{}, fmt.Errorf("%w: %s: missing category", ErrMalformedRecipe, entry.ID)
	}

	if v, present := recipe.Get("name_en"); present && !v.IsNull() {
		if entry.NameEn, ok = v.Str(); !ok {
			return Entry{}, fmt.Errorf("%w: %s: name_en is %s", ErrMalformedRecipe, entry.ID, v.Kind())
		}
	}

	if v, present := recipe.Get("tags"); present && !v.IsNull() {
		if !v.IsArray() {
			return Entry{}, fmt.Errorf("%w: %s: tags is %s", ErrMalformedRecipe, entry.ID, v.Kind())
		}
		for _, item := range v.Items() {
			tag, ok := item.Str()
			if !ok {
				return Entry{}, fmt.Errorf("%w: %s: tag is %s", ErrMalformedRecipe, entry.ID, item.Kind())
			}
			entry.Tags = append(entry.Tags, tag)
		}
	}

	return entry, nil
}

// Encode renders the index document: a pretty-printed array with a
// trailing newline. A nil slice encodes as [].
func Encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode index: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses an index document.
func Decode(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
