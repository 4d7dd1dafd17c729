package schema

import (
	"path/filepath"
	"strings"
)

// Kind names one of the persisted document kinds.
type Kind string

const (
	KindRecipe       Kind = "recipe"
	KindTasteProfile Kind = "taste-profile"
	KindShelf        Kind = "shelf"
	KindAppliances   Kind = "appliances"
)

// Kinds lists every document kind that has a schema.
func Kinds() []Kind {
	return []Kind{KindRecipe, KindTasteProfile, KindShelf, KindAppliances}
}

// FileName is the schema path of the kind inside the provider.
func (k Kind) FileName() string {
	return "schemas/" + string(k) + ".schema.json"
}

// URL is the id the compiled schema is registered under.
func (k Kind) URL() string {
	return "https://cooking-companion.local/schemas/" + string(k) + ".schema.json"
}

// Label is the human-readable name used in error messages.
func (k Kind) Label() string {
	switch k {
	case KindRecipe:
		return "Recipe"
	case KindTasteProfile:
		return "Taste profile"
	case KindShelf:
		return "Shelf"
	case KindAppliances:
		return "Appliances"
	}
	return string(k)
}

// ParseKind resolves a kind name.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// DetectKind guesses the document kind from a data file path: the
// singleton file names map to their kind and anything under a recipes
// directory is a recipe.
func DetectKind(path string) (Kind, bool) {
	base := filepath.Base(path)
	switch base {
	case "taste-profile.json":
		return KindTasteProfile, true
	case "shelf.json":
		return KindShelf, true
	case "appliances.json":
		return KindAppliances, true
	}
	dir := filepath.Base(filepath.Dir(path))
	if dir == "recipes" && strings.HasSuffix(base, ".json") {
		return KindRecipe, true
	}
	return "", false
}
