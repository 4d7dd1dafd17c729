package docstore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/docvalue"
)

// CategoryStore is a singleton document organised as named categories of
// items: the shelf (ingredients) and the appliance inventory (appliances).
// Category names are unique within the document.
type CategoryStore struct {
	document
	// itemsKey names the item array inside each category
	itemsKey string
}

// AddCategory appends an empty category. It fails with ErrAlreadyExists
// when the name is taken; the document is left untouched.
func (s *CategoryStore) AddCategory(ctx context.Context, name string) (doc docvalue.Value, err error) {
	defer observe(string(s.kind), "add_category", time.Now(), &err)

	doc, err = s.mutate(ctx, func(current docvalue.Value) (docvalue.Value, error) {
		categories := categoriesOf(current)
		if findCategory(categories, name) >= 0 {
			return docvalue.Value{}, fmt.Errorf("%w: category %q", ErrAlreadyExists, name)
		}
		category := docvalue.ObjectValue(
			docvalue.Member{Key: "name", Value: docvalue.StringValue(name)},
			docvalue.Member{Key: s.itemsKey, Value: docvalue.ArrayValue()},
		)
		return current.Set("categories", categories.Append(category)), nil
	})
	if err != nil {
		return docvalue.Value{}, err
	}

	s.logger.Info("✓ Category added", zap.String("kind", string(s.kind)), zap.String("name", name))
	return doc, nil
}

// RemoveCategory deletes the category with the given name. It fails with
// ErrNotFound when there is none.
func (s *CategoryStore) RemoveCategory(ctx context.Context, name string) (doc docvalue.Value, err error) {
	defer observe(string(s.kind), "remove_category", time.Now(), &err)

	doc, err = s.mutate(ctx, func(current docvalue.Value) (docvalue.Value, error) {
		categories := categoriesOf(current)
		idx := findCategory(categories, name)
		if idx < 0 {
			return docvalue.Value{}, fmt.Errorf("%w: category %q", ErrNotFound, name)
		}
		items := categories.Items()
		kept := append(items[:idx:idx], items[idx+1:]...)
		return current.Set("categories", docvalue.ArrayValue(kept...)), nil
	})
	if err != nil {
		return docvalue.Value{}, err
	}

	s.logger.Info("✓ Category removed", zap.String("kind", string(s.kind)), zap.String("name", name))
	return doc, nil
}

func categoriesOf(doc docvalue.Value) docvalue.Value {
	categories, _ := doc.Get("categories")
	if !categories.IsArray() {
		return docvalue.ArrayValue()
	}
	return categories
}

func findCategory(categories docvalue.Value, name string) int {
	for i, c := range categories.Items() {
		if n, ok := c.GetString("name"); ok && n == name {
			return i
		}
	}
	return -1
}
