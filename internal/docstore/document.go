package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/docvalue"
	"github.com/cooking-companion/server/internal/schema"
)

// document is a singleton JSON document with merge-based updates.
type document struct {
	*shared
	kind schema.Kind
	path string
}

// Get reads the current document.
func (d *document) Get(ctx context.Context) (doc docvalue.Value, err error) {
	defer observe(string(d.kind), "get", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return docvalue.Value{}, err
	}
	return d.read()
}

// Update deep-merges patch into the document, stamps updated_at, validates
// the result and persists it. Arrays in patch replace the stored arrays.
// Nothing is written when validation fails.
func (d *document) Update(ctx context.Context, patch docvalue.Value) (doc docvalue.Value, err error) {
	defer observe(string(d.kind), "update", time.Now(), &err)

	if !patch.IsObject() {
		return docvalue.Value{}, fmt.Errorf("%w: %s update must be an object, got %s", ErrMalformedInput, d.kind, patch.Kind())
	}
	return d.mutate(ctx, func(current docvalue.Value) (docvalue.Value, error) {
		return docvalue.Merge(current, patch), nil
	})
}

func (d *document) read() (docvalue.Value, error) {
	data, err := readFile(d.path)
	if err != nil {
		return docvalue.Value{}, err
	}
	return parseDocument(d.path, data)
}

// mutate runs read-change-stamp-validate-write under the document lock.
func (d *document) mutate(ctx context.Context, change func(current docvalue.Value) (docvalue.Value, error)) (docvalue.Value, error) {
	if err := ctx.Err(); err != nil {
		return docvalue.Value{}, err
	}

	unlock := d.locks.Lock(string(d.kind))
	defer unlock()

	current, err := d.read()
	if err != nil {
		return docvalue.Value{}, err
	}

	next, err := change(current)
	if err != nil {
		return docvalue.Value{}, err
	}
	next = next.Set("updated_at", d.timestamp())

	if err := d.validate(d.kind, next); err != nil {
		return docvalue.Value{}, err
	}

	if err := ctx.Err(); err != nil {
		return docvalue.Value{}, err
	}
	if err := d.write(next); err != nil {
		return docvalue.Value{}, err
	}

	d.logger.Debug("✓ Document updated", zap.String("kind", string(d.kind)))
	return next, nil
}

func (d *document) write(doc docvalue.Value) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	return writeFile(d.path, data)
}

// seed writes doc (stamped and validated) if the file does not exist yet.
func (d *document) seed(doc docvalue.Value) (bool, error) {
	unlock := d.locks.Lock(string(d.kind))
	defer unlock()

	if _, err := os.Stat(d.path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, ioError("stat", d.path, err)
	}

	doc = doc.Set("updated_at", d.timestamp())
	if err := d.validate(d.kind, doc); err != nil {
		return false, fmt.Errorf("seed %s: %w", d.kind, err)
	}
	if err := d.write(doc); err != nil {
		return false, err
	}
	return true, nil
}
