package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cooking-companion/server/internal/docvalue"
	"github.com/cooking-companion/server/internal/indexing"
	"github.com/cooking-companion/server/internal/metrics"
	"github.com/cooking-companion/server/internal/schema"
	"github.com/cooking-companion/server/internal/search"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidID reports whether id is a recipe slug. Only slugs ever reach the
// filesystem.
func ValidID(id string) bool {
	return slugPattern.MatchString(id)
}

// RecipeStore keeps one file per recipe plus the derived index.
type RecipeStore struct {
	*shared
	dir       string
	indexPath string
	searcher  *search.Searcher
}

const recipeKind = string(schema.KindRecipe)

func (r *RecipeStore) path(id string) string {
	return filepath.Join(r.dir, id+indexing.RecipeExt)
}

// Get reads the recipe with the given id.
func (r *RecipeStore) Get(ctx context.Context, id string) (doc docvalue.Value, err error) {
	defer observe(recipeKind, "get", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return docvalue.Value{}, err
	}
	if !ValidID(id) {
		return docvalue.Value{}, fmt.Errorf("%w: recipe %q", ErrNotFound, id)
	}

	path := r.path(id)
	data, err := readFile(path)
	if err != nil {
		return docvalue.Value{}, err
	}
	return parseDocument(path, data)
}

// Save validates recipe as-is and writes it to its id-derived path,
// overwriting any existing recipe with the same id, then rebuilds the
// index. created_at and updated_at are filled only when absent: both are
// kept from the stored copy when it matches, so saving the same recipe
// again changes nothing. The stored document is returned.
func (r *RecipeStore) Save(ctx context.Context, recipe docvalue.Value) (doc docvalue.Value, err error) {
	defer observe(recipeKind, "save", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return docvalue.Value{}, err
	}

	id, _ := recipe.GetString("id")
	if !recipe.IsObject() || !ValidID(id) {
		// let the schema describe what is wrong
		if err := r.validate(schema.KindRecipe, recipe); err != nil {
			return docvalue.Value{}, err
		}
		return docvalue.Value{}, &ValidationError{
			Kind:   schema.KindRecipe,
			Errors: []string{"/id must be a lowercase slug (a-z, 0-9, single hyphens)"},
		}
	}

	doc, err = r.write(ctx, id, recipe)
	if err != nil {
		return docvalue.Value{}, err
	}
	r.logger.Info("✓ Recipe saved", zap.String("id", id))

	if _, err := r.RebuildIndex(ctx); err != nil {
		return doc, err
	}
	return doc, nil
}

func (r *RecipeStore) write(ctx context.Context, id string, recipe docvalue.Value) (docvalue.Value, error) {
	unlock := r.locks.Lock(recipeLockKey(id))
	defer unlock()

	path := r.path(id)
	existing, stored := r.stored(path)
	if _, ok := recipe.Get("created_at"); !ok {
		createdAt := r.timestamp()
		if v, ok := existing.Get("created_at"); stored && ok {
			createdAt = v
		}
		recipe = recipe.Set("created_at", createdAt)
	}
	if _, ok := recipe.Get("updated_at"); !ok {
		updatedAt := r.timestamp()
		// an unchanged recipe keeps its stamp
		if v, ok := existing.Get("updated_at"); stored && ok && existing.Delete("updated_at").Equal(recipe) {
			updatedAt = v
		}
		recipe = recipe.Set("updated_at", updatedAt)
	}

	if err := r.validate(schema.KindRecipe, recipe); err != nil {
		return docvalue.Value{}, err
	}

	data, err := encodeDocument(recipe)
	if err != nil {
		return docvalue.Value{}, err
	}
	if err := ctx.Err(); err != nil {
		return docvalue.Value{}, err
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return docvalue.Value{}, ioError("create", r.dir, err)
	}
	if err := writeFile(path, data); err != nil {
		return docvalue.Value{}, err
	}
	return recipe, nil
}

// stored reads the current copy of a recipe, if there is a readable one.
func (r *RecipeStore) stored(path string) (docvalue.Value, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return docvalue.Value{}, false
	}
	existing, err := docvalue.Parse(data)
	if err != nil || !existing.IsObject() {
		return docvalue.Value{}, false
	}
	return existing, true
}

// Delete removes the recipe file and rebuilds the index. It fails with
// ErrNotFound if there is no such recipe.
func (r *RecipeStore) Delete(ctx context.Context, id string) (err error) {
	defer observe(recipeKind, "delete", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidID(id) {
		return fmt.Errorf("%w: recipe %q", ErrNotFound, id)
	}

	if err := r.remove(id); err != nil {
		return err
	}
	r.logger.Info("✓ Recipe deleted", zap.String("id", id))

	_, err = r.RebuildIndex(ctx)
	return err
}

func (r *RecipeStore) remove(id string) error {
	unlock := r.locks.Lock(recipeLockKey(id))
	defer unlock()

	path := r.path(id)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: recipe %q: %w", ErrNotFound, id, err)
		}
		return ioError("remove", path, err)
	}
	return nil
}

// List returns the index entries. A missing index is rebuilt first.
func (r *RecipeStore) List(ctx context.Context) (entries []indexing.Entry, err error) {
	defer observe(recipeKind, "list", time.Now(), &err)

	_, entries, err = r.loadIndex(ctx)
	return entries, err
}

// Search returns the index entries matching query in index order. The
// match is a case- and accent-insensitive substring test against name,
// English name, category and tags.
func (r *RecipeStore) Search(ctx context.Context, query string) (entries []indexing.Entry, err error) {
	defer observe(recipeKind, "search", time.Now(), &err)

	raw, entries, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	return r.searcher.Search(ctx, search.NewCorpus(raw, entries), query)
}

func (r *RecipeStore) loadIndex(ctx context.Context) ([]byte, []indexing.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	raw, err := readFile(r.indexPath)
	if errors.Is(err, ErrNotFound) {
		r.logger.Info("Index missing, rebuilding", zap.String("path", r.indexPath))
		if _, err := r.RebuildIndex(ctx); err != nil {
			return nil, nil, err
		}
		raw, err = readFile(r.indexPath)
	}
	if err != nil {
		return nil, nil, err
	}

	entries, err := indexing.Decode(raw)
	if err != nil {
		return nil, nil, ioError("parse", r.indexPath, err)
	}
	return raw, entries, nil
}

// RebuildIndex scans every recipe file in lexical order, projects each to
// an index entry and replaces the index document in one rename. Any
// unreadable or malformed recipe aborts the rebuild and leaves the
// previous index in place. Zero recipes produce an empty index.
func (r *RecipeStore) RebuildIndex(ctx context.Context) (entries []indexing.Entry, err error) {
	defer observe(recipeKind, "rebuild_index", time.Now(), &err)
	start := time.Now()

	unlock := r.locks.Lock(indexLockKey)
	defer unlock()

	names, err := r.recipeFiles()
	if err != nil {
		return nil, err
	}

	entries = make([]indexing.Entry, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(indexing.RebuildConcurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := r.project(name)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Warn("index rebuild aborted, keeping previous index", zap.Error(err))
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}

	data, err := indexing.Encode(entries)
	if err != nil {
		return nil, err
	}
	if err := writeFile(r.indexPath, data); err != nil {
		return nil, err
	}

	metrics.ObserveIndexRebuild(start, len(entries))
	r.logger.Debug("✓ Index rebuilt",
		zap.Int("recipes", len(entries)),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
	return entries, nil
}

// recipeFiles lists the recipe file names in lexical order. A missing
// recipes directory holds no recipes.
func (r *RecipeStore) recipeFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, ioError("list", r.dir, err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || isTempFile(name) || filepath.Ext(name) != indexing.RecipeExt {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (r *RecipeStore) project(name string) (indexing.Entry, error) {
	path := filepath.Join(r.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return indexing.Entry{}, ioError("read", path, err)
	}
	doc, err := parseDocument(path, data)
	if err != nil {
		return indexing.Entry{}, err
	}
	entry, err := indexing.Project(doc)
	if err != nil {
		return indexing.Entry{}, ioError("project", path, err)
	}
	if stem := strings.TrimSuffix(name, indexing.RecipeExt); entry.ID != stem {
		return indexing.Entry{}, ioError("project", path,
			fmt.Errorf("%w: id %q does not match file name", indexing.ErrMalformedRecipe, entry.ID))
	}
	return entry, nil
}
