// Package docstore persists the recipe collection, the taste profile, the
// shelf and the appliance inventory as pretty-printed JSON files under one
// data directory.
//
// Every mutation follows the same pipeline: read, merge (for partial
// updates), stamp updated_at, validate, write atomically. The whole
// sequence runs under a per-document lock so concurrent requests inside
// one process never lose each other's changes. Recipe writes finish by
// rebuilding the derived index.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/docvalue"
	"github.com/cooking-companion/server/internal/indexing"
	"github.com/cooking-companion/server/internal/metrics"
	"github.com/cooking-companion/server/internal/schema"
	"github.com/cooking-companion/server/internal/search"
)

// Singleton document files, relative to the data directory.
const (
	TasteProfileFile = "taste-profile.json"
	ShelfFile        = "shelf.json"
	AppliancesFile   = "appliances.json"
)

// timestampLayout matches the millisecond UTC timestamps of existing data.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Options configures a Store. Zero values get working defaults.
type Options struct {
	Logger    *zap.Logger
	Validator *schema.Validator
	Searcher  *search.Searcher
	// Now is the clock used for updated_at stamps
	Now func() time.Time
}

// Store bundles the four document stores over one data directory.
type Store struct {
	dir string

	Recipes      *RecipeStore
	TasteProfile *TasteProfileStore
	Shelf        *CategoryStore
	Appliances   *CategoryStore

	shared *shared
}

// shared holds the collaborators every store uses.
type shared struct {
	logger    *zap.Logger
	validator *schema.Validator
	locks     *keyedMutex
	now       func() time.Time
}

func (s *shared) timestamp() docvalue.Value {
	return docvalue.StringValue(s.now().UTC().Format(timestampLayout))
}

// validate runs the schema of kind and converts a failure into a
// *ValidationError.
func (s *shared) validate(kind schema.Kind, doc docvalue.Value) error {
	result, err := s.validator.Validate(kind, doc)
	if err != nil {
		return err
	}
	if !result.Valid {
		return &ValidationError{Kind: kind, Errors: result.Errors}
	}
	return nil
}

// Open creates a Store rooted at dataDir. It does not touch the
// filesystem; call Init to seed a fresh directory.
func Open(dataDir string, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Validator == nil {
		opts.Validator = schema.NewEmbeddedValidator()
	}
	if opts.Searcher == nil {
		opts.Searcher = search.NewSearcher(opts.Logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sh := &shared{
		logger:    opts.Logger,
		validator: opts.Validator,
		locks:     newKeyedMutex(),
		now:       opts.Now,
	}

	s := &Store{dir: dataDir, shared: sh}
	s.Recipes = &RecipeStore{
		shared:    sh,
		dir:       filepath.Join(dataDir, indexing.RecipesDir),
		indexPath: filepath.Join(dataDir, indexing.IndexFile),
		searcher:  opts.Searcher,
	}
	s.TasteProfile = &TasteProfileStore{
		document: document{shared: sh, kind: schema.KindTasteProfile, path: filepath.Join(dataDir, TasteProfileFile)},
	}
	s.Shelf = &CategoryStore{
		document: document{shared: sh, kind: schema.KindShelf, path: filepath.Join(dataDir, ShelfFile)},
		itemsKey: "ingredients",
	}
	s.Appliances = &CategoryStore{
		document: document{shared: sh, kind: schema.KindAppliances, path: filepath.Join(dataDir, AppliancesFile)},
		itemsKey: "appliances",
	}
	return s
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// RecipesDir returns the directory holding the recipe files.
func (s *Store) RecipesDir() string {
	return s.Recipes.dir
}

// Timestamp returns the current time in the stored updated_at format.
func (s *Store) Timestamp() docvalue.Value {
	return s.shared.timestamp()
}

// Validator returns the validator shared by the stores.
func (s *Store) Validator() *schema.Validator {
	return s.shared.validator
}

// Init prepares a data directory for use: it creates the recipes
// directory, seeds any missing singleton document with a valid empty one
// and builds the index if it does not exist. Existing files are never
// modified.
func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.Recipes.dir, 0755); err != nil {
		return ioError("create", s.Recipes.dir, err)
	}

	seeds := []struct {
		doc  *document
		seed string
	}{
		{&s.TasteProfile.document, `{"preferences": {}, "cooking_log": []}`},
		{&s.Shelf.document, `{"spices": [], "categories": []}`},
		{&s.Appliances.document, `{"categories": []}`},
	}
	for _, sd := range seeds {
		if err := ctx.Err(); err != nil {
			return err
		}
		created, err := sd.doc.seed(docvalue.MustParse(sd.seed))
		if err != nil {
			return err
		}
		if created {
			s.shared.logger.Info("✓ Seeded document", zap.String("kind", string(sd.doc.kind)))
		}
	}

	if _, err := os.Stat(s.Recipes.indexPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return ioError("stat", s.Recipes.indexPath, err)
		}
		if _, err := s.Recipes.RebuildIndex(ctx); err != nil {
			return fmt.Errorf("failed to build initial index: %w", err)
		}
	}
	return nil
}

// observe records one store operation; use with defer and a named error.
func observe(kind, op string, start time.Time, err *error) {
	metrics.ObserveStoreOp(kind, op, Outcome(*err), start)
}

// encodeDocument renders a document in the on-disk format.
func encodeDocument(doc docvalue.Value) ([]byte, error) {
	data, err := doc.Pretty()
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// parseDocument decodes a stored document; corrupt files are storage
// failures, not caller errors.
func parseDocument(path string, data []byte) (docvalue.Value, error) {
	doc, err := docvalue.Parse(data)
	if err != nil {
		return docvalue.Value{}, ioError("parse", path, err)
	}
	return doc, nil
}
