// Package search filters recipe index entries by a case- and
// accent-insensitive substring query.
package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cooking-companion/server/internal/indexing"
)

// Corpus is one version of the recipe index.
type Corpus struct {
	// Version identifies the contents; equal versions share one built index
	Version string
	Entries []indexing.Entry
}

// NewCorpus derives the version from the raw index document.
func NewCorpus(raw []byte, entries []indexing.Entry) Corpus {
	sum := sha256.Sum256(raw)
	return Corpus{Version: hex.EncodeToString(sum[:]), Entries: entries}
}

// snapshot pairs an index with the entries it was built from. refs
// counts the searches using it plus one for the Searcher while it is
// current; whoever drops refs to zero closes the index.
type snapshot struct {
	version string
	entries []indexing.Entry
	index   Index

	refs     atomic.Int64
	done     chan struct{}
	closeErr error
}

func newSnapshot(version string, entries []indexing.Entry, index Index) *snapshot {
	snap := &snapshot{version: version, entries: entries, index: index, done: make(chan struct{})}
	snap.refs.Store(1)
	return snap
}

// acquire takes a reference. It fails once the snapshot has been closed
// or is about to be.
func (snap *snapshot) acquire() bool {
	for {
		n := snap.refs.Load()
		if n <= 0 {
			return false
		}
		if snap.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops a reference and closes the index on the last one. The
// close error is returned to the caller that closed it.
func (snap *snapshot) release() error {
	if snap.refs.Add(-1) != 0 {
		return nil
	}
	snap.closeErr = snap.index.Close()
	close(snap.done)
	return snap.closeErr
}

// Searcher answers queries from an in-memory bleve index built for the
// latest corpus. The index is rebuilt when the corpus version changes and
// swapped in atomically; the previous one is closed by the last search
// still using it.
type Searcher struct {
	logger   *zap.Logger
	newIndex func([]indexing.Entry) (Index, error)

	// current holds the active snapshot (atomic access for lock-free reads)
	current atomic.Pointer[snapshot]

	// builds coalesces concurrent builds of the same version
	builds singleflight.Group
}

// NewSearcher creates a searcher with an empty cache.
func NewSearcher(logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		logger:   logger,
		newIndex: buildMemIndex,
	}
}

// Search returns the entries of corpus matching query, in corpus order.
// The empty query matches everything. Queries the index cannot express
// and any index failure fall back to a linear scan with the same
// semantics.
func (s *Searcher) Search(ctx context.Context, corpus Corpus, query string) ([]indexing.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folded := indexing.Fold(query)
	if folded == "" {
		return append([]indexing.Entry{}, corpus.Entries...), nil
	}
	if len(corpus.Entries) == 0 {
		return []indexing.Entry{}, nil
	}
	if strings.ContainsAny(folded, "*?\n") {
		return indexing.Filter(corpus.Entries, query), nil
	}

	snap, err := s.acquire(corpus)
	if err != nil {
		s.logger.Warn("search index unavailable, scanning linearly", zap.Error(err))
		return indexing.Filter(corpus.Entries, query), nil
	}
	defer s.release(snap)

	results, err := snap.search(folded)
	if err != nil {
		s.logger.Warn("index search failed, scanning linearly",
			zap.String("query", query), zap.Error(err))
		return indexing.Filter(corpus.Entries, query), nil
	}
	return results, nil
}

// Reset drops the cached index so the next search rebuilds it.
func (s *Searcher) Reset() {
	s.retire(s.current.Swap(nil))
}

// Close releases the cached index and waits until in-flight searches
// have finished with it.
func (s *Searcher) Close() error {
	old := s.current.Swap(nil)
	if old == nil {
		return nil
	}
	old.release()
	<-old.done
	if old.closeErr != nil {
		return fmt.Errorf("failed to close search index: %w", old.closeErr)
	}
	s.logger.Debug("✓ Search index closed")
	return nil
}

// maxAcquireAttempts bounds the retries when the snapshot for a version is
// retired between being built and being acquired.
const maxAcquireAttempts = 3

// acquire returns a referenced snapshot for corpus, building and swapping
// one in when the current snapshot holds another version. The caller
// releases it.
func (s *Searcher) acquire(corpus Corpus) (*snapshot, error) {
	for attempt := 0; attempt < maxAcquireAttempts; attempt++ {
		if snap := s.current.Load(); snap != nil && snap.version == corpus.Version && snap.acquire() {
			return snap, nil
		}

		v, err, _ := s.builds.Do(corpus.Version, func() (interface{}, error) {
			if snap := s.current.Load(); snap != nil && snap.version == corpus.Version {
				return snap, nil
			}
			return s.build(corpus)
		})
		if err != nil {
			return nil, err
		}
		if snap := v.(*snapshot); snap.acquire() {
			return snap, nil
		}
	}

	// versions are churning; answer from an index nobody else sees
	index, err := s.newIndex(corpus.Entries)
	if err != nil {
		return nil, fmt.Errorf("failed to build search index: %w", err)
	}
	s.logger.Debug("Search index churn, using a private index", zap.String("version", shortVersion(corpus.Version)))
	return newSnapshot(corpus.Version, corpus.Entries, index), nil
}

func (s *Searcher) build(corpus Corpus) (*snapshot, error) {
	index, err := s.newIndex(corpus.Entries)
	if err != nil {
		return nil, fmt.Errorf("failed to build search index: %w", err)
	}
	docs, err := index.DocCount()
	if err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to count indexed recipes: %w", err)
	}

	snap := newSnapshot(corpus.Version, corpus.Entries, index)
	s.retire(s.current.Swap(snap))
	s.logger.Debug("✓ Search index swapped",
		zap.Uint64("docs", docs), zap.Int("entries", len(corpus.Entries)),
		zap.String("version", shortVersion(corpus.Version)))
	return snap, nil
}

// retire drops the Searcher's reference to an old snapshot; the last
// search using it closes the index.
func (s *Searcher) retire(old *snapshot) {
	if old == nil {
		return
	}
	s.release(old)
}

func (s *Searcher) release(snap *snapshot) {
	if err := snap.release(); err != nil {
		s.logger.Warn("error closing old search index", zap.Error(err))
	}
}

func (snap *snapshot) search(folded string) ([]indexing.Entry, error) {
	req := newSubstringRequest(folded, len(snap.entries))
	res, err := snap.index.Search(req)
	if err != nil {
		return nil, err
	}

	positions := make([]int, 0, len(res.Hits))
	for _, hit := range res.Hits {
		pos, err := strconv.Atoi(hit.ID)
		if err != nil || pos < 0 || pos >= len(snap.entries) {
			return nil, fmt.Errorf("unexpected document id %q", hit.ID)
		}
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	out := make([]indexing.Entry, 0, len(positions))
	for _, pos := range positions {
		out = append(out, snap.entries[pos])
	}
	return out, nil
}

func shortVersion(v string) string {
	if len(v) > 12 {
		return v[:12]
	}
	return v
}
