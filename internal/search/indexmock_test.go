package search

import (
	"fmt"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
)

// mockIndex is a simple in-memory mock of the Index interface for testing
type mockIndex struct {
	id          int
	hits        []string
	searchError error
	closeError  error
	searches    atomic.Int32
	closed      atomic.Bool
	closes      atomic.Int32
	// lateSearch is set when Search runs on a closed index
	lateSearch atomic.Bool
	// block, when set, holds Search until it is closed
	block chan struct{}
}

// newMockIndex creates a new mock index with the given ID
func newMockIndex(id int, hits ...string) *mockIndex {
	return &mockIndex{id: id, hits: hits}
}

func (m *mockIndex) Search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	if m.block != nil {
		<-m.block
	}
	if m.closed.Load() {
		m.lateSearch.Store(true)
		return nil, fmt.Errorf("index closed")
	}
	m.searches.Add(1)
	if m.searchError != nil {
		return nil, m.searchError
	}
	matches := make(search.DocumentMatchCollection, 0, len(m.hits))
	for _, id := range m.hits {
		matches = append(matches, &search.DocumentMatch{ID: id})
	}
	return &bleve.SearchResult{
		Request: req,
		Hits:    matches,
		Total:   uint64(len(matches)),
	}, nil
}

func (m *mockIndex) DocCount() (uint64, error) {
	if m.closed.Load() {
		return 0, fmt.Errorf("index closed")
	}
	return uint64(len(m.hits)), nil
}

func (m *mockIndex) Close() error {
	m.closes.Add(1)
	if m.closed.Swap(true) {
		return fmt.Errorf("already closed")
	}
	return m.closeError
}

// IsClosed returns true if the index has been closed
func (m *mockIndex) IsClosed() bool {
	return m.closed.Load()
}
