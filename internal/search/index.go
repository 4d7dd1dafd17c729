package search

import (
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"

	"github.com/cooking-companion/server/internal/indexing"
)

// Index is an interface that abstracts bleve.Index operations
// This allows for easier testing with mocks
type Index interface {
	// Search executes a search request
	Search(req *bleve.SearchRequest) (*bleve.SearchResult, error)

	// DocCount returns the number of documents in the index
	DocCount() (uint64, error)

	// Close closes the index
	Close() error
}

// bleveIndexWrapper wraps a bleve.Index to implement our Index interface
type bleveIndexWrapper struct {
	index bleve.Index
}

// NewBleveIndexWrapper wraps a bleve.Index
func NewBleveIndexWrapper(index bleve.Index) Index {
	return &bleveIndexWrapper{index: index}
}

func (w *bleveIndexWrapper) Search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	return w.index.Search(req)
}

func (w *bleveIndexWrapper) DocCount() (uint64, error) {
	return w.index.DocCount()
}

func (w *bleveIndexWrapper) Close() error {
	return w.index.Close()
}

// searchFields are the document fields every query is matched against.
var searchFields = []string{"name", "name_en", "category", "tags"}

// buildMemIndex builds an in-memory index of entries. Every field is
// folded and indexed as a single keyword term so a wildcard query gives
// substring semantics. Document ids are the entry positions.
func buildMemIndex(entries []indexing.Entry) (Index, error) {
	mapping := bleve.NewIndexMapping()
	mapping.DefaultAnalyzer = keyword.Name

	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}

	batch := index.NewBatch()
	for i, e := range entries {
		tags := make([]string, 0, len(e.Tags))
		for _, tag := range e.Tags {
			tags = append(tags, indexTerm(tag))
		}
		doc := map[string]interface{}{
			"name":     indexTerm(e.Name),
			"name_en":  indexTerm(e.NameEn),
			"category": indexTerm(e.Category),
			"tags":     tags,
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			index.Close()
			return nil, err
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, err
	}

	return NewBleveIndexWrapper(index), nil
}

// indexTerm folds a field value. Newlines become spaces because the
// wildcard "." does not match them; queries containing a newline never
// reach the index.
func indexTerm(s string) string {
	return strings.ReplaceAll(indexing.Fold(s), "\n", " ")
}

// newSubstringRequest builds a disjunction of *q* wildcards, one per field.
func newSubstringRequest(foldedQuery string, size int) *bleve.SearchRequest {
	disjunction := bleve.NewDisjunctionQuery()
	for _, field := range searchFields {
		wq := bleve.NewWildcardQuery("*" + foldedQuery + "*")
		wq.SetField(field)
		disjunction.AddQuery(wq)
	}
	return bleve.NewSearchRequestOptions(disjunction, size, 0, false)
}
