package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/indexing"
)

func sampleCorpus() Corpus {
	entries := []indexing.Entry{
		{ID: "fakes", Name: "Φακές", Category: "όσπρια", Tags: []string{"φέτα", "νηστίσιμο"}},
		{ID: "pastitsio", Name: "Παστίτσιο", NameEn: "Pastitsio", Category: "ζυμαρικά", Tags: []string{"φούρνος"}},
		{ID: "horiatiki", Name: "Χωριάτικη", NameEn: "Greek salad", Category: "σαλάτες", Tags: []string{"Φέτα"}},
		{ID: "fasolada", Name: "Φασολάδα", NameEn: "Bean soup", Category: "όσπρια"},
	}
	return NewCorpus([]byte(fmt.Sprint(entries)), entries)
}

func ids(entries []indexing.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestSearch_MatchesLinearScan(t *testing.T) {
	s := NewSearcher(zap.NewNop())
	defer s.Close()
	corpus := sampleCorpus()

	queries := []string{"", "φετα", "ΦΈΤΑ", "όσπρ", "soup", "SALAD", "ζυμαρικά", "σοκολάτα", "α", "pastitsio"}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			got, err := s.Search(context.Background(), corpus, q)
			require.NoError(t, err)
			assert.Equal(t, ids(indexing.Filter(corpus.Entries, q)), ids(got))
		})
	}
}

func TestSearch_Properties(t *testing.T) {
	s := NewSearcher(zap.NewNop())
	defer s.Close()
	corpus := sampleCorpus()
	ctx := context.Background()

	all, err := s.Search(ctx, corpus, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"fakes", "pastitsio", "horiatiki", "fasolada"}, ids(all))

	feta, err := s.Search(ctx, corpus, "φετα")
	require.NoError(t, err)
	assert.Equal(t, []string{"fakes", "horiatiki"}, ids(feta))

	none, err := s.Search(ctx, corpus, "μουσακάς")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch_WildcardCharactersUseLinearScan(t *testing.T) {
	s := NewSearcher(zap.NewNop())
	built := atomic.Int32{}
	s.newIndex = func(entries []indexing.Entry) (Index, error) {
		built.Add(1)
		return newMockIndex(1), nil
	}
	corpus := sampleCorpus()

	got, err := s.Search(context.Background(), corpus, "*")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(0), built.Load())
}

func TestSearch_FallsBackOnIndexFailure(t *testing.T) {
	corpus := sampleCorpus()

	t.Run("build failure", func(t *testing.T) {
		s := NewSearcher(zap.NewNop())
		s.newIndex = func([]indexing.Entry) (Index, error) {
			return nil, errors.New("boom")
		}
		got, err := s.Search(context.Background(), corpus, "φετα")
		require.NoError(t, err)
		assert.Equal(t, []string{"fakes", "horiatiki"}, ids(got))
	})

	t.Run("search failure", func(t *testing.T) {
		s := NewSearcher(zap.NewNop())
		mock := newMockIndex(1)
		mock.searchError = errors.New("boom")
		s.newIndex = func([]indexing.Entry) (Index, error) { return mock, nil }

		got, err := s.Search(context.Background(), corpus, "σαλ")
		require.NoError(t, err)
		assert.Equal(t, []string{"horiatiki"}, ids(got))
		assert.Equal(t, int32(1), mock.searches.Load())
	})

	t.Run("doc count failure", func(t *testing.T) {
		s := NewSearcher(zap.NewNop())
		broken := newMockIndex(1, "0")
		require.NoError(t, broken.Close())
		s.newIndex = func([]indexing.Entry) (Index, error) { return broken, nil }

		got, err := s.Search(context.Background(), corpus, "σαλ")
		require.NoError(t, err)
		assert.Equal(t, []string{"horiatiki"}, ids(got))
		assert.Nil(t, s.current.Load(), "an index that cannot count is not cached")
		assert.Equal(t, int32(0), broken.searches.Load())
	})

	t.Run("bad hit id", func(t *testing.T) {
		s := NewSearcher(zap.NewNop())
		s.newIndex = func([]indexing.Entry) (Index, error) { return newMockIndex(1, "42"), nil }

		got, err := s.Search(context.Background(), corpus, "σαλ")
		require.NoError(t, err)
		assert.Equal(t, []string{"horiatiki"}, ids(got))
	})
}

func TestSearch_HitsReturnedInCorpusOrder(t *testing.T) {
	s := NewSearcher(zap.NewNop())
	s.newIndex = func([]indexing.Entry) (Index, error) { return newMockIndex(1, "3", "0"), nil }

	got, err := s.Search(context.Background(), sampleCorpus(), "anything")
	require.NoError(t, err)
	assert.Equal(t, []string{"fakes", "fasolada"}, ids(got))
}

func TestSearch_SwapsIndexOnNewVersion(t *testing.T) {
	s := NewSearcher(zap.NewNop())
	var mu sync.Mutex
	var built []*mockIndex
	s.newIndex = func([]indexing.Entry) (Index, error) {
		mu.Lock()
		defer mu.Unlock()
		m := newMockIndex(len(built))
		built = append(built, m)
		return m, nil
	}
	ctx := context.Background()

	first := sampleCorpus()
	_, err := s.Search(ctx, first, "x")
	require.NoError(t, err)
	_, err = s.Search(ctx, first, "y")
	require.NoError(t, err)

	mu.Lock()
	require.Len(t, built, 1, "same version must reuse the index")
	mu.Unlock()

	second := NewCorpus([]byte("v2"), first.Entries[:1])
	_, err = s.Search(ctx, second, "x")
	require.NoError(t, err)

	mu.Lock()
	require.Len(t, built, 2)
	old, current := built[0], built[1]
	mu.Unlock()

	assert.Eventually(t, old.IsClosed, time.Second, 10*time.Millisecond)
	assert.False(t, current.IsClosed())

	require.NoError(t, s.Close())
	assert.True(t, current.IsClosed())
}

func TestSearch_ConcurrentBuildsCoalesce(t *testing.T) {
	s := NewSearcher(zap.NewNop())
	var builds atomic.Int32
	s.newIndex = func(entries []indexing.Entry) (Index, error) {
		builds.Add(1)
		time.Sleep(20 * time.Millisecond)
		return newMockIndex(1), nil
	}
	corpus := sampleCorpus()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Search(context.Background(), corpus, "φ")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	require.NoError(t, s.Close())
}

func TestSearch_InFlightSearchKeepsRetiredIndexOpen(t *testing.T) {
	s := NewSearcher(zap.NewNop())
	first := sampleCorpus()
	second := NewCorpus([]byte("v2"), first.Entries)

	slow := newMockIndex(1, "0")
	slow.block = make(chan struct{})
	fresh := newMockIndex(2, "1")
	s.newIndex = func([]indexing.Entry) (Index, error) {
		if s.current.Load() == nil {
			return slow, nil
		}
		return fresh, nil
	}

	done := make(chan []indexing.Entry)
	go func() {
		got, err := s.Search(context.Background(), first, "x")
		assert.NoError(t, err)
		done <- got
	}()
	require.Eventually(t, func() bool { return s.current.Load() != nil }, time.Second, time.Millisecond)

	got, err := s.Search(context.Background(), second, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"pastitsio"}, ids(got))
	assert.False(t, slow.IsClosed(), "retired index stays open while a search uses it")

	close(slow.block)
	assert.Equal(t, []string{"fakes"}, ids(<-done))
	assert.True(t, slow.IsClosed())
	assert.False(t, slow.lateSearch.Load())
	assert.Equal(t, int32(1), slow.closes.Load())

	require.NoError(t, s.Close())
	assert.True(t, fresh.IsClosed())
}

func TestSearch_ConcurrentSearchesAcrossVersions(t *testing.T) {
	s := NewSearcher(zap.NewNop())
	var mu sync.Mutex
	var built []*mockIndex
	s.newIndex = func(entries []indexing.Entry) (Index, error) {
		hits := make([]string, len(entries))
		for i := range entries {
			hits[i] = fmt.Sprint(i)
		}
		m := newMockIndex(0, hits...)
		mu.Lock()
		built = append(built, m)
		mu.Unlock()
		return m, nil
	}

	base := sampleCorpus()
	corpora := make([]Corpus, 7)
	for i := range corpora {
		corpora[i] = NewCorpus([]byte(fmt.Sprintf("v%d", i)), base.Entries[:1+i%len(base.Entries)])
	}

	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				corpus := corpora[(g+i)%len(corpora)]
				got, err := s.Search(context.Background(), corpus, "q")
				if !assert.NoError(t, err) {
					return
				}
				assert.Len(t, got, len(corpus.Entries))
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, s.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, built)
	for _, m := range built {
		assert.True(t, m.IsClosed(), "every built index is closed")
		assert.Equal(t, int32(1), m.closes.Load(), "closed exactly once")
		assert.False(t, m.lateSearch.Load(), "never searched after close")
	}
}

func TestSearch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSearcher(nil).Search(ctx, sampleCorpus(), "")
	assert.ErrorIs(t, err, context.Canceled)
}
