package resultcache_test

import (
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"logomatch/internal/catalog"
	"logomatch/internal/matcher"
	"logomatch/internal/resultcache"
)

type countingSearcher struct {
	inner *matcher.Matcher
	calls atomic.Int32
}

func (s *countingSearcher) Search(query string) []matcher.Candidate {
	s.calls.Add(1)
	return s.inner.Search(query)
}

func newSearcher() *countingSearcher {
	idx := catalog.BuildIndex([]catalog.Entry{
		{Name: "LINCOLN HIGH", City: "SEATTLE", State: "WA"},
		{Name: "GARFIELD HIGH", City: "SEATTLE", State: "WA"},
	}, catalog.DefaultIndexOptions())
	return &countingSearcher{inner: matcher.New(idx, matcher.Options{})}
}

func TestLookupIsTransparent(t *testing.T) {
	s := newSearcher()
	c := resultcache.New(0)

	direct := s.inner.Search("LINCOLNHS")
	first, hit := resultcache.Lookup(c, s, "LINCOLNHS")
	if hit {
		t.Fatal("expected first lookup to miss")
	}
	second, hit := resultcache.Lookup(c, s, "  lincolnhs ")
	if !hit {
		t.Fatal("expected normalized query to hit")
	}
	if !reflect.DeepEqual(first, direct) || !reflect.DeepEqual(second, direct) {
		t.Fatalf("cached results differ from direct search")
	}
	if got := s.calls.Load(); got != 1 {
		t.Fatalf("expected one search, got %d", got)
	}
}

func TestGetReturnsCopies(t *testing.T) {
	s := newSearcher()
	c := resultcache.New(0)
	c.Put("GARFIELD", s.inner.Search("GARFIELD"))

	got, ok := c.Get("garfield")
	if !ok || len(got) == 0 {
		t.Fatalf("expected cached candidates, got %v %v", got, ok)
	}
	got[0].Entry.Name = "MUTATED"

	again, _ := c.Get("GARFIELD")
	if again[0].Entry.Name != "GARFIELD HIGH" {
		t.Fatalf("cache state mutated through returned slice: %q", again[0].Entry.Name)
	}
}

func TestMaxEntriesStopsAdmission(t *testing.T) {
	c := resultcache.New(1)
	c.Put("A", []matcher.Candidate{{Score: 0.1}})
	c.Put("B", []matcher.Candidate{{Score: 0.2}})
	if c.Len() != 1 {
		t.Fatalf("expected cap of 1, got %d", c.Len())
	}
	if _, ok := c.Get("B"); ok {
		t.Fatal("expected B to be refused at cap")
	}
	c.Put("A", []matcher.Candidate{{Score: 0.3}})
	got, ok := c.Get("A")
	if !ok || got[0].Score != 0.3 {
		t.Fatalf("expected existing key to be replaceable at cap, got %v", got)
	}
}

func TestNilCacheComputes(t *testing.T) {
	s := newSearcher()
	for i := 0; i < 2; i++ {
		if _, hit := resultcache.Lookup(nil, s, "LINCOLN"); hit {
			t.Fatal("nil cache reported a hit")
		}
	}
	if s.calls.Load() != 2 {
		t.Fatalf("expected recompute on each lookup, got %d", s.calls.Load())
	}
}

func TestConcurrentLookups(t *testing.T) {
	s := newSearcher()
	c := resultcache.New(0)
	want := s.inner.Search("GARFIELD")

	var wg sync.WaitGroup
	var mismatches atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := resultcache.Lookup(c, s, "GARFIELD")
			if !reflect.DeepEqual(got, want) {
				mismatches.Add(1)
			}
		}()
	}
	wg.Wait()
	if mismatches.Load() != 0 {
		t.Fatalf("%d lookups diverged", mismatches.Load())
	}
	if c.Len() != 1 {
		t.Fatalf("expected one cached key, got %d", c.Len())
	}
}
