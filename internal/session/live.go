package session

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"logomatch/internal/matcher"
	"logomatch/internal/resultcache"
)

const (
	// DefaultSearchDelay is the quiet period before a live search runs.
	DefaultSearchDelay = 500 * time.Millisecond
	// DefaultMinQueryLength is the shortest trimmed input that searches.
	DefaultMinQueryLength = 3
)

// LiveSearchOptions configure a LiveSearch.
type LiveSearchOptions struct {
	Matcher   resultcache.Searcher
	Cache     *resultcache.Cache
	Delay     time.Duration
	MinLength int
	// Publish receives settled results. An empty query with nil candidates
	// clears the display.
	Publish func(query string, candidates []matcher.Candidate)
}

// LiveSearch turns a stream of partial inputs into debounced searches.
type LiveSearch struct {
	opts      LiveSearchOptions
	debouncer *Debouncer
	publishMu sync.Mutex
}

// NewLiveSearch applies defaults to opts.
func NewLiveSearch(opts LiveSearchOptions) *LiveSearch {
	if opts.Delay <= 0 {
		opts.Delay = DefaultSearchDelay
	}
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinQueryLength
	}
	if opts.Publish == nil {
		opts.Publish = func(string, []matcher.Candidate) {}
	}
	return &LiveSearch{opts: opts, debouncer: NewDebouncer(opts.Delay)}
}

// Update reacts to new input. Empty input cancels pending work and clears the
// results; input shorter than the minimum is ignored; anything else replaces
// the pending search.
func (s *LiveSearch) Update(ctx context.Context, input string) {
	query := strings.TrimSpace(input)
	if query == "" {
		s.debouncer.Cancel()
		s.publish(ctx, "", nil)
		return
	}
	if utf8.RuneCountInString(query) < s.opts.MinLength {
		return
	}
	s.debouncer.Trigger(ctx, func(taskCtx context.Context) {
		candidates, _ := resultcache.Lookup(s.opts.Cache, s.opts.Matcher, query)
		s.publish(taskCtx, query, candidates)
	})
}

// Flush runs the pending search immediately, if any, and returns once its
// results are published.
func (s *LiveSearch) Flush() {
	s.debouncer.Flush()
}

// Close cancels any pending search.
func (s *LiveSearch) Close() {
	s.debouncer.Stop()
}

func (s *LiveSearch) publish(ctx context.Context, query string, candidates []matcher.Candidate) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	s.opts.Publish(query, candidates)
}
