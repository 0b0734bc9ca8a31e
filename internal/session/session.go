package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"logomatch/internal/failures"
	"logomatch/internal/logging"
	"logomatch/internal/resultcache"
	"logomatch/internal/sources"
)

// Options wire a Session.
type Options struct {
	Matcher   resultcache.Searcher
	Cache     *resultcache.Cache
	Store     Store
	Presenter Presenter
	// Workers bounds concurrent candidate resolution. Zero means 4.
	Workers int
	Logger  *slog.Logger
	// PromptCache and Fingerprint enable reuse of a previously computed batch.
	PromptCache PromptCache
	Fingerprint string
	// Message is a format string receiving the source identifier.
	Message string
	// SkipResolved leaves out sources that already have a stored selection.
	SkipResolved bool
}

// Session runs resolution over a listing of source identifiers.
type Session struct {
	opts   Options
	logger *slog.Logger
}

// New validates opts and returns a Session.
func New(opts Options) (*Session, error) {
	if opts.Matcher == nil {
		return nil, failures.Wrap(failures.ErrConfiguration, "session", "new", "matcher is required", nil)
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Message == "" {
		opts.Message = DefaultMessage
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{opts: opts, logger: logging.NewComponentLogger(logger, "session")}, nil
}

// BuildRequests resolves every identifier and returns the prompts in input
// order.
func (s *Session) BuildRequests(ctx context.Context, ids []string) ([]Request, error) {
	slots := s.resolve(ctx, ids)
	requests := make([]Request, 0, len(ids))
	for _, slot := range slots {
		if !slot.wait(ctx) {
			return nil, ctx.Err()
		}
		requests = append(requests, slot.req)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// Run presents one prompt per pending identifier and records every decision.
// Prompts reach the presenter in input order as soon as each is ready, while
// later identifiers are still being resolved. A persistence failure ends the
// run and is returned; decisions recorded before it stay persisted.
func (s *Session) Run(ctx context.Context, ids []string) (Summary, error) {
	if s.opts.Presenter == nil {
		return Summary{}, failures.Wrap(failures.ErrConfiguration, "session", "run", "presenter is required", nil)
	}
	if s.opts.Store == nil {
		return Summary{}, failures.Wrap(failures.ErrConfiguration, "session", "run", "store is required", nil)
	}

	summary := Summary{Sources: len(ids)}
	pending := ids
	if s.opts.SkipResolved {
		pending = make([]string, 0, len(ids))
		for _, id := range ids {
			if _, ok := s.opts.Store.Get(id); ok {
				summary.AlreadyResolved++
				continue
			}
			pending = append(pending, id)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	requests := make(chan Request)
	var (
		producer sync.WaitGroup
		emitted  int
		empty    int
	)
	emit := func(req Request) bool {
		select {
		case requests <- req:
			emitted++
			if len(req.Choices) == 0 {
				empty++
			}
			return true
		case <-runCtx.Done():
			return false
		}
	}

	cached, fromCache := s.loadCached(runCtx, pending)
	summary.FromCache = fromCache

	producer.Add(1)
	if fromCache {
		go func() {
			defer producer.Done()
			defer close(requests)
			for _, req := range cached {
				if !emit(req) {
					return
				}
			}
		}()
	} else {
		slots := s.resolve(runCtx, pending)
		go func() {
			defer producer.Done()
			defer close(requests)
			for _, slot := range slots {
				if !slot.wait(runCtx) {
					return
				}
				if !emit(slot.req) {
					return
				}
			}
		}()
		producer.Add(1)
		go func() {
			defer producer.Done()
			s.saveBatch(runCtx, slots)
		}()
	}

	var (
		recordMu   sync.Mutex
		persistErr error
	)
	record := func(d Decision) error {
		recordMu.Lock()
		defer recordMu.Unlock()
		if persistErr != nil {
			return persistErr
		}
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return failures.Wrap(failures.ErrValidation, "session", "record", "decision has no identifier", nil)
		}
		if d.Skip {
			summary.Skipped++
			return nil
		}
		if err := s.opts.Store.Set(d.ID, d.Values); err != nil {
			persistErr = err
			logging.ErrorWithContext(logging.WithContext(logging.WithSourceID(ctx, d.ID), s.logger),
				"decision not persisted", "selection_persist_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, failures.Hint(err)))
			cancel()
			return err
		}
		summary.Recorded++
		return nil
	}

	presentErr := s.opts.Presenter.Present(runCtx, requests, record)
	cancel()
	producer.Wait()

	recordMu.Lock()
	defer recordMu.Unlock()
	summary.Requests = emitted
	summary.EmptyMatches = empty

	switch {
	case persistErr != nil:
		return summary, persistErr
	case ctx.Err() != nil:
		return summary, ctx.Err()
	case presentErr != nil:
		return summary, presentErr
	}
	s.logger.Info("resolution run complete",
		logging.Int("sources", summary.Sources),
		logging.Int("requests", summary.Requests),
		logging.Int("recorded", summary.Recorded),
		logging.Int("skipped", summary.Skipped),
		logging.Bool("from_cache", summary.FromCache),
		logging.String(logging.FieldEventType, "session_complete"))
	return summary, nil
}

type slot struct {
	req  Request
	done chan struct{}
}

// wait blocks until the slot is ready or ctx ends. A ready slot wins over a
// cancelled context.
func (sl *slot) wait(ctx context.Context) bool {
	select {
	case <-sl.done:
		return true
	default:
	}
	select {
	case <-sl.done:
		return true
	case <-ctx.Done():
		return false
	}
}

// resolve starts candidate resolution for ids on the worker pool. Each slot's
// done channel closes once its request is ready; slots for work skipped after
// cancellation never close.
func (s *Session) resolve(ctx context.Context, ids []string) []*slot {
	slots := make([]*slot, len(ids))
	for i := range slots {
		slots[i] = &slot{done: make(chan struct{})}
	}
	semaphore := make(chan struct{}, s.opts.Workers)
	for i, id := range ids {
		go func(sl *slot, id string) {
			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-semaphore }()
			if ctx.Err() != nil {
				return
			}
			query := sources.Query(id)
			candidates, hit := resultcache.Lookup(s.opts.Cache, s.opts.Matcher, query)
			sl.req = NewRequest(id, s.opts.Message, candidates)
			logging.WithContext(logging.WithSourceID(ctx, id), s.logger).Debug("candidates resolved",
				logging.String(logging.FieldQuery, query),
				logging.Int("candidates", len(sl.req.Choices)),
				logging.Bool("cache_hit", hit))
			close(sl.done)
		}(slots[i], id)
	}
	return slots
}

// loadCached returns the stored batch filtered to pending, in pending order.
// Any cache problem falls back to recomputation.
func (s *Session) loadCached(ctx context.Context, pending []string) ([]Request, bool) {
	if s.opts.PromptCache == nil {
		return nil, false
	}
	records, ok, err := s.opts.PromptCache.Load(ctx, s.opts.Fingerprint)
	if err != nil {
		logging.WarnWithContext(s.logger, "prompt cache unreadable", "prompt_cache_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'logomatch clean' to discard the prompt cache"),
			logging.String(logging.FieldImpact, "candidates will be recomputed"))
		return nil, false
	}
	if !ok || len(records) == 0 {
		return nil, false
	}
	byID := make(map[string]Request, len(records))
	for _, rec := range records {
		byID[rec.ID] = fromRecord(rec)
	}
	out := make([]Request, 0, len(pending))
	for _, id := range pending {
		req, found := byID[id]
		if !found {
			s.logger.Debug("prompt cache does not cover source; recomputing", logging.String(logging.FieldSourceID, id))
			return nil, false
		}
		out = append(out, req)
	}
	s.logger.Info("loaded prompts from cache", logging.Int("requests", len(out)))
	return out, true
}

// saveBatch stores the computed batch once every slot is ready.
func (s *Session) saveBatch(ctx context.Context, slots []*slot) {
	if s.opts.PromptCache == nil || len(slots) == 0 {
		return
	}
	requests := make([]Request, 0, len(slots))
	for _, sl := range slots {
		if !sl.wait(ctx) {
			return
		}
		requests = append(requests, sl.req)
	}
	if err := s.opts.PromptCache.Save(context.WithoutCancel(ctx), s.opts.Fingerprint, toRecords(requests)); err != nil {
		logging.WarnWithContext(s.logger, "prompt cache not saved", "prompt_cache_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.prompt_cache permissions"),
			logging.String(logging.FieldImpact, "the next run recomputes candidates"))
		return
	}
	s.logger.Debug("prompt batch saved", logging.Int("requests", len(requests)))
}
