package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"logomatch/internal/failures"
	"logomatch/internal/fileutil"
	"logomatch/internal/logging"
)

// Snapshot is a point-in-time copy of the stored mapping.
type Snapshot map[string][]string

// Store is the write-through selection mapping.
type Store struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock

	mu      sync.RWMutex
	entries map[string][]string
}

// Open locks and loads the store at path. A missing file starts an empty
// store; an unreadable or malformed file is an error and is never overwritten.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, failures.Wrap(failures.ErrConfiguration, "selection", "open", "selections path is empty", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "selection")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, failures.Wrap(failures.ErrPersistence, "selection", "open", "create selections directory", err)
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, failures.Wrap(failures.ErrPersistence, "selection", "lock", lockPath, err)
	}
	if !ok {
		return nil, failures.Wrap(failures.ErrPersistence, "selection", "lock",
			fmt.Sprintf("%s is held by another logomatch process", lockPath), nil)
	}

	s := &Store{
		path:    path,
		logger:  logger,
		lock:    lock,
		entries: make(map[string][]string),
	}
	if err := s.load(); err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return s, nil
}

// Close releases the lock. The store must not be used afterwards.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Path returns the JSON file backing the store.
func (s *Store) Path() string { return s.path }

// Get returns a copy of the names stored under key.
func (s *Store) Get(key string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return append([]string(nil), names...), true
}

// Keys returns the stored keys in ascending order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.entries)
}

// Len reports the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a deep copy of the mapping.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot(cloneEntries(s.entries))
}

// Set replaces the names stored under key. Names are trimmed, blanks dropped
// and duplicates removed keeping the first occurrence. An empty result deletes
// the key. Setting the stored value again writes nothing.
func (s *Store) Set(key string, names []string) error {
	if strings.TrimSpace(key) == "" {
		return failures.Wrap(failures.ErrValidation, "selection", "set", "key is empty", nil)
	}
	cleaned := cleanNames(names)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.entries[key]
	if len(cleaned) == 0 && !exists {
		return nil
	}
	if exists && equalNames(current, cleaned) {
		return nil
	}

	next := cloneEntries(s.entries)
	if len(cleaned) == 0 {
		delete(next, key)
	} else {
		next[key] = cleaned
	}
	if err := s.commit(next, "set"); err != nil {
		return err
	}
	s.logger.Debug("selection recorded",
		logging.String(logging.FieldSourceID, key),
		logging.Strings("names", cleaned))
	return nil
}

// Remove deletes one name from key. Absent keys and names are ignored.
// Removing the last name deletes the key.
func (s *Store) Remove(key, name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[key]
	if !ok {
		return nil
	}
	remaining := make([]string, 0, len(current))
	for _, existing := range current {
		if existing != name {
			remaining = append(remaining, existing)
		}
	}
	if len(remaining) == len(current) {
		return nil
	}

	next := cloneEntries(s.entries)
	if len(remaining) == 0 {
		delete(next, key)
	} else {
		next[key] = remaining
	}
	if err := s.commit(next, "remove"); err != nil {
		return err
	}
	s.logger.Debug("selection removed",
		logging.String(logging.FieldSourceID, key),
		logging.String("name", name))
	return nil
}

// Clear deletes every key.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil
	}
	return s.commit(make(map[string][]string), "clear")
}

// ReconcileResult counts what Reconcile did to each stored key.
type ReconcileResult struct {
	Fixed       int      `json:"fixed"`
	Unchanged   int      `json:"unchanged"`
	Dropped     int      `json:"dropped"`
	DroppedKeys []string `json:"dropped_keys,omitempty"`
}

// Changed reports whether reconciliation rewrote the mapping.
func (r ReconcileResult) Changed() bool {
	return r.Fixed > 0 || r.Dropped > 0
}

// Reconcile re-keys the mapping through resolve. Keys resolving to themselves
// are kept, keys resolving elsewhere move, and unresolved keys are dropped.
// Name sets landing on the same key merge in ascending old-key order without
// duplicates. Nothing is written when every key is unchanged.
func (s *Store) Reconcile(resolve func(key string) (string, bool)) (ReconcileResult, error) {
	if resolve == nil {
		return ReconcileResult{}, failures.Wrap(failures.ErrValidation, "selection", "reconcile", "resolver is nil", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, result := s.reconcilePlan(resolve)
	if !result.Changed() {
		return result, nil
	}
	if err := s.commit(next, "reconcile"); err != nil {
		return ReconcileResult{}, err
	}
	for _, key := range result.DroppedKeys {
		s.logger.Debug("selection key dropped", logging.String(logging.FieldSourceID, key))
	}
	s.logger.Info("selections reconciled",
		logging.Int("fixed", result.Fixed),
		logging.Int("unchanged", result.Unchanged),
		logging.Int("dropped", result.Dropped))
	return result, nil
}

// PreviewReconcile reports what Reconcile would do without writing.
func (s *Store) PreviewReconcile(resolve func(key string) (string, bool)) (ReconcileResult, error) {
	if resolve == nil {
		return ReconcileResult{}, failures.Wrap(failures.ErrValidation, "selection", "reconcile", "resolver is nil", nil)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, result := s.reconcilePlan(resolve)
	return result, nil
}

// reconcilePlan computes the re-keyed mapping. Callers hold s.mu.
func (s *Store) reconcilePlan(resolve func(key string) (string, bool)) (map[string][]string, ReconcileResult) {
	var result ReconcileResult
	next := make(map[string][]string, len(s.entries))
	for _, key := range sortedKeys(s.entries) {
		target, ok := resolve(key)
		target = strings.TrimSpace(target)
		if !ok || target == "" {
			result.Dropped++
			result.DroppedKeys = append(result.DroppedKeys, key)
			continue
		}
		if target == key {
			result.Unchanged++
		} else {
			result.Fixed++
		}
		next[target] = mergeNames(next[target], s.entries[key])
	}
	return next, result
}

// ExportFileName is the name Export writes for the given day.
func ExportFileName(now time.Time) string {
	return "logomatch_selections_" + now.Format("2006-01-02") + ".json"
}

// Export writes the current mapping to dir and returns the file path.
func (s *Store) Export(dir string, now time.Time) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	s.mu.RLock()
	data, err := encode(s.entries)
	s.mu.RUnlock()
	if err != nil {
		return "", failures.Wrap(failures.ErrPersistence, "selection", "export", "encode selections", err)
	}
	target := filepath.Join(dir, ExportFileName(now))
	if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
		return "", failures.Wrap(failures.ErrPersistence, "selection", "export", target, err)
	}
	s.logger.Info("selections exported",
		logging.String("path", target),
		logging.Int("keys", s.Len()))
	return target, nil
}

// Import reads an exported mapping. With merge, imported names are appended
// to existing sets; otherwise the store is replaced.
func (s *Store) Import(path string, merge bool) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, failures.Wrap(failures.ErrNotFound, "selection", "import", path, err)
	}
	imported, err := decode(data)
	if err != nil {
		return 0, failures.Wrap(failures.ErrValidation, "selection", "import", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string][]string, len(imported))
	if merge {
		next = cloneEntries(s.entries)
	}
	for key, names := range imported {
		next[key] = mergeNames(next[key], names)
	}
	if err := s.commit(next, "import"); err != nil {
		return 0, err
	}
	s.logger.Info("selections imported",
		logging.String("path", path),
		logging.Int("keys", len(imported)),
		logging.Bool("merge", merge))
	return len(imported), nil
}

// commit persists next and installs it. Callers hold s.mu for writing.
func (s *Store) commit(next map[string][]string, operation string) error {
	data, err := encode(next)
	if err != nil {
		return failures.Wrap(failures.ErrPersistence, "selection", operation, "encode selections", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		logging.ErrorWithContext(s.logger, "selection write failed", "selection_persist_failed",
			logging.String("path", s.path),
			logging.String(logging.FieldErrorHint, failures.Hint(failures.ErrPersistence)),
			logging.Error(err))
		return failures.Wrap(failures.ErrPersistence, "selection", operation, s.path, err)
	}
	s.entries = next
	return nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return failures.Wrap(failures.ErrPersistence, "selection", "load", "read "+s.path, err)
	}
	entries, err := decode(data)
	if err != nil {
		return failures.Wrap(failures.ErrPersistence, "selection", "load", "parse "+s.path, err)
	}
	s.entries = entries
	s.logger.Debug("selections loaded",
		logging.Int("keys", len(entries)),
		logging.String("path", s.path))
	return nil
}

func encode(entries map[string][]string) ([]byte, error) {
	if entries == nil {
		entries = map[string][]string{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decode(data []byte) (map[string][]string, error) {
	entries := make(map[string][]string)
	if len(strings.TrimSpace(string(data))) == 0 {
		return entries, nil
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for key, names := range raw {
		if cleaned := cleanNames(names); len(cleaned) > 0 && strings.TrimSpace(key) != "" {
			entries[key] = cleaned
		}
	}
	return entries, nil
}

func cleanNames(names []string) []string {
	return mergeNames(nil, names)
}

func mergeNames(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneEntries(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for key, names := range in {
		out[key] = append([]string(nil), names...)
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
