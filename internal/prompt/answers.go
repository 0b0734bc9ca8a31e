package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"logomatch/internal/logging"
	"logomatch/internal/matcher"
	"logomatch/internal/session"
)

// Answers decides prompts from a prepared mapping instead of asking.
type Answers struct {
	answers map[string][]string
	// AcceptBest picks the top choice for identifiers missing from the mapping
	// when its severity is high. Otherwise missing identifiers are skipped.
	AcceptBest bool
	// Known reports whether a name exists in the catalog. When set, listed
	// names it rejects are dropped with a warning.
	Known  func(name string) bool
	Logger *slog.Logger
}

// LoadAnswers reads a YAML or JSON mapping from source identifier to a list
// of canonical names. An empty list records that nothing matches.
func LoadAnswers(path string) (*Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	raw := make(map[string][]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return NewAnswers(raw), nil
}

// NewAnswers wraps an in-memory mapping.
func NewAnswers(answers map[string][]string) *Answers {
	cleaned := make(map[string][]string, len(answers))
	for id, names := range answers {
		cleaned[strings.TrimSpace(id)] = names
	}
	return &Answers{answers: cleaned}
}

// Present implements session.Presenter.
func (a *Answers) Present(ctx context.Context, requests <-chan session.Request, record session.RecordFunc) error {
	for {
		var (
			req session.Request
			ok  bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok = <-requests:
		}
		if !ok {
			return nil
		}
		if err := record(a.decide(req)); err != nil {
			return err
		}
	}
}

func (a *Answers) decide(req session.Request) session.Decision {
	if names, ok := a.answers[req.ID]; ok {
		values, unknown := a.filterKnown(names)
		if len(unknown) > 0 {
			logging.WarnWithContext(a.logger(), "answers list names missing from catalog", "answers_unknown_names",
				logging.String(logging.FieldSourceID, req.ID),
				logging.Strings("names", unknown),
				logging.String(logging.FieldImpact, "unknown names are not recorded"),
				logging.String(logging.FieldErrorHint, "correct the names in the answers file"))
			if len(values) == 0 {
				return session.Decision{ID: req.ID, Skip: true}
			}
		}
		return session.Decision{ID: req.ID, Values: values}
	}
	if a.AcceptBest && len(req.Choices) > 0 && req.Choices[0].Severity == matcher.SeverityHigh {
		return session.Decision{ID: req.ID, Values: []string{req.Choices[0].Value}}
	}
	return session.Decision{ID: req.ID, Skip: true}
}

func (a *Answers) filterKnown(names []string) (known, unknown []string) {
	known = make([]string, 0, len(names))
	for _, name := range names {
		if a.Known != nil && !a.Known(strings.TrimSpace(name)) {
			unknown = append(unknown, name)
			continue
		}
		known = append(known, name)
	}
	return known, unknown
}

func (a *Answers) logger() *slog.Logger {
	if a.Logger == nil {
		return logging.NewNop()
	}
	return a.Logger
}
