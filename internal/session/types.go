package session

import (
	"context"

	"logomatch/internal/matcher"
	"logomatch/internal/promptcache"
)

// DefaultMessage is the prompt text; %s receives the source identifier.
const DefaultMessage = "Which school(s) match '%s'?"

// Choice is one selectable option in a prompt. Value is a canonical catalog
// name.
type Choice struct {
	Label    string           `json:"label"`
	Value    string           `json:"value"`
	Score    float64          `json:"score"`
	Severity matcher.Severity `json:"severity"`
}

// Request is one prompt for a source identifier.
type Request struct {
	ID      string   `json:"id"`
	Query   string   `json:"query"`
	Message string   `json:"message"`
	Choices []Choice `json:"choices"`
}

// Decision is the operator's answer to a Request. Skip leaves the stored
// selection untouched; otherwise Values replaces it.
type Decision struct {
	ID     string
	Values []string
	Skip   bool
}

// RecordFunc persists a decision. A returned error must end the presentation.
type RecordFunc func(Decision) error

// Presenter shows requests to the operator and reports decisions through
// record. Present returns when requests is closed, the operator quits, or ctx
// ends.
type Presenter interface {
	Present(ctx context.Context, requests <-chan Request, record RecordFunc) error
}

// Store is the part of the selection store a session writes to.
type Store interface {
	Get(key string) ([]string, bool)
	Set(key string, names []string) error
}

// PromptCache persists a computed batch of requests between runs.
type PromptCache interface {
	Load(ctx context.Context, fingerprint string) ([]promptcache.Record, bool, error)
	Save(ctx context.Context, fingerprint string, records []promptcache.Record) error
}

// Summary reports what a run did.
type Summary struct {
	Sources         int  `json:"sources"`
	AlreadyResolved int  `json:"already_resolved"`
	Requests        int  `json:"requests"`
	Recorded        int  `json:"recorded"`
	Skipped         int  `json:"skipped"`
	EmptyMatches    int  `json:"empty_matches"`
	FromCache       bool `json:"from_cache"`
}

func toRecords(requests []Request) []promptcache.Record {
	records := make([]promptcache.Record, len(requests))
	for i, req := range requests {
		choices := make([]promptcache.Choice, len(req.Choices))
		for j, c := range req.Choices {
			choices[j] = promptcache.Choice{Label: c.Label, Value: c.Value, Score: c.Score}
		}
		records[i] = promptcache.Record{ID: req.ID, Query: req.Query, Message: req.Message, Choices: choices}
	}
	return records
}

func fromRecord(rec promptcache.Record) Request {
	choices := make([]Choice, len(rec.Choices))
	for i, c := range rec.Choices {
		choices[i] = Choice{Label: c.Label, Value: c.Value, Score: c.Score, Severity: matcher.Classify(c.Score)}
	}
	return Request{ID: rec.ID, Query: rec.Query, Message: rec.Message, Choices: choices}
}
