package session

import (
	"fmt"
	"strings"

	"logomatch/internal/matcher"
	"logomatch/internal/sources"
	"logomatch/internal/textutil"
)

// ChoiceLabel formats a candidate for display:
// "Lincoln High | Seattle, WA | 0.2222".
func ChoiceLabel(c matcher.Candidate) string {
	location := textutil.StartCase(c.Entry.City)
	if state := strings.TrimSpace(c.Entry.State); state != "" {
		if location != "" {
			location += ", "
		}
		location += strings.ToUpper(state)
	}
	return fmt.Sprintf("%s | %s | %.4f", textutil.StartCase(c.Entry.Name), location, c.Score)
}

// NewRequest assembles the prompt for id from ranked candidates. Candidates
// sharing a canonical name collapse to the first, which is the best scoring.
func NewRequest(id, message string, candidates []matcher.Candidate) Request {
	if message == "" {
		message = DefaultMessage
	}
	req := Request{
		ID:      id,
		Query:   sources.Query(id),
		Message: fmt.Sprintf(message, id),
		Choices: make([]Choice, 0, len(candidates)),
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Entry.Name]; dup {
			continue
		}
		seen[c.Entry.Name] = struct{}{}
		req.Choices = append(req.Choices, Choice{
			Label:    ChoiceLabel(c),
			Value:    c.Entry.Name,
			Score:    c.Score,
			Severity: matcher.Classify(c.Score),
		})
	}
	return req
}
