package prompt

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is what an input line asks for.
type Action int

const (
	ActionSelect Action = iota
	ActionSkip
	ActionNone
	ActionQuit
)

// Selection is a parsed input line.
type Selection struct {
	Action Action
	// Indices are zero-based choice positions in input order without repeats.
	Indices []int
}

// ParseSelection interprets an input line against n choices. Accepted forms:
// "1", "1,3", "2-4", "1 3" (one-based); "s" or an empty line to skip;
// "n" to record that no choice matches; "q" to quit.
func ParseSelection(input string, n int) (Selection, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	switch input {
	case "", "s", "skip":
		return Selection{Action: ActionSkip}, nil
	case "n", "none":
		return Selection{Action: ActionNone}, nil
	case "q", "quit", "exit":
		return Selection{Action: ActionQuit}, nil
	}

	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	seen := make(map[int]struct{})
	sel := Selection{Action: ActionSelect}
	add := func(idx int) error {
		if idx < 1 || idx > n {
			return fmt.Errorf("%d is not between 1 and %d", idx, n)
		}
		if _, dup := seen[idx]; !dup {
			seen[idx] = struct{}{}
			sel.Indices = append(sel.Indices, idx-1)
		}
		return nil
	}
	for _, field := range fields {
		if lo, hi, isRange := strings.Cut(field, "-"); isRange {
			start, err := strconv.Atoi(lo)
			if err != nil {
				return Selection{}, fmt.Errorf("invalid range %q", field)
			}
			end, err := strconv.Atoi(hi)
			if err != nil || end < start {
				return Selection{}, fmt.Errorf("invalid range %q", field)
			}
			for i := start; i <= end; i++ {
				if err := add(i); err != nil {
					return Selection{}, err
				}
			}
			continue
		}
		idx, err := strconv.Atoi(field)
		if err != nil {
			return Selection{}, fmt.Errorf("invalid choice %q", field)
		}
		if err := add(idx); err != nil {
			return Selection{}, err
		}
	}
	if len(sel.Indices) == 0 {
		return Selection{}, fmt.Errorf("no choices given")
	}
	return sel, nil
}
