package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"logomatch/internal/session"
)

// ErrQuit is returned by Present when the operator quits.
var ErrQuit = errors.New("operator quit")

// Terminal is a line-oriented multi-select presenter.
type Terminal struct {
	out     io.Writer
	painter Painter
	lines   <-chan string
	// Total, when set, numbers prompts as "[i/Total]".
	Total int
}

// NewTerminal reads answers from in and writes prompts to out.
func NewTerminal(in io.Reader, out io.Writer, painter Painter) *Terminal {
	return &Terminal{out: out, painter: painter, lines: readLines(in)}
}

// Present implements session.Presenter.
func (t *Terminal) Present(ctx context.Context, requests <-chan session.Request, record session.RecordFunc) error {
	shown := 0
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
		shown++
		decision, err := t.ask(ctx, shown, req)
		if err != nil {
			return err
		}
		if err := record(decision); err != nil {
			return err
		}
	}
}

func (t *Terminal) ask(ctx context.Context, n int, req session.Request) (session.Decision, error) {
	counter := fmt.Sprintf("[%d]", n)
	if t.Total > 0 {
		counter = fmt.Sprintf("[%d/%d]", n, t.Total)
	}
	fmt.Fprintf(t.out, "\n%s %s\n", t.painter.Hint(counter), t.painter.Message(req.Message))

	if len(req.Choices) == 0 {
		fmt.Fprintln(t.out, t.painter.Hint("  no candidates; skipped"))
		return session.Decision{ID: req.ID, Skip: true}, nil
	}
	for i, choice := range req.Choices {
		fmt.Fprintf(t.out, "  %2d) %s %s\n", i+1,
			t.painter.Severity(choice.Severity, choice.Label),
			t.painter.Hint("("+choice.Severity.String()+")"))
	}

	for {
		fmt.Fprint(t.out, t.painter.Hint("select (e.g. 1,3 or 2-4), s=skip, n=none, q=quit: "))
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return session.Decision{}, ctx.Err()
		case line, ok = <-t.lines:
		}
		if !ok {
			fmt.Fprintln(t.out)
			return session.Decision{}, ErrQuit
		}
		sel, err := ParseSelection(line, len(req.Choices))
		if err != nil {
			fmt.Fprintln(t.out, t.painter.Error(err.Error()))
			continue
		}
		switch sel.Action {
		case ActionQuit:
			return session.Decision{}, ErrQuit
		case ActionSkip:
			return session.Decision{ID: req.ID, Skip: true}, nil
		case ActionNone:
			return session.Decision{ID: req.ID}, nil
		default:
			values := make([]string, 0, len(sel.Indices))
			for _, idx := range sel.Indices {
				values = append(values, req.Choices[idx].Value)
			}
			return session.Decision{ID: req.ID, Values: values}, nil
		}
	}
}

// readLines feeds lines from r into a channel so reads can be abandoned on
// cancellation. The channel closes at EOF.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
