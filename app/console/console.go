// Package console implements the interactive line interface of the depot
// shell. Each input line is parsed by a small cobra command tree bound to a
// session; output is plain text.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/depot/core/session"
)

// Prompt is printed before each line in interactive mode.
const Prompt = "depot> "

// errQuit stops Run.
var errQuit = errors.New("quit")

// Console runs text commands against a session.
type Console struct {
	sess   *session.Session
	out    io.Writer
	prompt bool
}

// New returns a console writing to out.
func New(sess *session.Session, out io.Writer) *Console {
	return &Console{sess: sess, out: out}
}

// WithPrompt enables the prompt, for terminals.
func (c *Console) WithPrompt(on bool) *Console {
	c.prompt = on
	return c
}

// Run reads commands from in until EOF, quit or ctx cancellation. A
// cancellation returns immediately, even while waiting for input; the
// reader goroutine then ends with the next line or EOF.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		if c.prompt {
			fmt.Fprint(c.out, Prompt)
		}
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			if quit := c.Exec(line); quit {
				return nil
			}
		}
	}
}

// Exec runs one command line and reports whether the console should stop.
// Command errors are printed, never returned.
func (c *Console) Exec(line string) (quit bool) {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return false
	}
	root := c.commands()
	root.SetArgs(args)
	err := root.Execute()
	switch {
	case errors.Is(err, errQuit):
		return true
	case err != nil:
		fmt.Fprintf(c.out, "error: %s\n", describe(err))
	}
	return false
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// describe renders an error for humans, keeping the session's wording.
func describe(err error) string {
	var pce *session.PassengerCountError
	if errors.As(err, &pce) {
		return fmt.Sprintf("V%d carries at most %d passengers, got %d", pce.VehicleID, pce.Capacity, pce.Passengers)
	}
	msg := err.Error()
	for _, op := range operationPrefixes {
		msg = strings.TrimPrefix(msg, op)
	}
	return msg
}

var operationPrefixes = []string{"release trip: ", "start day: ", "end day: ", "add vehicle: ", "add garage: "}

func ints(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(strings.TrimLeft(a, "GgVv"))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = n
	}
	return out, nil
}
