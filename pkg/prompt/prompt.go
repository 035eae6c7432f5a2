// Package prompt asks the operator yes/no questions on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"minkowski3d/internal/monitoring"
)

// Terminal reads answers line by line. An unrecognised answer repeats the
// question. When the input is not interactive, or ends before an answer is
// given, Confirm returns Fallback without blocking.
type Terminal struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool

	// Fallback is the answer used when nobody can be asked.
	Fallback bool
}

// NewTerminal prompts on out and reads from in. Whether in is a terminal is
// detected once, here.
func NewTerminal(in *os.File, out io.Writer, fallback bool) *Terminal {
	fd := in.Fd()
	return &Terminal{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		Fallback:    fallback,
	}
}

// NewReader prompts on out and reads answers from r, treating r as
// interactive.
func NewReader(r io.Reader, out io.Writer, fallback bool) *Terminal {
	return &Terminal{
		in:          bufio.NewReader(r),
		out:         out,
		interactive: true,
		Fallback:    fallback,
	}
}

// Confirm asks question until it gets y, yes, n or no (in any case).
func (t *Terminal) Confirm(question string) (bool, error) {
	if !t.interactive {
		monitoring.Logf("Input is not a terminal, answering %q with %s", strings.TrimSpace(question), yesNo(t.Fallback))
		return t.Fallback, nil
	}
	for {
		if _, err := fmt.Fprint(t.out, question); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}
		line, err := t.in.ReadString('\n')
		if answer, ok := parseAnswer(line); ok {
			return answer, nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(t.out)
			return t.Fallback, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to read answer: %w", err)
		}
	}
}

func parseAnswer(line string) (answer, ok bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Fixed always gives the same answer.
type Fixed bool

// Confirm returns the fixed answer.
func (f Fixed) Confirm(string) (bool, error) {
	return bool(f), nil
}
