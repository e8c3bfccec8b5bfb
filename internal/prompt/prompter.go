// Package prompt reads answers to interactive questions.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputClosed is returned once the input has no more lines.
var ErrInputClosed = errors.New("input closed")

// Prompter asks a question and returns the answer without its line ending.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

type line struct {
	text string
	err  error
}

// Console prompts on out and reads lines from in. Reads happen on a
// background goroutine so a cancelled context interrupts a waiting prompt.
type Console struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan line
}

// NewConsole returns a Console over in and out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

func (c *Console) Ask(ctx context.Context, question string) (string, error) {
	c.once.Do(c.start)

	if _, err := fmt.Fprint(c.out, question); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-c.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return l.text, l.err
	}
}

func (c *Console) start() {
	c.lines = make(chan line)
	go func() {
		defer close(c.lines)
		reader := bufio.NewReader(c.in)
		for {
			text, err := reader.ReadString('\n')
			if err == nil || text != "" {
				c.lines <- line{text: strings.TrimRight(text, "\r\n")}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					c.lines <- line{err: fmt.Errorf("failed to read input: %w", err)}
				}
				return
			}
		}
	}()
}

// Scripted answers from a fixed list, for tests and non-interactive runs.
// Questions asked are recorded in order.
type Scripted struct {
	mu        sync.Mutex
	answers   []string
	Questions []string
}

// NewScripted returns a Scripted prompter that answers in order.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

func (s *Scripted) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Questions = append(s.Questions, question)
	if len(s.answers) == 0 {
		return "", ErrInputClosed
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}
