package solver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"sessiongate/internal/domain"
)

// StaticSolver answers every challenge with the same token.
type StaticSolver struct {
	Token string
}

func (s StaticSolver) Solve(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Token == "" {
		return "", errors.New("static solver has no token")
	}
	return s.Token, nil
}

// PromptSolver asks an operator to paste a token. The challenge payload is
// shown on Prompt; one line is read from the input per challenge. A
// PromptSolver is not safe for concurrent use.
type PromptSolver struct {
	Prompt io.Writer
	in     *bufio.Reader
	lines  chan promptLine
}

type promptLine struct {
	text string
	err  error
}

// NewPromptSolver returns a PromptSolver reading tokens from in.
func NewPromptSolver(in io.Reader, prompt io.Writer) *PromptSolver {
	if prompt == nil {
		prompt = io.Discard
	}
	return &PromptSolver{Prompt: prompt, in: bufio.NewReader(in)}
}

func (s *PromptSolver) Solve(ctx context.Context, challengeData string) (string, error) {
	fmt.Fprintf(s.Prompt, "challenge: %s\nsolution token: ", challengeData)

	// The read happens in the background so a cancelled context returns at
	// once. A line read after cancellation is kept for the next challenge.
	if s.lines == nil {
		s.lines = make(chan promptLine, 1)
		go s.readLine()
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-s.lines:
		s.lines = nil
		if l.err != nil && (l.text == "" || !errors.Is(l.err, io.EOF)) {
			return "", fmt.Errorf("read token: %w", l.err)
		}
		token := strings.TrimSpace(l.text)
		if token == "" {
			return "", errors.New("empty token")
		}
		return token, nil
	}
}

func (s *PromptSolver) readLine() {
	text, err := s.in.ReadString('\n')
	s.lines <- promptLine{text: text, err: err}
}

var (
	_ domain.Solver = StaticSolver{}
	_ domain.Solver = (*PromptSolver)(nil)
)
