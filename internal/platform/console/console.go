// Package console drives a game over plain line-oriented input and output,
// for pipes, scripts and terminals without a full screen.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/toontrek/internal/game"
)

// Reader reads player input line by line. It implements game.LineReader.
type Reader struct {
	scanner *bufio.Scanner
	prompt  io.Writer
}

// NewReader reads lines from r and writes prompts to prompt.
func NewReader(r io.Reader, prompt io.Writer) *Reader {
	return &Reader{scanner: bufio.NewScanner(r), prompt: prompt}
}

// ReadLine writes the prompt and returns the next line without its line
// ending. It returns io.EOF when input is exhausted.
func (r *Reader) ReadLine(prompt string) (string, error) {
	if prompt != "" && r.prompt != nil {
		if _, err := io.WriteString(r.prompt, prompt); err != nil {
			return "", err
		}
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), nil
}

// Writer prints messages one per line. It implements game.Reporter.
// Colors are only used when w is a terminal.
type Writer struct {
	w      io.Writer
	styles map[game.MessageKind]lipgloss.Style
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	r := lipgloss.NewRenderer(w)
	return &Writer{
		w: w,
		styles: map[game.MessageKind]lipgloss.Style{
			game.Warning:  r.NewStyle().Foreground(lipgloss.Color("#FFB86C")),
			game.Retry:    r.NewStyle().Foreground(lipgloss.Color("#888888")),
			game.Damage:   r.NewStyle().Foreground(lipgloss.Color("#FF5555")),
			game.Event:    r.NewStyle().Foreground(lipgloss.Color("#8BE9FD")),
			game.GameOver: r.NewStyle().Foreground(lipgloss.Color("#FF79C6")),
		},
	}
}

// Report writes each message on its own line.
func (w *Writer) Report(msgs ...game.Message) error {
	for _, m := range msgs {
		text := m.Text
		if style, ok := w.styles[m.Kind]; ok {
			text = style.Render(text)
		}
		if _, err := fmt.Fprintln(w.w, text); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) blank() error {
	_, err := fmt.Fprintln(w.w)
	return err
}

// Run plays rounds until the game ends or input fails.
func Run(ctx context.Context, s *game.Session, in game.LineReader, out *Writer) (game.Outcome, error) {
	for {
		if err := out.blank(); err != nil {
			return s.Outcome(), err
		}

		outcome, err := s.AdvanceRound(ctx, in, out)
		if err != nil {
			return outcome, err
		}
		if outcome.Terminal() {
			return outcome, out.Report(game.Message{Kind: game.GameOver, Text: "END GAME."})
		}
	}
}
