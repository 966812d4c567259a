package decision

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Console asks questions on a terminal. Entering "q" at any prompt, closing
// the input, or cancelling the context cancels the prompt.
type Console struct {
	out   io.Writer
	color bool

	in    *bufio.Scanner
	once  sync.Once
	lines chan line
}

type line struct {
	text string
	err  error
}

// NewConsole returns a Console reading answers from in and writing prompts to out.
//
// Precondition: in and out must be non-nil.
func NewConsole(in io.Reader, out io.Writer, color bool) *Console {
	return &Console{out: out, color: color, in: bufio.NewScanner(in), lines: make(chan line)}
}

func (c *Console) paint(s Style, text string) string {
	if !c.color {
		return text
	}
	return s.Paint(text)
}

// readLine returns the next trimmed input line. A single reader goroutine
// feeds all prompts so that a cancelled prompt does not lose the next line.
func (c *Console) readLine(ctx context.Context) (string, error) {
	c.once.Do(func() {
		go func() {
			for c.in.Scan() {
				c.lines <- line{text: c.in.Text()}
			}
			err := c.in.Err()
			if err == nil {
				err = io.EOF
			}
			for {
				c.lines <- line{err: err}
			}
		}()
	})
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	case l := <-c.lines:
		if l.err != nil {
			return "", fmt.Errorf("%w: %w", ErrCancelled, l.err)
		}
		text := strings.TrimSpace(l.text)
		if strings.EqualFold(text, "q") {
			return "", ErrCancelled
		}
		return text, nil
	}
}

func (c *Console) ask(prompt string) {
	fmt.Fprintf(c.out, "%s ", c.paint(StylePrompt, prompt))
}

func (c *Console) warn(format string, args ...any) {
	fmt.Fprintln(c.out, c.paint(StyleWarning, fmt.Sprintf(format, args...)))
}

func (c *Console) listOptions(options []string) {
	for i, o := range options {
		fmt.Fprintf(c.out, "  %s %s\n", c.paint(StyleOption, fmt.Sprintf("%2d)", i+1)), o)
	}
}

// ChooseOne implements Provider. An empty answer selects the first option.
func (c *Console) ChooseOne(ctx context.Context, prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("decision: %q offered no options", prompt)
	}
	fmt.Fprintln(c.out, c.paint(StyleQuestion, prompt))
	c.listOptions(options)
	for {
		c.ask(fmt.Sprintf("[1-%d, q cancels]:", len(options)))
		text, err := c.readLine(ctx)
		if err != nil {
			return 0, err
		}
		if text == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 || n > len(options) {
			c.warn("enter a number between 1 and %d", len(options))
			continue
		}
		return n - 1, nil
	}
}

// ChooseMany implements Provider. Answers are comma or space separated
// option numbers; an empty answer selects nothing.
func (c *Console) ChooseMany(ctx context.Context, prompt string, options []string) ([]int, error) {
	if len(options) == 0 {
		return nil, nil
	}
	fmt.Fprintln(c.out, c.paint(StyleQuestion, prompt))
	c.listOptions(options)
outer:
	for {
		c.ask("[numbers separated by commas, empty for none]:")
		text, err := c.readLine(ctx)
		if err != nil {
			return nil, err
		}
		seen := make(map[int]bool)
		for _, f := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' }) {
			n, err := strconv.Atoi(f)
			if err != nil || n < 1 || n > len(options) {
				c.warn("%q is not an option", f)
				continue outer
			}
			seen[n-1] = true
		}
		out := make([]int, 0, len(seen))
		for i := range seen {
			out = append(out, i)
		}
		sort.Ints(out)
		return out, nil
	}
}

// InputNumber implements Provider. An empty answer returns def.
func (c *Console) InputNumber(ctx context.Context, prompt string, def int) (int, error) {
	for {
		c.ask(fmt.Sprintf("%s %s", prompt, c.paint(StyleDefault, fmt.Sprintf("[%d]:", def))))
		text, err := c.readLine(ctx)
		if err != nil {
			return 0, err
		}
		if text == "" {
			return def, nil
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			c.warn("enter a whole number")
			continue
		}
		return n, nil
	}
}

// Confirm implements Provider. An empty answer means no.
func (c *Console) Confirm(ctx context.Context, prompt string) (bool, error) {
	for {
		c.ask(prompt + " [y/N]:")
		text, err := c.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(text) {
		case "y", "yes", "j", "ja":
			return true, nil
		case "", "n", "no", "nein":
			return false, nil
		}
		c.warn("answer y or n")
	}
}
