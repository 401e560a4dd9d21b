package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// promptConfirmer asks on the terminal. An empty answer accepts; end of
// input without an answer declines.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (c *promptConfirmer) Confirm(ctx context.Context, prompt string, items []string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintln(c.out)
	for _, item := range items {
		fmt.Fprintln(c.out, "  "+item)
	}
	fmt.Fprint(c.out, PromptStyle.Render(prompt+" (Y/n): "))

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(c.out)
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
