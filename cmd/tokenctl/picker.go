package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// terminalPicker prompts for a folder on the controlling terminal. An empty
// answer or end of input cancels.
type terminalPicker struct {
	in     *os.File
	out    io.Writer
	prompt string
}

func newTerminalPicker() terminalPicker {
	return terminalPicker{in: os.Stdin, out: os.Stdout, prompt: "project folder> "}
}

func (p terminalPicker) PickDirectory(ctx context.Context) (string, bool, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return "", false, errors.New("--pick needs an interactive terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return "", false, err
	}
	defer term.Restore(fd, state)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{p.in, p.out}, p.prompt)
	t.AutoCompleteCallback = completeDirectory

	type answer struct {
		line string
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		line, err := t.ReadLine()
		done <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case got := <-done:
		if errors.Is(got.err, io.EOF) {
			return "", false, nil
		}
		if got.err != nil {
			return "", false, got.err
		}
		line := strings.TrimSpace(got.line)
		if line == "" {
			return "", false, nil
		}
		abs, err := filepath.Abs(expandHome(line))
		if err != nil {
			return "", false, err
		}
		return abs, true, nil
	}
}

// completeDirectory completes the last path segment on tab when exactly one
// directory matches.
func completeDirectory(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' || pos != len(line) {
		return "", 0, false
	}
	dir, prefix := filepath.Split(expandHome(line))
	if !strings.HasSuffix(line, prefix) {
		return "", 0, false
	}
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, false
	}
	var match string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if match != "" {
			return "", 0, false
		}
		match = entry.Name()
	}
	if match == "" {
		return "", 0, false
	}
	completed := line[:len(line)-len(prefix)] + match + string(filepath.Separator)
	return completed, len(completed), true
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
