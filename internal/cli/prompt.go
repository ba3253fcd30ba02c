package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// readLine prompts and returns the trimmed input line. EOF flips a.eof so
// menu loops can unwind.
func (a *App) readLine(prompt string) string {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		a.eof = true
		return ""
	}
	return strings.TrimSpace(line)
}

// readPassword prompts with echo disabled when stdin is a terminal.
// Anything else (pipes, tests) falls back to a plain line read.
func (a *App) readPassword(prompt string) string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(a.out, prompt)
		passwordBytes, err := term.ReadPassword(fd)
		fmt.Fprintln(a.out)
		if err != nil {
			return ""
		}
		return string(passwordBytes)
	}

	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		a.eof = true
		return ""
	}
	// Keep inner whitespace: only the line ending is ours.
	return strings.TrimRight(line, "\r\n")
}

// readID prompts for a numeric id.
func (a *App) readID(prompt string) (uint64, bool) {
	value := a.readLine(prompt)
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		a.printf("Invalid id %q", value)
		return 0, false
	}
	return id, true
}

// readOptional returns nil for a blank answer.
func (a *App) readOptional(prompt string) *string {
	value := a.readLine(prompt)
	if value == "" {
		return nil
	}
	return &value
}

func parseID(value string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(value), 10, 64)
}

// parseIDList parses a comma-separated id list.
func parseIDList(value string) ([]uint64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	ids := make([]uint64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", strings.TrimSpace(part))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
