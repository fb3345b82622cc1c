package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/serializer"
)

const historyFileName = ".redistx_history"

// completer completes the command word, and codec names after "#:".
type completer struct {
	reg *command.Registry
}

func (c *completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	text := string(line[:pos])

	if i := strings.LastIndex(text, "#:"); i != -1 {
		prefix := strings.ToLower(text[i+2:])
		for _, name := range serializer.Names() {
			if strings.HasPrefix(name, prefix) {
				newLine = append(newLine, []rune(name[len(prefix):]))
			}
		}
		return newLine, len(prefix)
	}

	if strings.Contains(text, " ") {
		return nil, 0
	}
	for _, match := range c.reg.GetCommands(text) {
		newLine = append(newLine, []rune(strings.ToUpper(match[len(text):])+" "))
	}
	return newLine, len(text)
}

// hinter prints the argument synopsis of the command being typed on the row
// below the input. Paint only clears the old hint; OnChange draws the new
// one after readline has placed the cursor, saving and restoring the cursor
// position so readline's own bookkeeping is untouched.
type hinter struct {
	reg       *command.Registry
	promptLen int
	termWidth int
}

func (h *hinter) Paint(line []rune, pos int) []rune {
	out := make([]rune, len(line), len(line)+3)
	copy(out, line)
	return append(out, []rune("\033[J")...)
}

func (h *hinter) OnChange(line []rune, pos int, key rune) ([]rune, int, bool) {
	if len(line) == 0 {
		return nil, 0, false
	}

	text := string(line)
	name, rest, hasArgs := strings.Cut(text, " ")

	// Upper-case a known command word as it is typed.
	if name != "" {
		if upper := strings.ToUpper(name); name != upper && h.reg.Get(upper) != nil {
			return []rune(upper + text[len(name):]), pos, true
		}
	}
	if !hasArgs || name == "" {
		return nil, 0, false
	}

	doc := h.lookup(name, rest)
	if doc == nil {
		return nil, 0, false
	}

	hint := doc.Command + " " + doc.Arguments
	width := 2 + len(hint) + 3 + len(doc.Summary)
	rows := 1
	if h.termWidth > 0 {
		rows = (width + h.termWidth - 1) / h.termWidth
	}

	fmt.Fprintf(os.Stdout, "\n\r\033[K  \033[36m%s\033[0m\033[34m - %s\033[0m\033[%dA\r\033[%dC",
		hint, doc.Summary, rows, h.promptLen+pos)
	return nil, 0, false
}

// lookup prefers a two-word command such as CLIENT INFO over its parent.
func (h *hinter) lookup(name, rest string) *command.CommandDoc {
	base := strings.ToUpper(name)
	if sub := strings.Fields(rest); len(sub) > 0 {
		if doc := h.reg.Get(base + " " + strings.ToUpper(sub[0])); doc != nil {
			return doc
		}
	}
	return h.reg.Get(base)
}

func runRepl(s *session) error {
	s.printConnectionInfo()

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, historyFileName)
	}

	tw, _, _ := term.GetSize(int(os.Stdout.Fd()))
	h := &hinter{reg: s.reg, promptLen: len(s.prompt()), termWidth: tw}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryFile:     historyFile,
		AutoComplete:    &completer{reg: s.reg},
		Painter:         h,
		Listener:        h,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initialize readline: %w", err)
	}
	defer rl.Close()

	s.setPrompt = func(p string) {
		h.promptLen = len(p)
		rl.SetPrompt(p)
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parsed, err := command.Parse(line, s.reg)
		if err != nil {
			red.Fprintf(s.out, "Parse error: %v\n", err)
			continue
		}
		if parsed.Name == "" {
			continue
		}

		if s.handle(parsed) {
			return nil
		}

		// The window may have been resized.
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			h.termWidth = w
		}
	}
}
