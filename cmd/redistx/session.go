package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/cosmez/redistx-go/internal/client"
	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/config"
	"github.com/cosmez/redistx-go/internal/output"
	"github.com/cosmez/redistx-go/internal/tx"
)

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
	cyan   = color.New(color.FgCyan)
	blue   = color.New(color.FgBlue)
)

// session is the state shared by the REPL and one-shot mode: the client,
// the command registry and the open MULTI block, if any.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	reg    *command.Registry
	client *client.Client
	out    io.Writer
	in     io.Reader
	color  bool

	// queue is non-nil between MULTI and EXEC or DISCARD.
	queue *tx.Queue

	// setPrompt is called when the prompt should change. Nil outside the
	// REPL.
	setPrompt func(string)
}

func (s *session) close() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *session) prompt() string {
	p := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	if s.cfg.DB != 0 {
		p += fmt.Sprintf("[%d]", s.cfg.DB)
	}
	if s.queue != nil {
		p += "(TX)"
	}
	return p + "> "
}

func (s *session) refreshPrompt() {
	if s.setPrompt != nil {
		s.setPrompt(s.prompt())
	}
}

func (s *session) printOpts() output.Options {
	return output.Options{Color: s.color, Newline: true}
}

func (s *session) printErr(err error) {
	output.PrintError(s.out, err, s.color)
}

func (s *session) runOneShot(line string) error {
	parsed, err := command.Parse(line, s.reg)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if parsed.Name == "" {
		return nil
	}
	s.handle(parsed)
	return nil
}

// mergeServerCommands adds commands the server reports through COMMAND to
// the registry for completion and hints. Failures are only reported.
func (s *session) mergeServerCommands() {
	cmds, err := s.client.Conn().FetchServerCommands(s.cfg.Timeout)
	if err != nil {
		s.log.Warn("could not fetch server commands", zap.Error(err))
		return
	}
	if cmds != nil {
		s.reg.MergeServerCommands(cmds)
	}
}

func (s *session) printConnectionInfo() {
	info := s.client.Conn().ServerInfo
	if info == nil {
		return
	}

	if errStr, ok := info["error"]; ok {
		yellow.Fprintf(s.out, "Warning: Could not fetch server info: %s\n", errStr)
		return
	}

	mode := info["redis_mode"]
	if mode == "" {
		mode = "standalone"
	}
	green.Fprintf(s.out, "Connected to Redis %s %s\n", info["redis_version"], mode)

	memTotal := info["total_system_memory_human"]
	if memTotal == "" {
		memTotal = "Unknown"
	}
	cyan.Fprintf(s.out, "Memory: %s / %s\n", info["used_memory_human"], memTotal)
	cyan.Fprintf(s.out, "Connected Clients: %s\n", info["connected_clients"])

	var dbs []string
	for k := range info {
		if strings.HasPrefix(k, "db") {
			dbs = append(dbs, k)
		}
	}
	sort.Strings(dbs)
	for _, k := range dbs {
		// db0:keys=150,expires=0,avg_ttl=0
		first, _, _ := strings.Cut(info[k], ",")
		if _, n, ok := strings.Cut(first, "="); ok {
			cyan.Fprintf(s.out, "%s (%s Total Keys)\n", k, n)
		}
	}
	fmt.Fprintln(s.out)
}
