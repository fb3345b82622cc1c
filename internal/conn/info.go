package conn

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/resp"
)

// FetchServerCommands asks the server for its command table so the REPL can
// complete commands the built-in docs do not know. It returns nil, nil when
// the server refuses COMMAND.
func (c *Connection) FetchServerCommands(timeout time.Duration) ([]command.ServerCommand, error) {
	if err := c.Send(command.Argv("COMMAND")); err != nil {
		return nil, err
	}
	v, err := c.Receive(timeout)
	if err != nil {
		return nil, err
	}

	switch v := v.(type) {
	case resp.Error:
		return nil, nil
	case resp.Array:
		cmds := make([]command.ServerCommand, 0, len(v.Elems))
		for _, entry := range v.Elems {
			if sc, ok := parseCommandEntry(entry); ok {
				cmds = append(cmds, sc)
			}
		}
		return cmds, nil
	default:
		return nil, errors.Errorf("expected array for COMMAND, got %s", v.Kind())
	}
}

// parseCommandEntry reads one COMMAND entry: name, arity, and on 7.0+ the ACL
// categories at index 6 and subcommands at index 9.
func parseCommandEntry(v resp.Value) (command.ServerCommand, bool) {
	arr, ok := v.(resp.Array)
	if !ok || len(arr.Elems) < 2 {
		return command.ServerCommand{}, false
	}

	sc := command.ServerCommand{
		Name: strings.ToUpper(strings.ReplaceAll(arr.Elems[0].Text(), "|", " ")),
	}
	if n, ok := arr.Elems[1].(resp.Integer); ok {
		sc.Arity = n.Value
	}
	if len(arr.Elems) > 6 {
		if cats, ok := arr.Elems[6].(resp.Array); ok {
			for _, cat := range cats.Elems {
				sc.ACLCats = append(sc.ACLCats, cat.Text())
			}
		}
	}
	if len(arr.Elems) > 9 {
		if subs, ok := arr.Elems[9].(resp.Array); ok {
			for _, entry := range subs.Elems {
				if sub, ok := parseCommandEntry(entry); ok {
					sc.Subcommands = append(sc.Subcommands, sub)
				}
			}
		}
	}
	return sc, true
}

func (c *Connection) loadServerInfo(timeout time.Duration) error {
	v, err := c.roundTrip(command.Argv("INFO"), timeout)
	if err != nil {
		return err
	}
	bulk, ok := v.(resp.Bulk)
	if !ok {
		return errors.Errorf("expected bulk string for INFO, got %s", v.Kind())
	}
	c.ServerInfo = ParseInfo(bulk.Value)
	return nil
}

// ParseInfo splits an INFO payload into its field:value pairs. Section
// headers and blank lines are skipped.
func ParseInfo(payload string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(payload, "\r\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, ":"); ok {
			info[k] = v
		}
	}
	return info
}
