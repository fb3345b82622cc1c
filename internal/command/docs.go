package command

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed simple_commands.json
var commandsJSON []byte

// Attr describes how the client treats a command, independent of its docs.
type Attr uint8

const (
	// Dangerous commands ask for confirmation before they run or are queued.
	Dangerous Attr = 1 << iota
	// Blocking commands can wait on the server indefinitely, so their reply
	// is read without a timeout.
	Blocking
	// Local commands are carried out by the client and never sent as is.
	Local
	// NoQueue commands are refused between MULTI and EXEC.
	NoQueue
)

// Has reports whether every bit of want is set.
func (a Attr) Has(want Attr) bool { return a&want == want }

// AppCommands are handled by the REPL itself and never reach the server.
var AppCommands = []CommandDoc{
	{Command: "EXIT", Summary: "Exit the application", Group: "application"},
	{Command: "CONNECT", Summary: "Connect to a server", Arguments: "host port [user] [pass]", Group: "application"},
	{Command: "HELP", Summary: "Show help for a command", Arguments: "[command]", Group: "application"},
	{Command: "CLEAR", Summary: "Clear the screen", Group: "application"},
	{Command: "SAFEKEYS", Summary: "Iterate over keys with SCAN, each key reported once", Arguments: "[pattern]", Group: "application"},
	{Command: "VIEW", Summary: "View the contents of a key", Arguments: "key", Group: "application"},
	{Command: "EXPORT", Summary: "Export the result of a command to a file", Arguments: "file command [args...]", Group: "application"},
	{Command: "WATCHINCR", Summary: "Optimistically increment an integer key with WATCH/MULTI/EXEC", Arguments: "key [increment] [retries]", Group: "application"},
	{Command: "METRICS", Summary: "Print client metrics in Prometheus text format", Group: "application"},
}

// builtinAttrs covers commands whose treatment does not follow from their
// docs. App commands not listed here are Local|NoQueue.
var builtinAttrs = map[string]Attr{
	"EXIT":    Local,
	"QUIT":    Local,
	"HELP":    Local,
	"CLEAR":   Local,
	"METRICS": Local,

	// The transaction itself is driven by the client-side queue.
	"MULTI":   Local | NoQueue,
	"EXEC":    Local,
	"DISCARD": Local,
	"WATCH":   NoQueue,

	"SUBSCRIBE":  NoQueue,
	"PSUBSCRIBE": NoQueue,
	"SSUBSCRIBE": NoQueue,
	"MONITOR":    NoQueue,

	"BLPOP": Blocking, "BRPOP": Blocking, "BRPOPLPUSH": Blocking,
	"BLMOVE": Blocking, "BLMPOP": Blocking,
	"BZPOPMIN": Blocking, "BZPOPMAX": Blocking, "BZMPOP": Blocking,
	"XREAD": Blocking, "XREADGROUP": Blocking,
	"WAIT": Blocking, "WAITAOF": Blocking,

	"FLUSHDB": Dangerous, "FLUSHALL": Dangerous, "KEYS": Dangerous,
	"PEXPIRE": Dangerous, "DEL": Dangerous, "CONFIG": Dangerous,
	"SHUTDOWN": Dangerous, "BGREWRITEAOF": Dangerous, "BGSAVE": Dangerous,
	"SAVE": Dangerous, "SPOP": Dangerous, "SREM": Dangerous,
	"RENAME": Dangerous, "DEBUG": Dangerous,
}

// Registry holds the docs and attributes of every known command, keyed by
// upper-case name. Two-word names such as "CLIENT INFO" are keys of their own.
type Registry struct {
	docs  map[string]*CommandDoc
	names []string // sorted, for completion
	attrs map[string]Attr
}

// NewRegistry loads the embedded command docs and adds AppCommands.
func NewRegistry() (*Registry, error) {
	var docs []CommandDoc
	if err := json.Unmarshal(commandsJSON, &docs); err != nil {
		return nil, fmt.Errorf("parse embedded command docs: %w", err)
	}

	r := &Registry{
		docs:  make(map[string]*CommandDoc, len(docs)+len(AppCommands)),
		attrs: make(map[string]Attr, len(builtinAttrs)+len(AppCommands)),
	}
	for name, a := range builtinAttrs {
		r.attrs[name] = a
	}
	for _, doc := range docs {
		r.add(doc)
	}
	for _, doc := range AppCommands {
		r.add(doc)
		if _, ok := r.attrs[doc.Command]; !ok {
			r.attrs[doc.Command] = Local | NoQueue
		}
	}
	return r, nil
}

func (r *Registry) add(doc CommandDoc) {
	name := strings.ToUpper(doc.Command)
	if _, ok := r.docs[name]; !ok {
		i := sort.SearchStrings(r.names, name)
		r.names = append(r.names, "")
		copy(r.names[i+1:], r.names[i:])
		r.names[i] = name
	}
	r.docs[name] = &doc
}

// Get returns the docs for a command, or nil.
func (r *Registry) Get(cmd string) *CommandDoc {
	return r.docs[strings.ToUpper(cmd)]
}

// GetCommands returns the known command names starting with prefix, in
// alphabetical order.
func (r *Registry) GetCommands(prefix string) []string {
	prefix = strings.ToUpper(prefix)
	i := sort.SearchStrings(r.names, prefix)
	var out []string
	for ; i < len(r.names) && strings.HasPrefix(r.names[i], prefix); i++ {
		out = append(out, r.names[i])
	}
	return out
}

// Attrs returns the attributes of a command. Unknown commands have none.
func (r *Registry) Attrs(cmd string) Attr {
	return r.attrs[strings.ToUpper(cmd)]
}

// IsDangerous reports whether cmd must be confirmed before it runs.
func (r *Registry) IsDangerous(cmd string) bool { return r.Attrs(cmd).Has(Dangerous) }

// IsBlocking reports whether cmd may wait on the server without bound.
func (r *Registry) IsBlocking(cmd string) bool { return r.Attrs(cmd).Has(Blocking) }

// MergeServerCommands adds the commands a server reports through COMMAND.
// Known commands keep their docs. New ones get an argument hint built from
// their arity, a group from their ACL categories, and the Dangerous or
// Blocking attribute when the server tags them @dangerous or @blocking.
func (r *Registry) MergeServerCommands(cmds []ServerCommand) {
	for _, sc := range cmds {
		r.merge(sc)
		for _, sub := range sc.Subcommands {
			r.merge(sub)
		}
	}
}

func (r *Registry) merge(sc ServerCommand) {
	name := strings.ToUpper(sc.Name)
	if r.docs[name] != nil {
		return
	}
	r.add(CommandDoc{
		Command:   name,
		Arguments: arityHint(sc.Arity),
		Group:     primaryACLGroup(sc.ACLCats),
	})
	for _, cat := range sc.ACLCats {
		switch cat {
		case "@dangerous":
			r.attrs[name] |= Dangerous
		case "@blocking":
			r.attrs[name] |= Blocking
		}
	}
}

// arityHint turns a COMMAND arity into placeholder arguments. The arity
// counts the command name; a negative arity is a minimum.
func arityHint(arity int64) string {
	n := arity
	if n < 0 {
		n = -n
	}
	var b strings.Builder
	for i := int64(1); i < n; i++ {
		if i > 1 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "arg%d", i)
	}
	if arity < 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("[arg ...]")
	}
	return b.String()
}

// metaCategories say how a command behaves rather than what it works on.
var metaCategories = map[string]bool{
	"@read": true, "@write": true, "@fast": true, "@slow": true,
	"@admin": true, "@dangerous": true, "@keyspace": true, "@blocking": true,
}

// primaryACLGroup picks the first data-type category, falling back to
// @connection, @pubsub or @admin.
func primaryACLGroup(cats []string) string {
	for _, cat := range cats {
		if strings.HasPrefix(cat, "@") && !metaCategories[cat] {
			return cat[1:]
		}
	}
	for _, cat := range cats {
		switch cat {
		case "@connection", "@pubsub", "@admin":
			return cat[1:]
		}
	}
	return ""
}
