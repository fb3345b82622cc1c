package command

// ParsedCommand is a line typed at the REPL after tokenizing.
type ParsedCommand struct {
	Text     string      // original input text
	Name     string      // upper-cased command name, empty if none
	Args     []string    // arguments as typed (before any codec is applied)
	Command  *Command    // wire command, nil for an empty line
	Modifier string      // codec name e.g. "gzip", empty if none
	Pipe     string      // shell command after "|", empty if none
	Doc      *CommandDoc // documentation, nil if not found
}

// CommandDoc is the documentation for a single command.
type CommandDoc struct {
	Command   string `json:"command"`
	Summary   string `json:"summary"`
	Arguments string `json:"arguments"`
	Since     string `json:"since"`
	Group     string `json:"group"`
}

// ServerCommand is a command discovered from the server's COMMAND reply.
// It lives here rather than in conn so conn can produce these and the
// registry can consume them without an import cycle.
type ServerCommand struct {
	Name        string          // e.g. "CONFIG SET" (uppercased, pipe replaced with space)
	Arity       int64           // positive = exact arg count, negative = minimum
	ACLCats     []string        // e.g. ["@string", "@read", "@fast"]
	Subcommands []ServerCommand // recursive subcommands
}
