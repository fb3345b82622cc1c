package command

import (
	"fmt"
	"strings"

	"github.com/cosmez/redistx-go/internal/serializer"
)

// Parse turns a REPL line into a ParsedCommand. The line may end in a
// `#:codec` modifier and a `| shell command` pipe. Tokens become an Argv
// command, so quoted values keep their spaces on the wire.
func Parse(input string, reg *Registry) (*ParsedCommand, error) {
	if strings.TrimSpace(input) == "" {
		return &ParsedCommand{}, nil
	}

	parsed := &ParsedCommand{
		Text: input,
	}

	// The pipe is stripped first so `GET key #:gzip | jq .` does not read
	// "gzip | jq ." as the codec name.
	if pipeIdx := strings.Index(input, " | "); pipeIdx != -1 {
		parsed.Pipe = strings.TrimSpace(input[pipeIdx+3:])
		input = input[:pipeIdx]
	}

	if codecIdx := strings.LastIndex(input, "#:"); codecIdx != -1 {
		parsed.Modifier = strings.TrimSpace(input[codecIdx+2:])
		input = input[:codecIdx]
	}

	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return parsed, nil
	}

	parsed.Name = strings.ToUpper(tokens[0])
	if len(tokens) > 1 {
		parsed.Args = tokens[1:]
	}

	if reg != nil {
		parsed.Doc = reg.Get(parsed.Name)
		if len(parsed.Args) > 0 {
			if compoundDoc := reg.Get(parsed.Name + " " + strings.ToUpper(parsed.Args[0])); compoundDoc != nil {
				parsed.Doc = compoundDoc
			}
		}
	}

	wireArgs := append([]string(nil), parsed.Args...)

	// SET key value #:codec stores the encoded value.
	if parsed.Name == "SET" && len(wireArgs) >= 2 && parsed.Modifier != "" {
		encoded, err := serializer.Encode(parsed.Modifier, []byte(wireArgs[1]))
		if err != nil {
			return nil, fmt.Errorf("failed to serialize value: %w", err)
		}
		wireArgs[1] = string(encoded)
	}

	parsed.Command = Argv(parsed.Name, wireArgs...)
	return parsed, nil
}
