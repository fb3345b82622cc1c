package command

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

var errUnbalancedQuotes = errors.New("unbalanced quotes in command line")

// tokenize splits a REPL line into arguments. Double-quoted tokens understand
// \n, \r, \t, \\, \" and \xHH escapes so binary values can be typed; single
// quotes are literal except for \'. Outside quotes a backslash escapes the
// next character.
func tokenize(input string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inToken := false

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case r == '"' || r == '\'':
			quote := r
			inToken = true
			closed := false
			for i++; i < len(runes); i++ {
				c := runes[i]
				if c == quote {
					closed = true
					break
				}
				if c != '\\' || i+1 >= len(runes) {
					cur.WriteRune(c)
					continue
				}
				next := runes[i+1]
				if quote == '\'' {
					if next == '\'' {
						cur.WriteRune('\'')
						i++
					} else {
						cur.WriteRune(c)
					}
					continue
				}
				i++
				switch next {
				case 'n':
					cur.WriteByte('\n')
				case 'r':
					cur.WriteByte('\r')
				case 't':
					cur.WriteByte('\t')
				case 'x':
					if i+2 < len(runes) {
						if b, err := strconv.ParseUint(string(runes[i+1:i+3]), 16, 8); err == nil {
							cur.WriteByte(byte(b))
							i += 2
							continue
						}
					}
					cur.WriteRune(next)
				default:
					cur.WriteRune(next)
				}
			}
			if !closed {
				return nil, errUnbalancedQuotes
			}
		case r == '\\' && i+1 < len(runes):
			i++
			cur.WriteRune(runes[i])
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}

	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
