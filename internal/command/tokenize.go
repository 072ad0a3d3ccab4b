package command

import (
	"strings"
	"unicode"
)

// Tokenize splits s on whitespace. Double quotes group words into one token
// and are dropped.
func Tokenize(s string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	return tokens
}

// SplitFlags separates --name=value and bare --name tokens from positional
// ones. Bare flags get the value "true". A lone "--" ends flag parsing.
func SplitFlags(tokens []string) (args []string, flags map[string]string) {
	flags = make(map[string]string)
	for i, t := range tokens {
		if t == "--" {
			args = append(args, tokens[i+1:]...)
			break
		}
		if !strings.HasPrefix(t, "--") || len(t) == 2 {
			args = append(args, t)
			continue
		}
		name, value, ok := strings.Cut(t[2:], "=")
		if !ok {
			value = "true"
		}
		flags[strings.ToLower(name)] = value
	}
	return args, flags
}
