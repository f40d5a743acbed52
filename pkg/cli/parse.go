package cli

import (
	"fmt"
	"strings"
)

// Value is one argument value. A scalar is a single element; a
// comma-separated argument carries one element per item.
type Value []string

// Text renders the value for templating; list values rejoin with ",".
func (v Value) Text() string { return strings.Join(v, ",") }

// Args holds argument values keyed by name.
type Args map[string]Value

// Get returns the first element of the named value, or "".
func (a Args) Get(name string) string {
	if v, ok := a[name]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

// List returns all elements of the named value.
func (a Args) List(name string) []string { return a[name] }

// Has reports whether the argument was supplied or defaulted.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// parsedLine is the result of tokenizing one input line.
type parsedLine struct {
	words      []string // ordered words; key=value tokens keep the key here
	incomplete string   // token under the cursor, "" at a boundary
	args       Args     // key=value tokens
}

// parseLine tokenizes one line. boundary=false means the cursor sits inside
// the final word, which is then reported as the incomplete token; a line
// ending in '=' or ',' also leaves its final word incomplete so value
// completion can run right after the separator is typed.
func parseLine(text string, boundary bool) (parsedLine, error) {
	pl := parsedLine{args: make(Args)}
	words, err := splitWords(text)
	if err != nil {
		return pl, err
	}
	for i, w := range words {
		idx := strings.IndexByte(w, '=')
		if idx < 0 {
			continue
		}
		key, value := w[:idx], w[idx+1:]
		pl.args[key] = Value(strings.Split(value, ","))
		words[i] = key
	}
	pl.words = words
	if len(words) > 0 {
		last := text[len(text)-1]
		if !boundary || last == '=' || last == ',' {
			pl.incomplete = words[len(words)-1]
		}
	}
	return pl, nil
}

// splitWords tokenizes with shell-style quoting: quoted runs keep their
// spaces and the quotes themselves are stripped. An unterminated quote or a
// trailing escape is an error.
func splitWords(text string) ([]string, error) {
	var words []string
	var cur strings.Builder
	inWord := false
	escaped := false
	var quote rune
	for _, r := range text {
		switch {
		case escaped:
			cur.WriteRune(r)
			inWord = true
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inWord = true
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if escaped {
		return nil, fmt.Errorf("trailing escape character")
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
