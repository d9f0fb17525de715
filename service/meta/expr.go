// Package meta expands ${env.KEY} expressions in configuration documents
// before they are decoded, so config files can reference deployment
// environment values without duplicating them.
package meta

import (
	"os"
	"strings"
	"unicode"
)

// ExpandEnv replaces all occurrences of ${env.KEY} in the input with the
// value of the environment variable KEY (or "" if unset). Malformed
// expressions are kept literal.
func ExpandEnv(value string) string {
	const prefix = "${env."
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], prefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}

		b.WriteString(value[i : i+idx])
		startKey := i + idx + len(prefix)

		endKey := strings.IndexByte(value[startKey:], '}')
		if endKey < 0 {
			// No closing brace; keep the rest literal.
			b.WriteString(value[i+idx:])
			break
		}

		key := value[startKey : startKey+endKey]

		// A key consists solely of letters, digits or '_' (empty is allowed).
		valid := true
		for _, r := range key {
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
				valid = false
				break
			}
		}

		if valid {
			b.WriteString(os.Getenv(key))
		} else {
			// Keep the detected prefix literal and rescan from just after it
			// so that any nested expressions are still processed.
			b.WriteString(value[i+idx : startKey])
			i = startKey
			continue
		}

		i = startKey + endKey + 1
	}

	return b.String()
}
