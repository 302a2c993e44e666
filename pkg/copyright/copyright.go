// Package copyright finds the attribution line in a license text.
package copyright

import (
	"errors"
	"strings"
)

var ErrNoAttribution = errors.New("no copyright line in license text")

// Extract returns the first paragraph of text mentioning "copyright", in any
// case. Lines are trimmed and stripped of a leading "//" before hard-wrapped
// lines are joined back into paragraphs with a single space. Blank lines
// separate paragraphs.
//
// This is a heuristic: a text with several copyright lines yields the first
// one only.
func Extract(text string) (string, error) {
	for _, p := range paragraphs(text) {
		if strings.Contains(strings.ToLower(p), "copyright") {
			return p, nil
		}
	}
	return "", ErrNoAttribution
}

func paragraphs(text string) []string {
	var (
		out     []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, strings.Join(current, " "))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(line, " \t")
		line = strings.TrimSpace(strings.TrimPrefix(line, "//"))
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return out
}
