package docgraph

import (
	"regexp"
	"strings"

	"github.com/teranos/azsku/errors"
)

var (
	titleSplit   = regexp.MustCompile(`[/\-]`)
	titleCapture = regexp.MustCompile(`^([a-zA-Z0-9_]+)-?(?:.+)?$`)
)

// NameFromTitle recovers the properly cased series name from a document
// title. Title tokens are matched against the identifier, then the file stem,
// then the stem's first segment with underscores removed from the tokens.
func NameFromTitle(title, identifier, stem string) (string, error) {
	var tokens []string
	for _, word := range strings.Fields(title) {
		for _, t := range titleSplit.Split(word, -1) {
			if t != "" {
				tokens = append(tokens, t)
			}
		}
	}

	lowered := make([]string, len(tokens))
	for i, t := range tokens {
		lowered[i] = strings.ToLower(t)
	}
	if i := indexOf(lowered, identifier); i >= 0 {
		return tokens[i], nil
	}
	if i := indexOf(lowered, stem); i >= 0 {
		return captureName(tokens[i], title)
	}

	squashed := make([]string, len(lowered))
	for i, t := range lowered {
		squashed[i] = strings.ReplaceAll(t, "_", "")
	}
	prefix, _, _ := strings.Cut(stem, "-")
	if i := indexOf(squashed, prefix); i >= 0 {
		return captureName(tokens[i], title)
	}
	return "", errors.NewGrammarViolation("title %q does not name series %q", title, identifier)
}

func captureName(token, title string) (string, error) {
	m := titleCapture.FindStringSubmatch(token)
	if m == nil {
		return "", errors.NewGrammarViolation("title %q: token %q is not a series name", title, token)
	}
	return m[1], nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
