package locator

import "strings"

// Matcher decides whether probe output identifies an acceptable runtime.
type Matcher interface {
	Match(output string) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(output string) bool

// Match calls f.
func (f MatcherFunc) Match(output string) bool { return f(output) }

// TokenMatcher accepts output containing Token.
type TokenMatcher struct {
	Token string
}

// Match reports whether output contains the token. An empty token never matches.
func (m TokenMatcher) Match(output string) bool {
	return m.Token != "" && strings.Contains(output, m.Token)
}
