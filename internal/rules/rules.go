// Package rules decides how a window is treated based on its title or process
// name. Rules are checked in order and the first match wins.
package rules

import (
	"fmt"
	"regexp"

	"github.com/gobwas/glob"
)

// Matcher tests an identifying string against a compiled pattern.
type Matcher interface {
	Match(s string) bool
	String() string
}

type regexMatcher struct{ re *regexp.Regexp }

func (m regexMatcher) Match(s string) bool { return m.re.MatchString(s) }
func (m regexMatcher) String() string      { return m.re.String() }

type globMatcher struct {
	g   glob.Glob
	src string
}

func (m globMatcher) Match(s string) bool { return m.g.Match(s) }
func (m globMatcher) String() string      { return "glob:" + m.src }

// CompileRegex compiles a regular-expression pattern.
func CompileRegex(pattern string) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return regexMatcher{re: re}, nil
}

// CompileGlob compiles a shell-style pattern such as "*Firefox*".
func CompileGlob(pattern string) (Matcher, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
	}
	return globMatcher{g: g, src: pattern}, nil
}

var matchAll = regexMatcher{re: regexp.MustCompile("")}

// Rule is the per-window policy record.
type Rule struct {
	Pattern           Matcher
	HasCustomTitlebar bool
	Manage            bool
	Chromium          bool
	Firefox           bool
	RemoveFrame       bool
	// Workspace is the target workspace id, or -1 for the active one.
	Workspace int32
}

// Default returns the rule used when no configured rule matches: an empty
// pattern that matches everything, managed, frame removable, any workspace.
func Default() Rule {
	return Rule{
		Pattern:     matchAll,
		Manage:      true,
		RemoveFrame: true,
		Workspace:   -1,
	}
}

// Matches reports whether any of the candidate strings matches the rule.
func (r Rule) Matches(candidates ...string) bool {
	p := r.Pattern
	if p == nil {
		p = matchAll
	}
	for _, c := range candidates {
		if p.Match(c) {
			return true
		}
	}
	return false
}

// Find returns the first rule matching any candidate, or Default when none
// match. The bool reports whether a configured rule was found.
func Find(rules []Rule, candidates ...string) (Rule, bool) {
	for _, r := range rules {
		if r.Matches(candidates...) {
			return r, true
		}
	}
	return Default(), false
}
