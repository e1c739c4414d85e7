// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sanitize strips citation markers and emphasis markup from agent
// prose before it is displayed.
package sanitize

import (
	"regexp"
	"strings"
)

// rule is one rewrite applied during a cleaning pass.
type rule struct {
	re   *regexp.Regexp
	repl string
}

// rules are applied in order on every pass.
var rules = []rule{
	{regexp.MustCompile(`(?i)\[\d+\]\s*prof_info`), ""}, // [1] prof_info
	{regexp.MustCompile(`\[\d+\]\s*`), ""},              // [1]
	{regexp.MustCompile(`【\d+】`), ""},                   // 【1】
	{regexp.MustCompile(`\(\d+\)`), ""},                 // (1)
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},         // **bold**
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},             // *italic*
}

// Clean returns text with citation markers and emphasis delimiters
// removed, keeping the emphasised words. When a non-empty card was
// produced the card replaces the prose entirely and Clean returns "".
//
// Passes repeat until the text stops changing, so Clean(Clean(t)) ==
// Clean(t) even for nested markers such as "[[1]2]".
func Clean(text string, cardProduced bool) string {
	if cardProduced {
		return ""
	}
	out := strings.TrimSpace(text)
	// Every rule only deletes characters, so each productive pass shortens
	// the text and the loop terminates.
	for {
		next := pass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func pass(s string) string {
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return strings.TrimSpace(s)
}
