// Package filter holds the static checks run on comment text before it is stored.
package filter

import (
	"regexp"
	"strings"
)

// Blacklist is an immutable set of lowercase terms matched as substrings.
type Blacklist struct {
	terms []string
}

func NewBlacklist(terms []string) *Blacklist {
	seen := make(map[string]struct{}, len(terms))
	b := &Blacklist{terms: make([]string, 0, len(terms))}
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		b.terms = append(b.terms, term)
	}
	return b
}

// Contains reports whether text contains any blacklisted term, ignoring case.
func (b *Blacklist) Contains(text string) bool {
	if b == nil || len(b.terms) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, term := range b.terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

var mentionRegexp = regexp.MustCompile(`@(\w+)`)

// ExtractMentions returns the @usernames found in text, in order of first appearance.
func ExtractMentions(text string) []string {
	matches := mentionRegexp.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		mentions = append(mentions, m[1])
	}
	return mentions
}
