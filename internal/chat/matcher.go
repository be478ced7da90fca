package chat

import (
	"strings"
	"unicode"
)

// MatchStatus represents the status of a match operation
type MatchStatus int

const (
	Matched MatchStatus = iota
	Ambiguous
	Unmatched
)

func (s MatchStatus) String() string {
	switch s {
	case Matched:
		return "Matched"
	case Ambiguous:
		return "Ambiguous"
	case Unmatched:
		return "Unmatched"
	default:
		return "Unknown"
	}
}

// MatchResult contains the result of a matching operation
type MatchResult struct {
	Status     MatchStatus
	Item       *MenuItem  // when Matched
	Candidates []MenuItem // when Ambiguous
}

// Matcher resolves free text, such as a line of a model completion, to a
// menu item by the words of its name.
type Matcher struct {
	items       []MenuItem
	exact       map[string]int
	itemTokens  [][]string     // pre-tokenized name words per item
	tokenCounts map[string]int // how many item names use each word
}

const (
	distinctWeight = 5
	regularWeight  = 1
)

// Connectors that never identify a dish on their own.
var stopwords = map[string]bool{
	"a": true, "al": true, "con": true, "de": true, "del": true, "el": true,
	"en": true, "la": true, "las": true, "los": true, "y": true,
}

// NewMatcher creates a Matcher with pre-tokenized menu names.
func NewMatcher(menu []MenuItem) *Matcher {
	m := &Matcher{
		items:       menu,
		exact:       make(map[string]int, len(menu)),
		itemTokens:  make([][]string, len(menu)),
		tokenCounts: make(map[string]int),
	}
	for i, item := range menu {
		name := normalize(item.Name)
		if _, dup := m.exact[name]; !dup {
			m.exact[name] = i
		}
		m.itemTokens[i] = keywords(name)
		for _, kw := range m.itemTokens[i] {
			m.tokenCounts[kw]++
		}
	}
	return m
}

// Match returns the single item whose name is fully present in text. An
// exact name wins outright; otherwise words unique to one item outweigh
// words shared across the menu, and a tie is Ambiguous.
func (m *Matcher) Match(text string) MatchResult {
	normalized := normalize(text)
	if i, ok := m.exact[normalized]; ok {
		return MatchResult{Status: Matched, Item: &m.items[i]}
	}

	inputTokens := make(map[string]bool)
	for _, tok := range keywords(normalized) {
		inputTokens[tok] = true
	}

	maxScore := 0
	var top []int
	for i, kws := range m.itemTokens {
		if len(kws) == 0 {
			continue
		}
		score := 0
		for _, kw := range kws {
			if !inputTokens[kw] {
				score = 0
				break
			}
			if m.tokenCounts[kw] == 1 {
				score += distinctWeight
			} else {
				score += regularWeight
			}
		}
		switch {
		case score == 0:
		case score > maxScore:
			maxScore, top = score, []int{i}
		case score == maxScore:
			top = append(top, i)
		}
	}

	switch len(top) {
	case 0:
		return MatchResult{Status: Unmatched}
	case 1:
		return MatchResult{Status: Matched, Item: &m.items[top[0]]}
	}
	candidates := make([]MenuItem, len(top))
	for i, idx := range top {
		candidates[i] = m.items[idx]
	}
	return MatchResult{Status: Ambiguous, Candidates: candidates}
}

// normalize converts a string to lowercase and replaces non-alphanumeric chars with spaces
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// keywords drops connectors and quantity tokens like "2", "2x" or "x2".
func keywords(normalized string) []string {
	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if stopwords[tok] || isQuantity(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isQuantity(tok string) bool {
	tok = strings.TrimPrefix(strings.TrimSuffix(tok, "x"), "x")
	return isDigits(tok)
}
