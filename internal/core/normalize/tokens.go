package normalize

import "strings"

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "to": {}, "of": {}, "for": {},
	"in": {}, "on": {}, "at": {}, "with": {}, "is": {}, "be": {}, "will": {}, "we": {},
	"i": {}, "it": {}, "this": {}, "that": {}, "by": {}, "from": {}, "up": {}, "our": {},
	"my": {}, "need": {}, "needs": {}, "should": {},
}

// Tokens returns the distinct non-stopword words of Text(s), in order
func Tokens(s string) []string {
	words := strings.Fields(Text(s))
	seen := make(map[string]struct{}, len(words))
	out := words[:0]
	for _, w := range words {
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Overlap is the Dice coefficient over Tokens(a) and Tokens(b), in [0,1].
// Two empty token sets score 0
func Overlap(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(ta))
	for _, w := range ta {
		set[w] = struct{}{}
	}
	shared := 0
	for _, w := range tb {
		if _, ok := set[w]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ta)+len(tb))
}
